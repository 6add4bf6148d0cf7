package upload

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"uploadkit/internal/middleware"
	"uploadkit/internal/pkg/fileupload"
	"uploadkit/internal/pkg/response"
)

// FileField is the multipart field the upload endpoint reads.
const FileField = "file"

// Handler handles HTTP requests for file uploads.
// Any authenticated user can upload. Ownership is tracked by user_id.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Upload godoc
// @Summary Upload a file
// @Description Upload one file in field "file". Optional kind=image|audio|video restricts the accepted type.
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to upload"
// @Param kind query string false "Required media kind"
// @Success 201 {object} map[string]interface{}
// @Failure 400,401,413,415,500 {object} map[string]interface{}
// @Router /uploads [post]
func (h *Handler) Upload(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	kind, err := ParseKind(c.Query("kind"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_KIND", "kind must be one of image, audio, video")
		return
	}

	files := middleware.UploadedFiles(c)[FileField]
	if len(files) == 0 {
		response.Error(c, http.StatusBadRequest, "NO_FILE", ErrNoFile.Error())
		return
	}
	f := files[0]

	upload, err := h.service.Store(c.Request.Context(), userID, f, kind)
	if err != nil {
		writeStoreError(c, f, kind, err)
		return
	}

	response.Success(c, http.StatusCreated, toResponse(upload))
}

func writeStoreError(c *gin.Context, f *fileupload.File, kind Kind, err error) {
	switch {
	case errors.Is(err, ErrTransport):
		switch f.Code() {
		case fileupload.CodeNoFile:
			response.Error(c, http.StatusBadRequest, "NO_FILE", f.ErrorMessage())
		case fileupload.CodeIniSize, fileupload.CodeFormSize:
			response.Error(c, http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE", f.ErrorMessage())
		default:
			response.Error(c, http.StatusBadRequest, "UPLOAD_FAILED", f.ErrorMessage())
		}
	case errors.Is(err, ErrKindMismatch):
		response.Error(c, http.StatusUnsupportedMediaType, "UNSUPPORTED_TYPE", kindMessage(kind))
	case errors.Is(err, fileupload.ErrNonUploadedFile):
		response.Error(c, http.StatusBadRequest, "NON_UPLOADED_FILE", err.Error())
	case errors.Is(err, fileupload.ErrDirectoryDoesNotExist), errors.Is(err, fileupload.ErrDirectoryUnwritable):
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "STORAGE_MISCONFIGURED", "upload storage is not available")
	case errors.Is(err, fileupload.ErrCouldNotMoveFile):
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "STORAGE_ERROR", "could not store file")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "upload failed")
	}
}

func kindMessage(kind Kind) string {
	switch kind {
	case KindImage:
		return "Only images are allowed!"
	case KindAudio:
		return "Only audio files are allowed!"
	case KindVideo:
		return "Only videos are allowed!"
	default:
		return ErrKindMismatch.Error()
	}
}

// GetByID godoc
// @Summary Get upload metadata by ID
// @Tags Uploads
// @Produce json
// @Security BearerAuth
// @Param id path string true "Upload ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /uploads/{id} [get]
func (h *Handler) GetByID(c *gin.Context) {
	upload, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrUploadNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load upload")
		return
	}
	response.Success(c, http.StatusOK, toResponse(upload))
}

// Delete godoc
// @Summary Delete an upload (file + record)
// @Tags Uploads
// @Produce json
// @Security BearerAuth
// @Param id path string true "Upload ID"
// @Success 200 {object} map[string]interface{}
// @Failure 403,404,500 {object} map[string]interface{}
// @Router /uploads/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	err := h.service.Delete(c.Request.Context(), c.Param("id"), userID)
	switch {
	case err == nil:
		response.Success(c, http.StatusOK, gin.H{"message": "deleted"})
	case errors.Is(err, ErrUploadNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrNotOwner):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "delete failed")
	}
}

// ListMy godoc
// @Summary List my uploads
// @Tags Uploads
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /uploads [get]
func (h *Handler) ListMy(c *gin.Context) {
	userID := mustUserID(c)
	if userID == 0 {
		return
	}

	uploads, err := h.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list uploads")
		return
	}

	items := make([]UploadResponse, 0, len(uploads))
	for _, u := range uploads {
		items = append(items, toResponse(u))
	}
	response.Success(c, http.StatusOK, items)
}

func mustUserID(c *gin.Context) int64 {
	id, exists := c.Get("user_id")
	if !exists {
		response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized")
		return 0
	}
	switch v := id.(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	}
	response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid user id")
	return 0
}
