package middleware

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"uploadkit/internal/pkg/fileupload"
	"uploadkit/internal/pkg/response"
)

const uploadedFilesKey = "uploaded_files"

// Uploads parses a multipart body, hands every file part to rc and stores
// the wrapped files in the context. Temp files the handler did not save are
// removed once the handler chain returns. maxBody caps the whole request
// body; zero leaves it unlimited.
func Uploads(rc *fileupload.Receiver, maxMemory, maxBody int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBody > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBody)
		}
		if !strings.HasPrefix(c.ContentType(), "multipart/form-data") {
			c.Set(uploadedFilesKey, wrapEmpty(rc))
			c.Next()
			return
		}

		if err := c.Request.ParseMultipartForm(maxMemory); err != nil {
			status := http.StatusBadRequest
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			response.Error(c, status, "INVALID_MULTIPART", "could not parse multipart form")
			c.Abort()
			return
		}

		reg := fileupload.NewRegistry()
		defer func() {
			if err := reg.Cleanup(); err != nil {
				log.Printf("upload_cleanup_failed path=%s request_id=%s error=%v", c.Request.URL.Path, requestID(c), err)
			}
			if form := c.Request.MultipartForm; form != nil {
				_ = form.RemoveAll()
			}
		}()

		files, err := fileupload.WrapFields(rc.Receive(c.Request.MultipartForm, reg), reg)
		if err != nil {
			_ = c.Error(err)
			response.ErrorWithDetails(c, http.StatusInternalServerError, "INTERNAL_ERROR", "could not read uploaded files", err.Error())
			c.Abort()
			return
		}

		c.Set(uploadedFilesKey, files)
		c.Next()
	}
}

func wrapEmpty(rc *fileupload.Receiver) map[string][]*fileupload.File {
	files, _ := fileupload.WrapFields(rc.Receive(nil, nil), nil)
	return files
}

// UploadedFiles returns the files Uploads stored for this request, keyed by
// form field.
func UploadedFiles(c *gin.Context) map[string][]*fileupload.File {
	v, ok := c.Get(uploadedFilesKey)
	if !ok {
		return nil
	}
	files, _ := v.(map[string][]*fileupload.File)
	return files
}
