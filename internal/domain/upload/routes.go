package upload

import "github.com/gin-gonic/gin"

// RegisterRoutes registers upload routes under the protected group.
// receive is the middleware that parses and registers the multipart files;
// it only runs for the upload endpoint.
func RegisterRoutes(r *gin.RouterGroup, h *Handler, receive gin.HandlerFunc) {
	uploads := r.Group("/uploads")
	{
		uploads.POST("", receive, h.Upload)
		uploads.GET("", h.ListMy)
		uploads.GET("/:id", h.GetByID)
		uploads.DELETE("/:id", h.Delete)
	}
}
