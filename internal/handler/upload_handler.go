package handler

import (
	"net/http"
	"strings"

	"nearby/internal/middleware"
	"nearby/pkg/media"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxUploadBytes = 10 << 20

type UploadHandler struct {
	uploader media.Uploader
	folder   string
}

// NewUploadHandler accepts a nil uploader; uploads then answer 503.
func NewUploadHandler(uploader media.Uploader, folder string) *UploadHandler {
	return &UploadHandler{uploader: uploader, folder: folder}
}

// Upload stores an image or audio file for chat or posts and returns its URL.
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads are disabled", "code": "UPLOADS_DISABLED"})
		return
	}
	userID := middleware.GetUserID(c)
	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file required")
		return
	}
	if file.Size > maxUploadBytes {
		badRequest(c, "file too large")
		return
	}
	contentType := file.Header.Get("Content-Type")
	kind, err := media.KindForContentType(contentType)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	f, err := file.Open()
	if err != nil {
		badRequest(c, "could not read file")
		return
	}
	defer f.Close()

	url, err := h.uploader.Upload(c.Request.Context(), media.Upload{
		Body:        f,
		Size:        file.Size,
		ContentType: contentType,
		Kind:        kind,
		Folder:      strings.TrimSuffix(h.folder, "/") + "/chat/" + userID,
		PublicID:    kind + "_" + strings.ReplaceAll(uuid.New().String(), "-", "")[:16],
	})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed", "code": "UPLOAD_FAILED"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url, "type": kind})
}
