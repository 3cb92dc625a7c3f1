package handler

import (
	"net/http"

	"github.com/dalmia/sensai-backend/internal/common"
	"github.com/dalmia/sensai-backend/internal/middleware"
	"github.com/dalmia/sensai-backend/pkg/storage"
	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 20 << 20 // 20 MiB

// MediaHandler handles editor media uploads backed by S3
type MediaHandler struct {
	s3 *storage.S3Client
}

// NewMediaHandler creates a new MediaHandler
func NewMediaHandler(s3 *storage.S3Client) *MediaHandler {
	return &MediaHandler{s3: s3}
}

// Upload handles POST /api/v1/media
// @Summary Upload an editor media file
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Success 201 {object} common.APIResponse
// @Failure 400 {object} common.APIResponse
// @Failure 503 {object} common.APIResponse
// @Security BearerAuth
// @Router /media [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	if middleware.GetUserID(c) == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}
	if h.s3 == nil {
		common.ErrorResponse(c, http.StatusServiceUnavailable, "Media storage is not configured", nil)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Missing file", err)
		return
	}
	if fileHeader.Size > maxUploadBytes {
		common.ErrorResponse(c, http.StatusBadRequest, "File too large", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "Unreadable file", err)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if !storage.AllowedMediaType(contentType) {
		common.ErrorResponse(c, http.StatusBadRequest, "Unsupported media type", nil)
		return
	}

	key := storage.GenerateKey("materials", fileHeader.Filename)
	result, err := h.s3.Upload(c.Request.Context(), key, file, contentType, fileHeader.Size)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Upload failed", err)
		return
	}

	common.CreatedResponse(c, result)
}

// Delete handles DELETE /api/v1/media/*key
// @Summary Delete an uploaded media file
// @Tags media
// @Produce json
// @Param key path string true "Object key"
// @Success 200 {object} common.APIResponse
// @Security BearerAuth
// @Router /media/{key} [delete]
func (h *MediaHandler) Delete(c *gin.Context) {
	if middleware.GetUserID(c) == "" {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}
	if h.s3 == nil {
		common.ErrorResponse(c, http.StatusServiceUnavailable, "Media storage is not configured", nil)
		return
	}

	key := c.Param("key")
	if len(key) > 0 && key[0] == '/' {
		key = key[1:]
	}
	if key == "" {
		common.ErrorResponse(c, http.StatusBadRequest, "Missing key", nil)
		return
	}

	if err := h.s3.Delete(c.Request.Context(), key); err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "Delete failed", err)
		return
	}

	common.SuccessResponse(c, gin.H{"deleted": true}, nil)
}
