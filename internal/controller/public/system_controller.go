package public

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/psytest/internal/dto"
	"github.com/lshigami/psytest/internal/storage"
	"github.com/rs/zerolog/log"
)

// SystemController serves health checks and stored question images.
type SystemController struct {
	blobs storage.BlobStore
}

func NewSystemController(blobs storage.BlobStore) *SystemController {
	return &SystemController{blobs: blobs}
}

// Health godoc
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (sc *SystemController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "ok"})
}

// Upload streams a stored question image.
func (sc *SystemController) Upload(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("filepath"), "/")
	blob, err := sc.blobs.Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "File not found"})
			return
		}
		log.Error().Err(err).Str("key", key).Msg("Upload: Failed to open blob")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "internal server error"})
		return
	}
	defer blob.Close()

	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	size := blob.Size
	if size <= 0 {
		size = -1
	}
	c.DataFromReader(http.StatusOK, size, contentType, blob, map[string]string{
		"Cache-Control": "public, max-age=86400",
	})
}
