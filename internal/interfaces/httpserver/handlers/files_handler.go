package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/janhq/genai-proxy/internal/infrastructure/storage"
	"github.com/janhq/genai-proxy/internal/interfaces/httpserver/responses"
)

// FilesHandler serves attachments written by the local blob backend.
type FilesHandler struct {
	local *storage.LocalStorage
	log   zerolog.Logger
}

func NewFilesHandler(local *storage.LocalStorage, log zerolog.Logger) *FilesHandler {
	return &FilesHandler{local: local, log: log.With().Str("component", "files-handler").Logger()}
}

// Get handles GET /files/*key.
func (h *FilesHandler) Get(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	rc, contentType, err := h.local.Open(c.Request.Context(), key)
	if errors.Is(err, storage.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, responses.ErrorResponse{Error: "File not found"})
		return
	}
	if err != nil {
		responses.HandleError(c, h.log, err, "Failed to read file")
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, contentType, rc, nil)
}
