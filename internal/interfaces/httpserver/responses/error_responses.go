package responses

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/janhq/genai-proxy/internal/utils/platformerrors"
)

// ErrorResponse is the only error body the API returns.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HandleError maps err to its HTTP status and writes {"error": message}.
// Untyped errors become a 500 carrying fallback.
func HandleError(c *gin.Context, log zerolog.Logger, err error, fallback string) {
	if pe := platformerrors.GetPlatformError(err); pe != nil {
		platformerrors.LogError(log, pe)
		message := pe.Message
		if message == "" {
			message = fallback
		}
		_ = c.Error(err)
		c.AbortWithStatusJSON(platformerrors.ErrorTypeToHTTPStatus(pe.Type), ErrorResponse{Error: message})
		return
	}

	log.Error().Err(err).Str("request_id", platformerrors.RequestIDFromContext(c.Request.Context())).Msg(fallback)
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: fallback})
}

// HandleNewError creates a typed error at the handler layer and writes it.
func HandleNewError(c *gin.Context, log zerolog.Logger, errorType platformerrors.ErrorType, message, code string) {
	err := platformerrors.NewError(c.Request.Context(), platformerrors.LayerHandler, errorType, message, nil, code)
	HandleError(c, log, err, message)
}
