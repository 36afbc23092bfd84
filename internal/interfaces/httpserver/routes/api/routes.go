package api

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/genai-proxy/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates job route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches the job routes under /api and, for the local blob
// backend, the file routes under /files.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/api")
	group.GET("/prediction/:id", r.handlers.Jobs.Poll)
	group.POST("/:job_type", r.handlers.Jobs.Submit)

	if r.handlers.Files != nil {
		router.GET("/files/*key", r.handlers.Files.Get)
	}
}
