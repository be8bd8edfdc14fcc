package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/livenotes-ai/livenotes/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg      *config.Config
	sessions *SessionHandler
	stream   *StreamHandler
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, sessions *SessionHandler, stream *StreamHandler) *Router {
	return &Router{
		cfg:      cfg,
		sessions: sessions,
		stream:   stream,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Service endpoints
	e.GET("/", rt.welcome)
	e.GET("/health", rt.healthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Realtime streaming connection
	e.GET("/ws/:owner_id", rt.stream.Stream)

	// API v1 group
	v1 := e.Group("/api/v1")
	rt.setupSessionRoutes(v1)
}

// setupSessionRoutes configures session lifecycle and assistant routes
func (rt *Router) setupSessionRoutes(g *echo.Group) {
	sessionGroup := g.Group("/sessions")

	sessionGroup.POST("/join", rt.sessions.Join)
	sessionGroup.GET("/:id/brief", rt.sessions.Brief)
	sessionGroup.POST("/:id/ask", rt.sessions.Ask)
	sessionGroup.GET("/:id/status", rt.sessions.Status)
	sessionGroup.POST("/:id/leave", rt.sessions.Leave)
}

// welcome returns service info
func (rt *Router) welcome(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "livenotes",
		"version": "1.0.0",
		"docs":    "/swagger/index.html",
	})
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"service":     "livenotes",
		"version":     "1.0.0",
		"environment": rt.cfg.Server.Environment,
		"time":        time.Now().UTC().Format(time.RFC3339),
	})
}
