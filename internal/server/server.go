package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"taskboard/internal/kanban"
	"taskboard/internal/util"
)

// Options tunes the HTTP layer.
type Options struct {
	// CORSOrigins lists allowed browser origins; "*" allows any.
	CORSOrigins []string
	// Ping reports database health on /api/healthz when set.
	Ping func(ctx context.Context) error
}

// Server provides HTTP handlers for the task board backend.
type Server struct {
	engine *gin.Engine
	svc    *kanban.Service
	logger *slog.Logger
	ping   func(ctx context.Context) error
}

// New constructs the HTTP server with routes and middleware configured.
func New(svc *kanban.Service, logger *slog.Logger, opts Options) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	useJSONFieldNames()

	router := gin.New()
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("panic in handler", slog.String("path", c.FullPath()), slog.Any("panic", recovered))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
	}))
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{SkipPaths: []string{"/api/healthz"}}))
	if len(opts.CORSOrigins) > 0 {
		router.Use(cors.New(corsConfig(opts.CORSOrigins)))
	}

	srv := &Server{
		engine: router,
		svc:    svc,
		logger: logger,
		ping:   opts.Ping,
	}

	srv.registerRoutes()
	return srv
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
		api.POST("/registration/", s.handleRegister)
		api.POST("/login/", s.handleLogin)

		authed := api.Group("", s.requireAuth())

		authed.GET("/email-check/", s.handleEmailCheck)

		boards := authed.Group("/boards")
		{
			boards.GET("/", s.handleListBoards)
			boards.POST("/", s.handleCreateBoard)
			boards.GET("/:id/", s.handleGetBoard)
			boards.PATCH("/:id/", s.handleUpdateBoard)
			boards.DELETE("/:id/", s.handleDeleteBoard)
		}

		tasks := authed.Group("/tasks")
		{
			tasks.POST("/", s.handleCreateTask)
			tasks.GET("/assigned-to-me/", s.handleAssignedToMe)
			tasks.GET("/reviewing/", s.handleReviewing)
			tasks.GET("/:id/", s.handleGetTask)
			tasks.PATCH("/:id/", s.handleUpdateTask)
			tasks.DELETE("/:id/", s.handleDeleteTask)
			tasks.GET("/:id/comments/", s.handleListComments)
			tasks.POST("/:id/comments/", s.handleAddComment)
			tasks.DELETE("/:id/comments/:comment_id/", s.handleDeleteComment)
		}
	}

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "endpoint not found"})
	})
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	if s.ping != nil {
		if err := s.ping(c.Request.Context()); err != nil {
			s.logger.Error("health check failed", slog.String("error", err.Error()))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseID converts a path parameter to a positive int64.
func parseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, util.NewInvalidArgumentErrorf("invalid identifier")
	}
	return id, nil
}

// respondSuccess writes payload, or only the status when payload is nil.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
