// Package httpapi exposes the server's JSON API over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clipfeed/clipfeed/internal/logging"
)

// Server wraps the gin engine and its http.Server.
type Server struct {
	addr   string
	engine *gin.Engine
	logger logging.Logger
}

// NewServer wires routes to handlers and returns a runnable server.
func NewServer(addr string, h *Handlers, secretKey string, logger logging.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))

	api := engine.Group("/api/v1")
	api.Use(optionalAuth(secretKey))
	{
		api.POST("/auth/phone/start", h.StartVerification)
		api.POST("/auth/phone/confirm", h.ConfirmVerification)
		api.POST("/auth/refresh", h.RefreshSession)
		api.POST("/auth/signout", h.SignOut)
		api.POST("/blobs/:name", h.UploadBlob)
		api.POST("/videos", h.AppendVideo)
		api.GET("/videos", h.ListVideos)
	}

	return &Server{addr: addr, engine: engine, logger: logger}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
