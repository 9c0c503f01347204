// Package server exposes the worksheet service over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abhisek/mathdaily/internal/metrics"
	"github.com/abhisek/mathdaily/internal/tracing"
	"github.com/abhisek/mathdaily/internal/worksheet"
)

// Options configures the HTTP surface.
type Options struct {
	// AllowedOrigins lists CORS origins. Empty or "*" allows any origin.
	AllowedOrigins []string

	// Metrics, when set, instruments every route and serves /metrics.
	Metrics *metrics.Metrics

	// Tracing starts a span per request.
	Tracing bool

	// Ping reports storage health for /healthz.
	Ping func(context.Context) error
}

// Server routes HTTP requests to a worksheet.Service.
type Server struct {
	svc    *worksheet.Service
	opts   Options
	log    *zap.Logger
	engine *gin.Engine
}

// New builds the router.
func New(svc *worksheet.Service, opts Options, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{svc: svc, opts: opts, log: log.Named("server")}
	s.engine = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog(), corsMiddleware(s.opts.AllowedOrigins))
	if s.opts.Tracing {
		r.Use(tracing.GinMiddleware())
	}
	if s.opts.Metrics != nil {
		r.Use(s.opts.Metrics.Middleware())
		r.GET("/metrics", s.opts.Metrics.GinHandler())
	}

	r.GET("/healthz", s.health)

	api := r.Group("/api")
	{
		api.GET("/curriculum/:level/:grade", s.curriculum)

		api.POST("/daily-worksheet/generate", s.generate)
		api.POST("/daily-worksheet/submit", s.submit)
		api.POST("/analyze-error", s.analyzeError)
		api.POST("/rewrite-problem", s.rewrite)
		api.POST("/chat", s.chat)
		api.GET("/check-ai", s.checkAI)

		api.GET("/students/:id", s.student)
		api.PUT("/students/:id/topics", s.setTopics)
		api.GET("/problems/export", s.export)
	}
	return r
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "traceparent"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// Run serves on addr until ctx is canceled, then drains in-flight
// requests for up to ten seconds.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
