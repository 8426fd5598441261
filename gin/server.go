// Package gin exposes the ingestion workflow over HTTP using gin.
package gin

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/fwojciec/mangaingest"
	"github.com/gin-gonic/gin"
)

// MaxSimilarLimit caps the limit query parameter of the similarity route.
const MaxSimilarLimit = 50

// ShutdownTimeout bounds graceful shutdown of ListenAndServe.
const ShutdownTimeout = 10 * time.Second

// Server serves the ingestion API.
type Server struct {
	ingester     mangaingest.Ingester
	similarities mangaingest.SimilarityService
	logger       *slog.Logger
	engine       *gin.Engine
}

// NewServer constructs a Server with its routes registered.
func NewServer(ingester mangaingest.Ingester, similarities mangaingest.SimilarityService, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		ingester:     ingester,
		similarities: similarities,
		logger:       logger,
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests)
	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api")
	api.POST("/scraper/series", s.handleCreateSeries)
	api.POST("/scraper/series/:id/chapters", s.handleCreateChapters)
	api.GET("/series/:id/similar", s.handleSimilar)

	s.engine = r
	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debug("http request",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"status", c.Writer.Status(),
		"duration", time.Since(start),
	)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
