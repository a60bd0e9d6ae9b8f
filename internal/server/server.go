package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/labhouse/matsearch/internal/docstore"
	"github.com/labhouse/matsearch/internal/logger"
	"github.com/labhouse/matsearch/internal/searcher"
	"github.com/labhouse/matsearch/internal/vecstore"
	"github.com/labhouse/matsearch/pkg/types"
)

const shutdownTimeout = 10 * time.Second

// Server is the HTTP boundary over the unified search pipeline.
type Server struct {
	engine   *gin.Engine
	searcher *searcher.Searcher
	docs     docstore.MaterialStore
	vectors  vecstore.VectorStore
	log      *logger.Logger
}

// Config holds HTTP server settings.
type Config struct {
	Mode         string // gin mode: debug or release
	AllowOrigins []string
}

// New wires the routes and middleware. The vector store may be nil; health
// then reports the vector index as unavailable and search degrades.
func New(cfg Config, srch *searcher.Searcher, docs docstore.MaterialStore, vectors vecstore.VectorStore, log *logger.Logger) *Server {
	switch cfg.Mode {
	case "release", "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(RequestLogger(log))

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With", requestIDHeader},
		AllowCredentials: true,
	}))

	s := &Server{
		engine:   engine,
		searcher: srch,
		docs:     docs,
		vectors:  vectors,
		log:      log,
	}

	engine.GET("/healthz", s.handleHealth)
	api := engine.Group("/api")
	{
		api.POST("/search", s.handleSearch)
	}

	return s
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// handleSearch is the POST /api/search endpoint. The request body and the
// response envelope follow the caller contract of the searcher package.
func (s *Server) handleSearch(c *gin.Context) {
	var req searcher.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, searcher.Response{
			Results:   []types.UnifiedSearchResult{},
			Formatted: "Search failed: invalid request body",
			Error:     "invalid request body: " + err.Error(),
		})
		return
	}

	resp, err := s.searcher.Search(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, types.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, resp)
	case errors.Is(err, types.ErrDimensionError):
		c.JSON(http.StatusInternalServerError, resp)
	default:
		c.JSON(http.StatusBadGateway, resp)
	}
}

// handleHealth reports connectivity to the backing stores.
func (s *Server) handleHealth(c *gin.Context) {
	ctx := c.Request.Context()
	health := gin.H{"status": "ok"}
	status := http.StatusOK

	if err := s.docs.Ping(ctx); err != nil {
		health["status"] = "degraded"
		health["document_store"] = err.Error()
		status = http.StatusServiceUnavailable
	} else {
		health["document_store"] = "ok"
	}

	if s.vectors == nil {
		health["vector_index"] = "not configured"
	} else if stats, err := s.vectors.Stats(ctx); err != nil {
		health["status"] = "degraded"
		health["vector_index"] = err.Error()
	} else {
		health["vector_index"] = gin.H{
			"dimension":   stats.Dimension,
			"total_count": stats.TotalVectorCount,
			"namespaces":  stats.Namespaces,
		}
	}

	c.JSON(status, health)
}

// Run serves HTTP until the context is cancelled, then drains in-flight
// requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
