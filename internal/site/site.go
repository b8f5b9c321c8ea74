package site

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"redbird/internal/pipeline"
)

//go:embed templates/index.html
var defaultPage []byte

// Runner runs one pipeline pass; *pipeline.Service implements it.
type Runner interface {
	Run(ctx context.Context) pipeline.Outcome
}

type Server struct {
	runner    Runner
	renderer  pipeline.Renderer
	page      []byte
	assetsDir string
	dataDir   string
	log       *zap.Logger
}

type Options struct {
	// PagePath overrides the embedded page template when set.
	PagePath  string
	AssetsDir string
	DataDir   string
}

func NewServer(runner Runner, renderer pipeline.Renderer, opts Options, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	page := defaultPage
	if opts.PagePath != "" {
		blob, err := os.ReadFile(opts.PagePath)
		if err != nil {
			return nil, fmt.Errorf("read page template: %w", err)
		}
		page = blob
	}
	return &Server{
		runner:    runner,
		renderer:  renderer,
		page:      page,
		assetsDir: opts.AssetsDir,
		dataDir:   opts.DataDir,
		log:       log,
	}, nil
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))
	s.RegisterRoutes(r)
	return r
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/", s.index)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/houses")
	api.GET("", s.listHouses)
	api.GET("/:slug", s.getHouse)

	if s.assetsDir != "" {
		r.Static("/assets", s.assetsDir)
	}
	if s.dataDir != "" {
		r.Static("/data", s.dataDir)
	}
}

// Page renders the full page for one pipeline pass.
func (s *Server) Page(ctx context.Context) ([]byte, pipeline.Outcome, error) {
	outcome := s.runner.Run(ctx)
	html, _, err := s.renderer.Mount(bytes.NewReader(s.page), outcome)
	if err != nil {
		return nil, outcome, err
	}
	return html, outcome, nil
}

func (s *Server) index(c *gin.Context) {
	html, _, err := s.Page(c.Request.Context())
	if err != nil {
		s.log.Error("render page", zap.Error(err))
		c.String(http.StatusInternalServerError, "page unavailable")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (s *Server) listHouses(c *gin.Context) {
	outcome := s.runner.Run(c.Request.Context())
	if outcome.Err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": pipeline.FailureMessage, "traceId": outcome.TraceID})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(outcome.Houses),
		"source":  outcome.Source,
		"traceId": outcome.TraceID,
		"houses":  outcome.Houses,
	})
}

func (s *Server) getHouse(c *gin.Context) {
	outcome := s.runner.Run(c.Request.Context())
	if outcome.Err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": pipeline.FailureMessage, "traceId": outcome.TraceID})
		return
	}
	house, ok := pipeline.BuildHouseIndex(outcome.Houses).Lookup(c.Param("slug"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, house)
}

// Build writes one rendered page to outPath.
func (s *Server) Build(ctx context.Context, outPath string) (pipeline.Outcome, error) {
	html, outcome, err := s.Page(ctx)
	if err != nil {
		return outcome, err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return outcome, err
	}
	if err := os.WriteFile(outPath, html, 0o644); err != nil {
		return outcome, err
	}
	s.log.Info("page built", zap.String("path", outPath), zap.Int("houses", len(outcome.Houses)), zap.String("trace_id", outcome.TraceID))
	return outcome, nil
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("site listening", zap.String("addr", addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down site")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}
