package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Goldziher/kreuzberg-go/internal/config"
	"github.com/Goldziher/kreuzberg-go/internal/kerr"
	"github.com/Goldziher/kreuzberg-go/pkg/kreuzberg"
)

// Version is stamped into /health and /info responses; set at build time
// via -ldflags.
var Version = "0.1.0"

// Config holds server configuration: listen address, read/write
// timeouts, and debug-mode request logging.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server is the HTTP API: multipart file upload in, ordered JSON
// extraction results out, plus health/info/cache-management endpoints.
type Server struct {
	config *Config
	router *gin.Engine
	engine *kreuzberg.Engine
}

// NewServer creates a new API server wired to engine.
func NewServer(config *Config, engine *kreuzberg.Engine) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config: config,
		router: router,
		engine: engine,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/info", s.handleInfo)
	s.router.POST("/extract", s.handleExtract)
	s.router.GET("/cache/stats", s.handleCacheStats)
	s.router.DELETE("/cache/clear", s.handleCacheClear)
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers (tests,
// httptest.NewServer).
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Version: Version})
}

func (s *Server) handleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{Version: Version, GoBackend: true})
}

// handleExtract serves POST /extract: one or more "files"
// multipart fields, an optional "config" JSON field, and a JSON array of
// ExtractionResult in submission order.
func (s *Server) handleExtract(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		writeError(c, http.StatusBadRequest, kerr.NewValidationError("failed to parse multipart form", err))
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		writeError(c, http.StatusBadRequest, kerr.NewValidationError("no files provided under the \"files\" field", nil))
		return
	}

	cfg := config.Default()
	if raw := form.Value["config"]; len(raw) > 0 && raw[0] != "" {
		parsed, err := config.FromJSONBytes([]byte(raw[0]))
		if err != nil {
			writeError(c, http.StatusBadRequest, err)
			return
		}
		cfg = parsed
	}

	contents := make([][]byte, len(files))
	mimeTypes := make([]string, len(files))
	for i, fh := range files {
		f, err := fh.Open()
		if err != nil {
			writeError(c, http.StatusBadRequest, kerr.NewIOError("failed to open uploaded file "+fh.Filename, err))
			return
		}
		data, readErr := io.ReadAll(f)
		f.Close()
		if readErr != nil {
			writeError(c, http.StatusBadRequest, kerr.NewIOError("failed to read uploaded file "+fh.Filename, readErr))
			return
		}
		contents[i] = data
		mimeType := fh.Header.Get("Content-Type")
		if mimeType == "application/octet-stream" {
			// Multipart writers fall back to octet-stream when the
			// client doesn't know better; leave it empty so content
			// sniffing decides instead.
			mimeType = ""
		}
		mimeTypes[i] = mimeType
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), kreuzberg.SubprocessTimeout(cfg))
	defer cancel()

	items := s.engine.BatchExtractBytes(ctx, contents, mimeTypes, cfg)

	resp := make(ExtractResponse, len(items))
	for i, item := range items {
		resp[i] = item.Result
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCacheStats(c *gin.Context) {
	stats, err := s.engine.Cache().GetStats()
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleCacheClear(c *gin.Context) {
	removed, freedMB, err := s.engine.Cache().Clear()
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}

	dir := ""
	if dc, ok := s.engine.Cache().(interface{ Dir() string }); ok {
		dir = dc.Dir()
	}

	c.JSON(http.StatusOK, CacheClearResponse{
		Directory:    dir,
		RemovedFiles: removed,
		FreedMB:      freedMB,
	})
}

// writeError maps a kreuzberg error onto an HTTP status and the standard
// {error_type, message, status_code} error body.
func writeError(c *gin.Context, status int, err error) {
	c.JSON(status, ErrorResponse{
		ErrorType:  errorType(err),
		Message:    err.Error(),
		StatusCode: status,
	})
}

func errorType(err error) string {
	switch {
	case errors.As(err, new(*kerr.ValidationError)):
		return "ValidationError"
	case errors.As(err, new(*kerr.UnsupportedFormatError)):
		return "UnsupportedFormatError"
	case errors.As(err, new(*kerr.IOError)):
		return "IOError"
	case errors.As(err, new(*kerr.ParsingError)):
		return "ParsingError"
	case errors.As(err, new(*kerr.OCRError)):
		return "OCRError"
	case errors.As(err, new(*kerr.CacheError)):
		return "CacheError"
	case errors.As(err, new(*kerr.SerializationError)):
		return "SerializationError"
	case errors.As(err, new(*kerr.MissingDependencyError)):
		return "MissingDependencyError"
	case errors.As(err, new(*kerr.PluginError)):
		return "PluginError"
	default:
		return "OtherError"
	}
}
