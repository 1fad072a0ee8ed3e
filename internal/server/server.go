package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/datasaur/datasaur-mcp/internal/config"
	"github.com/datasaur/datasaur-mcp/internal/logger"
	"github.com/datasaur/datasaur-mcp/internal/storage"
	"github.com/datasaur/datasaur-mcp/internal/tools"
	"github.com/gin-gonic/gin"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// ServerName is the name announced to MCP clients
const ServerName = "Datasaur API Processor"

// UsageHistory reads recorded endpoint usage
type UsageHistory interface {
	History(days int) ([]storage.UsageRecord, error)
}

// Server hosts the tool service over stdio or streamable HTTP
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	buffer  *logger.LogBuffer
	usage   UsageHistory
	mcp     *mcp.Server
	router  *gin.Engine
	version string
}

// New creates a new server instance with every tool registered
func New(cfg *config.Config, log *zap.Logger, svc *tools.Service, buffer *logger.LogBuffer, version string) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if svc == nil {
		return nil, fmt.Errorf("tool service is required")
	}
	if log == nil {
		log = zap.NewNop()
	}
	if version == "" {
		version = "dev"
	}

	s := &Server{
		cfg:     cfg,
		logger:  log,
		buffer:  buffer,
		version: version,
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)
	svc.Register(s.mcp)

	return s, nil
}

// WithUsage exposes recorded usage at GET /usage. Call before Router.
func (s *Server) WithUsage(u UsageHistory) *Server {
	s.usage = u
	return s
}

// MCP returns the underlying MCP server
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// RunStdio serves MCP on stdin/stdout until the client disconnects or ctx is done
func (s *Server) RunStdio(ctx context.Context) error {
	s.logger.Info("Serving MCP over stdio", zap.String("version", s.version))
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stdio transport: %w", err)
	}
	return nil
}

// Router returns the gin engine for HTTP mode, building it on first use
func (s *Server) Router() *gin.Engine {
	if s.router == nil {
		gin.SetMode(s.cfg.HTTP.Mode)
		s.router = gin.New()
		s.setupMiddleware()
		s.setupRoutes()
	}
	return s.router
}

// HTTPServer returns an http.Server bound to the configured address
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.Addr(),
		Handler:      s.Router(),
		ReadTimeout:  s.cfg.HTTP.ReadTimeout,
		WriteTimeout: s.cfg.HTTP.WriteTimeout,
	}
}

// Addr is the host:port the HTTP transport listens on
func (s *Server) Addr() string {
	return s.cfg.HTTP.Host + ":" + strconv.Itoa(s.cfg.HTTP.Port)
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggerMiddleware())

	if s.cfg.HTTP.EnableCORS {
		s.router.Use(s.corsMiddleware())
	}
}

func (s *Server) setupRoutes() {
	s.router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/ping", s.ping)

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcp
	}, nil)

	auth := s.router.Group("/")
	auth.Use(s.authMiddleware())
	{
		auth.Any(s.cfg.HTTP.Path, gin.WrapH(handler))
		auth.GET("/logs", s.getLogs)
		auth.DELETE("/logs", s.clearLogs)
		auth.GET("/usage", s.getUsage)
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"name":    ServerName,
		"version": s.version,
	})
}

func (s *Server) ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func (s *Server) getLogs(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
		return
	}

	entries := []logger.LogEntry{}
	if s.buffer != nil {
		entries = append(entries, s.buffer.GetRecent(limit)...)
	}
	c.JSON(http.StatusOK, gin.H{"logs": entries, "count": len(entries)})
}

func (s *Server) clearLogs(c *gin.Context) {
	if s.buffer != nil {
		s.buffer.Clear()
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) getUsage(c *gin.Context) {
	if s.usage == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "usage recording is disabled"})
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
		return
	}

	records, err := s.usage.History(days)
	if err != nil {
		s.logger.Error("Failed to read usage", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read usage"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days, "records": records})
}
