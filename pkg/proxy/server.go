// Package proxy implements the chat proxy that sits between PagePilot and
// a local Ollama server. It accepts chat requests on /api/chat, forwards
// them upstream as non-streaming requests and mirrors the reply.
//
//	cfg, _ := proxy.LoadConfig()
//	srv, _ := proxy.NewServer(cfg, zap.NewExample())
//	log.Fatal(srv.Run())
package proxy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-resty/resty/v2"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

// Upstream reports the version of the model server behind the proxy.
type Upstream interface {
	Version(ctx context.Context) (string, error)
}

// Server is the proxy HTTP server.
type Server struct {
	cfg      *Config
	router   *gin.Engine
	logger   *zap.Logger
	metrics  *Metrics
	client   *resty.Client
	upstream Upstream
	started  time.Time

	httpServer *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithUpstream replaces the Ollama API client used by /status.
func WithUpstream(u Upstream) Option {
	return func(s *Server) {
		s.upstream = u
	}
}

// WithHTTPClient replaces the client used to forward chat requests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Server) {
		s.client = resty.NewWithClient(c)
	}
}

// NewServer builds the router.
func NewServer(cfg *Config, logger *zap.Logger, opts ...Option) (*Server, error) {
	target, err := url.Parse(cfg.Target)
	if err != nil || target.Host == "" {
		return nil, fmt.Errorf("invalid proxy target %q", cfg.Target)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		metrics:  NewMetrics(),
		client:   resty.New(),
		upstream: api.NewClient(target, http.DefaultClient),
		started:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.client.
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "LLM-Proxy/1.0")

	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.CustomRecovery(s.recover))
	router.Use(s.accessLog())
	router.Use(s.metrics.Middleware())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Content-Type", "Authorization", "Accept", "Origin"},
		MaxAge:          12 * time.Hour,
	}))
	router.Use(s.limitBody())

	router.GET("/health", s.handleHealth)
	router.GET("/status", s.handleStatus)
	router.POST("/api/chat", s.handleChat)
	router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	router.NoRoute(s.handleNotFound)

	s.router = router
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Router exposes the gin engine.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Run serves until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("LLM proxy server started",
		zap.String("port", s.cfg.Port),
		zap.String("proxy_url", fmt.Sprintf("http://localhost:%s/api/chat", s.cfg.Port)),
		zap.String("target", s.cfg.ChatURL()),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Gracefully shutting down")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) recover(c *gin.Context, recovered any) {
	s.logger.Error("panic in handler",
		zap.Any("panic", recovered),
		zap.String("path", c.Request.URL.Path),
	)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal server error",
		"details": fmt.Sprint(recovered),
	})
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		s.logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.Int("response_size", c.Writer.Size()),
		)
	}
}

func (s *Server) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.cfg.BodyLimit > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.BodyLimit)
		}
		c.Next()
	}
}
