// Package server exposes the help engine over a local HTTP/WebSocket API.
// The browser-side renderers (help panel, tooltip bubble, role selector) are
// its consumers; none of the rendering lives here.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"visionhelp/internal/content"
	"visionhelp/internal/helpctx"
	"visionhelp/internal/logging"
	"visionhelp/internal/observability"
)

// Config configures the API server.
type Config struct {
	Host         string
	Port         int
	EnableCORS   bool
	Debug        bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Host:         "localhost",
		Port:         8090,
		EnableCORS:   true,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server wires the tracker and resolver to HTTP routes.
type Server struct {
	tracker  *helpctx.Tracker
	resolver *content.Resolver
	metrics  *observability.Metrics
	logger   logging.Logger

	engine     *gin.Engine
	httpServer *http.Server
	upgrader   websocket.Upgrader
	startTime  time.Time
}

// Option customizes the server.
type Option func(*Server)

// WithMetrics exposes the collector at /metrics.
func WithMetrics(metrics *observability.Metrics) Option {
	return func(s *Server) { s.metrics = metrics }
}

// WithLogger sets the server logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *Server) { s.logger = logging.OrNop(logger) }
}

// New creates the API server around a tracker and resolver.
func New(tracker *helpctx.Tracker, resolver *content.Resolver, cfg Config, opts ...Option) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())

	if cfg.EnableCORS {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
		corsConfig.AllowWebSockets = true
		engine.Use(cors.New(corsConfig))
	}

	s := &Server{
		tracker:  tracker,
		resolver: resolver,
		logger:   logging.Nop(),
		engine:   engine,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The engine binds to localhost and serves a dashboard on
			// another origin, so cross-origin upgrades are expected.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/api/health", s.handleHealth)

	s.engine.GET("/api/roles", s.handleRoles)
	s.engine.GET("/api/context", s.handleGetContext)
	s.engine.PUT("/api/context/role", s.handleSetRole)
	s.engine.PUT("/api/context/page", s.handleSetPage)
	s.engine.PUT("/api/context/section", s.handleSetSection)
	s.engine.POST("/api/context/interaction", s.handleInteraction)

	s.engine.GET("/api/help", s.handleResolveCurrent)
	s.engine.GET("/api/help/:key", s.handleResolve)
	s.engine.GET("/api/tooltip/:page/:element", s.handleTooltip)
	s.engine.POST("/api/preload", s.handlePreload)

	s.engine.PUT("/api/source", s.handleSetSource)
	s.engine.GET("/api/cache/stats", s.handleCacheStats)
	s.engine.DELETE("/api/cache", s.handleClearCache)
	s.engine.DELETE("/api/cache/expired", s.handleClearExpired)

	s.engine.GET("/ws/context", s.handleContextStream)

	if s.metrics != nil {
		s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
}

// Handler exposes the route tree for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("help engine listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
