package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"contenthub/internal/config"
	"contenthub/internal/handlers"
	"contenthub/internal/metrics"
	"contenthub/internal/middleware"
)

const (
	healthRoute  = "/api/healthz"
	metricsRoute = "/api/metrics"
)

type HTTPServer struct {
	engine *gin.Engine
	srv    *http.Server
	tls    config.TLSConfig
	log    zerolog.Logger
}

// NewHTTPServer builds the engine and mounts every route under /api. A nil
// m disables request metrics and the metrics endpoint.
func NewHTTPServer(cfg *config.AppConfig, log zerolog.Logger, handlerSet handlers.HandlerSet, m *metrics.Metrics) *HTTPServer {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.RedirectTrailingSlash = true
	engine.RedirectFixedPath = true
	engine.HandleMethodNotAllowed = true
	engine.MaxMultipartMemory = 32 << 20

	chain := []gin.HandlerFunc{
		middleware.RequestID(),
		middleware.Logger(log, healthRoute, metricsRoute),
		middleware.Recovery(log),
		middleware.CORS(cfg.AllowCORSOrigins),
	}
	if m != nil {
		chain = append(chain, middleware.Metrics(m))
	}
	engine.Use(chain...)

	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "route not found"})
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method_not_allowed", "message": "method not allowed"})
	})

	api := engine.Group("/api")
	if m != nil {
		api.GET("/metrics", gin.WrapH(m.Handler()))
	}
	handlerSet.Register(api)

	return &HTTPServer{
		engine: engine,
		srv: &http.Server{
			Addr:              net.JoinHostPort(cfg.HTTP.Host, strconv.Itoa(cfg.HTTP.Port)),
			Handler:           engine,
			ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
			ReadTimeout:       cfg.HTTP.ReadTimeout,
			WriteTimeout:      cfg.HTTP.WriteTimeout,
			IdleTimeout:       cfg.HTTP.IdleTimeout,
		},
		tls: cfg.TLS,
		log: log,
	}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

// Start blocks until the listener fails or Shutdown is called.
func (s *HTTPServer) Start() error {
	s.log.Info().Str("addr", s.srv.Addr).Bool("tls", s.tls.Enabled).Msg("http server listening")

	var err error
	if s.tls.Enabled {
		err = s.srv.ListenAndServeTLS(s.tls.CertFile, s.tls.KeyFile)
	} else {
		err = s.srv.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("serve http: %w", err)
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("http server draining")
	return s.srv.Shutdown(ctx)
}
