package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/formgate/formgate/internal/config"
	"github.com/formgate/formgate/internal/handler"
	"github.com/formgate/formgate/internal/metrics"
	"github.com/formgate/formgate/internal/ratelimit"
	"github.com/formgate/formgate/internal/relay"
	"github.com/formgate/formgate/internal/response"
	"github.com/formgate/formgate/internal/session"
)

const sweeperIdleFor = 24 * time.Hour

// Server holds the Echo app and the shared stateful singletons.
type Server struct {
	Echo     *echo.Echo
	Config   *config.Config
	log      zerolog.Logger
	limiter  *ratelimit.Limiter
	sessions *session.Store
}

// New builds the Echo server and wires the intake pipeline behind the public
// routes.
func New(cfg *config.Config, log zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	if len(cfg.Server.CORSAllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.Server.CORSAllowedOrigins,
			AllowMethods: []string{http.MethodPost, http.MethodGet, http.MethodOptions},
		}))
	}
	e.Use(requestLogger(log))
	e.HTTPErrorHandler = errorHandler(log)

	window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
	limiter := ratelimit.New(ratelimit.Policy{Window: window, Max: cfg.RateLimit.MaxRequests})
	limiter.SetPolicy("/api/agent/message", ratelimit.Policy{Window: window, Max: cfg.RateLimit.MessageMaxRequests})

	sessions := session.New(time.Duration(cfg.Session.TTLMinutes) * time.Minute)
	relayClient := relay.NewClient(cfg.Webhook.Secret, log)
	h := handler.New(cfg, log, limiter, sessions, relayClient)

	api := e.Group("/api")
	api.POST("/contact", h.Contact)
	api.POST("/lead", h.Lead)
	api.POST("/agent/session", h.AgentSession)
	api.POST("/agent/message", h.AgentMessage)
	api.POST("/order/confirm", h.OrderConfirm)

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{"ok": true})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	return &Server{Echo: e, Config: cfg, log: log, limiter: limiter, sessions: sessions}
}

// errorHandler is the outermost boundary: anything the pipeline did not map
// itself becomes a JSON error with ok:false and no internals leaked.
func errorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			status = he.Code
		}
		code := response.CodeServerError
		switch status {
		case http.StatusNotFound:
			code = "NOT_FOUND"
		case http.StatusMethodNotAllowed:
			code = "METHOD_NOT_ALLOWED"
		}
		if status >= 500 {
			log.Error().Str("route", c.Path()).Err(err).Msg("unhandled error")
		}
		_ = response.Fail(c, status, code, nil)
	}
}

// Start runs the HTTP server and the housekeeping sweepers. Blocks until the
// context is cancelled or the server fails; on cancel the server shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.limiter.StartSweeper(ctx, time.Hour, sweeperIdleFor)
	s.sessions.StartSweeper(ctx, time.Duration(s.Config.Session.SweepMinutes)*time.Minute)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	s.Echo.Server.ReadTimeout = time.Duration(s.Config.Server.ReadTimeout) * time.Second
	s.Echo.Server.WriteTimeout = time.Duration(s.Config.Server.WriteTimeout) * time.Second
	s.Echo.Server.IdleTimeout = time.Duration(s.Config.Server.IdleTimeout) * time.Second

	addr := ":" + s.Config.Server.Port
	s.log.Info().Str("addr", addr).Str("env", s.Config.Primary.Env).Msg("server starting")
	return s.Echo.Start(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.Echo.Shutdown(ctx)
}
