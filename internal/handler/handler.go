// Package handler composes the intake pipeline for each public route:
// rate limit, JSON parsing, validation, spam screening, session tracking,
// webhook relay, and response shaping.
package handler

import (
	"context"
	"encoding/json"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/formgate/formgate/internal/config"
	"github.com/formgate/formgate/internal/metrics"
	"github.com/formgate/formgate/internal/model"
	"github.com/formgate/formgate/internal/pii"
	"github.com/formgate/formgate/internal/ratelimit"
	"github.com/formgate/formgate/internal/relay"
	"github.com/formgate/formgate/internal/response"
	"github.com/formgate/formgate/internal/session"
	"github.com/formgate/formgate/internal/spam"
)

// Per-route relay budgets. The new-session call triggers a heavier first-time
// analysis upstream, so it gets a longer timeout and more retries than the
// message call.
var (
	sessionRelayOpts = relay.Options{Timeout: 20 * time.Second, Retries: 2, Backoff: 500 * time.Millisecond}
	messageRelayOpts = relay.Options{Timeout: 10 * time.Second, Retries: 1, Backoff: 300 * time.Millisecond}
	formRelayOpts    = relay.Options{Timeout: 8 * time.Second, Retries: 2, Backoff: 400 * time.Millisecond}
	orderRelayOpts   = relay.Options{Timeout: 8 * time.Second, Retries: 1, Backoff: 400 * time.Millisecond}
)

// Handler holds the pipeline dependencies shared by all routes.
type Handler struct {
	cfg      *config.Config
	log      zerolog.Logger
	limiter  *ratelimit.Limiter
	sessions *session.Store
	relay    *relay.Client
}

// New wires a Handler. All dependencies are injected so tests can swap the
// session store or point the relay at an httptest server via config.
func New(cfg *config.Config, log zerolog.Logger, limiter *ratelimit.Limiter, sessions *session.Store, rc *relay.Client) *Handler {
	return &Handler{
		cfg:      cfg,
		log:      log.With().Str("component", "handler").Logger(),
		limiter:  limiter,
		sessions: sessions,
		relay:    rc,
	}
}

// bindJSON decodes the request body into dst. Malformed JSON is a client
// error; handlers answer it with 415.
func bindJSON(c echo.Context, dst any) bool {
	return json.NewDecoder(c.Request().Body).Decode(dst) == nil
}

// relayCtx detaches the relay call from the client connection: if the caller
// disconnects mid-request the upstream call still completes, so any session
// state it produces stays consistent.
func relayCtx(c echo.Context) context.Context {
	return context.WithoutCancel(c.Request().Context())
}

func (h *Handler) meta(c echo.Context, page string) model.Meta {
	if page == "" {
		page = c.Request().Referer()
	}
	return model.Meta{
		IP:   c.RealIP(),
		UA:   c.Request().UserAgent(),
		TS:   time.Now().UTC().Format(time.RFC3339),
		Page: page,
	}
}

// screen runs the spam screen. When rejected is true the 422 has already
// been written and the handler must return err. Soft signals (suspicious
// user agent) are logged for audit and let through.
func (h *Handler) screen(c echo.Context, honeypot, freeText string) (rejected bool, err error) {
	verdict := spam.Check(honeypot, c.Request().UserAgent(), freeText)
	if verdict.Spam {
		metrics.SpamRejections.WithLabelValues(c.Path(), verdict.Reason).Inc()
		h.log.Warn().Str("route", c.Path()).Str("reason", verdict.Reason).Msg("submission rejected as spam")
		return true, response.Spam(c)
	}
	if verdict.Reason != "" {
		h.log.Warn().Str("route", c.Path()).Str("reason", verdict.Reason).Msg("suspicious submission allowed")
	}
	return false, nil
}

// admit runs the rate limiter. When denied is true the 429 with its retry
// hint has already been written.
func (h *Handler) admit(c echo.Context) (denied bool, err error) {
	d := h.limiter.Admit(c.RealIP(), c.Path())
	if !d.Allowed {
		return true, response.RateLimited(c, d.RetryIn.Milliseconds())
	}
	return false, nil
}

func (h *Handler) relayFailed(c echo.Context, res relay.Result) error {
	h.log.Error().Str("route", c.Path()).Str("kind", res.Kind).
		Int("status", res.Status).Str("err", res.Err).Msg("webhook relay failed")
	// Only configuration rejections (404/401/403) carry a status the client
	// can act on; transient failures and timeouts are this service's 502.
	if res.Kind == relay.FailUpstreamConfig {
		return response.Upstream(c, res.Status)
	}
	return response.Upstream(c, 0)
}

// logSubmission records an accepted payload with PII hashed out.
func (h *Handler) logSubmission(c echo.Context, data map[string]any) {
	h.log.Debug().Str("route", c.Path()).Fields(pii.Sanitize(data)).Msg("submission accepted")
}

func (h *Handler) mockWarn(c echo.Context) {
	h.log.Warn().Str("route", c.Path()).Msg("webhook not configured, serving mock response")
}
