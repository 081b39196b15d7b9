// Package relay posts webhook envelopes to the configured upstream workflow
// engine with a bounded timeout, retries with exponential backoff, and
// failure classification.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/formgate/formgate/internal/metrics"
	"github.com/formgate/formgate/internal/model"
)

// Failure kinds. UpstreamConfig covers not-found/unauthorized responses that
// no retry can fix.
const (
	FailNone           = ""
	FailNotConfigured  = "not_configured"
	FailTimeout        = "timeout"
	FailUpstreamConfig = "upstream_config"
	FailUpstream       = "upstream"
)

const maxResponseBytes = 1 << 20

// Options bound a single relay call. Routes pass their own budgets so
// per-route SLAs stay visible at the call site.
type Options struct {
	Timeout time.Duration
	Retries int
	Backoff time.Duration
}

// Result is the outcome of one relay call, retries included.
type Result struct {
	Success bool
	Status  int
	Data    any
	Kind    string
	Err     string
}

// Client is a reusable webhook relay. The underlying http.Client carries no
// timeout of its own; each call is bounded by its per-attempt context.
type Client struct {
	http   *http.Client
	secret string
	log    zerolog.Logger
	sleep  func(time.Duration)
}

// NewClient creates a relay client. secret, when non-empty, is sent as
// X-Webhook-Secret on every request.
func NewClient(secret string, log zerolog.Logger) *Client {
	return &Client{
		http:   &http.Client{},
		secret: secret,
		log:    log.With().Str("component", "relay").Logger(),
		sleep:  time.Sleep,
	}
}

// Post sends the envelope to url. A blank url short-circuits to a
// not-configured failure so routes can run in mock mode without a network
// call. Timeouts and not-found/unauthorized responses return immediately;
// other failures retry with backoff * 2^attempt.
func (c *Client) Post(ctx context.Context, url string, env model.Envelope, opts Options) Result {
	if url == "" {
		return Result{Kind: FailNotConfigured, Err: "webhook url not configured"}
	}

	body, err := json.Marshal(env)
	if err != nil {
		return Result{Kind: FailUpstream, Err: "encode envelope: " + err.Error()}
	}

	start := time.Now()
	defer func() {
		metrics.RelayDuration.Observe(time.Since(start).Seconds())
	}()

	var last Result
	for attempt := 0; attempt <= opts.Retries; attempt++ {
		res, retryable := c.attempt(ctx, url, body, opts.Timeout)
		if res.Success || !retryable {
			metrics.RelayAttempts.WithLabelValues(outcome(res)).Inc()
			return res
		}
		last = res
		metrics.RelayAttempts.WithLabelValues(outcome(res)).Inc()
		if attempt < opts.Retries {
			delay := opts.Backoff * (1 << attempt)
			c.log.Warn().Str("kind", res.Kind).Int("attempt", attempt+1).
				Dur("backoff", delay).Msg("relay attempt failed, retrying")
			c.sleep(delay)
		}
	}
	return last
}

// attempt performs one POST. retryable is false for outcomes the caller must
// not retry: success, timeout, and upstream configuration errors.
func (c *Client) attempt(ctx context.Context, url string, body []byte, timeout time.Duration) (Result, bool) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{Kind: FailUpstream, Err: "build request: " + err.Error()}, false
	}
	req.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		req.Header.Set("X-Webhook-Secret", c.secret)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() == context.DeadlineExceeded {
			return Result{Kind: FailTimeout, Err: "upstream timed out"}, false
		}
		return Result{Kind: FailUpstream, Status: http.StatusBadGateway, Err: err.Error()}, true
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		// The deadline can fire mid-body after a 2xx status line.
		if errors.Is(err, context.DeadlineExceeded) || reqCtx.Err() == context.DeadlineExceeded {
			return Result{Kind: FailTimeout, Err: "upstream timed out"}, false
		}
		return Result{Kind: FailUpstream, Status: resp.StatusCode,
			Err: "read response: " + err.Error()}, true
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return Result{Success: true, Status: resp.StatusCode, Data: parseBody(raw)}, false
	}

	switch resp.StatusCode {
	case http.StatusNotFound, http.StatusUnauthorized, http.StatusForbidden:
		return Result{Kind: FailUpstreamConfig, Status: resp.StatusCode,
			Err: "upstream rejected request: " + resp.Status}, false
	}
	return Result{Kind: FailUpstream, Status: resp.StatusCode,
		Err: "upstream error: " + resp.Status}, true
}

// parseBody tolerates empty or non-JSON upstream bodies; webhooks may
// legitimately return nothing.
func parseBody(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}
	}
	var data any
	if err := json.Unmarshal(raw, &data); err != nil {
		return map[string]any{}
	}
	return data
}

func outcome(r Result) string {
	if r.Success {
		return "success"
	}
	return r.Kind
}
