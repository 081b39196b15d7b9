package response

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Machine-readable error codes returned to clients.
const (
	CodeRateLimited  = "RATE_LIMITED"
	CodeInvalidInput = "INVALID_INPUT"
	CodeSpam         = "POTENTIAL_SPAM"
	CodeSessionMiss  = "SESSION_NOT_FOUND"
	CodeUpstream     = "UPSTREAM_UNAVAILABLE"
	CodeServerError  = "SERVER_ERROR"
)

// noStore marks every intake response uncacheable; none of them are
// idempotent-safe to cache.
func noStore(c echo.Context) {
	c.Response().Header().Set("Cache-Control", "no-store")
}

// OK sends 200 with ok:true merged into the given fields.
func OK(c echo.Context, fields map[string]any) error {
	noStore(c)
	body := make(map[string]any, len(fields)+1)
	body["ok"] = true
	for k, v := range fields {
		body[k] = v
	}
	return c.JSON(http.StatusOK, body)
}

// Fail sends an error response with ok:false and a machine-readable code.
// extra fields (field maps, retry hints) are merged into the body.
func Fail(c echo.Context, status int, code string, extra map[string]any) error {
	noStore(c)
	body := make(map[string]any, len(extra)+2)
	body["ok"] = false
	body["error"] = code
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(status, body)
}

// RateLimited sends 429 with the retry hint in milliseconds.
func RateLimited(c echo.Context, retryInMs int64) error {
	return Fail(c, http.StatusTooManyRequests, CodeRateLimited, map[string]any{
		"retry_in_ms": retryInMs,
	})
}

// MalformedJSON sends 415 for bodies that are not valid JSON.
func MalformedJSON(c echo.Context) error {
	return Fail(c, http.StatusUnsupportedMediaType, CodeInvalidInput, nil)
}

// InvalidFields sends 400 with the field→message map.
func InvalidFields(c echo.Context, fields map[string]string) error {
	return Fail(c, http.StatusBadRequest, CodeInvalidInput, map[string]any{
		"fields": fields,
	})
}

// Spam sends 422 for submissions the spam screen rejected.
func Spam(c echo.Context) error {
	return Fail(c, http.StatusUnprocessableEntity, CodeSpam, nil)
}

// SessionNotFound sends 404 for unknown or expired session ids.
func SessionNotFound(c echo.Context) error {
	return Fail(c, http.StatusNotFound, CodeSessionMiss, nil)
}

// Upstream sends the relay failure as 502, or passes through a meaningful
// upstream status such as 404/401.
func Upstream(c echo.Context, status int) error {
	if status == 0 || status < 400 {
		status = http.StatusBadGateway
	}
	return Fail(c, status, CodeUpstream, nil)
}

// ServerError sends a generic 500; internals never reach the client.
func ServerError(c echo.Context) error {
	return Fail(c, http.StatusInternalServerError, CodeServerError, nil)
}
