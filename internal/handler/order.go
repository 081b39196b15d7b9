package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/formgate/formgate/internal/model"
	"github.com/formgate/formgate/internal/relay"
	"github.com/formgate/formgate/internal/response"
	"github.com/formgate/formgate/internal/validate"
)

// OrderConfirm handles POST /api/order/confirm. Upstream failure is
// downgraded to a soft success: losing a purchase confirmation is worse than
// losing the downstream notification.
func (h *Handler) OrderConfirm(c echo.Context) error {
	if denied, err := h.admit(c); denied {
		return err
	}

	var req validate.OrderConfirmRequest
	if !bindJSON(c, &req) {
		return response.MalformedJSON(c)
	}

	if res := validate.Check(&req); !res.Valid {
		// The honeypot is a hard 400 here; everything else is reported as a
		// 422 errors array per the order flow's contract.
		if res.Has("hp_token") {
			h.log.Warn().Str("route", c.Path()).Msg("order confirmation honeypot filled")
			return response.Fail(c, http.StatusBadRequest, response.CodeInvalidInput, nil)
		}
		return response.Fail(c, http.StatusUnprocessableEntity, response.CodeInvalidInput, map[string]any{
			"errors": res.Errors,
		})
	}

	data := map[string]any{
		"order_id": req.OrderID,
		"email":    req.Email,
		"product":  req.Product,
	}
	h.logSubmission(c, data)

	env := model.Envelope{Type: "order_confirm", Data: data, Meta: h.meta(c, "")}

	res := h.relay.Post(relayCtx(c), h.cfg.Webhook.OrderURL, env, orderRelayOpts)
	if res.Success {
		return response.OK(c, nil)
	}
	if res.Kind == relay.FailNotConfigured {
		h.mockWarn(c)
	} else {
		h.log.Error().Str("route", c.Path()).Str("kind", res.Kind).
			Int("status", res.Status).Str("err", res.Err).Msg("order webhook failed, soft success")
	}
	return response.OK(c, map[string]any{"mock": true})
}
