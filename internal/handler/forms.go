package handler

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/formgate/formgate/internal/model"
	"github.com/formgate/formgate/internal/relay"
	"github.com/formgate/formgate/internal/response"
	"github.com/formgate/formgate/internal/validate"
)

const (
	contactThanks = "Thanks! We received your message and will get back to you shortly."
	leadThanks    = "Thanks! Your request is in; we will reach out within one business day."
	mockMessage   = "mock message"
)

// Contact handles POST /api/contact.
func (h *Handler) Contact(c echo.Context) error {
	if denied, err := h.admit(c); denied {
		return err
	}

	var req validate.ContactRequest
	if !bindJSON(c, &req) {
		return response.MalformedJSON(c)
	}

	if req.SelfTest && h.cfg.Development() {
		return h.selfTest(c, validate.ContactRequest{})
	}

	if res := validate.Check(&req); !res.Valid {
		return response.InvalidFields(c, res.FieldMap())
	}
	if rejected, err := h.screen(c, req.HPToken, req.Message); rejected {
		return err
	}

	data := map[string]any{
		"name":    req.Name,
		"email":   req.Email,
		"phone":   req.Phone,
		"message": req.Message,
	}
	h.logSubmission(c, data)

	env := model.Envelope{Type: "contact", Data: data, Meta: h.meta(c, req.Page)}
	return h.finishForm(c, h.cfg.Webhook.ContactURL, env, contactThanks)
}

// Lead handles POST /api/lead.
func (h *Handler) Lead(c echo.Context) error {
	if denied, err := h.admit(c); denied {
		return err
	}

	var req validate.LeadRequest
	if !bindJSON(c, &req) {
		return response.MalformedJSON(c)
	}

	if req.SelfTest && h.cfg.Development() {
		return h.selfTest(c, validate.LeadRequest{})
	}

	if res := validate.Check(&req); !res.Valid {
		return response.InvalidFields(c, res.FieldMap())
	}
	if rejected, err := h.screen(c, req.HPToken, req.Message); rejected {
		return err
	}

	data := map[string]any{
		"name":         req.Name,
		"email":        req.Email,
		"message":      req.Message,
		"service_type": req.ServiceType,
	}
	h.logSubmission(c, data)

	env := model.Envelope{Type: "lead", Data: data, Meta: h.meta(c, req.Page)}
	return h.finishForm(c, h.cfg.Webhook.LeadURL, env, leadThanks)
}

// finishForm relays a form envelope and shapes the {ok, id, message}
// response. Mock mode (unconfigured webhook) synthesizes a success.
func (h *Handler) finishForm(c echo.Context, url string, env model.Envelope, fallback string) error {
	id := uuid.NewString()
	res := h.relay.Post(relayCtx(c), url, env, formRelayOpts)
	switch {
	case res.Success:
		msg := relay.Normalize(res.Data).Text
		if msg == "" {
			msg = fallback
		}
		return response.OK(c, map[string]any{"id": id, "message": msg})
	case res.Kind == relay.FailNotConfigured:
		h.mockWarn(c)
		return response.OK(c, map[string]any{"id": id, "message": mockMessage})
	default:
		return h.relayFailed(c, res)
	}
}

// selfTest echoes the route's expected schema. Development-only; lets the
// frontend verify field names without touching the upstream.
func (h *Handler) selfTest(c echo.Context, schema any) error {
	return response.OK(c, map[string]any{
		"self_test": true,
		"schema":    schema,
	})
}
