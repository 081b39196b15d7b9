package handler

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/formgate/formgate/internal/model"
	"github.com/formgate/formgate/internal/relay"
	"github.com/formgate/formgate/internal/response"
	"github.com/formgate/formgate/internal/session"
	"github.com/formgate/formgate/internal/validate"
)

const (
	mockGreeting = "Thanks for the details! I'm reviewing your answers now — ask me anything about what an agent could do for your business."
	mockReply    = "Got it. I'll factor that in — what else should I know?"
	historyTail  = 10
)

// AgentSession handles POST /api/agent/session: validates the intake
// questionnaire, creates a conversation session, and relays the intake for
// first-time analysis with the slow budget.
func (h *Handler) AgentSession(c echo.Context) error {
	if denied, err := h.admit(c); denied {
		return err
	}

	var req validate.AgentSessionRequest
	if !bindJSON(c, &req) {
		return response.MalformedJSON(c)
	}
	if res := validate.Check(&req); !res.Valid {
		return response.InvalidFields(c, res.FieldMap())
	}
	if rejected, err := h.screen(c, req.HPToken, ""); rejected {
		return err
	}

	intake := map[string]any{
		"business_type": req.Intake.BusinessType,
		"goal":          req.Intake.Goal,
		"channels":      req.Intake.Channels,
		"budget":        req.Intake.Budget,
		"website":       req.Intake.Website,
		"email":         req.Intake.Email,
	}
	h.logSubmission(c, intake)
	sess := h.sessions.Create(intake)

	env := model.Envelope{
		Type:      "agent_session",
		Payload:   map[string]any{"intake": intake},
		SessionID: sess.ID,
		Meta:      h.meta(c, req.Page),
	}

	res := h.relay.Post(relayCtx(c), h.cfg.Webhook.AgentURL, env, sessionRelayOpts)
	switch {
	case res.Success:
		reply := relay.Normalize(res.Data)
		text := reply.Text
		if text == "" {
			text = mockGreeting
		}
		h.appendAssistant(sess.ID, text)
		fields := map[string]any{"session_id": sess.ID, "message": text}
		if reply.Text != "" {
			fields["reply"] = reply.Text
		}
		if reply.Analysis != nil {
			fields["analysis"] = reply.Analysis
		}
		if reply.Blocks != nil {
			fields["blocks"] = reply.Blocks
		}
		return response.OK(c, fields)
	case res.Kind == relay.FailNotConfigured:
		h.mockWarn(c)
		h.appendAssistant(sess.ID, mockGreeting)
		return response.OK(c, map[string]any{"session_id": sess.ID, "message": mockGreeting})
	default:
		// The session stays; the client may retry the first message later.
		return h.relayFailed(c, res)
	}
}

// AgentMessage handles POST /api/agent/message. The user message is appended
// before the relay call and is not rolled back on failure, so conversation
// history survives a failed assistant turn.
func (h *Handler) AgentMessage(c echo.Context) error {
	if denied, err := h.admit(c); denied {
		return err
	}

	var req validate.AgentMessageRequest
	if !bindJSON(c, &req) {
		return response.MalformedJSON(c)
	}
	if res := validate.Check(&req); !res.Valid {
		return response.InvalidFields(c, res.FieldMap())
	}

	sess, err := h.sessions.Get(req.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return response.SessionNotFound(c)
		}
		return response.ServerError(c)
	}

	if rejected, err := h.screen(c, req.HPToken, req.Message); rejected {
		return err
	}

	userMsg := model.Message{
		ID:        uuid.NewString(),
		Role:      model.RoleUser,
		Content:   req.Message,
		Timestamp: time.Now(),
	}
	if err := h.sessions.AppendMessage(sess.ID, userMsg); err != nil {
		return response.SessionNotFound(c)
	}

	history, _ := h.sessions.History(sess.ID, historyTail)
	env := model.Envelope{
		Type: "agent_message",
		Payload: map[string]any{
			"message": req.Message,
			"history": history,
			"intake":  sess.Intake,
		},
		SessionID: sess.ID,
		Meta:      h.meta(c, ""),
	}

	res := h.relay.Post(relayCtx(c), h.cfg.Webhook.AgentURL, env, messageRelayOpts)
	switch {
	case res.Success:
		reply := relay.Normalize(res.Data)
		text := reply.Text
		if text == "" {
			text = mockReply
		}
		h.appendAssistant(sess.ID, text)
		fields := map[string]any{"reply": text, "session_id": sess.ID}
		if reply.Blocks != nil {
			fields["blocks"] = reply.Blocks
		}
		return response.OK(c, fields)
	case res.Kind == relay.FailNotConfigured:
		h.mockWarn(c)
		h.appendAssistant(sess.ID, mockReply)
		return response.OK(c, map[string]any{"reply": mockReply, "session_id": sess.ID})
	default:
		// User message already appended; deliberately kept.
		return h.relayFailed(c, res)
	}
}

func (h *Handler) appendAssistant(sessionID, text string) {
	msg := model.Message{
		ID:        uuid.NewString(),
		Role:      model.RoleAssistant,
		Content:   text,
		Timestamp: time.Now(),
	}
	if err := h.sessions.AppendMessage(sessionID, msg); err != nil {
		h.log.Warn().Str("session_id", sessionID).Err(err).Msg("could not record assistant message")
	}
}
