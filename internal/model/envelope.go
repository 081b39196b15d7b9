package model

// Meta carries request context forwarded to the upstream workflow engine.
// The raw client address goes upstream only; logs see the hashed form.
type Meta struct {
	IP   string `json:"ip"`
	UA   string `json:"ua"`
	TS   string `json:"ts"`
	Page string `json:"page,omitempty"`
}

// Envelope is the JSON body posted to the upstream webhook. One envelope is
// built per request; retries resend the same envelope.
type Envelope struct {
	Type      string `json:"type"`
	Data      any    `json:"data,omitempty"`
	Payload   any    `json:"payload,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Meta      Meta   `json:"meta"`
}
