package model

import "time"

// Message roles. Messages are immutable once appended; insertion order is
// conversation order.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single turn in an agent conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is a multi-turn agent conversation. It is owned and mutated
// exclusively by the session store.
type Session struct {
	ID           string         `json:"id"`
	Intake       map[string]any `json:"intake,omitempty"`
	Messages     []Message      `json:"messages"`
	CreatedAt    time.Time      `json:"created_at"`
	LastActivity time.Time      `json:"last_activity"`
}
