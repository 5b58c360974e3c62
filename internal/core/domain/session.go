package domain

import "time"

// Role identifies the author of a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message within a session. Turns are append-only and never
// mutated or removed.
type Turn struct {
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTurn creates a turn stamped with the current time.
func NewTurn(role Role, text string) Turn {
	return Turn{Role: role, Text: text, Timestamp: time.Now().UTC()}
}

// Session is one user's ongoing conversation, identified by an opaque ID.
// Sessions live only in process-scoped (or optionally Redis-backed) storage;
// durability across restarts is not guaranteed.
type Session struct {
	ID        string    `json:"id"`
	Turns     []Turn    `json:"turns"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatRequest is the inbound chat API payload. An absent session ID requests
// a new session.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// Validate checks the request for required fields.
func (r ChatRequest) Validate() error {
	if r.Message == "" {
		return ErrInvalidInput
	}
	return nil
}

// ChatResponse is the outbound chat API payload. SessionID echoes the request
// session or carries the newly created one.
type ChatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"session_id"`
}
