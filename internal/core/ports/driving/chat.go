package driving

import (
	"context"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
)

// ChatService handles one chat turn end to end
type ChatService interface {
	// Chat runs a full turn: retrieve evidence, compose, generate, record.
	// On failure the session is left exactly as it was before the call.
	Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatResponse, error)
}
