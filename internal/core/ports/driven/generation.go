package driven

import (
	"context"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
)

// GenerationService sends a composed prompt to an external language model and
// returns the reply text. One call per turn; the core performs no retries -
// callers may wrap *Unavailable failures with bounded backoff.
type GenerationService interface {
	// Generate produces reply text for a composed prompt
	Generate(ctx context.Context, prompt *domain.Prompt) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the generation service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the generation service
	Close() error
}
