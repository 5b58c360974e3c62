package driving

import (
	"context"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
)

// IngestionService rebuilds the vector index from the history source
type IngestionService interface {
	// Run executes a full ingestion pass. Per-collection failures are
	// recorded in the summary and never abort the other collections;
	// embedding unavailability aborts the remainder of the run.
	Run(ctx context.Context) (*domain.IngestionSummary, error)
}
