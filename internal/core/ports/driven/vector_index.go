package driven

import (
	"context"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
)

// VectorIndex stores (vector, document) entries and answers approximate
// nearest-neighbor queries. Entries are keyed by document ID; an upsert with
// an existing key replaces the entry. The similarity metric is fixed and
// identical between ingestion and query embeddings.
type VectorIndex interface {
	// Reset drops all entries and fixes the index dimension for the
	// following ingestion run. Rebuild is wholesale, never a diff.
	Reset(ctx context.Context, dimensions int) error

	// Upsert writes a single entry atomically
	Upsert(ctx context.Context, entry domain.IndexEntry) error

	// UpsertBatch writes entries one by one; each entry is atomic
	UpsertBatch(ctx context.Context, entries []domain.IndexEntry) error

	// Search returns up to k entries ordered by descending similarity.
	// An empty index yields an empty result, never an error.
	Search(ctx context.Context, vector []float32, k int) ([]domain.ScoredDocument, error)

	// HealthCheck verifies the index backend is available
	HealthCheck(ctx context.Context) error
}
