// Package memoryvec provides a brute-force in-process vector index. It is the
// fallback backend when no Redis URL is configured, and the reference
// implementation for the similarity semantics of the Redis adapter: cosine
// similarity, descending order, insertion order as the tie-break.
package memoryvec

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
	"github.com/futureme-labs/futureme-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorIndex = (*Index)(nil)

// Index implements driven.VectorIndex in memory. Safe for concurrent reads
// during writes; each upsert is atomic under the write lock.
type Index struct {
	mu         sync.RWMutex
	dimensions int
	order      []string
	entries    map[string]domain.IndexEntry
}

// NewIndex creates an empty Index
func NewIndex() *Index {
	return &Index{entries: make(map[string]domain.IndexEntry)}
}

// Reset drops all entries and fixes the dimension for the next run
func (x *Index) Reset(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return domain.ErrDimensionMismatch
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.dimensions = dimensions
	x.order = nil
	x.entries = make(map[string]domain.IndexEntry)
	return nil
}

// Upsert writes one entry, replacing any entry with the same document ID
func (x *Index) Upsert(ctx context.Context, entry domain.IndexEntry) error {
	return x.UpsertBatch(ctx, []domain.IndexEntry{entry})
}

// UpsertBatch writes entries in order
func (x *Index) UpsertBatch(ctx context.Context, entries []domain.IndexEntry) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, e := range entries {
		if x.dimensions > 0 && len(e.Embedding) != x.dimensions {
			return domain.ErrDimensionMismatch
		}
		if _, seen := x.entries[e.Document.ID]; !seen {
			x.order = append(x.order, e.Document.ID)
		}
		x.entries[e.Document.ID] = e
	}
	return nil
}

// Search returns up to k entries by descending cosine similarity. Equal
// scores keep insertion order.
func (x *Index) Search(ctx context.Context, vector []float32, k int) ([]domain.ScoredDocument, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	if k <= 0 || len(x.order) == 0 {
		return []domain.ScoredDocument{}, nil
	}

	scored := make([]domain.ScoredDocument, 0, len(x.order))
	for _, id := range x.order {
		e := x.entries[id]
		scored = append(scored, domain.ScoredDocument{
			Document: e.Document,
			Score:    cosine(e.Embedding, vector),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}

// HealthCheck always succeeds for the in-process index
func (x *Index) HealthCheck(ctx context.Context) error { return nil }

// Len returns the number of stored entries
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
