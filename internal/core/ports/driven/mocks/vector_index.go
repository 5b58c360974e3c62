package mocks

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
)

// MockVectorIndex is a brute-force in-memory VectorIndex for testing, with
// failure injection for the unavailable-backend paths.
type MockVectorIndex struct {
	mu         sync.RWMutex
	dimensions int
	order      []string
	entries    map[string]domain.IndexEntry
	failNext   bool
}

// NewMockVectorIndex creates an empty MockVectorIndex
func NewMockVectorIndex() *MockVectorIndex {
	return &MockVectorIndex{entries: make(map[string]domain.IndexEntry)}
}

func (m *MockVectorIndex) Reset(ctx context.Context, dimensions int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	m.dimensions = dimensions
	m.order = nil
	m.entries = make(map[string]domain.IndexEntry)
	return nil
}

func (m *MockVectorIndex) Upsert(ctx context.Context, entry domain.IndexEntry) error {
	return m.UpsertBatch(ctx, []domain.IndexEntry{entry})
}

func (m *MockVectorIndex) UpsertBatch(ctx context.Context, entries []domain.IndexEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.takeFailure(); err != nil {
		return err
	}
	for _, e := range entries {
		if m.dimensions > 0 && len(e.Embedding) != m.dimensions {
			return domain.ErrDimensionMismatch
		}
		if _, seen := m.entries[e.Document.ID]; !seen {
			m.order = append(m.order, e.Document.ID)
		}
		m.entries[e.Document.ID] = e
	}
	return nil
}

func (m *MockVectorIndex) Search(ctx context.Context, vector []float32, k int) ([]domain.ScoredDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.failNext {
		m.failNext = false
		return nil, fmt.Errorf("%w: connection refused", domain.ErrIndexUnavailable)
	}
	if k <= 0 {
		return []domain.ScoredDocument{}, nil
	}

	scored := make([]domain.ScoredDocument, 0, len(m.order))
	for _, id := range m.order {
		e := m.entries[id]
		scored = append(scored, domain.ScoredDocument{Document: e.Document, Score: cosine(e.Embedding, vector)})
	}
	// Stable keeps insertion order as the tie-break
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k < len(scored) {
		scored = scored[:k]
	}
	return scored, nil
}

func (m *MockVectorIndex) HealthCheck(ctx context.Context) error { return nil }

// Len returns the number of stored entries
func (m *MockVectorIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// SetFailNext makes the next index operation fail with ErrIndexUnavailable
func (m *MockVectorIndex) SetFailNext(fail bool) { m.failNext = fail }

func (m *MockVectorIndex) takeFailure() error {
	if m.failNext {
		m.failNext = false
		return fmt.Errorf("%w: connection refused", domain.ErrIndexUnavailable)
	}
	return nil
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
