package memoryvec

import (
	"context"
	"testing"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
)

func entry(id string, vec ...float32) domain.IndexEntry {
	return domain.IndexEntry{
		Document:  domain.Document{ID: id, Text: "doc " + id},
		Embedding: vec,
	}
}

func TestIndex_SearchRanking(t *testing.T) {
	x := NewIndex()
	ctx := context.Background()
	if err := x.Reset(ctx, 2); err != nil {
		t.Fatalf("reset: %v", err)
	}

	_ = x.UpsertBatch(ctx, []domain.IndexEntry{
		entry("far", 0, 1),
		entry("near", 1, 0),
		entry("mid", 1, 1),
	})

	results, err := x.Search(ctx, []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[0].Document.ID != "near" || results[1].Document.ID != "mid" || results[2].Document.ID != "far" {
		t.Errorf("unexpected ranking: %s %s %s",
			results[0].Document.ID, results[1].Document.ID, results[2].Document.ID)
	}
	if results[0].Score < results[1].Score || results[1].Score < results[2].Score {
		t.Error("scores must be descending")
	}
}

func TestIndex_EqualScoresKeepInsertionOrder(t *testing.T) {
	x := NewIndex()
	ctx := context.Background()
	_ = x.Reset(ctx, 2)

	// Parallel vectors: identical cosine similarity to any query
	_ = x.UpsertBatch(ctx, []domain.IndexEntry{
		entry("first", 1, 0),
		entry("second", 2, 0),
		entry("third", 3, 0),
	})

	results, err := x.Search(ctx, []float32{1, 0}, 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	got := []string{results[0].Document.ID, results[1].Document.ID, results[2].Document.ID}
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("tie-break broke insertion order: got %v, want %v", got, want)
		}
	}
}

func TestIndex_EmptySearch(t *testing.T) {
	x := NewIndex()
	ctx := context.Background()
	_ = x.Reset(ctx, 4)

	results, err := x.Search(ctx, []float32{1, 2, 3, 4}, 10)
	if err != nil {
		t.Fatalf("empty index must not error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected empty result, got %d", len(results))
	}
}

func TestIndex_KExceedsSize(t *testing.T) {
	x := NewIndex()
	ctx := context.Background()
	_ = x.Reset(ctx, 1)
	_ = x.Upsert(ctx, entry("only", 1))

	results, err := x.Search(ctx, []float32{1}, 99)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
}

func TestIndex_UpsertReplacesSameKey(t *testing.T) {
	x := NewIndex()
	ctx := context.Background()
	_ = x.Reset(ctx, 1)

	_ = x.Upsert(ctx, entry("dup", 1))
	_ = x.Upsert(ctx, entry("dup", 1))

	if x.Len() != 1 {
		t.Errorf("expected same-key upsert to replace, got %d entries", x.Len())
	}
}

func TestIndex_DimensionMismatch(t *testing.T) {
	x := NewIndex()
	ctx := context.Background()
	_ = x.Reset(ctx, 3)

	err := x.Upsert(ctx, entry("bad", 1, 2))
	if err != domain.ErrDimensionMismatch {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestIndex_ResetDropsEntries(t *testing.T) {
	x := NewIndex()
	ctx := context.Background()
	_ = x.Reset(ctx, 1)
	_ = x.Upsert(ctx, entry("a", 1))

	_ = x.Reset(ctx, 1)
	if x.Len() != 0 {
		t.Errorf("expected empty index after reset, got %d", x.Len())
	}
}
