package services

import (
	"context"
	"fmt"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
	"github.com/futureme-labs/futureme-core/internal/core/ports/driven"
)

// Retriever answers a query with the top-k most similar documents. Scores are
// used for ranking only and discarded from the result.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
}

// NewRetriever creates a Retriever
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

// Retrieve embeds the query and searches the index. k larger than the index
// returns everything available; an empty index yields an empty result, never
// an error.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]domain.Document, error) {
	if k <= 0 {
		return []domain.Document{}, nil
	}

	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scored, err := r.index.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("index search: %w", err)
	}

	docs := make([]domain.Document, len(scored))
	for i, s := range scored {
		docs[i] = s.Document
	}
	return docs, nil
}
