// Package redisvec implements the vector index port on top of Redis
// Stack's RediSearch module, using an HNSW index over FLOAT32 vectors
// with cosine distance.
package redisvec

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
	"github.com/futureme-labs/futureme-core/internal/core/ports/driven"
)

const (
	defaultIndexName = "futureme:docs"
	docPrefix        = "futureme:doc:"

	fieldText      = "text"
	fieldEmbedding = "embedding"
	fieldScore     = "vector_score"
	metaPrefix     = "meta_"
)

// Index stores documents as Redis hashes and answers KNN queries
// through FT.SEARCH. Reset drops and recreates the underlying search
// index, so a full reingest always starts from an empty set.
type Index struct {
	client     *redis.Client
	indexName  string
	dimensions int
}

// Compile-time check that Index satisfies the port.
var _ driven.VectorIndex = (*Index)(nil)

// NewIndex creates a vector index bound to the given Redis client.
func NewIndex(client *redis.Client) *Index {
	return &Index{
		client:    client,
		indexName: defaultIndexName,
	}
}

// Reset drops any existing index together with its documents and
// creates a fresh one with the given vector dimensionality.
func (i *Index) Reset(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: index dimensions must be positive, got %d", domain.ErrDimensionMismatch, dimensions)
	}

	// DD also removes the indexed hashes. Ignore the error when the
	// index does not exist yet.
	_ = i.client.FTDropIndexWithArgs(ctx, i.indexName, &redis.FTDropIndexOptions{DeleteDocs: true}).Err()

	err := i.client.FTCreate(ctx, i.indexName,
		&redis.FTCreateOptions{
			OnHash: true,
			Prefix: []interface{}{docPrefix},
		},
		&redis.FieldSchema{
			FieldName: fieldText,
			FieldType: redis.SearchFieldTypeText,
		},
		&redis.FieldSchema{
			FieldName: fieldEmbedding,
			FieldType: redis.SearchFieldTypeVector,
			VectorArgs: &redis.FTVectorArgs{
				HNSWOptions: &redis.FTHNSWOptions{
					Type:           "FLOAT32",
					Dim:            dimensions,
					DistanceMetric: "COSINE",
				},
			},
		},
	).Err()
	if err != nil {
		return fmt.Errorf("%w: create search index: %v", domain.ErrIndexUnavailable, err)
	}

	i.dimensions = dimensions
	return nil
}

// Upsert writes a single entry. The document id doubles as the hash key
// suffix, so re-indexing the same id replaces the previous entry.
func (i *Index) Upsert(ctx context.Context, entry domain.IndexEntry) error {
	if i.dimensions > 0 && len(entry.Embedding) != i.dimensions {
		return fmt.Errorf("%w: expected %d dimensions, got %d", domain.ErrDimensionMismatch, i.dimensions, len(entry.Embedding))
	}

	if err := i.client.HSet(ctx, docKey(entry.Document.ID), hashFields(entry)).Err(); err != nil {
		return fmt.Errorf("%w: upsert %s: %v", domain.ErrIndexUnavailable, entry.Document.ID, err)
	}
	return nil
}

// UpsertBatch writes all entries in one pipeline round trip.
func (i *Index) UpsertBatch(ctx context.Context, entries []domain.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	for _, entry := range entries {
		if i.dimensions > 0 && len(entry.Embedding) != i.dimensions {
			return fmt.Errorf("%w: expected %d dimensions, got %d", domain.ErrDimensionMismatch, i.dimensions, len(entry.Embedding))
		}
	}

	pipe := i.client.Pipeline()
	for _, entry := range entries {
		pipe.HSet(ctx, docKey(entry.Document.ID), hashFields(entry))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: upsert batch of %d: %v", domain.ErrIndexUnavailable, len(entries), err)
	}
	return nil
}

// Search runs a KNN query and returns up to k documents ranked by
// similarity, most similar first.
func (i *Index) Search(ctx context.Context, vector []float32, k int) ([]domain.ScoredDocument, error) {
	if k <= 0 {
		return nil, nil
	}
	if i.dimensions > 0 && len(vector) != i.dimensions {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d", domain.ErrDimensionMismatch, i.dimensions, len(vector))
	}

	query := fmt.Sprintf("*=>[KNN %d @%s $vec AS %s]", k, fieldEmbedding, fieldScore)
	res, err := i.client.FTSearchWithArgs(ctx, i.indexName, query, &redis.FTSearchOptions{
		DialectVersion: 2,
		Params: map[string]interface{}{
			"vec": encodeVector(vector),
		},
		SortBy:      []redis.FTSearchSortBy{{FieldName: fieldScore, Asc: true}},
		LimitOffset: 0,
		Limit:       k,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: knn search: %v", domain.ErrIndexUnavailable, err)
	}

	results := make([]domain.ScoredDocument, 0, len(res.Docs))
	for _, doc := range res.Docs {
		results = append(results, scoredDocument(doc))
	}
	return results, nil
}

// HealthCheck pings Redis.
func (i *Index) HealthCheck(ctx context.Context) error {
	if err := i.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: ping: %v", domain.ErrIndexUnavailable, err)
	}
	return nil
}

func docKey(id string) string {
	return docPrefix + id
}

// hashFields flattens an index entry into hash field/value pairs. The
// document id is stored explicitly so search results do not need to
// parse it back out of the key.
func hashFields(entry domain.IndexEntry) map[string]interface{} {
	fields := map[string]interface{}{
		"id":           entry.Document.ID,
		fieldText:      entry.Document.Text,
		fieldEmbedding: encodeVector(entry.Embedding),
	}
	for key, value := range entry.Document.Metadata {
		fields[metaPrefix+key] = value
	}
	return fields
}

// scoredDocument rebuilds a domain document from a search hit. The
// RediSearch cosine distance is converted into a similarity score so
// higher always means closer.
func scoredDocument(doc redis.Document) domain.ScoredDocument {
	result := domain.ScoredDocument{
		Document: domain.Document{
			ID:       strings.TrimPrefix(doc.ID, docPrefix),
			Metadata: map[string]string{},
		},
	}
	for field, value := range doc.Fields {
		switch {
		case field == "id":
			result.Document.ID = value
		case field == fieldText:
			result.Document.Text = value
		case field == fieldScore:
			if distance, err := strconv.ParseFloat(value, 64); err == nil {
				result.Score = 1 - distance
			}
		case strings.HasPrefix(field, metaPrefix):
			result.Document.Metadata[strings.TrimPrefix(field, metaPrefix)] = value
		}
	}
	return result
}

// encodeVector serializes a float32 slice into the little-endian byte
// layout RediSearch expects for FLOAT32 vector fields.
func encodeVector(vector []float32) string {
	buf := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return string(buf)
}

// decodeVector is the inverse of encodeVector.
func decodeVector(raw string) []float32 {
	data := []byte(raw)
	vector := make([]float32, len(data)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
	}
	return vector
}
