package driven

import (
	"context"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
)

// HistorySource lists collections of historical activity and fetches the
// records inside one. Fetching, pagination and authentication are the
// source's concern; the core only requires ordered HistoryRecord values.
type HistorySource interface {
	// ListCollections returns collection names, most recently active first
	ListCollections(ctx context.Context) ([]string, error)

	// FetchRecords returns up to limit records from a collection in the
	// source's natural order (newest first for GitHub commits). A
	// collection with nothing to offer returns an empty slice.
	FetchRecords(ctx context.Context, collection string, limit int) ([]domain.HistoryRecord, error)
}
