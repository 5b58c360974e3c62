package mocks

import (
	"context"
	"fmt"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
)

// MockHistorySource serves canned collections and records for testing
type MockHistorySource struct {
	collections []string
	records     map[string][]domain.HistoryRecord
	failList    bool
}

// NewMockHistorySource creates an empty MockHistorySource
func NewMockHistorySource() *MockHistorySource {
	return &MockHistorySource{records: make(map[string][]domain.HistoryRecord)}
}

// AddCollection registers a collection with its records, in listing order
func (m *MockHistorySource) AddCollection(name string, records ...domain.HistoryRecord) {
	m.collections = append(m.collections, name)
	m.records[name] = records
}

func (m *MockHistorySource) ListCollections(ctx context.Context) ([]string, error) {
	if m.failList {
		return nil, fmt.Errorf("list collections: connection refused")
	}
	return append([]string(nil), m.collections...), nil
}

func (m *MockHistorySource) FetchRecords(ctx context.Context, collection string, limit int) ([]domain.HistoryRecord, error) {
	records := m.records[collection]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return append([]domain.HistoryRecord(nil), records...), nil
}

// SetFailList makes the next ListCollections call fail
func (m *MockHistorySource) SetFailList(fail bool) { m.failList = fail }
