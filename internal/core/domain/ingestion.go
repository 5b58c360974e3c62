package domain

import "time"

// IndexState tracks readiness of the vector index. Serving never blocks on
// ingestion: the chat path consults this state and degrades to empty evidence
// until the index is ready.
type IndexState string

const (
	IndexNotStarted      IndexState = "not_started"
	IndexRunning         IndexState = "running"
	IndexReady           IndexState = "ready"
	IndexReadyWithErrors IndexState = "ready_with_errors"
)

// Queryable reports whether retrieval may consult the index in this state.
func (s IndexState) Queryable() bool {
	return s == IndexReady || s == IndexReadyWithErrors
}

// CollectionReport records the outcome of ingesting one collection.
type CollectionReport struct {
	Collection string `json:"collection"`
	Documents  int    `json:"documents"`
	Skipped    bool   `json:"skipped"`
	Reason     string `json:"reason,omitempty"`
}

// IngestionSummary aggregates the outcome of one full ingestion run.
type IngestionSummary struct {
	Collections      []CollectionReport `json:"collections"`
	DocumentsIndexed int                `json:"documents_indexed"`
	CollectionsTotal int                `json:"collections_total"`
	Skipped          int                `json:"skipped"`
	Aborted          bool               `json:"aborted"`
	Error            string             `json:"error,omitempty"`
	StartedAt        time.Time          `json:"started_at"`
	CompletedAt      time.Time          `json:"completed_at"`
}

// Clean reports whether the run completed with every collection indexed.
func (s *IngestionSummary) Clean() bool {
	return !s.Aborted && s.Skipped == 0
}
