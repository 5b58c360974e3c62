// Package runtime tracks process-scoped mutable state shared between the
// ingestion pipeline and the serving path.
package runtime

import (
	"sync"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
)

// Readiness is the explicit index-readiness flag consulted by the chat path
// before retrieval. Thread-safe for concurrent access.
type Readiness struct {
	mu      sync.RWMutex
	state   domain.IndexState
	summary *domain.IngestionSummary
}

// NewReadiness creates a Readiness in the NOT_STARTED state
func NewReadiness() *Readiness {
	return &Readiness{state: domain.IndexNotStarted}
}

// State returns the current index state
func (r *Readiness) State() domain.IndexState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// Summary returns the summary of the last completed ingestion run, nil before
// the first run completes.
func (r *Readiness) Summary() *domain.IngestionSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.summary
}

// BeginRun transitions to RUNNING. Returns false without transitioning when a
// run is already in flight.
func (r *Readiness) BeginRun() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == domain.IndexRunning {
		return false
	}
	r.state = domain.IndexRunning
	return true
}

// CompleteRun records the run outcome: READY for a clean run,
// READY_WITH_ERRORS when collections were skipped or the run aborted early.
// Serving proceeds in either state, including with zero documents indexed.
func (r *Readiness) CompleteRun(summary *domain.IngestionSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summary = summary
	if summary.Clean() {
		r.state = domain.IndexReady
	} else {
		r.state = domain.IndexReadyWithErrors
	}
}
