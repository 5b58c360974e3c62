package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
	"github.com/futureme-labs/futureme-core/internal/core/ports/driven"
	"github.com/futureme-labs/futureme-core/internal/core/ports/driving"
	"github.com/futureme-labs/futureme-core/internal/runtime"
)

// Ensure IngestionCoordinator implements IngestionService
var _ driving.IngestionService = (*IngestionCoordinator)(nil)

// IngestionCoordinator rebuilds the vector index from the history source.
// The pipeline per collection: fetch records -> build documents -> embed
// batch -> upsert batch. Collections are isolated: one collection failing
// never aborts the others. Embedding or index unavailability aborts the
// remainder of the run; serving proceeds with whatever was indexed.
type IngestionCoordinator struct {
	source     driven.HistorySource
	builder    *DocumentBuilder
	embedder   driven.EmbeddingService
	index      driven.VectorIndex
	readiness  *runtime.Readiness
	maxRecords int
	logger     *slog.Logger
}

// IngestionCoordinatorConfig holds dependencies for IngestionCoordinator.
type IngestionCoordinatorConfig struct {
	Source     driven.HistorySource
	Builder    *DocumentBuilder
	Embedder   driven.EmbeddingService
	Index      driven.VectorIndex
	Readiness  *runtime.Readiness
	MaxRecords int // global cap across all collections
	Logger     *slog.Logger
}

// NewIngestionCoordinator creates an IngestionCoordinator.
func NewIngestionCoordinator(cfg IngestionCoordinatorConfig) *IngestionCoordinator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxRecords := cfg.MaxRecords
	if maxRecords <= 0 {
		maxRecords = 100
	}
	return &IngestionCoordinator{
		source:     cfg.Source,
		builder:    cfg.Builder,
		embedder:   cfg.Embedder,
		index:      cfg.Index,
		readiness:  cfg.Readiness,
		maxRecords: maxRecords,
		logger:     logger,
	}
}

// Run executes one full-rebuild ingestion pass. Previously computed
// embeddings are not reused: every run re-fetches and re-embeds from scratch.
// The returned summary is also published through the readiness flag, so the
// serving path proceeds regardless of the outcome - the degenerate state of
// zero indexed documents is valid and retrieval is simply empty.
func (c *IngestionCoordinator) Run(ctx context.Context) (*domain.IngestionSummary, error) {
	if !c.readiness.BeginRun() {
		return nil, domain.ErrIngestionInProgress
	}

	summary := &domain.IngestionSummary{StartedAt: time.Now().UTC()}
	defer func() {
		summary.CompletedAt = time.Now().UTC()
		c.readiness.CompleteRun(summary)
		c.logger.Info("ingestion completed",
			"documents", summary.DocumentsIndexed,
			"collections", summary.CollectionsTotal,
			"skipped", summary.Skipped,
			"aborted", summary.Aborted,
			"took", summary.CompletedAt.Sub(summary.StartedAt),
		)
	}()

	c.logger.Info("starting ingestion", "max_records", c.maxRecords)

	collections, err := c.source.ListCollections(ctx)
	if err != nil {
		summary.Aborted = true
		summary.Error = err.Error()
		return summary, fmt.Errorf("list collections: %w", err)
	}
	summary.CollectionsTotal = len(collections)

	if err := c.index.Reset(ctx, c.embedder.Dimensions()); err != nil {
		summary.Aborted = true
		summary.Error = err.Error()
		return summary, fmt.Errorf("reset index: %w", err)
	}

	remaining := c.maxRecords
	for _, collection := range collections {
		if remaining <= 0 {
			break
		}
		select {
		case <-ctx.Done():
			summary.Aborted = true
			summary.Error = ctx.Err().Error()
			return summary, ctx.Err()
		default:
		}

		report, fatal := c.ingestCollection(ctx, collection, remaining)
		summary.Collections = append(summary.Collections, report)
		if report.Skipped {
			summary.Skipped++
		} else {
			summary.DocumentsIndexed += report.Documents
			remaining -= report.Documents
		}
		if fatal != nil {
			summary.Aborted = true
			summary.Error = fatal.Error()
			return summary, fatal
		}
	}

	return summary, nil
}

// ingestCollection runs the pipeline for one collection. The returned error
// is non-nil only for run-fatal failures (embedding or index backend down);
// everything else is isolated into the report.
func (c *IngestionCoordinator) ingestCollection(ctx context.Context, collection string, limit int) (domain.CollectionReport, error) {
	report := domain.CollectionReport{Collection: collection}

	records, err := c.source.FetchRecords(ctx, collection, limit)
	if err != nil {
		c.logger.Warn("skipping collection", "collection", collection, "error", err)
		report.Skipped = true
		report.Reason = fmt.Sprintf("fetch records: %v", err)
		return report, nil
	}

	docs, err := c.builder.BuildCollection(collection, records)
	if err != nil {
		c.logger.Warn("skipping collection", "collection", collection, "error", err)
		report.Skipped = true
		report.Reason = err.Error()
		return report, nil
	}

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
	}
	vectors, err := c.embedder.Embed(ctx, texts)
	if err != nil {
		report.Skipped = true
		report.Reason = fmt.Sprintf("embed: %v", err)
		if errors.Is(err, domain.ErrEmbeddingUnavailable) {
			return report, fmt.Errorf("embed collection %s: %w", collection, err)
		}
		c.logger.Warn("skipping collection", "collection", collection, "error", err)
		return report, nil
	}

	entries := make([]domain.IndexEntry, len(docs))
	for i := range docs {
		entries[i] = domain.IndexEntry{Document: docs[i], Embedding: vectors[i]}
	}
	if err := c.index.UpsertBatch(ctx, entries); err != nil {
		report.Skipped = true
		report.Reason = fmt.Sprintf("index: %v", err)
		return report, fmt.Errorf("index collection %s: %w", collection, err)
	}

	report.Documents = len(docs)
	c.logger.Info("collection indexed", "collection", collection, "documents", len(docs))
	return report, nil
}
