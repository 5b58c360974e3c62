package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
)

// maxListedFiles bounds the changed-file list per document so embedding cost
// stays predictable for records touching hundreds of files.
const maxListedFiles = 8

// DocumentBuilder normalizes raw history records into uniform text documents.
// One record becomes one document.
type DocumentBuilder struct{}

// NewDocumentBuilder creates a DocumentBuilder
func NewDocumentBuilder() *DocumentBuilder {
	return &DocumentBuilder{}
}

// BuildCollection builds documents from one collection's records, preserving
// record order. Records without a text summary are dropped; a collection
// where nothing survives fails with ErrNoUsableRecords.
func (b *DocumentBuilder) BuildCollection(collection string, records []domain.HistoryRecord) ([]domain.Document, error) {
	docs := make([]domain.Document, 0, len(records))
	for _, rec := range records {
		if !rec.Usable() {
			continue
		}
		docs = append(docs, b.buildDocument(collection, rec))
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("collection %s: %w", collection, domain.ErrNoUsableRecords)
	}
	return docs, nil
}

func (b *DocumentBuilder) buildDocument(collection string, rec domain.HistoryRecord) domain.Document {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(rec.Summary))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "collection: %s", collection)
	if rec.Author != "" {
		fmt.Fprintf(&sb, " | author: %s", rec.Author)
	}
	if !rec.Timestamp.IsZero() {
		fmt.Fprintf(&sb, " | date: %s", rec.Timestamp.Format("2006-01-02"))
	}
	if files := formatFileList(rec.Files); files != "" {
		sb.WriteString("\nfiles: ")
		sb.WriteString(files)
	}

	metadata := map[string]string{
		"collection": collection,
		"record_id":  rec.ID,
	}
	if rec.Author != "" {
		metadata["author"] = rec.Author
	}
	if !rec.Timestamp.IsZero() {
		metadata["date"] = rec.Timestamp.Format("2006-01-02")
	}
	if rec.URL != "" {
		metadata["url"] = rec.URL
	}

	return domain.Document{
		ID:       collection + "/" + id,
		Text:     sb.String(),
		Metadata: metadata,
	}
}

// formatFileList renders a bounded, truncated changed-file list
func formatFileList(files []string) string {
	if len(files) == 0 {
		return ""
	}
	if len(files) <= maxListedFiles {
		return strings.Join(files, ", ")
	}
	shown := strings.Join(files[:maxListedFiles], ", ")
	return fmt.Sprintf("%s (+%d more)", shown, len(files)-maxListedFiles)
}
