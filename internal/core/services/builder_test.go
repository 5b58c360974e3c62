package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/futureme-labs/futureme-core/internal/core/domain"
)

func testRecord(id, summary string) domain.HistoryRecord {
	return domain.HistoryRecord{
		ID:         id,
		Summary:    summary,
		Author:     "dev",
		Timestamp:  time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
		Collection: "acme/widgets",
	}
}

func TestDocumentBuilder_BuildCollection(t *testing.T) {
	b := NewDocumentBuilder()

	docs, err := b.BuildCollection("acme/widgets", []domain.HistoryRecord{
		testRecord("aaa111", "Add widget cache"),
		testRecord("bbb222", "Fix cache eviction"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}

	doc := docs[0]
	if doc.ID != "acme/widgets/aaa111" {
		t.Errorf("unexpected document id: %s", doc.ID)
	}
	if !strings.HasPrefix(doc.Text, "Add widget cache") {
		t.Errorf("text should start with the summary, got %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "collection: acme/widgets") {
		t.Errorf("text should name the collection, got %q", doc.Text)
	}
	if !strings.Contains(doc.Text, "date: 2025-03-14") {
		t.Errorf("text should carry the date, got %q", doc.Text)
	}
	if doc.Metadata["author"] != "dev" {
		t.Errorf("expected author metadata, got %v", doc.Metadata)
	}
}

func TestDocumentBuilder_SkipsUnusableRecords(t *testing.T) {
	b := NewDocumentBuilder()

	docs, err := b.BuildCollection("repo", []domain.HistoryRecord{
		testRecord("a", "real work"),
		testRecord("b", ""),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("expected the empty-summary record to be dropped, got %d docs", len(docs))
	}
}

func TestDocumentBuilder_NoUsableRecords(t *testing.T) {
	b := NewDocumentBuilder()

	_, err := b.BuildCollection("repo", []domain.HistoryRecord{testRecord("a", "")})
	if !errors.Is(err, domain.ErrNoUsableRecords) {
		t.Errorf("expected ErrNoUsableRecords, got %v", err)
	}

	_, err = b.BuildCollection("repo", nil)
	if !errors.Is(err, domain.ErrNoUsableRecords) {
		t.Errorf("expected ErrNoUsableRecords for empty input, got %v", err)
	}
}

func TestDocumentBuilder_TruncatesFileList(t *testing.T) {
	b := NewDocumentBuilder()

	rec := testRecord("a", "big refactor")
	for i := 0; i < maxListedFiles+3; i++ {
		rec.Files = append(rec.Files, fmt.Sprintf("pkg/file_%d.go", i))
	}

	docs, err := b.BuildCollection("repo", []domain.HistoryRecord{rec})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(docs[0].Text, "(+3 more)") {
		t.Errorf("expected truncated file list marker, got %q", docs[0].Text)
	}
	if strings.Count(docs[0].Text, ".go") != maxListedFiles {
		t.Errorf("expected %d listed files, got %q", maxListedFiles, docs[0].Text)
	}
}
