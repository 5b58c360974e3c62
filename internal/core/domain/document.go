package domain

import "time"

// HistoryRecord is one atomic unit of past activity fetched from the history
// source (for GitHub, one commit). Immutable once fetched.
type HistoryRecord struct {
	ID         string    `json:"id"`
	Summary    string    `json:"summary"`
	Author     string    `json:"author"`
	AuthorMail string    `json:"author_mail,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Collection string    `json:"collection"`
	Files      []string  `json:"files,omitempty"`
	URL        string    `json:"url,omitempty"`
}

// Usable reports whether the record carries enough text to index.
func (r HistoryRecord) Usable() bool {
	return r.Summary != ""
}

// Document is the uniform text unit produced by the document builder.
// Documents are immutable; re-ingestion with the same ID supersedes the
// previous entry rather than mutating it.
type Document struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// IndexEntry pairs a document with its embedding vector. Entries are keyed by
// document ID in the vector index and replaced wholesale on re-ingestion.
type IndexEntry struct {
	Document  Document  `json:"document"`
	Embedding []float32 `json:"embedding"`
}

// ScoredDocument is a search hit with its similarity score, higher is better.
type ScoredDocument struct {
	Document Document `json:"document"`
	Score    float64  `json:"score"`
}
