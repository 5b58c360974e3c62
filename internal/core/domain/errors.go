package domain

import "errors"

// Domain errors - used across all layers
var (
	// ErrNotFound indicates the requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates the input is invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates authentication failed or missing
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoUsableRecords indicates a collection yielded no usable history
	// records during ingestion. Isolated per collection, non-fatal to the run.
	ErrNoUsableRecords = errors.New("no usable records")

	// ErrEmbeddingUnavailable indicates the embedding backend could not be
	// reached. Fatal to an ingestion run, fatal to a single chat turn.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexUnavailable indicates the vector store could not be reached
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrGenerationUnavailable indicates the generation backend is
	// unreachable or rate-limited
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrIngestionInProgress indicates an ingestion run is already running
	ErrIngestionInProgress = errors.New("ingestion already in progress")

	// ErrDimensionMismatch indicates a vector does not match the index's
	// configured dimension
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
