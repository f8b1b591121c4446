package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIndexNotReady indicates a query arrived before the first index
	// build. Callers receive empty results with this kind, not a crash.
	ErrIndexNotReady = errors.New("index not ready")

	// ErrEmbeddingUnavailable indicates the embedding capability is
	// unreachable. Vector indexing and retrieval are disabled.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable indicates the generation capability is
	// unreachable. Answers cannot be assembled; retrieval still works.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrRebuildInProgress indicates a full index rebuild is already
	// running. Duplicate requests coalesce instead of queueing.
	ErrRebuildInProgress = errors.New("index rebuild in progress")

	// ErrDueDateParse indicates an inline due-date expression could not
	// be resolved. Extraction recovers by recording no due date.
	ErrDueDateParse = errors.New("due date not recognised")
)
