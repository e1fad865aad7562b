package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input, rejected before
	// any network call is issued.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreUnavailable indicates the vector store could not serve a
	// collection, query, or upsert request after the retry budget was
	// exhausted. Fatal to the triggering call, not to the process.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrEmbeddingFailure indicates the embedding provider errored or
	// returned a malformed response.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrRerankerFailure indicates the cross-encoder scoring call failed.
	ErrRerankerFailure = errors.New("reranker failure")

	// ErrGenerationFailure indicates both the primary generation call and
	// the chat-style fallback failed. This is a hard error, distinct from
	// abstention.
	ErrGenerationFailure = errors.New("generation failure")

	// ErrLedgerUnavailable indicates the document ledger could not be read
	// or written.
	ErrLedgerUnavailable = errors.New("document ledger unavailable")
)
