package driving

import (
	"context"

	"github.com/citeline-ai/citeline/internal/core/domain"
)

// IngestOptions tune a single ingestion call.
type IngestOptions struct {
	// DomainHint overrides domain detection for the ledger entry when it
	// names a supported domain. Empty means detect.
	DomainHint string
}

// CorpusService manages the retrieval corpus.
type CorpusService interface {
	// EnsureReady creates the vector collection if absent, retrying while
	// the backing store is still starting up.
	EnsureReady(ctx context.Context) error

	// Ingest chunks, embeds, and upserts a document. Returns the number of
	// chunks written; zero for empty input.
	Ingest(ctx context.Context, documentID, text string, opts IngestOptions) (int, error)

	// Search returns the k passages nearest the query, best first.
	Search(ctx context.Context, query string, k int) ([]domain.Passage, error)

	// Seed ingests the built-in sample corpus if the collection is empty.
	// Returns the number of documents written (zero when already seeded).
	Seed(ctx context.Context) (int, error)

	// Documents lists the ingestion ledger, newest first.
	Documents(ctx context.Context) ([]domain.DocumentRecord, error)
}
