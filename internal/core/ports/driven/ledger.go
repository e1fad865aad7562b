package driven

import (
	"context"

	"github.com/citeline-ai/citeline/internal/core/domain"
)

// DocumentLedger records which documents have been ingested into the corpus.
// The ledger is bookkeeping only; the passages themselves live in the vector
// store. Re-ingesting a document replaces its ledger entry.
type DocumentLedger interface {
	// Record inserts or replaces the entry for rec.DocumentID.
	Record(ctx context.Context, rec domain.DocumentRecord) error

	// Get returns the entry for a document id, or domain.ErrNotFound.
	Get(ctx context.Context, documentID string) (*domain.DocumentRecord, error)

	// List returns all entries ordered by ingestion time, newest first.
	List(ctx context.Context) ([]domain.DocumentRecord, error)

	// Close releases resources.
	Close() error
}
