// Package memory provides an in-memory document ledger for tests and
// ephemeral runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/citeline-ai/citeline/internal/core/domain"
	"github.com/citeline-ai/citeline/internal/core/ports/driven"
)

// Ensure Ledger implements the interface.
var _ driven.DocumentLedger = (*Ledger)(nil)

// Ledger records ingested documents in process memory.
type Ledger struct {
	mu      sync.RWMutex
	records map[string]domain.DocumentRecord
}

// NewLedger creates an empty in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{
		records: make(map[string]domain.DocumentRecord),
	}
}

// Record inserts or replaces the entry for rec.DocumentID.
func (l *Ledger) Record(_ context.Context, rec domain.DocumentRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records[rec.DocumentID] = rec
	return nil
}

// Get returns the entry for a document id, or domain.ErrNotFound.
func (l *Ledger) Get(_ context.Context, documentID string) (*domain.DocumentRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rec, ok := l.records[documentID]
	if !ok {
		return nil, fmt.Errorf("document %q: %w", documentID, domain.ErrNotFound)
	}
	return &rec, nil
}

// List returns all entries ordered by ingestion time, newest first.
func (l *Ledger) List(_ context.Context) ([]domain.DocumentRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	records := make([]domain.DocumentRecord, 0, len(l.records))
	for _, rec := range l.records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].IngestedAt != records[j].IngestedAt {
			return records[i].IngestedAt > records[j].IngestedAt
		}
		return records[i].DocumentID < records[j].DocumentID
	})
	return records, nil
}

// Close releases resources.
func (l *Ledger) Close() error {
	return nil
}
