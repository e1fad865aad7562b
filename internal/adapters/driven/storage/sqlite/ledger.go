// Package sqlite provides a SQLite-backed document ledger.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/citeline-ai/citeline/internal/core/domain"
	"github.com/citeline-ai/citeline/internal/core/ports/driven"
)

// Ensure Ledger implements the interface.
var _ driven.DocumentLedger = (*Ledger)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	document_id TEXT PRIMARY KEY,
	chunks      INTEGER NOT NULL,
	domain      TEXT NOT NULL,
	confidence  REAL NOT NULL,
	ingested_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_ingested_at ON documents(ingested_at DESC);
`

// Ledger records ingested documents in SQLite.
type Ledger struct {
	db   *sql.DB
	path string
}

// NewLedger opens (and if necessary creates) the ledger database at the
// specified data directory. If dataDir is empty, defaults to
// ~/.citeline/data/ledger.db.
func NewLedger(dataDir string) (*Ledger, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".citeline", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "ledger.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Ledger{
		db:   db,
		path: dbPath,
	}, nil
}

// Record inserts or replaces the entry for rec.DocumentID.
func (l *Ledger) Record(ctx context.Context, rec domain.DocumentRecord) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO documents (document_id, chunks, domain, confidence, ingested_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			chunks = excluded.chunks,
			domain = excluded.domain,
			confidence = excluded.confidence,
			ingested_at = excluded.ingested_at`,
		rec.DocumentID, rec.Chunks, rec.Domain, rec.Confidence, rec.IngestedAt)
	if err != nil {
		return fmt.Errorf("recording document %q: %w", rec.DocumentID, err)
	}
	return nil
}

// Get returns the entry for a document id, or domain.ErrNotFound.
func (l *Ledger) Get(ctx context.Context, documentID string) (*domain.DocumentRecord, error) {
	var rec domain.DocumentRecord
	err := l.db.QueryRowContext(ctx, `
		SELECT document_id, chunks, domain, confidence, ingested_at
		FROM documents WHERE document_id = ?`, documentID).
		Scan(&rec.DocumentID, &rec.Chunks, &rec.Domain, &rec.Confidence, &rec.IngestedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %q: %w", documentID, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting document %q: %w", documentID, err)
	}
	return &rec, nil
}

// List returns all entries ordered by ingestion time, newest first.
func (l *Ledger) List(ctx context.Context) ([]domain.DocumentRecord, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT document_id, chunks, domain, confidence, ingested_at
		FROM documents ORDER BY ingested_at DESC, document_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()

	var records []domain.DocumentRecord
	for rows.Next() {
		var rec domain.DocumentRecord
		if err := rows.Scan(&rec.DocumentID, &rec.Chunks, &rec.Domain, &rec.Confidence, &rec.IngestedAt); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document rows: %w", err)
	}
	return records, nil
}

// Path returns the database file path.
func (l *Ledger) Path() string {
	return l.path
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}
