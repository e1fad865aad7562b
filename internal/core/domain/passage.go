package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Passage is one retrievable chunk of an ingested document.
type Passage struct {
	// ID is the deterministic chunk id, stable across re-ingestion.
	ID string

	// DocumentID names the source document.
	DocumentID string

	// ChunkIndex is the 1-based position of the chunk in the document.
	ChunkIndex int

	// Text is the chunk content.
	Text string

	// Score is the most recent relevance score attached to the passage,
	// either vector similarity or a reranker score.
	Score float64
}

// PassageID derives the chunk id from the document id and 1-based chunk
// index. The id is a name-based UUID, so re-ingesting a document produces
// the same ids and overwrites rather than duplicates.
func PassageID(documentID string, chunkIndex int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, fmt.Appendf(nil, "%s-%d", documentID, chunkIndex)).String()
}

// ContextMapEntry ties a citation index in a generated answer back to the
// passage it cites.
type ContextMapEntry struct {
	Index      int     `json:"index"`
	DocumentID string  `json:"doc_id"`
	ChunkID    string  `json:"chunk_id"`
	Score      float64 `json:"score"`
}

// DomainScore is a classified domain with its confidence.
type DomainScore struct {
	Domain     string  `json:"domain"`
	Confidence float64 `json:"confidence"`
}

// DomainReport is the full classification diagnostic, including per-domain
// keyword match counts.
type DomainReport struct {
	Domain      string         `json:"domain"`
	Confidence  float64        `json:"confidence"`
	MatchCounts map[string]int `json:"match_counts"`
}

// ModelSelection records how a generation model was chosen: the candidate
// the routing rules picked and the model actually resolved against the
// availability snapshot.
type ModelSelection struct {
	TaskType  TaskType `json:"task_type"`
	Domain    string   `json:"domain"`
	Candidate string   `json:"candidate"`
	Resolved  string   `json:"resolved"`
}

// DocumentRecord is one ingestion ledger entry.
type DocumentRecord struct {
	DocumentID string  `json:"doc_id"`
	Chunks     int     `json:"chunks"`
	Domain     string  `json:"domain"`
	Confidence float64 `json:"confidence"`
	IngestedAt int64   `json:"ingested_at"`
}
