package driven

import "context"

// ScoredPoint is one ANN hit returned by a vector store query.
type ScoredPoint struct {
	// ID is the point id the vector was upserted under.
	ID string

	// Score is the similarity under the collection's distance metric
	// (cosine, higher is closer).
	Score float64

	// Payload carries the fields stored alongside the vector.
	Payload PassagePayload
}

// PassagePayload is the payload stored with every passage vector.
type PassagePayload struct {
	Text       string `json:"text"`
	DocumentID string `json:"doc_id"`
	Chunk      int    `json:"chunk"`
}

// UpsertPoint is one vector plus payload to write to the store.
type UpsertPoint struct {
	ID      string
	Vector  []float32
	Payload PassagePayload
}

// VectorStore abstracts the external ANN store (Qdrant in production, an
// in-process index for tests and development).
//
// Two generations of the Qdrant query API exist in the wild; adapters hide
// that behind this single interface, choosing a compatibility mode once at
// startup rather than per call.
type VectorStore interface {
	// EnsureCollection creates the collection with the given dimensionality
	// and cosine distance if it does not already exist. The operation is
	// idempotent and safe to race across processes sharing one store.
	EnsureCollection(ctx context.Context, dim int) error

	// Upsert writes the points as a single batch. The write is atomic at
	// batch granularity: it either fully applies or errors.
	Upsert(ctx context.Context, points []UpsertPoint) error

	// Query returns the k nearest points to the vector, best first.
	Query(ctx context.Context, vector []float32, k int) ([]ScoredPoint, error)

	// Count returns the number of stored points.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}
