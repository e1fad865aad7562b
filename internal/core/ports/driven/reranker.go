package driven

import "context"

// RerankerService scores (query, passage) pairs with a cross-encoder.
//
// Implementations call an external scoring endpoint (for example a
// text-embeddings-inference /rerank server running a Jina reranker).
type RerankerService interface {
	// Score returns one relevance score per text, in input order.
	// Higher means more relevant to the query.
	Score(ctx context.Context, query string, texts []string) ([]float64, error)

	// ModelName returns the reranker model identifier for logging.
	ModelName() string

	// Close releases resources.
	Close() error
}
