// Package memory provides an in-process VectorStore for tests and
// single-machine development. Vectors are compared with cosine similarity,
// matching the production store's configured metric.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/citeline-ai/citeline/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is an in-memory vector store.
type Store struct {
	mu     sync.RWMutex
	dim    int
	points map[string]driven.UpsertPoint
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{points: make(map[string]driven.UpsertPoint)}
}

// EnsureCollection records the dimensionality. Re-creating with the same
// dimension is a no-op; a different dimension is an error, mirroring a schema
// mismatch in a real store.
func (s *Store) EnsureCollection(_ context.Context, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("invalid dimension %d", dim)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dim != 0 && s.dim != dim {
		return fmt.Errorf("collection exists with dimension %d, requested %d", s.dim, dim)
	}
	s.dim = dim
	return nil
}

// Upsert writes the batch. Points with known ids are overwritten.
func (s *Store) Upsert(_ context.Context, points []driven.UpsertPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dim == 0 {
		return fmt.Errorf("collection not created")
	}
	for _, p := range points {
		if len(p.Vector) != s.dim {
			return fmt.Errorf("vector %s has dimension %d, want %d", p.ID, len(p.Vector), s.dim)
		}
	}
	for _, p := range points {
		s.points[p.ID] = p
	}
	return nil
}

// Query returns the k nearest points by cosine similarity, best first.
func (s *Store) Query(_ context.Context, vector []float32, k int) ([]driven.ScoredPoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dim == 0 {
		return nil, fmt.Errorf("collection not created")
	}
	if len(vector) != s.dim {
		return nil, fmt.Errorf("query vector has dimension %d, want %d", len(vector), s.dim)
	}

	hits := make([]driven.ScoredPoint, 0, len(s.points))
	for _, p := range s.points {
		hits = append(hits, driven.ScoredPoint{
			ID:      p.ID,
			Score:   cosine(vector, p.Vector),
			Payload: p.Payload,
		})
	}
	sort.SliceStable(hits, func(a, b int) bool { return hits[a].Score > hits[b].Score })

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of stored points.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points), nil
}

// Close releases resources. No-op for the memory store.
func (s *Store) Close() error {
	return nil
}

// cosine computes cosine similarity without assuming unit vectors, so the
// store behaves the same for callers that skip normalisation.
func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
