package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/citeline-ai/citeline/internal/core/domain"
	"github.com/citeline-ai/citeline/internal/core/ports/driven"
	"github.com/citeline-ai/citeline/internal/logger"
)

// RerankService reorders a candidate passage set by pairwise cross-encoder
// relevance. It never filters: acceptance decisions belong to the answer
// engine.
type RerankService struct {
	scorer driven.RerankerService
}

// NewRerankService creates a rerank service over the given scorer.
func NewRerankService(scorer driven.RerankerService) *RerankService {
	return &RerankService{scorer: scorer}
}

// Rerank scores every (query, passage) pair and returns the passages in
// descending score order together with the reordered scores. Ties keep their
// input-relative order. An empty input returns empty outputs without calling
// the scorer.
func (s *RerankService) Rerank(ctx context.Context, query string, passages []domain.Passage) ([]domain.Passage, []float64, error) {
	if len(passages) == 0 {
		return []domain.Passage{}, []float64{}, nil
	}

	texts := make([]string, len(passages))
	for i, p := range passages {
		texts[i] = p.Text
	}

	scores, err := s.scorer.Score(ctx, query, texts)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", domain.ErrRerankerFailure, err)
	}
	if len(scores) != len(passages) {
		return nil, nil, fmt.Errorf("%w: got %d scores for %d passages",
			domain.ErrRerankerFailure, len(scores), len(passages))
	}

	order := make([]int, len(passages))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	ranked := make([]domain.Passage, len(passages))
	rankedScores := make([]float64, len(passages))
	for out, in := range order {
		ranked[out] = passages[in]
		ranked[out].Score = scores[in]
		rankedScores[out] = scores[in]
	}

	logger.Debug("Reranked %d passages, top score %.4f", len(ranked), rankedScores[0])
	return ranked, rankedScores, nil
}
