package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/citeline-ai/citeline/internal/chunker"
	"github.com/citeline-ai/citeline/internal/core/domain"
	"github.com/citeline-ai/citeline/internal/core/ports/driven"
	"github.com/citeline-ai/citeline/internal/core/ports/driving"
	"github.com/citeline-ai/citeline/internal/logger"
)

// Ensure CorpusService implements the interface.
var _ driving.CorpusService = (*CorpusService)(nil)

// seedDocuments is the tiny built-in sample corpus, written only when the
// collection is empty.
var seedDocuments = map[string]string{
	"dr_runbook.md": `# Disaster Recovery Runbook
The DR process includes three phases: Preparation, Failover, and Validation.
Preparation: ensure backups are tested, RPO is under 15 minutes, and RTO under 1 hour.
Failover: promote the replica in the disaster region and switch DNS traffic.
Validation: run automated health checks and data consistency checks.`,

	"backup_policy.md": `# Backup Policy
Daily incremental backups at 01:00 UTC, weekly full backups on Sunday 02:00 UTC.
Retention: incrementals for 30 days, full backups for 12 months.
Encryption: AES-256 at rest and TLS 1.2 in transit.`,

	"biryani.txt": `Add basmati rice, marinate chicken with yogurt and spices, cook on low heat.
This is a cooking recipe unrelated to disaster recovery or backup policies.`,
}

// CorpusService owns the vector collection lifecycle, embeds and upserts
// passages, and performs similarity search.
type CorpusService struct {
	embedder   driven.EmbeddingService
	store      driven.VectorStore
	ledger     driven.DocumentLedger // optional, nil disables bookkeeping
	classifier *DomainClassifier
	chunks     *chunker.Chunker

	retries    int
	retryDelay time.Duration
}

// NewCorpusService creates a corpus service. ledger may be nil.
func NewCorpusService(
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	ledger driven.DocumentLedger,
	classifier *DomainClassifier,
	chunks *chunker.Chunker,
	retries int,
	retryDelay time.Duration,
) *CorpusService {
	if retries < 1 {
		retries = 1
	}
	return &CorpusService{
		embedder:   embedder,
		store:      store,
		ledger:     ledger,
		classifier: classifier,
		chunks:     chunks,
		retries:    retries,
		retryDelay: retryDelay,
	}
}

// EnsureReady creates the vector collection if absent. The create is retried
// with a fixed delay while the backing store is still starting up; the final
// attempt's error is propagated as ErrStoreUnavailable.
func (s *CorpusService) EnsureReady(ctx context.Context) error {
	dim := s.embedder.Dimensions()

	var lastErr error
	for attempt := 1; attempt <= s.retries; attempt++ {
		lastErr = s.store.EnsureCollection(ctx, dim)
		if lastErr == nil {
			return nil
		}
		logger.Warn("Collection setup attempt %d/%d failed: %v", attempt, s.retries, lastErr)
		if attempt == s.retries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.retryDelay):
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, lastErr)
}

// Ingest chunks, embeds, and upserts a document as one atomic batch.
// Chunk ids derive from (documentID, chunkIndex), so re-ingesting the same
// document overwrites prior chunks instead of duplicating them.
func (s *CorpusService) Ingest(ctx context.Context, documentID, text string, opts driving.IngestOptions) (int, error) {
	if documentID == "" {
		return 0, fmt.Errorf("%w: document id is empty", domain.ErrInvalidInput)
	}

	texts := s.chunks.Chunk(text)
	if len(texts) == 0 {
		logger.Debug("Document %s produced no chunks", documentID)
		return 0, nil
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailure, err)
	}
	if len(vectors) != len(texts) {
		return 0, fmt.Errorf("%w: got %d vectors for %d chunks",
			domain.ErrEmbeddingFailure, len(vectors), len(texts))
	}

	points := make([]driven.UpsertPoint, len(texts))
	for i, chunkText := range texts {
		points[i] = driven.UpsertPoint{
			ID:     domain.PassageID(documentID, i+1),
			Vector: normalize(vectors[i]),
			Payload: driven.PassagePayload{
				Text:       chunkText,
				DocumentID: documentID,
				Chunk:      i + 1,
			},
		}
	}

	if err := s.store.Upsert(ctx, points); err != nil {
		return 0, fmt.Errorf("%w: upsert: %w", domain.ErrStoreUnavailable, err)
	}
	logger.Info("Ingested %s: %d chunks", documentID, len(points))

	s.recordIngestion(ctx, documentID, text, len(points), opts.DomainHint)
	return len(points), nil
}

// Search embeds the query and returns the k nearest passages, best first.
func (s *CorpusService) Search(ctx context.Context, query string, k int) ([]domain.Passage, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailure, err)
	}

	hits, err := s.store.Query(ctx, normalize(vector), k)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %w", domain.ErrStoreUnavailable, err)
	}

	passages := make([]domain.Passage, len(hits))
	for i, hit := range hits {
		passages[i] = domain.Passage{
			ID:         hit.ID,
			DocumentID: hit.Payload.DocumentID,
			ChunkIndex: hit.Payload.Chunk,
			Text:       hit.Payload.Text,
			Score:      hit.Score,
		}
	}
	logger.Debug("Search %q: %d hits", query, len(passages))
	return passages, nil
}

// Seed ingests the built-in sample corpus when the collection is empty.
func (s *CorpusService) Seed(ctx context.Context) (int, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: count: %w", domain.ErrStoreUnavailable, err)
	}
	if count > 0 {
		logger.Debug("Collection already holds %d points, skipping seed", count)
		return 0, nil
	}

	written := 0
	for docID, text := range seedDocuments {
		if _, err := s.Ingest(ctx, docID, text, driving.IngestOptions{}); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

// Documents lists the ingestion ledger, newest first.
func (s *CorpusService) Documents(ctx context.Context) ([]domain.DocumentRecord, error) {
	if s.ledger == nil {
		return nil, nil
	}
	return s.ledger.List(ctx)
}

// recordIngestion writes the ledger entry for a completed ingest. Ledger
// failures are logged, not propagated: the passages are already stored.
func (s *CorpusService) recordIngestion(ctx context.Context, documentID, text string, chunks int, hint string) {
	if s.ledger == nil {
		return
	}

	var score domain.DomainScore
	if hint != "" && s.classifier != nil && s.classifier.IsSupported(hint) {
		score = domain.DomainScore{Domain: hint, Confidence: 1.0}
	} else if s.classifier != nil {
		score = s.classifier.Classify(text)
	} else {
		score = domain.DomainScore{Domain: GeneralDomain, Confidence: 1.0}
	}

	rec := domain.DocumentRecord{
		DocumentID: documentID,
		Chunks:     chunks,
		Domain:     score.Domain,
		Confidence: score.Confidence,
		IngestedAt: time.Now().Unix(),
	}
	if err := s.ledger.Record(ctx, rec); err != nil {
		logger.Warn("Ledger record for %s failed: %v", documentID, err)
	}
}

// normalize scales a vector to unit length. Zero vectors pass through
// unchanged. The store applies cosine distance, so unit vectors make the
// reported scores comparable across queries.
func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
