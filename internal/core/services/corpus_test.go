package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citeline-ai/citeline/internal/chunker"
	"github.com/citeline-ai/citeline/internal/core/domain"
	"github.com/citeline-ai/citeline/internal/core/ports/driven"
	"github.com/citeline-ai/citeline/internal/core/ports/driving"
)

// mockEmbedder implements driven.EmbeddingService with deterministic vectors.
type mockEmbedder struct {
	dims     int
	embedErr error
	batchErr error
	calls    int
}

func (m *mockEmbedder) vector(text string) []float32 {
	v := make([]float32, m.dims)
	for i, r := range text {
		v[i%m.dims] += float32(r) / 1000
	}
	return v
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int             { return m.dims }
func (m *mockEmbedder) ModelName() string           { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                { return nil }

// mockStore implements driven.VectorStore in memory.
type mockStore struct {
	points       map[string]driven.UpsertPoint
	ensureErrs   []error // consumed per EnsureCollection call
	ensureCalls  int
	upsertErr    error
	queryErr     error
	countErr     error
	queryResults []driven.ScoredPoint
}

func newMockStore() *mockStore {
	return &mockStore{points: make(map[string]driven.UpsertPoint)}
}

func (m *mockStore) EnsureCollection(_ context.Context, _ int) error {
	m.ensureCalls++
	if len(m.ensureErrs) > 0 {
		err := m.ensureErrs[0]
		m.ensureErrs = m.ensureErrs[1:]
		return err
	}
	return nil
}

func (m *mockStore) Upsert(_ context.Context, points []driven.UpsertPoint) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	for _, p := range points {
		m.points[p.ID] = p
	}
	return nil
}

func (m *mockStore) Query(_ context.Context, _ []float32, k int) ([]driven.ScoredPoint, error) {
	if m.queryErr != nil {
		return nil, m.queryErr
	}
	if k > len(m.queryResults) {
		k = len(m.queryResults)
	}
	return m.queryResults[:k], nil
}

func (m *mockStore) Count(_ context.Context) (int, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return len(m.points), nil
}

func (m *mockStore) Close() error { return nil }

// mockLedger implements driven.DocumentLedger in memory.
type mockLedger struct {
	records   map[string]domain.DocumentRecord
	recordErr error
}

func newMockLedger() *mockLedger {
	return &mockLedger{records: make(map[string]domain.DocumentRecord)}
}

func (m *mockLedger) Record(_ context.Context, rec domain.DocumentRecord) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.records[rec.DocumentID] = rec
	return nil
}

func (m *mockLedger) Get(_ context.Context, id string) (*domain.DocumentRecord, error) {
	rec, ok := m.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (m *mockLedger) List(_ context.Context) ([]domain.DocumentRecord, error) {
	out := make([]domain.DocumentRecord, 0, len(m.records))
	for _, rec := range m.records {
		out = append(out, rec)
	}
	return out, nil
}

func (m *mockLedger) Close() error { return nil }

func newTestCorpus(store *mockStore, ledger driven.DocumentLedger) *CorpusService {
	return NewCorpusService(
		&mockEmbedder{dims: 8},
		store,
		ledger,
		NewDomainClassifier(domain.DefaultMinConfidence),
		chunker.New(chunker.WithMaxWords(5), chunker.WithOverlapWords(1)),
		3,
		time.Millisecond,
	)
}

func TestEnsureReady_SucceedsAfterTransientFailures(t *testing.T) {
	store := newMockStore()
	store.ensureErrs = []error{errors.New("starting up"), errors.New("still starting")}
	s := newTestCorpus(store, nil)

	require.NoError(t, s.EnsureReady(context.Background()))
	assert.Equal(t, 3, store.ensureCalls)
}

func TestEnsureReady_ExhaustsRetryBudget(t *testing.T) {
	store := newMockStore()
	store.ensureErrs = []error{
		errors.New("down"), errors.New("down"), errors.New("down"),
	}
	s := newTestCorpus(store, nil)

	err := s.EnsureReady(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.Equal(t, 3, store.ensureCalls)
}

func TestEnsureReady_CancelledBetweenAttempts(t *testing.T) {
	store := newMockStore()
	store.ensureErrs = []error{errors.New("down"), errors.New("down"), errors.New("down")}
	s := NewCorpusService(&mockEmbedder{dims: 8}, store, nil, nil,
		chunker.New(), 3, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := s.EnsureReady(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIngest_ChunksEmbedsAndUpserts(t *testing.T) {
	store := newMockStore()
	ledger := newMockLedger()
	s := newTestCorpus(store, ledger)

	text := "one two three four five six seven eight nine"
	n, err := s.Ingest(context.Background(), "doc-1", text, driving.IngestOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, store.points, 2)

	// Payloads carry text, document id, and 1-based chunk index.
	id := domain.PassageID("doc-1", 1)
	p, ok := store.points[id]
	require.True(t, ok)
	assert.Equal(t, "doc-1", p.Payload.DocumentID)
	assert.Equal(t, 1, p.Payload.Chunk)
	assert.Equal(t, "one two three four five", p.Payload.Text)

	// Vectors are unit length.
	var sum float64
	for _, x := range p.Vector {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, sum, 1e-5)

	// Ledger recorded the document.
	rec, err := ledger.Get(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 2, rec.Chunks)
}

func TestIngest_IsIdempotent(t *testing.T) {
	store := newMockStore()
	s := newTestCorpus(store, nil)

	text := "alpha bravo charlie delta echo foxtrot golf"
	_, err := s.Ingest(context.Background(), "doc-1", text, driving.IngestOptions{})
	require.NoError(t, err)
	firstIDs := make([]string, 0, len(store.points))
	for id := range store.points {
		firstIDs = append(firstIDs, id)
	}

	_, err = s.Ingest(context.Background(), "doc-1", text, driving.IngestOptions{})
	require.NoError(t, err)

	assert.Len(t, store.points, len(firstIDs))
	for _, id := range firstIDs {
		assert.Contains(t, store.points, id)
	}
}

func TestIngest_EmptyTextWritesNothing(t *testing.T) {
	store := newMockStore()
	s := newTestCorpus(store, nil)

	n, err := s.Ingest(context.Background(), "doc-1", "   \n ", driving.IngestOptions{})
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.points)
}

func TestIngest_EmptyDocumentID(t *testing.T) {
	s := newTestCorpus(newMockStore(), nil)

	_, err := s.Ingest(context.Background(), "", "text", driving.IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngest_EmbeddingFailure(t *testing.T) {
	store := newMockStore()
	s := NewCorpusService(
		&mockEmbedder{dims: 8, batchErr: errors.New("provider down")},
		store, nil, nil, chunker.New(), 1, 0)

	_, err := s.Ingest(context.Background(), "doc", "some words here", driving.IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailure)
	assert.Empty(t, store.points)
}

func TestIngest_StoreFailure(t *testing.T) {
	store := newMockStore()
	store.upsertErr = errors.New("write refused")
	s := newTestCorpus(store, nil)

	_, err := s.Ingest(context.Background(), "doc", "some words here", driving.IngestOptions{})
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestIngest_DomainHintOverridesDetection(t *testing.T) {
	ledger := newMockLedger()
	s := newTestCorpus(newMockStore(), ledger)

	_, err := s.Ingest(context.Background(), "doc", "patient diagnosis treatment",
		driving.IngestOptions{DomainHint: "legal"})
	require.NoError(t, err)

	rec, err := ledger.Get(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, "legal", rec.Domain)
	assert.Equal(t, 1.0, rec.Confidence)
}

func TestIngest_UnknownHintFallsBackToDetection(t *testing.T) {
	ledger := newMockLedger()
	s := newTestCorpus(newMockStore(), ledger)

	_, err := s.Ingest(context.Background(), "doc",
		"patient diagnosis treatment medication hospital clinical",
		driving.IngestOptions{DomainHint: "astrology"})
	require.NoError(t, err)

	rec, err := ledger.Get(context.Background(), "doc")
	require.NoError(t, err)
	assert.Equal(t, "medical", rec.Domain)
}

func TestSearch_InvalidInput(t *testing.T) {
	s := newTestCorpus(newMockStore(), nil)

	_, err := s.Search(context.Background(), "", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = s.Search(context.Background(), "q", -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearch_MapsHitsToPassages(t *testing.T) {
	store := newMockStore()
	store.queryResults = []driven.ScoredPoint{
		{ID: "p1", Score: 0.9, Payload: driven.PassagePayload{Text: "t1", DocumentID: "d1", Chunk: 1}},
		{ID: "p2", Score: 0.4, Payload: driven.PassagePayload{Text: "t2", DocumentID: "d2", Chunk: 3}},
	}
	s := newTestCorpus(store, nil)

	passages, err := s.Search(context.Background(), "query", 5)
	require.NoError(t, err)
	require.Len(t, passages, 2)
	assert.Equal(t, "p1", passages[0].ID)
	assert.Equal(t, "d2", passages[1].DocumentID)
	assert.Equal(t, 3, passages[1].ChunkIndex)
	assert.Equal(t, 0.9, passages[0].Score)
}

func TestSeed_WritesOnlyWhenEmpty(t *testing.T) {
	store := newMockStore()
	ledger := newMockLedger()
	s := newTestCorpus(store, ledger)

	written, err := s.Seed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, written)
	assert.NotEmpty(t, store.points)

	written, err = s.Seed(context.Background())
	require.NoError(t, err)
	assert.Zero(t, written)
}

func TestDocuments_NilLedger(t *testing.T) {
	s := newTestCorpus(newMockStore(), nil)

	docs, err := s.Documents(context.Background())
	require.NoError(t, err)
	assert.Nil(t, docs)
}

func TestPassageID_Deterministic(t *testing.T) {
	a := domain.PassageID("doc", 1)
	b := domain.PassageID("doc", 1)
	c := domain.PassageID("doc", 2)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, domain.PassageID("other", 1), a)
}
