// Package qdrant provides a VectorStore adapter over the Qdrant REST API.
//
// Two generations of the query API exist: newer servers expose
// points/query, older ones only points/search. The adapter probes the
// server once and commits to one mode, instead of branching per call.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/citeline-ai/citeline/internal/core/ports/driven"
	"github.com/citeline-ai/citeline/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// APIMode selects the query call convention.
type APIMode string

// Query API modes.
const (
	// ModeAuto probes the server on first query and commits to one mode.
	ModeAuto APIMode = "auto"

	// ModeQuery uses the newer points/query endpoint.
	ModeQuery APIMode = "query"

	// ModeSearch uses the legacy points/search endpoint.
	ModeSearch APIMode = "search"
)

// Default configuration values.
const (
	DefaultTimeout = 15 * time.Second
)

// Config holds connection details for a Qdrant server.
type Config struct {
	// URL is the Qdrant base URL (e.g., http://127.0.0.1:6333).
	URL string

	// APIKey is sent in the api-key header when non-empty.
	APIKey string

	// Collection is the collection name.
	Collection string

	// Timeout is the per-request timeout (default: 15s).
	Timeout time.Duration

	// Mode forces a query API generation. Default: ModeAuto.
	Mode APIMode
}

// Store is a Qdrant REST client.
type Store struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	collection string

	probeOnce sync.Once
	mode      APIMode
}

// NewStore creates a Qdrant store client.
func NewStore(cfg Config) *Store {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Mode == "" {
		cfg.Mode = ModeAuto
	}
	return &Store{
		client:     &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		mode:       cfg.Mode,
	}
}

// EnsureCollection creates the collection with cosine distance if it does
// not exist. Safe to race across processes: a concurrent create surfacing
// as a conflict is treated as success.
func (s *Store) EnsureCollection(ctx context.Context, dim int) error {
	status, _, err := s.do(ctx, http.MethodGet, s.collectionURL(""), nil)
	if err != nil {
		return err
	}
	if status == http.StatusOK {
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dim,
			"distance": "Cosine",
		},
	}
	status, respBody, err := s.do(ctx, http.MethodPut, s.collectionURL(""), body)
	if err != nil {
		return err
	}
	if status == http.StatusOK || status == http.StatusConflict {
		return nil
	}
	return fmt.Errorf("create collection: status %d: %s", status, truncate(respBody))
}

// Upsert writes the points as one batch with wait=true, so the write is
// applied before the call returns.
func (s *Store) Upsert(ctx context.Context, points []driven.UpsertPoint) error {
	reqPoints := make([]map[string]any, len(points))
	for i, p := range points {
		reqPoints[i] = map[string]any{
			"id":      p.ID,
			"vector":  p.Vector,
			"payload": p.Payload,
		}
	}

	status, respBody, err := s.do(ctx, http.MethodPut,
		s.collectionURL("/points?wait=true"), map[string]any{"points": reqPoints})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("upsert: status %d: %s", status, truncate(respBody))
	}
	return nil
}

// Query returns the k nearest points. The first call in auto mode probes the
// newer points/query endpoint and falls back to points/search permanently if
// the server does not know the route.
func (s *Store) Query(ctx context.Context, vector []float32, k int) ([]driven.ScoredPoint, error) {
	s.probeOnce.Do(func() { s.probe(ctx, vector, k) })

	if s.mode == ModeSearch {
		return s.legacySearch(ctx, vector, k)
	}
	return s.pointsQuery(ctx, vector, k)
}

// probe decides the query API generation once for this client.
func (s *Store) probe(ctx context.Context, vector []float32, k int) {
	if s.mode != ModeAuto {
		return
	}
	status, _, err := s.do(ctx, http.MethodPost, s.collectionURL("/points/query"), map[string]any{
		"query":        vector,
		"limit":        k,
		"with_payload": true,
	})
	if err == nil && status == http.StatusNotFound {
		logger.Info("Qdrant points/query not supported, using legacy points/search")
		s.mode = ModeSearch
		return
	}
	s.mode = ModeQuery
}

func (s *Store) pointsQuery(ctx context.Context, vector []float32, k int) ([]driven.ScoredPoint, error) {
	status, respBody, err := s.do(ctx, http.MethodPost, s.collectionURL("/points/query"), map[string]any{
		"query":        vector,
		"limit":        k,
		"with_payload": true,
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("points/query: status %d: %s", status, truncate(respBody))
	}

	var resp struct {
		Result struct {
			Points []scoredPoint `json:"points"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decode points/query response: %w", err)
	}
	return convertHits(resp.Result.Points), nil
}

func (s *Store) legacySearch(ctx context.Context, vector []float32, k int) ([]driven.ScoredPoint, error) {
	status, respBody, err := s.do(ctx, http.MethodPost, s.collectionURL("/points/search"), map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	})
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("points/search: status %d: %s", status, truncate(respBody))
	}

	var resp struct {
		Result []scoredPoint `json:"result"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("decode points/search response: %w", err)
	}
	return convertHits(resp.Result), nil
}

// Count returns the exact number of stored points.
func (s *Store) Count(ctx context.Context) (int, error) {
	status, respBody, err := s.do(ctx, http.MethodPost,
		s.collectionURL("/points/count"), map[string]any{"exact": true})
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("points/count: status %d: %s", status, truncate(respBody))
	}

	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return 0, fmt.Errorf("decode points/count response: %w", err)
	}
	return resp.Result.Count, nil
}

// Close releases resources.
func (s *Store) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// scoredPoint is the wire shape shared by both query API generations.
type scoredPoint struct {
	ID      any                   `json:"id"`
	Score   float64               `json:"score"`
	Payload driven.PassagePayload `json:"payload"`
}

func convertHits(points []scoredPoint) []driven.ScoredPoint {
	hits := make([]driven.ScoredPoint, len(points))
	for i, p := range points {
		hits[i] = driven.ScoredPoint{
			ID:      pointID(p.ID),
			Score:   p.Score,
			Payload: p.Payload,
		}
	}
	return hits
}

// pointID renders a Qdrant point id, which may be a UUID string or an
// integer, as a string.
func pointID(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (s *Store) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.baseURL, s.collection, suffix)
}

// do issues one JSON request and returns the status code and body.
// Transport errors are returned as errors; HTTP error statuses are left to
// the caller, which knows which ones are meaningful.
func (s *Store) do(ctx context.Context, method, url string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func truncate(b []byte) string {
	const limit = 200
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}
	return string(b)
}
