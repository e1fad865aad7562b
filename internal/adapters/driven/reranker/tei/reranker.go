// Package tei provides a reranker adapter for Text Embeddings Inference-style
// cross-encoder servers exposing a /rerank endpoint.
package tei

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/citeline-ai/citeline/internal/core/ports/driven"
)

// Ensure RerankerService implements the interface.
var _ driven.RerankerService = (*RerankerService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://127.0.0.1:8787"
	DefaultModel   = "jina-reranker-v1-turbo-en"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the reranker service.
type Config struct {
	// BaseURL is the reranker server base URL (default: http://127.0.0.1:8787).
	BaseURL string

	// Model is the cross-encoder model name, reported for diagnostics.
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// RerankerService scores query/passage relevance with a cross-encoder.
type RerankerService struct {
	client  *http.Client
	baseURL string
	model   string
}

// rerankRequest is the /rerank request format.
type rerankRequest struct {
	Query string   `json:"query"`
	Texts []string `json:"texts"`
}

// rerankResult is one scored entry in the /rerank response. The server
// returns results sorted by relevance; Index maps back to the input order.
type rerankResult struct {
	Index int     `json:"index"`
	Score float64 `json:"score"`
}

// NewRerankerService creates a new reranker client.
func NewRerankerService(cfg Config) *RerankerService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &RerankerService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// Score returns one relevance score per input text, in input order.
func (s *RerankerService) Score(ctx context.Context, query string, texts []string) ([]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := rerankRequest{
		Query: query,
		Texts: texts,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/rerank",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reranker error (status %d): failed to read response", resp.StatusCode)
		}
		return nil, fmt.Errorf("reranker error (status %d): %s", resp.StatusCode, string(body))
	}

	var results []rerankResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	scores := make([]float64, len(texts))
	for _, r := range results {
		if r.Index < 0 || r.Index >= len(texts) {
			return nil, fmt.Errorf("reranker returned out-of-range index %d for %d texts", r.Index, len(texts))
		}
		scores[r.Index] = r.Score
	}
	if len(results) != len(texts) {
		return nil, fmt.Errorf("reranker returned %d scores for %d texts", len(results), len(texts))
	}

	return scores, nil
}

// ModelName returns the name of the cross-encoder model being used.
func (s *RerankerService) ModelName() string {
	return s.model
}

// Close releases resources.
func (s *RerankerService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
