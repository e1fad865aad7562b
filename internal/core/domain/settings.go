package domain

import (
	"fmt"
	"time"
)

// Default configuration values, mirroring the deployed system.
const (
	DefaultQdrantURL        = "http://127.0.0.1:6333"
	DefaultCollection       = "tech_knowledge_base"
	DefaultStoreRetries     = 10
	DefaultStoreRetryDelay  = time.Second
	DefaultOllamaURL        = "http://127.0.0.1:11434"
	DefaultEmbedModel       = "bge-m3"
	DefaultRerankerURL      = "http://127.0.0.1:8787"
	DefaultRerankModel      = "jina-reranker-v1-turbo-en"
	DefaultModel            = "phi3.5:3.8b-mini-instruct-q4_0"
	DefaultCodeModel        = "codellama:13b"
	DefaultCodeExplainModel = "codellama:13b"
	DefaultChatModel        = "llama3.1:8b"
	DefaultTechnicalModel   = "llama3.1:70b"
	DefaultTopK             = 12
	DefaultContextK         = 4
	DefaultMaxWords         = 220
	DefaultOverlapWords     = 40
	DefaultMinConfidence    = 0.7
	DefaultTemperature      = 0.1
)

// ModelSettings names the specialised generation models per task.
type ModelSettings struct {
	Default        string `toml:"default"`
	CodeGeneration string `toml:"code_generation"`
	CodeExplain    string `toml:"code_explanation"`
	GeneralChat    string `toml:"general_chat"`
	Technical      string `toml:"technical"`
}

// StoreSettings configures the vector store connection.
type StoreSettings struct {
	URL        string        `toml:"url"`
	APIKey     string        `toml:"api_key"`
	Collection string        `toml:"collection"`
	Retries    int           `toml:"retries"`
	RetryDelay time.Duration `toml:"retry_delay"`
}

// Settings is the full engine configuration. Zero values are filled in by
// ApplyDefaults; Validate rejects combinations the engine cannot run with.
type Settings struct {
	Store StoreSettings `toml:"store"`

	OllamaURL   string `toml:"ollama_url"`
	EmbedModel  string `toml:"embed_model"`
	RerankerURL string `toml:"reranker_url"`
	RerankModel string `toml:"rerank_model"`

	Models ModelSettings `toml:"models"`

	TopK         int     `toml:"top_k"`
	ContextK     int     `toml:"context_k"`
	MaxWords     int     `toml:"max_words"`
	OverlapWords int     `toml:"overlap_words"`
	Temperature  float64 `toml:"temperature"`

	// MinConfidence feeds the domain classifier's acceptance threshold.
	MinConfidence float64 `toml:"min_confidence"`
}

// DefaultSettings returns settings with every field at its default.
func DefaultSettings() Settings {
	s := Settings{}
	s.ApplyDefaults()
	return s
}

// ApplyDefaults fills unset fields with defaults.
func (s *Settings) ApplyDefaults() {
	if s.Store.URL == "" {
		s.Store.URL = DefaultQdrantURL
	}
	if s.Store.Collection == "" {
		s.Store.Collection = DefaultCollection
	}
	if s.Store.Retries == 0 {
		s.Store.Retries = DefaultStoreRetries
	}
	if s.Store.RetryDelay == 0 {
		s.Store.RetryDelay = DefaultStoreRetryDelay
	}
	if s.OllamaURL == "" {
		s.OllamaURL = DefaultOllamaURL
	}
	if s.EmbedModel == "" {
		s.EmbedModel = DefaultEmbedModel
	}
	if s.RerankerURL == "" {
		s.RerankerURL = DefaultRerankerURL
	}
	if s.RerankModel == "" {
		s.RerankModel = DefaultRerankModel
	}
	if s.Models.Default == "" {
		s.Models.Default = DefaultModel
	}
	if s.Models.CodeGeneration == "" {
		s.Models.CodeGeneration = DefaultCodeModel
	}
	if s.Models.CodeExplain == "" {
		s.Models.CodeExplain = DefaultCodeExplainModel
	}
	if s.Models.GeneralChat == "" {
		s.Models.GeneralChat = DefaultChatModel
	}
	if s.Models.Technical == "" {
		s.Models.Technical = DefaultTechnicalModel
	}
	if s.TopK == 0 {
		s.TopK = DefaultTopK
	}
	if s.ContextK == 0 {
		s.ContextK = DefaultContextK
	}
	if s.MaxWords == 0 {
		s.MaxWords = DefaultMaxWords
	}
	if s.OverlapWords == 0 {
		s.OverlapWords = DefaultOverlapWords
	}
	if s.Temperature == 0 {
		s.Temperature = DefaultTemperature
	}
	if s.MinConfidence == 0 {
		s.MinConfidence = DefaultMinConfidence
	}
}

// Validate returns an error describing the first invalid field.
func (s *Settings) Validate() error {
	if s.TopK < 0 {
		return fmt.Errorf("%w: top_k must be non-negative, got %d", ErrInvalidInput, s.TopK)
	}
	if s.ContextK < 0 {
		return fmt.Errorf("%w: context_k must be non-negative, got %d", ErrInvalidInput, s.ContextK)
	}
	if s.ContextK > s.TopK {
		return fmt.Errorf("%w: context_k (%d) cannot exceed top_k (%d)", ErrInvalidInput, s.ContextK, s.TopK)
	}
	if s.MaxWords <= 0 {
		return fmt.Errorf("%w: max_words must be positive, got %d", ErrInvalidInput, s.MaxWords)
	}
	if s.OverlapWords < 0 {
		return fmt.Errorf("%w: overlap_words must be non-negative, got %d", ErrInvalidInput, s.OverlapWords)
	}
	if s.Store.Retries < 1 {
		return fmt.Errorf("%w: store retries must be at least 1, got %d", ErrInvalidInput, s.Store.Retries)
	}
	if s.MinConfidence < 0 || s.MinConfidence > 1 {
		return fmt.Errorf("%w: min_confidence must be in [0,1], got %v", ErrInvalidInput, s.MinConfidence)
	}
	return nil
}
