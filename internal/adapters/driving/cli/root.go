// Package cli implements the command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/citeline-ai/citeline/internal/adapters/driven/config/file"
	ollamaembed "github.com/citeline-ai/citeline/internal/adapters/driven/embedding/ollama"
	ollamallm "github.com/citeline-ai/citeline/internal/adapters/driven/llm/ollama"
	"github.com/citeline-ai/citeline/internal/adapters/driven/reranker/tei"
	"github.com/citeline-ai/citeline/internal/adapters/driven/storage/sqlite"
	"github.com/citeline-ai/citeline/internal/adapters/driven/vectorstore/qdrant"
	"github.com/citeline-ai/citeline/internal/chunker"
	"github.com/citeline-ai/citeline/internal/core/domain"
	"github.com/citeline-ai/citeline/internal/core/ports/driving"
	"github.com/citeline-ai/citeline/internal/core/services"
	"github.com/citeline-ai/citeline/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services the commands run against. Wired lazily by ensureServices so that
// commands like version never touch the network or the config directory;
// tests swap these for mocks.
var (
	answerService driving.AnswerService
	corpusService driving.CorpusService
	domainService driving.DomainService
)

var (
	flagVerbose   bool
	flagConfigDir string
)

var rootCmd = &cobra.Command{
	Use:   "citeline",
	Short: "Question answering over your own documents, with citations",
	Long: `Citeline answers questions from a local document corpus.
Retrieved passages are reranked and fed to a local model that must cite
its sources per sentence; unsupported answers are rejected and the engine
abstains with "not found" instead of guessing.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose progress output on stderr")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config", "", "config directory (default ~/.citeline)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ensureServices wires the production adapters on first use. Already-set
// services (injected by tests) are kept.
func ensureServices() error {
	if answerService != nil && corpusService != nil && domainService != nil {
		return nil
	}

	settingsStore, err := file.NewSettingsStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	settings := settingsStore.Settings()
	applyEnvOverrides(&settings)

	promptDir := ""
	dataDir := ""
	if flagConfigDir != "" {
		promptDir = filepath.Join(flagConfigDir, "prompts")
		dataDir = filepath.Join(flagConfigDir, "data")
	}
	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return fmt.Errorf("open prompt store: %w", err)
	}

	ledger, err := sqlite.NewLedger(dataDir)
	if err != nil {
		return fmt.Errorf("open document ledger: %w", err)
	}

	embedder := ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL: settings.OllamaURL,
		Model:   settings.EmbedModel,
	})
	store := qdrant.NewStore(qdrant.Config{
		URL:        settings.Store.URL,
		APIKey:     settings.Store.APIKey,
		Collection: settings.Store.Collection,
	})
	scorer := tei.NewRerankerService(tei.Config{
		BaseURL: settings.RerankerURL,
		Model:   settings.RerankModel,
	})
	llm := ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.OllamaURL,
	})

	classifier := services.NewDomainClassifier(settings.MinConfidence)
	chunks := chunker.New(
		chunker.WithMaxWords(settings.MaxWords),
		chunker.WithOverlapWords(settings.OverlapWords),
	)
	corpus := services.NewCorpusService(embedder, store, ledger, classifier, chunks,
		settings.Store.Retries, settings.Store.RetryDelay)

	router := services.NewModelRouter(llm, settings.Models)
	if err := router.Refresh(context.Background()); err != nil {
		logger.Warn("Model availability probe failed: %v", err)
	}

	engine := services.NewAnswerEngine(corpus, services.NewRerankService(scorer),
		classifier, router, services.NewPromptBuilder(prompts), llm, settings)

	answerService = engine
	corpusService = corpus
	domainService = classifier
	return nil
}

// applyEnvOverrides lets environment variables (including a .env file loaded
// by main) override the service endpoints from the config file.
func applyEnvOverrides(settings *domain.Settings) {
	for env, target := range map[string]*string{
		"CITELINE_QDRANT_URL":     &settings.Store.URL,
		"CITELINE_QDRANT_API_KEY": &settings.Store.APIKey,
		"CITELINE_COLLECTION":     &settings.Store.Collection,
		"CITELINE_OLLAMA_URL":     &settings.OllamaURL,
		"CITELINE_RERANKER_URL":   &settings.RerankerURL,
		"CITELINE_DEFAULT_MODEL":  &settings.Models.Default,
		"CITELINE_EMBED_MODEL":    &settings.EmbedModel,
	} {
		if v := os.Getenv(env); v != "" {
			*target = v
		}
	}
}
