package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/citeline-ai/citeline/internal/core/domain"
	"github.com/citeline-ai/citeline/internal/core/ports/driven"
	"github.com/citeline-ai/citeline/internal/core/ports/driving"
	"github.com/citeline-ai/citeline/internal/logger"
)

// Ensure AnswerEngine implements the interface.
var _ driving.AnswerService = (*AnswerEngine)(nil)

// AnswerEngine orchestrates one question through retrieval, reranking,
// routing, prompting, generation, and citation validation.
//
// Stages within a request run strictly in sequence, except domain
// classification and model routing, which depend only on the query text and
// run concurrently with reranking. Requests share no mutable state and are
// safe to run in parallel.
type AnswerEngine struct {
	corpus     driving.CorpusService
	reranker   *RerankService
	classifier *DomainClassifier
	router     *ModelRouter
	prompts    *PromptBuilder
	llm        driven.LLMService

	topK        int
	contextK    int
	temperature float64
	embedModel  string
	collection  string
	models      domain.ModelSettings
}

// NewAnswerEngine wires the orchestrator from its collaborators and settings.
func NewAnswerEngine(
	corpus driving.CorpusService,
	reranker *RerankService,
	classifier *DomainClassifier,
	router *ModelRouter,
	prompts *PromptBuilder,
	llm driven.LLMService,
	settings domain.Settings,
) *AnswerEngine {
	return &AnswerEngine{
		corpus:      corpus,
		reranker:    reranker,
		classifier:  classifier,
		router:      router,
		prompts:     prompts,
		llm:         llm,
		topK:        settings.TopK,
		contextK:    settings.ContextK,
		temperature: settings.Temperature,
		embedModel:  settings.EmbedModel,
		collection:  settings.Store.Collection,
		models:      settings.Models,
	}
}

// Ask answers a question from the corpus or abstains. The result is either
// route "local" with a cited answer or route "abstain" with the fixed
// "not found" answer; both carry the same metadata. A hard error is returned
// only when an external collaborator fails outright.
func (e *AnswerEngine) Ask(ctx context.Context, query string, taskType domain.TaskType) (*domain.AskResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	if taskType == "" || !taskType.IsValid() {
		taskType = domain.TaskGeneral
	}

	// Classification and routing need only the query text; run them while
	// retrieval and reranking do their network round trips.
	type routing struct {
		score domain.DomainScore
		sel   domain.ModelSelection
	}
	routed := make(chan routing, 1)
	go func() {
		score := e.classifier.Classify(query)
		routed <- routing{score: score, sel: e.router.Route(taskType, score.Domain, query)}
	}()

	logger.Section("Retrieval")
	candidates, err := e.corpus.Search(ctx, query, e.topK)
	if err != nil {
		return nil, err
	}

	if len(candidates) == 0 {
		logger.Info("No passages retrieved, abstaining")
		r := <-routed
		return e.abstain(nil, r.sel, r.score, taskType), nil
	}

	logger.Section("Reranking")
	ranked, _, err := e.reranker.Rerank(ctx, query, candidates)
	if err != nil {
		return nil, err
	}

	r := <-routed
	logger.Info("Routing: task=%s domain=%s model=%s", taskType, r.score.Domain, r.sel.Resolved)

	logger.Section("Prompting")
	prompt, cmap := e.prompts.Build(query, ranked, e.contextK)

	logger.Section("Generation")
	answer, err := e.generate(ctx, r.sel.Resolved, prompt)
	if err != nil {
		return nil, err
	}

	answer = strings.TrimSpace(answer)
	if answer == "" ||
		strings.EqualFold(answer, domain.AbstainAnswer) ||
		!e.prompts.HasValidCitations(answer, len(cmap)) {
		logger.Info("Answer failed the citation gate, abstaining")
		return e.abstain(cmap, r.sel, r.score, taskType), nil
	}

	return &domain.AskResult{
		Route:            domain.RouteLocal,
		Answer:           answer,
		ContextMap:       cmap,
		ModelUsed:        r.sel.Resolved,
		DetectedDomain:   r.score.Domain,
		DomainConfidence: r.score.Confidence,
		TaskType:         taskType,
	}, nil
}

// generate calls the primary generation endpoint and falls back to the
// chat-style call convention against the same model. Both failing is a
// hard GenerationFailure, distinct from abstention.
func (e *AnswerEngine) generate(ctx context.Context, model, prompt string) (string, error) {
	opts := driven.GenerateOptions{Temperature: e.temperature}

	answer, genErr := e.llm.Generate(ctx, model, prompt, opts)
	if genErr == nil {
		return answer, nil
	}
	logger.Warn("Generate failed (%v), retrying via chat endpoint", genErr)

	answer, chatErr := e.llm.Chat(ctx, model, []driven.ChatMessage{
		{Role: "user", Content: prompt},
	}, opts)
	if chatErr == nil {
		return answer, nil
	}

	return "", fmt.Errorf("%w: generate: %w; chat: %w", domain.ErrGenerationFailure, genErr, chatErr)
}

func (e *AnswerEngine) abstain(
	cmap []domain.ContextMapEntry,
	sel domain.ModelSelection,
	score domain.DomainScore,
	taskType domain.TaskType,
) *domain.AskResult {
	if cmap == nil {
		cmap = []domain.ContextMapEntry{}
	}
	return &domain.AskResult{
		Route:            domain.RouteAbstain,
		Answer:           domain.AbstainAnswer,
		ContextMap:       cmap,
		ModelUsed:        sel.Resolved,
		DetectedDomain:   score.Domain,
		DomainConfidence: score.Confidence,
		TaskType:         taskType,
	}
}

// Health reports engine configuration and live model availability. The
// availability snapshot is refreshed as part of the probe.
func (e *AnswerEngine) Health(ctx context.Context) (*domain.Health, error) {
	if err := e.router.Refresh(ctx); err != nil {
		logger.Warn("Model availability probe failed: %v", err)
	}

	return &domain.Health{
		OK:           true,
		Collection:   e.collection,
		EmbedModel:   e.embedModel,
		DefaultModel: e.models.Default,
		Specialised: map[string]string{
			"code_generation":  e.models.CodeGeneration,
			"code_explanation": e.models.CodeExplain,
			"general_chat":     e.models.GeneralChat,
			"technical":        e.models.Technical,
		},
		AvailableModels:  e.router.Available(),
		SupportedDomains: e.classifier.Supported(),
	}, nil
}
