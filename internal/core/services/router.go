package services

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/citeline-ai/citeline/internal/core/domain"
	"github.com/citeline-ai/citeline/internal/core/ports/driven"
	"github.com/citeline-ai/citeline/internal/logger"
)

// codeKeywords route a query to the technical model when any of them appears
// in the query text.
var codeKeywords = []string{
	"code", "programming", "function", "class", "method", "api", "algorithm", "debug",
}

// ModelRouter selects the generation model for a request from its declared
// task type, detected domain, and live model availability.
//
// Availability is a process-wide snapshot refreshed only by an explicit
// Refresh call. The snapshot is replaced wholesale, never mutated in place,
// so concurrent readers observe either the pre- or post-refresh set.
type ModelRouter struct {
	llm    driven.LLMService
	models domain.ModelSettings

	// fallbacks is the fixed resolution order when the preferred model is
	// not available, most capable first.
	fallbacks []string

	available atomic.Pointer[map[string]struct{}]
}

// NewModelRouter creates a router over the given model settings. The
// availability snapshot starts empty; call Refresh before resolving.
func NewModelRouter(llm driven.LLMService, models domain.ModelSettings) *ModelRouter {
	r := &ModelRouter{
		llm:    llm,
		models: models,
		fallbacks: []string{
			models.Default,
			"llama3.1:70b",
			"llama3.1:8b",
			"mixtral:8x7b-instruct-v0.1-q4_0",
			"codellama:13b",
			"phi3.5:3.8b-mini-instruct-q4_0",
		},
	}
	empty := make(map[string]struct{})
	r.available.Store(&empty)
	return r
}

// Refresh probes the backend for its current model list and replaces the
// availability snapshot atomically. A probe failure leaves the previous
// snapshot in place and returns the error.
func (r *ModelRouter) Refresh(ctx context.Context) error {
	names, err := r.llm.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}

	next := make(map[string]struct{}, len(names))
	for _, name := range names {
		next[name] = struct{}{}
	}
	r.available.Store(&next)
	logger.Debug("Model availability refreshed: %d models", len(next))
	return nil
}

// Available returns the names in the current snapshot.
func (r *ModelRouter) Available() []string {
	snap := *r.available.Load()
	names := make([]string, 0, len(snap))
	for name := range snap {
		names = append(names, name)
	}
	return names
}

// Select picks the logical model for a task. Precedence, first match wins:
// code generation and code explanation tasks get their dedicated models; a
// technical task or domain gets the technical model; a query mentioning a
// code keyword gets the technical model; everything else gets the chat model.
func (r *ModelRouter) Select(taskType domain.TaskType, dom, query string) string {
	switch taskType {
	case domain.TaskCodeGeneration:
		return r.models.CodeGeneration
	case domain.TaskCodeExplanation:
		return r.models.CodeExplain
	case domain.TaskTechnical:
		return r.models.Technical
	}

	if dom == "technical" {
		return r.models.Technical
	}

	queryLower := strings.ToLower(query)
	for _, kw := range codeKeywords {
		if strings.Contains(queryLower, kw) {
			return r.models.Technical
		}
	}

	return r.models.GeneralChat
}

// Resolve maps a logical model to an actually available one. The preferred
// model wins when present; otherwise the first available fallback is used.
// When nothing is available the preferred name is returned unchanged and the
// downstream generation call surfaces the resulting error.
func (r *ModelRouter) Resolve(preferred string) string {
	snap := *r.available.Load()

	if _, ok := snap[preferred]; ok {
		return preferred
	}

	for _, name := range r.fallbacks {
		if _, ok := snap[name]; ok {
			logger.Info("Model %s unavailable, falling back to %s", preferred, name)
			return name
		}
	}

	logger.Warn("No models available, keeping %s and letting generation fail", preferred)
	return preferred
}

// Route combines Select and Resolve into one ModelSelection record.
func (r *ModelRouter) Route(taskType domain.TaskType, dom, query string) domain.ModelSelection {
	candidate := r.Select(taskType, dom, query)
	return domain.ModelSelection{
		TaskType:  taskType,
		Domain:    dom,
		Candidate: candidate,
		Resolved:  r.Resolve(candidate),
	}
}
