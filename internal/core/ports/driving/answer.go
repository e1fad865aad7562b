package driving

import (
	"context"

	"github.com/citeline-ai/citeline/internal/core/domain"
)

// AnswerService answers natural-language questions from the indexed corpus,
// enforcing inline citations or abstaining.
type AnswerService interface {
	// Ask retrieves, reranks, prompts, and generates an answer for the
	// query. The result is either a cited answer (route "local") or an
	// abstention (route "abstain") carrying the same metadata.
	Ask(ctx context.Context, query string, taskType domain.TaskType) (*domain.AskResult, error)

	// Health reports engine configuration and live model availability.
	Health(ctx context.Context) (*domain.Health, error)
}
