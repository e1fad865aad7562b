package domain

// TaskType categorises what the caller wants from generation. It influences
// model selection only, never retrieval.
type TaskType string

// Supported task types.
const (
	TaskGeneral         TaskType = "general"
	TaskCodeGeneration  TaskType = "code_generation"
	TaskCodeExplanation TaskType = "code_explanation"
	TaskTechnical       TaskType = "technical"
)

// IsValid reports whether t is one of the supported task types.
func (t TaskType) IsValid() bool {
	switch t {
	case TaskGeneral, TaskCodeGeneration, TaskCodeExplanation, TaskTechnical:
		return true
	}
	return false
}

// Route says how an ask was answered.
type Route string

// Answer routes.
const (
	// RouteLocal means a model generated the answer from retrieved context.
	RouteLocal Route = "local"

	// RouteAbstain means the engine declined to answer.
	RouteAbstain Route = "abstain"
)

// AbstainAnswer is the exact abstention text. The prompt instructs models to
// reply with it verbatim, and the engine emits it for its own abstentions,
// so callers see one canonical form.
const AbstainAnswer = "not found"

// AskResult is the outcome of answering one question.
type AskResult struct {
	Route            Route             `json:"route"`
	Answer           string            `json:"answer"`
	ContextMap       []ContextMapEntry `json:"contextMap"`
	ModelUsed        string            `json:"model_used"`
	DetectedDomain   string            `json:"detected_domain"`
	DomainConfidence float64           `json:"domain_confidence"`
	TaskType         TaskType          `json:"task_type"`
}

// Health is a point-in-time report of engine configuration and live model
// availability.
type Health struct {
	OK               bool              `json:"ok"`
	Collection       string            `json:"collection"`
	EmbedModel       string            `json:"embed_model"`
	DefaultModel     string            `json:"default_model"`
	Specialised      map[string]string `json:"specialised"`
	AvailableModels  []string          `json:"available_models"`
	SupportedDomains []string          `json:"supported_domains"`
}
