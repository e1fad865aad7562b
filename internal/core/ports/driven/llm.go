package driven

import "context"

// LLMService provides language model generation.
//
// Implementations may include:
//   - Ollama (local models)
//   - Any backend exposing both a single-shot and a chat call convention
type LLMService interface {
	// Generate produces a completion from a prompt using the given model.
	Generate(ctx context.Context, model, prompt string, opts GenerateOptions) (string, error)

	// Chat produces a completion from a message list using the given model.
	// Used as the fallback call convention when Generate fails.
	Chat(ctx context.Context, model string, messages []ChatMessage, opts GenerateOptions) (string, error)

	// ListModels returns the names of the models the backend can serve.
	ListModels(ctx context.Context) ([]string, error)

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// ChatMessage is a single message in a conversation.
type ChatMessage struct {
	// Role is one of "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}
