package ai

import "context"

// Runtime is the model gateway contract: one text prompt in, free-form text
// out. Implementations own transport concerns such as timeouts and retries.
type Runtime interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
}

// Provider identifiers used across the CLI for selection.
const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderAnthropic  = "anthropic"
)

// GenerateRequest is a single prompt plus generation parameters.
type GenerateRequest struct {
	Model           string
	Prompt          string
	Temperature     float64
	MaxOutputTokens int
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// GenerateResponse carries the generated text. Text may be empty when the
// provider returned no candidates.
type GenerateResponse struct {
	Text      string
	Model     string
	RequestID string
	Usage     Usage
}
