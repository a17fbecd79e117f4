package ai

// Model metadata used to size prompts against a context window.

type ModelInfo struct {
	Name          string
	Provider      string
	ContextTokens int // approximate context window
}

var models = map[string]ModelInfo{
	"gemini-1.5-flash":      {Name: "gemini-1.5-flash", Provider: ProviderGemini, ContextTokens: 1000000},
	"gemini-2.0-flash":      {Name: "gemini-2.0-flash", Provider: ProviderGemini, ContextTokens: 1000000},
	"gemini-2.0-flash-lite": {Name: "gemini-2.0-flash-lite", Provider: ProviderGemini, ContextTokens: 1000000},
	"gemini-2.5-flash":      {Name: "gemini-2.5-flash", Provider: ProviderGemini, ContextTokens: 1000000},

	"google/gemini-2.0-flash-001":      {Name: "google/gemini-2.0-flash-001", Provider: ProviderOpenRouter, ContextTokens: 1000000},
	"openai/gpt-4o-mini":               {Name: "openai/gpt-4o-mini", Provider: ProviderOpenRouter, ContextTokens: 128000},
	"meta-llama/llama-3.1-8b-instruct": {Name: "meta-llama/llama-3.1-8b-instruct", Provider: ProviderOpenRouter, ContextTokens: 131072},
	"deepseek/deepseek-r1:free":        {Name: "deepseek/deepseek-r1:free", Provider: ProviderOpenRouter, ContextTokens: 128000},

	"claude-haiku-4-5-20251001": {Name: "claude-haiku-4-5-20251001", Provider: ProviderAnthropic, ContextTokens: 200000},
	"claude-sonnet-4-5":         {Name: "claude-sonnet-4-5", Provider: ProviderAnthropic, ContextTokens: 200000},
}

var defaultModels = map[string]string{
	ProviderGemini:     "gemini-2.0-flash",
	ProviderOpenRouter: "google/gemini-2.0-flash-001",
	ProviderAnthropic:  "claude-haiku-4-5-20251001",
}

// LookupModel returns ModelInfo and ok flag.
func LookupModel(name string) (ModelInfo, bool) {
	mi, ok := models[name]
	return mi, ok
}

// DefaultModel returns the model used for a provider when none is configured.
func DefaultModel(provider string) string { return defaultModels[provider] }

// PromptBudget is the token room left for a prompt once maxOutput is
// reserved. Unknown models report 0, meaning no limit is known.
func PromptBudget(model string, maxOutput int) int {
	mi, ok := LookupModel(model)
	if !ok || mi.ContextTokens <= maxOutput {
		return 0
	}
	return mi.ContextTokens - maxOutput
}
