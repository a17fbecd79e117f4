package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/KaramelBytes/bizlens-cli/internal/ai"
	"github.com/KaramelBytes/bizlens-cli/internal/assistant"
	cfgpkg "github.com/KaramelBytes/bizlens-cli/internal/config"
)

func TestResolveProvider(t *testing.T) {
	cases := []struct {
		cfg  *cfgpkg.Global
		flag string
		want string
	}{
		{nil, "", ai.ProviderGemini},
		{&cfgpkg.Global{DefaultProvider: "OpenRouter"}, "", ai.ProviderOpenRouter},
		{&cfgpkg.Global{DefaultProvider: "openrouter"}, "claude", ai.ProviderAnthropic},
		{nil, "google", ai.ProviderGemini},
	}
	for _, c := range cases {
		if got := resolveProvider(c.cfg, c.flag); got != c.want {
			t.Fatalf("resolveProvider(%+v, %q) = %q, want %q", c.cfg, c.flag, got, c.want)
		}
	}
}

func TestBuildRuntime(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")
	for _, p := range ai.Providers() {
		rt, name, err := buildRuntime(&cfgpkg.Global{DefaultProvider: p}, runtimeOptions{})
		if err != nil || rt == nil || name != p {
			t.Fatalf("%s: rt=%v name=%q err=%v", p, rt, name, err)
		}
	}
	if _, _, err := buildRuntime(nil, runtimeOptions{ProviderFlag: "ollama"}); err == nil {
		t.Fatal("expected unsupported provider error")
	}
}

func TestSelectModelPrecedence(t *testing.T) {
	cfg := &cfgpkg.Global{DefaultModel: "cfg-model"}
	if got := selectModel(ai.ProviderGemini, cfg, "cli-model"); got != "cli-model" {
		t.Fatalf("expected CLI model, got %q", got)
	}
	if got := selectModel(ai.ProviderGemini, cfg, ""); got != "cfg-model" {
		t.Fatalf("expected config model, got %q", got)
	}
	if got := selectModel(ai.ProviderAnthropic, nil, ""); got != ai.DefaultModel(ai.ProviderAnthropic) {
		t.Fatalf("expected provider default, got %q", got)
	}
}

func TestAssistantOptions(t *testing.T) {
	cfg := &cfgpkg.Global{ChatTemperature: 0.5, ChatMaxTokens: 800, ReportTemperature: 0.2, ReportMaxTokens: 3000, HistoryTurns: 4}
	opt := assistantOptions(cfg, "gemini-2.0-flash", 0)
	if opt.ChatTemperature != 0.5 || opt.ChatMaxTokens != 800 || opt.ReportMaxTokens != 3000 || opt.HistoryTurns != 4 {
		t.Fatalf("config not applied: %+v", opt)
	}
	if want := ai.PromptBudget("gemini-2.0-flash", 3000); opt.PromptLimit != want {
		t.Fatalf("prompt limit %d, want model budget %d", opt.PromptLimit, want)
	}
	if opt := assistantOptions(cfg, "gemini-2.0-flash", 1234); opt.PromptLimit != 1234 {
		t.Fatalf("flag should win, got %d", opt.PromptLimit)
	}
	if opt := assistantOptions(nil, "unknown-model", 0); opt.PromptLimit != 0 || opt.ChatTemperature != 0.7 {
		t.Fatalf("unknown model should be unlimited with defaults: %+v", opt)
	}
}

func TestFriendlyError(t *testing.T) {
	rl := &ai.RateLimitError{APIError: &ai.APIError{StatusCode: 429}}
	err := friendlyError(rl)
	if !strings.HasPrefix(err.Error(), ai.UserMessage(ai.ClassRateLimit)) || !errors.Is(err, rl) {
		t.Fatalf("unexpected: %v", err)
	}
	ve := &assistant.ValidationError{Field: "message", Message: "Message is required"}
	if err := friendlyError(ve); err.Error() != "Message is required" {
		t.Fatalf("validation errors pass through, got %v", err)
	}
}

func TestSetConfigValue(t *testing.T) {
	c := &cfgpkg.Global{}
	for k, v := range map[string]string{"language": "HI", "chat_max_tokens": "500", "report_temperature": "0.1", "default_provider": "Anthropic"} {
		if err := setConfigValue(c, k, v); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}
	if c.Language != "hi" || c.ChatMaxTokens != 500 || c.ReportTemperature != 0.1 || c.DefaultProvider != "anthropic" {
		t.Fatalf("unexpected config: %+v", c)
	}
	for k, v := range map[string]string{"language": "fr", "chat_max_tokens": "-1", "nope": "x"} {
		if err := setConfigValue(c, k, v); err == nil {
			t.Fatalf("expected error for %s=%s", k, v)
		}
	}
}
