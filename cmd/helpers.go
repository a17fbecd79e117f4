package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/bizlens-cli/internal/ai"
	"github.com/KaramelBytes/bizlens-cli/internal/assistant"
	cfgpkg "github.com/KaramelBytes/bizlens-cli/internal/config"
	"github.com/KaramelBytes/bizlens-cli/internal/dataset"
	"github.com/KaramelBytes/bizlens-cli/internal/prompt"
	"github.com/KaramelBytes/bizlens-cli/internal/session"
)

// apiKeyEnv maps providers to their conventional key variables. They win over
// the configured api_key.
var apiKeyEnv = map[string]string{
	ai.ProviderGemini:     "GEMINI_API_KEY",
	ai.ProviderOpenRouter: "OPENROUTER_API_KEY",
	ai.ProviderAnthropic:  "ANTHROPIC_API_KEY",
}

type runtimeOptions struct {
	ProviderFlag string
}

func resolveProvider(cfg *cfgpkg.Global, flag string) string {
	name := strings.ToLower(strings.TrimSpace(flag))
	if name == "" && cfg != nil && cfg.DefaultProvider != "" {
		name = strings.ToLower(cfg.DefaultProvider)
	}
	switch name {
	case "", "google":
		return ai.ProviderGemini
	case "claude":
		return ai.ProviderAnthropic
	}
	return name
}

func buildRuntime(cfg *cfgpkg.Global, opts runtimeOptions) (ai.Runtime, string, error) {
	rc := ai.RuntimeConfig{}
	if cfg != nil {
		rc.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSec) * time.Second
		rc.RetryMax = cfg.RetryMaxAttempts
		rc.BaseDelay = time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond
		rc.MaxDelay = time.Duration(cfg.RetryMaxDelayMs) * time.Millisecond
		rc.APIKey = cfg.APIKey
	}

	providerName := resolveProvider(cfg, opts.ProviderFlag)
	if v := os.Getenv(apiKeyEnv[providerName]); v != "" {
		rc.APIKey = v
	}
	if providerName == ai.ProviderGemini && cfg != nil {
		rc.BaseURL = cfg.GeminiBaseURL
	}

	client, ok := ai.GetRuntime(providerName, rc)
	if !ok {
		return nil, providerName, fmt.Errorf("provider not supported: %s (use %s)", providerName, strings.Join(ai.Providers(), ", "))
	}
	return client, providerName, nil
}

func selectModel(provider string, cfg *cfgpkg.Global, explicit string) string {
	if explicit != "" {
		return explicit
	}
	if cfg != nil && cfg.DefaultModel != "" {
		return cfg.DefaultModel
	}
	return ai.DefaultModel(provider)
}

// assistantOptions merges config with the prompt-limit flag. Without an
// explicit limit the model context window, less the larger output
// reservation, bounds the prompt.
func assistantOptions(cfg *cfgpkg.Global, model string, promptLimit int) assistant.Options {
	opt := assistant.DefaultOptions()
	opt.Model = model
	if cfg != nil {
		opt.ChatTemperature = cfg.ChatTemperature
		opt.ReportTemperature = cfg.ReportTemperature
		if cfg.ChatMaxTokens > 0 {
			opt.ChatMaxTokens = cfg.ChatMaxTokens
		}
		if cfg.ReportMaxTokens > 0 {
			opt.ReportMaxTokens = cfg.ReportMaxTokens
		}
		if cfg.HistoryTurns > 0 {
			opt.HistoryTurns = cfg.HistoryTurns
		}
		opt.PromptLimit = cfg.PromptLimit
	}
	if promptLimit > 0 {
		opt.PromptLimit = promptLimit
	}
	if opt.PromptLimit == 0 {
		opt.PromptLimit = ai.PromptBudget(model, max(opt.ChatMaxTokens, opt.ReportMaxTokens))
	}
	return opt
}

func datasetOptions(cfg *cfgpkg.Global) dataset.Options {
	opt := dataset.DefaultOptions()
	if cfg == nil {
		return opt
	}
	if cfg.SampleRows > 0 {
		opt.SampleRows = cfg.SampleRows
	}
	if cfg.MaxRows >= 0 {
		opt.MaxRows = cfg.MaxRows
	}
	return opt
}

func sessionsDir(cfg *cfgpkg.Global) (string, error) {
	if cfg != nil && cfg.SessionsDir != "" {
		return cfg.SessionsDir, nil
	}
	dir, err := cfgpkg.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessions"), nil
}

func defaultLanguage(cfg *cfgpkg.Global) string {
	if cfg != nil && cfg.Language != "" {
		return cfg.Language
	}
	return prompt.LangEnglish
}

type sessionOptions struct {
	ID       string
	CSVPath  string
	Language string
}

// openSession loads or creates a session and applies --csv and --lang.
func openSession(cfg *cfgpkg.Global, opts sessionOptions) (*session.Session, error) {
	dir, err := sessionsDir(cfg)
	if err != nil {
		return nil, err
	}
	if opts.Language != "" && !prompt.IsSupported(opts.Language) {
		fmt.Fprintf(os.Stderr, "⚠ Warning: unsupported language %q; using English\n", opts.Language)
	}

	var s *session.Session
	if opts.ID != "" {
		if s, err = session.Load(dir, opts.ID); err != nil {
			return nil, err
		}
		if opts.Language != "" {
			s.Language = opts.Language
		}
	} else {
		lang := opts.Language
		if lang == "" {
			lang = defaultLanguage(cfg)
		}
		s = session.New(dir, lang)
	}

	if opts.CSVPath != "" {
		ds, err := dataset.LoadCSV(opts.CSVPath, datasetOptions(cfg))
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", opts.CSVPath, err)
		}
		s.SetDataset(ds, opts.CSVPath)
		logger.Debug().Str("file", ds.FileName).Int("rows", ds.RowCount).Int("columns", len(ds.Schema)).Msg("dataset loaded")
	}
	return s, nil
}

// friendlyError puts the fixed user-facing message in front of err.
func friendlyError(err error) error {
	var ve *assistant.ValidationError
	if errors.As(err, &ve) {
		return err
	}
	return fmt.Errorf("%s (%w)", ai.UserMessage(ai.Classify(err)), err)
}
