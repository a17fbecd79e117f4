package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/bizlens-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/bizlens-cli/internal/config"
	"github.com/KaramelBytes/bizlens-cli/internal/prompt"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set BizLens configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		printConfig(os.Stdout, cfg)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := setConfigValue(cfg, args[0], args[1]); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func printConfig(w io.Writer, c *cfgpkg.Global) {
	fmt.Fprintf(w, "api_key: %s\n", mask(c.APIKey))
	fmt.Fprintf(w, "default_provider: %s\n", c.DefaultProvider)
	fmt.Fprintf(w, "default_model: %s\n", c.DefaultModel)
	fmt.Fprintf(w, "language: %s\n", c.Language)
	fmt.Fprintf(w, "chat_temperature: %.2f\n", c.ChatTemperature)
	fmt.Fprintf(w, "chat_max_tokens: %d\n", c.ChatMaxTokens)
	fmt.Fprintf(w, "report_temperature: %.2f\n", c.ReportTemperature)
	fmt.Fprintf(w, "report_max_tokens: %d\n", c.ReportMaxTokens)
	fmt.Fprintf(w, "prompt_limit: %d\n", c.PromptLimit)
	fmt.Fprintf(w, "history_turns: %d\n", c.HistoryTurns)
	fmt.Fprintf(w, "sample_rows: %d\n", c.SampleRows)
	fmt.Fprintf(w, "max_rows: %d\n", c.MaxRows)
	fmt.Fprintf(w, "sessions_dir: %s\n", c.SessionsDir)
	fmt.Fprintf(w, "http_timeout_sec: %d\n", c.HTTPTimeoutSec)
	fmt.Fprintf(w, "retry_max_attempts: %d\n", c.RetryMaxAttempts)
	fmt.Fprintf(w, "retry_base_delay_ms: %d\n", c.RetryBaseDelayMs)
	fmt.Fprintf(w, "retry_max_delay_ms: %d\n", c.RetryMaxDelayMs)
	if c.GeminiBaseURL != "" {
		fmt.Fprintf(w, "gemini_base_url: %s\n", c.GeminiBaseURL)
	}
	fmt.Fprintf(w, "log_level: %s\n", c.LogLevel)
}

func setConfigValue(c *cfgpkg.Global, key, val string) error {
	switch key {
	case "api_key":
		c.APIKey = val
	case "default_provider":
		p := strings.ToLower(strings.TrimSpace(val))
		if !slices.Contains(ai.Providers(), p) {
			return fmt.Errorf("invalid default_provider: %s (use %s)", val, strings.Join(ai.Providers(), ", "))
		}
		c.DefaultProvider = p
	case "default_model":
		c.DefaultModel = val
	case "language":
		if !prompt.IsSupported(val) {
			return fmt.Errorf("invalid language: %s (use %s)", val, strings.Join(prompt.Languages(), ", "))
		}
		c.Language = strings.ToLower(val)
	case "chat_temperature":
		return parseFloatInto(&c.ChatTemperature, key, val)
	case "report_temperature":
		return parseFloatInto(&c.ReportTemperature, key, val)
	case "chat_max_tokens":
		return parseIntInto(&c.ChatMaxTokens, key, val)
	case "report_max_tokens":
		return parseIntInto(&c.ReportMaxTokens, key, val)
	case "prompt_limit":
		return parseIntInto(&c.PromptLimit, key, val)
	case "history_turns":
		return parseIntInto(&c.HistoryTurns, key, val)
	case "sample_rows":
		return parseIntInto(&c.SampleRows, key, val)
	case "max_rows":
		return parseIntInto(&c.MaxRows, key, val)
	case "sessions_dir":
		c.SessionsDir = val
	case "http_timeout_sec":
		return parseIntInto(&c.HTTPTimeoutSec, key, val)
	case "retry_max_attempts":
		return parseIntInto(&c.RetryMaxAttempts, key, val)
	case "retry_base_delay_ms":
		return parseIntInto(&c.RetryBaseDelayMs, key, val)
	case "retry_max_delay_ms":
		return parseIntInto(&c.RetryMaxDelayMs, key, val)
	case "gemini_base_url":
		c.GeminiBaseURL = val
	case "log_level":
		c.LogLevel = strings.ToLower(val)
	default:
		return fmt.Errorf("unknown key: %s (known: %s)", key, strings.Join(cfgpkg.Keys, ", "))
	}
	return nil
}

func parseIntInto(dst *int, key, val string) error {
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return fmt.Errorf("invalid int for %s: %v", key, val)
	}
	*dst = i
	return nil
}

func parseFloatInto(dst *float64, key, val string) error {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f < 0 {
		return fmt.Errorf("invalid float for %s: %v", key, val)
	}
	*dst = f
	return nil
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
