package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/bizlens-cli/internal/ai"
	"github.com/KaramelBytes/bizlens-cli/internal/assistant"
)

var (
	askSession     string
	askCSV         string
	askLang        string
	askProvider    string
	askModel       string
	askPromptLimit int
	askDryRun      bool
	askPrintPrompt bool
	askJSON        bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about your data or get general business advice",
	Args:  cobra.MinimumNArgs(1),
	Example: `  bizlens ask --csv ./customers.csv "What is our churn rate?"
  bizlens ask --session 3f2a "Which customers should we focus on?"
  bizlens ask "How do I price a new subscription product?"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		s, err := openSession(cfg, sessionOptions{ID: askSession, CSVPath: askCSV, Language: askLang})
		if err != nil {
			return err
		}

		var rt ai.Runtime
		provider := resolveProvider(cfg, askProvider)
		if !askDryRun {
			if rt, provider, err = buildRuntime(cfg, runtimeOptions{ProviderFlag: askProvider}); err != nil {
				return err
			}
		}
		model := selectModel(provider, cfg, askModel)
		asst := assistant.New(rt, assistantOptions(cfg, model, askPromptLimit), logger)

		if askDryRun || askPrintPrompt {
			pre, err := asst.ChatPrompt(s, query)
			if err != nil {
				return err
			}
			fmt.Printf("--- prompt (mode=%s, tokens≈%d) ---\n%s\n---\n", pre.Mode, pre.Prompt.Tokens, pre.Prompt.Text)
			if askDryRun {
				fmt.Println("--dry-run: no API call was made and the session was not changed")
				return nil
			}
		}

		logger.Info().Str("provider", provider).Str("model", model).Str("session", s.ID).Msg("asking")
		res, chatErr := asst.Chat(cmd.Context(), s, query)
		if res == nil {
			return chatErr
		}
		if err := s.Save(); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		if chatErr != nil {
			fmt.Fprintln(os.Stderr, s.History[len(s.History)-1].Message)
			return friendlyError(chatErr)
		}

		if askJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"session":       s.ID,
				"mode":          res.Mode,
				"model":         model,
				"reply":         res.Reply,
				"prompt_tokens": res.Prompt.Tokens,
				"truncation":    res.Prompt.Truncation,
			})
		}
		fmt.Println(res.Reply)
		if askSession == "" {
			fmt.Printf("\n(session %s; continue with --session %s)\n", s.ID, s.ID[:8])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	f := askCmd.Flags()
	f.StringVarP(&askSession, "session", "s", "", "session ID or unique prefix (default: start a new session)")
	f.StringVar(&askCSV, "csv", "", "CSV/TSV file to load into the session")
	f.StringVar(&askLang, "lang", "", "response language: en, hi or hi_en")
	f.StringVar(&askProvider, "provider", "", "gemini, openrouter or anthropic (default from config)")
	f.StringVarP(&askModel, "model", "m", "", "model name (default from config or provider)")
	f.IntVar(&askPromptLimit, "prompt-limit", 0, "cap prompt tokens; history and rows are trimmed to fit")
	f.BoolVar(&askDryRun, "dry-run", false, "print the prompt without calling the model")
	f.BoolVar(&askPrintPrompt, "print-prompt", false, "print the prompt before sending")
	f.BoolVar(&askJSON, "json", false, "print the reply as JSON")
}
