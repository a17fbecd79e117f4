package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/bizlens-cli/internal/ai"
	"github.com/KaramelBytes/bizlens-cli/internal/assistant"
	"github.com/KaramelBytes/bizlens-cli/internal/report"
	"github.com/KaramelBytes/bizlens-cli/internal/utils"
)

var (
	repSession     string
	repCSV         string
	repLang        string
	repProvider    string
	repModel       string
	repPromptLimit int
	repFormat      string
	repOutput      string
	repDryRun      bool
	repLast        bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a six-section business report from the session dataset",
	Args:  cobra.NoArgs,
	Example: `  bizlens report --csv ./customers.csv
  bizlens report --session 3f2a --format json --output report.json
  bizlens report --session 3f2a --last`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if repFormat != "markdown" && repFormat != "md" && repFormat != "json" {
			return fmt.Errorf("unsupported --format: %s (use markdown|json)", repFormat)
		}
		s, err := openSession(cfg, sessionOptions{ID: repSession, CSVPath: repCSV, Language: repLang})
		if err != nil {
			return err
		}
		if repLast {
			r := s.LastReport()
			if r == nil {
				return fmt.Errorf("session %s has no report yet", s.ID)
			}
			return writeReport(r, repFormat, repOutput)
		}

		var rt ai.Runtime
		provider := resolveProvider(cfg, repProvider)
		if !repDryRun {
			if rt, provider, err = buildRuntime(cfg, runtimeOptions{ProviderFlag: repProvider}); err != nil {
				return err
			}
		}
		model := selectModel(provider, cfg, repModel)
		asst := assistant.New(rt, assistantOptions(cfg, model, repPromptLimit), logger)

		if repDryRun {
			pre, err := asst.ReportPrompt(s)
			if err != nil {
				return err
			}
			fmt.Printf("--- prompt (scope=%s, rows=%d, tokens≈%d) ---\n%s\n---\n", pre.Prompt.Scope, pre.Prompt.RowsIncluded, pre.Prompt.Tokens, pre.Prompt.Text)
			fmt.Println("--dry-run: no API call was made and the session was not changed")
			return nil
		}

		logger.Info().Str("provider", provider).Str("model", model).Str("session", s.ID).Msg("generating report")
		res, repErr := asst.Report(cmd.Context(), s)
		if res == nil {
			return repErr
		}
		if err := s.Save(); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		if repErr != nil {
			fmt.Fprintln(os.Stderr, assistant.ReportFailedText)
			return friendlyError(repErr)
		}
		if res.Outcome.Source == report.SourceFallback {
			fmt.Fprintln(os.Stderr, "⚠ The model response could not be parsed; showing the default report.")
		}
		if err := writeReport(&res.Report, repFormat, repOutput); err != nil {
			return err
		}
		if repOutput == "" {
			fmt.Println(assistant.ReportReadyText)
		}
		if repSession == "" {
			fmt.Printf("\n(session %s; continue with --session %s)\n", s.ID, s.ID[:8])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	f := reportCmd.Flags()
	f.StringVarP(&repSession, "session", "s", "", "session ID or unique prefix (default: start a new session)")
	f.StringVar(&repCSV, "csv", "", "CSV/TSV file to load into the session")
	f.StringVar(&repLang, "lang", "", "report language: en, hi or hi_en")
	f.StringVar(&repProvider, "provider", "", "gemini, openrouter or anthropic (default from config)")
	f.StringVarP(&repModel, "model", "m", "", "model name (default from config or provider)")
	f.IntVar(&repPromptLimit, "prompt-limit", 0, "cap prompt tokens; dataset rows are trimmed to fit")
	f.StringVar(&repFormat, "format", "markdown", "output format: markdown|json")
	f.StringVarP(&repOutput, "output", "o", "", "write the report to a file instead of stdout")
	f.BoolVar(&repDryRun, "dry-run", false, "print the prompt without calling the model")
	f.BoolVar(&repLast, "last", false, "print the most recent stored report without generating")
}

func renderReport(r *report.Report, format string) ([]byte, error) {
	if format == "json" {
		return utils.PrettyJSON(r)
	}
	return []byte(r.Markdown()), nil
}

func writeReport(r *report.Report, format, path string) error {
	data, err := renderReport(r, format)
	if err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := utils.SafeWriteFile(path, data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Printf("💾 Saved report to %s\n", path)
	return nil
}
