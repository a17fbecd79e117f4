package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/bizlens-cli/internal/prompt"
	"github.com/KaramelBytes/bizlens-cli/internal/session"
)

var (
	sessCSV  string
	sessLang string
	sessJSON bool
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Create, inspect or list conversation sessions",
}

var sessionNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a session, optionally with a CSV dataset",
	Args:  cobra.NoArgs,
	Example: `  bizlens session new --csv ./customers.csv
  bizlens session new --csv ./sales.tsv --lang hi`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cfg, sessionOptions{CSVPath: sessCSV, Language: sessLang})
		if err != nil {
			return err
		}
		if err := s.Save(); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		fmt.Printf("✓ Created session %s\n", s.ID)
		if s.Dataset != nil {
			fmt.Printf("  Dataset: %s (%d rows, %d columns)\n", s.Dataset.FileName, s.Dataset.RowCount, len(s.Dataset.Schema))
		}
		fmt.Printf("  Language: %s\n", prompt.Lookup(s.Language).Name)
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a session's dataset and conversation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := sessionsDir(cfg)
		if err != nil {
			return err
		}
		s, err := session.Load(dir, args[0])
		if err != nil {
			return err
		}
		if sessJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		}
		printSession(os.Stdout, s)
		return nil
	},
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions, most recent first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := sessionsDir(cfg)
		if err != nil {
			return err
		}
		items, err := session.List(dir)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("No sessions found")
			return nil
		}
		for _, it := range items {
			file := it.FileName
			if file == "" {
				file = "(no dataset)"
			}
			fmt.Printf("%s  %-6s  %-24s  %3d turns  %s\n", it.ID, it.Language, file, it.Turns, it.UpdatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionNewCmd, sessionShowCmd, sessionListCmd)
	sessionNewCmd.Flags().StringVar(&sessCSV, "csv", "", "CSV/TSV file to attach")
	sessionNewCmd.Flags().StringVar(&sessLang, "lang", "", "response language: en, hi or hi_en (default from config)")
	sessionShowCmd.Flags().BoolVar(&sessJSON, "json", false, "print the stored session as JSON")
}

func printSession(w io.Writer, s *session.Session) {
	fmt.Fprintf(w, "Session %s\n", s.ID)
	fmt.Fprintf(w, "Language: %s\n", prompt.Lookup(s.Language).Name)
	if ds := s.Dataset; ds != nil {
		fmt.Fprintf(w, "Dataset: %s (%d rows; columns: %s)\n", ds.FileName, ds.RowCount, strings.Join(ds.Schema, ", "))
	} else {
		fmt.Fprintln(w, "Dataset: none")
	}
	if len(s.History) == 0 {
		return
	}
	fmt.Fprintln(w)
	for _, t := range s.History {
		switch t.Kind {
		case prompt.TurnUser:
			fmt.Fprintf(w, "You: %s\n", t.Message)
		case prompt.TurnReport:
			fmt.Fprintf(w, "[%s]\n", t.Message)
		default:
			fmt.Fprintf(w, "BizLens: %s\n", t.Message)
		}
	}
}
