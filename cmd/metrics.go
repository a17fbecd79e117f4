package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/bizlens-cli/internal/analysis"
	"github.com/KaramelBytes/bizlens-cli/internal/dataset"
)

var (
	metricsJSON    bool
	metricsWorkers int
)

type fileMetrics struct {
	File    string                  `json:"file"`
	Rows    int                     `json:"rows"`
	Columns int                     `json:"columns"`
	Metrics analysis.DerivedMetrics `json:"metrics"`
}

var metricsCmd = &cobra.Command{
	Use:   "metrics <file> [file...]",
	Short: "Derive dashboard metrics from one or more CSV files",
	Args:  cobra.MinimumNArgs(1),
	Example: `  bizlens metrics ./customers.csv
  bizlens metrics ./q1.csv ./q2.csv ./q3.csv --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := deriveFiles(cmd.Context(), args, datasetOptions(cfg), metricsWorkers)
		if err != nil {
			return err
		}
		if metricsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}
		renderMetricsTable(os.Stdout, results)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
	metricsCmd.Flags().BoolVar(&metricsJSON, "json", false, "print metrics as JSON")
	metricsCmd.Flags().IntVar(&metricsWorkers, "workers", 0, "files loaded in parallel (default: CPU count)")
}

// deriveFiles loads every file concurrently; the first failure cancels the rest.
// Results keep argument order.
func deriveFiles(ctx context.Context, paths []string, opt dataset.Options, workers int) ([]fileMetrics, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	out := make([]fileMetrics, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ds, err := dataset.LoadCSV(p, opt)
			if err != nil {
				return fmt.Errorf("load %s: %w", p, err)
			}
			out[i] = fileMetrics{
				File:    ds.FileName,
				Rows:    ds.RowCount,
				Columns: len(ds.Schema),
				Metrics: analysis.Derive(ds, analysis.Classify(ds.Schema)),
			}
			logger.Debug().Str("file", p).Int("rows", ds.RowCount).Msg("metrics derived")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func renderMetricsTable(w io.Writer, results []fileMetrics) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_CENTER)
	table.SetBorder(true)

	header := []string{"Metric"}
	for _, r := range results {
		header = append(header, filepath.Base(r.File))
	}
	table.SetHeader(header)

	var first []analysis.Field
	cols := make([][]analysis.Field, len(results))
	for i, r := range results {
		cols[i] = r.Metrics.Display()
		if i == 0 {
			first = cols[i]
		}
	}
	for row, f := range first {
		line := []string{f.Label}
		for i := range results {
			line = append(line, cols[i][row].Text)
		}
		table.Append(line)
	}
	table.Render()
}
