package report

import (
	"fmt"
	"strings"
)

// Markdown renders the report as a standalone document.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("# Business Analysis Report\n")
	if s := r.Summary; s != nil {
		section(&b, s.Title, s.Description)
		metricTable(&b, s.KeyMetrics)
	}
	if c := r.ChurnAnalysis; c != nil {
		section(&b, c.Title, c.Description)
		metricTable(&b, c.Metrics)
	}
	if f := r.FinancialProjections; f != nil {
		section(&b, f.Title, f.Description)
		rows := make([][]string, 0, len(f.Projections))
		for _, p := range f.Projections {
			rows = append(rows, []string{p.Period, p.Revenue, p.Growth})
		}
		table(&b, []string{"Period", "Revenue", "Growth"}, rows)
	}
	if d := r.DemandForecasting; d != nil {
		section(&b, d.Title, d.Description)
		rows := make([][]string, 0, len(d.Forecasts))
		for _, f := range d.Forecasts {
			rows = append(rows, []string{f.Period, f.Demand, f.Confidence})
		}
		table(&b, []string{"Period", "Demand", "Confidence"}, rows)
	}
	if s := r.ScenarioAnalysis; s != nil {
		section(&b, s.Title, s.Description)
		rows := make([][]string, 0, len(s.Scenarios))
		for _, sc := range s.Scenarios {
			rows = append(rows, []string{sc.Name, sc.Outcome, sc.Probability})
		}
		table(&b, []string{"Scenario", "Outcome", "Probability"}, rows)
	}
	if rec := r.Recommendations; rec != nil {
		section(&b, rec.Title, rec.Description)
		for _, a := range rec.Actions {
			b.WriteString(fmt.Sprintf("- **%s**: %s (%s)\n", safeVal(a.Priority), safeVal(a.Action), safeVal(a.Impact)))
		}
	}
	return b.String()
}

func section(b *strings.Builder, title, desc string) {
	b.WriteString(fmt.Sprintf("\n## %s\n\n", safeVal(title)))
	if desc != "" {
		b.WriteString(safeVal(desc) + "\n\n")
	}
}

func metricTable(b *strings.Builder, ms []Metric) {
	rows := make([][]string, 0, len(ms))
	for _, m := range ms {
		trend := m.Trend
		if trend == "" {
			trend = "-"
		}
		rows = append(rows, []string{m.Label, m.Value, trend})
	}
	table(b, []string{"Metric", "Value", "Trend"}, rows)
}

func table(b *strings.Builder, header []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat("---|", len(header)) + "\n")
	for _, r := range rows {
		cells := make([]string, len(r))
		for i, c := range r {
			cells[i] = safeVal(c)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}

func safeVal(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/")
}
