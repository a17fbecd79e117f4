package report

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/KaramelBytes/bizlens-cli/internal/dataset"
)

const modelJSON = `{
  "summary": {"title": "Executive Summary", "description": "Revenue grew {steadily}.", "keyMetrics": [{"label": "Total Records", "value": "7043", "trend": "up"}]},
  "churnAnalysis": {"title": "Churn", "description": "Churn is moderate.", "metrics": [{"label": "Churn Rate", "value": "26.5%"}]},
  "financialProjections": {"title": "Projections", "description": "Growth ahead.", "projections": [{"period": "Q1 2025", "revenue": "$1.2M", "growth": "4%"}]},
  "demandForecasting": {"title": "Demand", "description": "Stable demand.", "forecasts": [{"period": "Next Quarter", "demand": "medium", "confidence": "70%"}]},
  "scenarioAnalysis": {"title": "Scenarios", "description": "Three cases.", "scenarios": [{"name": "Best Case", "outcome": "$1.5M", "probability": "20%"}]},
  "recommendations": {"title": "Recommendations", "description": "Next steps.", "actions": [{"priority": "High", "action": "Fix onboarding", "impact": "Lower churn"}]}
}`

func testDataset() *dataset.Dataset {
	return &dataset.Dataset{FileName: "t.csv", Schema: []string{"a", "b", "c"}, RowCount: 42}
}

func TestParseEmbeddedJSON(t *testing.T) {
	raw := "Here is the analysis you asked for:\n```json\n" + modelJSON + "\n```\nLet me know if you need more."
	got, out := Parse(raw, testDataset())
	if out.Source != SourceParsed || out.Reason != nil {
		t.Fatalf("expected parsed outcome, got %+v", out)
	}
	var want Report
	if err := json.Unmarshal([]byte(modelJSON), &want); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("report mismatch (-want +got):\n%s", diff)
	}
	if got.ChurnAnalysis.Metrics[0].Trend != "" {
		t.Fatalf("absent trend should stay empty")
	}
}

func TestParseFallbacks(t *testing.T) {
	incomplete := strings.Replace(modelJSON, `"recommendations"`, `"advice"`, 1)
	nullSection := strings.Replace(modelJSON, `"demandForecasting": {"title": "Demand", "description": "Stable demand.", "forecasts": [{"period": "Next Quarter", "demand": "medium", "confidence": "70%"}]}`, `"demandForecasting": null`, 1)
	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"not json", "not json at all", ErrNoJSON},
		{"empty", "", ErrNoJSON},
		{"reversed braces", "} nothing {", ErrNoJSON},
		{"broken json", "{\"summary\": {", ErrNoJSON},
		{"invalid json", "{summary: 1}", nil},
		{"missing section", incomplete, ErrIncomplete},
		{"null section", nullSection, ErrIncomplete},
		{"prose braces", "Use {curly} braces. " + modelJSON + " and {more}", nil},
	}
	ds := testDataset()
	for _, c := range cases {
		got, out := Parse(c.raw, ds)
		if out.Source != SourceFallback || out.Reason == nil {
			t.Errorf("%s: expected fallback, got %+v", c.name, out)
			continue
		}
		if c.want != nil && !errors.Is(out.Reason, c.want) {
			t.Errorf("%s: reason %v, want %v", c.name, out.Reason, c.want)
		}
		if diff := cmp.Diff(Fallback(ds), got); diff != "" {
			t.Errorf("%s: not the fallback report:\n%s", c.name, diff)
		}
	}
}

func TestParseToleratesLooseShapes(t *testing.T) {
	raw := strings.NewReplacer(
		`"value": "7043"`, `"value": 7043`,
		`"growth": "4%"`, `"growth": 4`,
		`"confidence": "70%"`, `"confidence": 0.7`,
		`"probability": "20%"`, `"probability": true`,
		`"metrics": [{"label": "Churn Rate", "value": "26.5%"}]`, `"metrics": {"label": "Churn Rate"}`,
		`"actions": [{"priority": "High", "action": "Fix onboarding", "impact": "Lower churn"}]`, `"actions": ["Fix onboarding", {"priority": ["High"], "action": "Call users"}]`,
	).Replace(modelJSON)
	got, out := Parse(raw, testDataset())
	if out.Source != SourceParsed {
		t.Fatalf("loose inner values must not force the fallback: %v", out.Reason)
	}
	if v := got.Summary.KeyMetrics[0].Value; v != "7043" {
		t.Errorf("numeric value = %q", v)
	}
	if g := got.FinancialProjections.Projections[0].Growth; g != "4" {
		t.Errorf("numeric growth = %q", g)
	}
	if c := got.DemandForecasting.Forecasts[0].Confidence; c != "0.7" {
		t.Errorf("numeric confidence = %q", c)
	}
	if p := got.ScenarioAnalysis.Scenarios[0].Probability; p != "true" {
		t.Errorf("bool probability = %q", p)
	}
	if got.ChurnAnalysis.Metrics != nil || got.ChurnAnalysis.Title != "Churn" {
		t.Errorf("object in place of a list: %+v", got.ChurnAnalysis)
	}
	want := []Action{{}, {Action: "Call users"}}
	if diff := cmp.Diff(want, got.Recommendations.Actions); diff != "" {
		t.Errorf("actions (-want +got):\n%s", diff)
	}
	if md := got.Markdown(); !strings.Contains(md, "Call users") {
		t.Errorf("markdown should render parsed entries:\n%s", md)
	}

	arraySection := strings.Replace(modelJSON, `"summary": {"title": "Executive Summary", "description": "Revenue grew {steadily}.", "keyMetrics": [{"label": "Total Records", "value": "7043", "trend": "up"}]}`, `"summary": [1]`, 1)
	got, out = Parse(arraySection, testDataset())
	if out.Source != SourceParsed || got.Summary == nil {
		t.Fatalf("array section should parse as an empty section: %+v", out)
	}
	if diff := cmp.Diff(Summary{}, *got.Summary); diff != "" {
		t.Errorf("array section (-want +got):\n%s", diff)
	}
}

func TestParseSanitizesBeforeExtracting(t *testing.T) {
	raw := "<script>var x = {a: 1};</script>" + modelJSON
	_, out := Parse(raw, testDataset())
	if out.Source != SourceParsed {
		t.Fatalf("script block should be stripped before extraction: %v", out.Reason)
	}
}

func TestFallbackComplete(t *testing.T) {
	r, out := Parse("not json at all", testDataset())
	if out.Source != SourceFallback {
		t.Fatalf("expected fallback")
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("fallback invalid: %v", err)
	}
	titles := []string{r.Summary.Title, r.ChurnAnalysis.Title, r.FinancialProjections.Title, r.DemandForecasting.Title, r.ScenarioAnalysis.Title, r.Recommendations.Title}
	for i, title := range titles {
		if title == "" {
			t.Errorf("section %s has empty title", SectionKeys[i])
		}
	}
	if len(r.ChurnAnalysis.Metrics) == 0 || len(r.FinancialProjections.Projections) == 0 || len(r.DemandForecasting.Forecasts) == 0 ||
		len(r.ScenarioAnalysis.Scenarios) == 0 || len(r.Recommendations.Actions) == 0 {
		t.Fatal("fallback sections must have entries")
	}
	want := []Metric{
		{Label: "Total Records", Value: "42", Trend: "stable"},
		{Label: "Data Fields", Value: "3", Trend: "stable"},
		{Label: "Data Quality", Value: "Good", Trend: "up"},
	}
	if diff := cmp.Diff(want, r.Summary.KeyMetrics); diff != "" {
		t.Fatalf("key metrics (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(Fallback(testDataset()), Fallback(testDataset())); diff != "" {
		t.Fatalf("fallback not deterministic:\n%s", diff)
	}
}

func TestFallbackNilDataset(t *testing.T) {
	r := Fallback(nil)
	if r.Summary.KeyMetrics[0].Value != "0" {
		t.Fatalf("nil dataset should count zero records")
	}
}

func TestValidate(t *testing.T) {
	var r *Report
	if err := r.Validate(); !errors.Is(err, ErrIncomplete) {
		t.Fatalf("nil report: %v", err)
	}
	full := Fallback(testDataset())
	full.ScenarioAnalysis = nil
	if err := full.Validate(); err == nil || !strings.Contains(err.Error(), "scenarioAnalysis") {
		t.Fatalf("expected scenarioAnalysis error, got %v", err)
	}
}

func TestMarkdown(t *testing.T) {
	r := Fallback(testDataset())
	md := r.Markdown()
	for _, want := range []string{
		"# Business Analysis Report",
		"## Executive Summary",
		"| Total Records | 42 | stable |",
		"| Next 3 Months | $525,000 | 5% |",
		"- **High**: Implement customer retention programs (Reduce churn by 5-10%)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}
