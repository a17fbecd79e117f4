package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/KaramelBytes/bizlens-cli/internal/analysis"
	"github.com/KaramelBytes/bizlens-cli/internal/dataset"
)

func bigDataset(full, sample int) *dataset.Dataset {
	rows := make([]dataset.Row, full)
	for i := range rows {
		rows[i] = dataset.Row{"id": dataset.Number(float64(i + 1)), "Sales": dataset.Text(fmt.Sprintf("$%d", i+1))}
	}
	return &dataset.Dataset{
		FileName: "sales.csv",
		Schema:   []string{"id", "Sales"},
		RowCount: full,
		Sample:   rows[:sample:sample],
		FullData: rows,
	}
}

func history(n int) []Turn {
	out := make([]Turn, 0, n)
	for i := 0; i < n; i++ {
		kind := TurnUser
		if i%2 == 1 {
			kind = TurnBot
		}
		out = append(out, Turn{Kind: kind, Text: fmt.Sprintf("turn-%04d", i)})
	}
	return out
}

func TestAssembleBoundsRowsAndHistory(t *testing.T) {
	ds := bigDataset(10000, 5)
	pc := Assemble(Input{Query: "What is the trend?", Dataset: ds, History: history(1000), Language: "en", Mode: ModeDataAnalysis})

	if got := strings.Count(pc.Text, "Record "); got != 5 {
		t.Fatalf("expected 5 serialized rows, got %d", got)
	}
	if pc.RowsIncluded != 5 || pc.Scope != ScopeSample {
		t.Fatalf("rows=%d scope=%s", pc.RowsIncluded, pc.Scope)
	}
	if got := strings.Count(pc.Text, "turn-"); got != 10 {
		t.Fatalf("expected 10 history turns, got %d", got)
	}
	if !strings.Contains(pc.Text, "turn-0999") || strings.Contains(pc.Text, "turn-0989") {
		t.Fatalf("history should be the most recent turns")
	}
	if pc.HistoryIncluded != 10 || pc.Truncation.Applied {
		t.Fatalf("unexpected metadata: %+v", pc)
	}
	if !strings.Contains(pc.Text, `Record 1: {"id":1,"Sales":"$1"}`) {
		t.Fatalf("row serialization missing:\n%s", pc.Text)
	}
	if !strings.Contains(pc.Text, "- Data Fields (2): id, Sales") || !strings.Contains(pc.Text, "- Total Records: 10000") {
		t.Fatalf("dataset header missing")
	}
}

func TestAssembleExcludesReportTurns(t *testing.T) {
	h := []Turn{
		{Kind: TurnUser, Text: "hello"},
		{Kind: TurnReport, Text: "REPORT-BODY"},
		{Kind: TurnBot, Text: "hi there"},
	}
	pc := Assemble(Input{Query: "q", History: h, Mode: ModeDataAnalysis})
	if strings.Contains(pc.Text, "REPORT-BODY") {
		t.Fatal("report turns must not reach the prompt")
	}
	if !strings.Contains(pc.Text, "\nRecent conversation:\nUser: hello\nAssistant: hi there\n") {
		t.Fatalf("history block malformed:\n%s", pc.Text)
	}
	if pc.HistoryIncluded != 2 {
		t.Fatalf("history included = %d", pc.HistoryIncluded)
	}
}

func TestAssembleHistoryTurnsOverride(t *testing.T) {
	pc := Assemble(Input{Query: "q", History: history(20), HistoryTurns: 3})
	if pc.HistoryIncluded != 3 || strings.Count(pc.Text, "turn-") != 3 {
		t.Fatalf("override ignored: %d", pc.HistoryIncluded)
	}
}

func TestAssembleNoDatasetNotice(t *testing.T) {
	adv := Assemble(Input{Query: "How do I find a supplier?", Mode: ModeGeneralAdvice})
	if !strings.Contains(adv.Text, noDataAdvice) || !strings.Contains(adv.Text, "startup mentor") {
		t.Fatalf("advice prompt missing notice or persona:\n%s", adv.Text)
	}
	ana := Assemble(Input{Query: "Show churn", Mode: ModeDataAnalysis})
	if !strings.Contains(ana.Text, noDataAnalysis) || !strings.Contains(ana.Text, "business data analyst") {
		t.Fatalf("analysis prompt missing notice or persona:\n%s", ana.Text)
	}
	if ana.Scope != ScopeNone || ana.RowsIncluded != 0 {
		t.Fatalf("unexpected scope %s", ana.Scope)
	}
}

func TestAssembleQueryVerbatim(t *testing.T) {
	q := `Compare "Q1" & Q2 <b>sales</b> {by region}`
	pc := Assemble(Input{Query: q, Dataset: bigDataset(3, 3)})
	if !strings.Contains(pc.Text, "Current user question: "+q+"\n") {
		t.Fatalf("query not verbatim:\n%s", pc.Text)
	}
	pc = Assemble(Input{Query: "<script>x()</script>Revenue?"})
	if !strings.Contains(pc.Text, "Current user question: Revenue?\n") {
		t.Fatalf("query not sanitized:\n%s", pc.Text)
	}
}

func TestAssembleUnknownLanguageIsEnglish(t *testing.T) {
	ds := bigDataset(8, 5)
	base := Input{Query: "Revenue?", Dataset: ds, History: history(4), Mode: ModeDataAnalysis}
	en, fr := base, base
	en.Language = "en"
	fr.Language = "fr"
	if diff := cmp.Diff(Assemble(en), Assemble(fr)); diff != "" {
		t.Fatalf("fr should match en (-en +fr):\n%s", diff)
	}
}

func TestAssembleLanguageDirectives(t *testing.T) {
	for _, key := range Languages() {
		pc := Assemble(Input{Query: "q", Language: key})
		if !strings.Contains(pc.Text, Lookup(key).ChatDirective) {
			t.Errorf("%s directive missing", key)
		}
		if !strings.Contains(pc.Text, fmt.Sprintf(`selected "%s"`, key)) {
			t.Errorf("%s trailer missing", key)
		}
		if pc.Language != key {
			t.Errorf("language = %s", pc.Language)
		}
	}
}

func TestAssembleIncludesMetrics(t *testing.T) {
	ds := bigDataset(4, 4)
	m := analysis.Derive(ds, analysis.Classify(ds.Schema))
	pc := Assemble(Input{Query: "q", Dataset: ds, Metrics: &m})
	if !strings.Contains(pc.Text, "DERIVED BUSINESS METRICS:") || !strings.Contains(pc.Text, "- Total Revenue: $10.00") {
		t.Fatalf("metrics block missing:\n%s", pc.Text)
	}
}

func TestAssembleTruncation(t *testing.T) {
	ds := bigDataset(200, 150)
	q := "Which region grows fastest?"
	in := Input{Query: q, Dataset: ds, History: history(10)}
	full := Assemble(in)

	in.MaxTokens = full.Tokens - 5
	pc := Assemble(in)
	if !pc.Truncation.Applied || pc.Truncation.HistoryDropped == 0 {
		t.Fatalf("expected history to be dropped first: %+v", pc.Truncation)
	}
	if pc.Truncation.RowsDropped != 0 || pc.Tokens > in.MaxTokens {
		t.Fatalf("unexpected cut: %+v tokens=%d", pc.Truncation, pc.Tokens)
	}

	in.MaxTokens = full.Tokens / 2
	pc = Assemble(in)
	if pc.HistoryIncluded != 0 || pc.Truncation.RowsDropped == 0 || pc.RowsIncluded+pc.Truncation.RowsDropped != 150 {
		t.Fatalf("expected all history then rows dropped: %+v", pc)
	}
	if pc.Tokens > in.MaxTokens || !strings.Contains(pc.Text, q) {
		t.Fatalf("tokens=%d max=%d", pc.Tokens, in.MaxTokens)
	}
	if pc.Truncation.OverCap {
		t.Fatalf("prompt fits the cap, OverCap must be false: %+v", pc.Truncation)
	}

	in.MaxTokens = 10
	pc = Assemble(in)
	if !pc.Truncation.ContextClipped || !strings.Contains(pc.Text, "Current user question: "+q) {
		t.Fatalf("query must survive clipping: %+v", pc.Truncation)
	}
}

func TestAssembleOverCap(t *testing.T) {
	q := "Which region grows fastest?"
	pc := Assemble(Input{Query: q, Dataset: bigDataset(20, 10), History: history(2), MaxTokens: 5})
	if !pc.Truncation.OverCap || !pc.Truncation.ContextClipped {
		t.Fatalf("fixed text alone exceeds the cap: %+v", pc.Truncation)
	}
	if pc.Tokens <= 5 || !strings.Contains(pc.Text, "Current user question: "+q) {
		t.Fatalf("query must survive: tokens=%d", pc.Tokens)
	}

	pc = Assemble(Input{Query: q, Dataset: bigDataset(20, 10)})
	if pc.Truncation.OverCap || pc.Truncation.Applied {
		t.Fatalf("no cap set: %+v", pc.Truncation)
	}
}

func TestAssembleReportScope(t *testing.T) {
	full := AssembleReport(ReportInput{Dataset: bigDataset(120, 5), Language: "hi"})
	if full.Scope != ScopeFull || full.RowsIncluded != ReportRowLimit {
		t.Fatalf("full scope: %s rows=%d", full.Scope, full.RowsIncluded)
	}
	for _, want := range []string{
		"- Analysis Scope: COMPLETE DATASET ANALYSIS (120 records)",
		"COMPREHENSIVE ANALYSIS:",
		"Return only JSON.",
		Lookup("hi").ReportDirective,
		"Record 50: ",
	} {
		if !strings.Contains(full.Text, want) {
			t.Errorf("full report prompt missing %q", want)
		}
	}
	if strings.Contains(full.Text, "Record 51: ") {
		t.Error("report rows exceed limit")
	}

	ds := bigDataset(120, 5)
	ds.FullData = nil
	sample := AssembleReport(ReportInput{Dataset: ds})
	if sample.Scope != ScopeSample || sample.RowsIncluded != 5 {
		t.Fatalf("sample scope: %s rows=%d", sample.Scope, sample.RowsIncluded)
	}
	if !strings.Contains(sample.Text, "SAMPLE ANALYSIS (5 of 120 records)") || !strings.Contains(sample.Text, "LIMITED ANALYSIS:") {
		t.Fatalf("sample labels missing:\n%s", sample.Text)
	}
}

func TestIsGeneralAdvice(t *testing.T) {
	cases := []struct {
		msg  string
		want bool
	}{
		{"How do I start a business in footwear?", true},
		{"What were total sales last quarter?", false},
		{"Need a MENTOR for my shop", true},
		{"Show churn by region", false},
		{"", false},
	}
	for _, c := range cases {
		if got := IsGeneralAdvice(c.msg); got != c.want {
			t.Errorf("IsGeneralAdvice(%q) = %v", c.msg, got)
		}
	}
	if DetectMode("business plan please") != ModeGeneralAdvice || DetectMode("avg revenue") != ModeDataAnalysis {
		t.Error("DetectMode mismatch")
	}
}

func TestLookupDefaults(t *testing.T) {
	if Lookup("fr").Key != LangEnglish || Lookup("").Key != LangEnglish {
		t.Fatal("unknown keys should resolve to en")
	}
	if Lookup("HI").Key != LangHindi {
		t.Fatal("lookup should ignore case")
	}
	if IsSupported("fr") || !IsSupported("hi_en") {
		t.Fatal("IsSupported mismatch")
	}
}
