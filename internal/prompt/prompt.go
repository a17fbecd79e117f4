// Package prompt builds the text documents sent to the model gateway for
// chat questions and report generation.
package prompt

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/bizlens-cli/internal/analysis"
	"github.com/KaramelBytes/bizlens-cli/internal/dataset"
	"github.com/KaramelBytes/bizlens-cli/internal/sanitize"
	"github.com/KaramelBytes/bizlens-cli/internal/utils"
)

// Mode selects the system instruction persona.
type Mode string

const (
	ModeGeneralAdvice Mode = "generalAdvice"
	ModeDataAnalysis  Mode = "dataAnalysis"
	ModeReport        Mode = "report"
)

// Scope describes which rows fed the dataset context.
type Scope string

const (
	ScopeNone   Scope = "none"
	ScopeSample Scope = "sample"
	ScopeFull   Scope = "full"
)

// TurnKind distinguishes conversation entries.
type TurnKind string

const (
	TurnUser   TurnKind = "user"
	TurnBot    TurnKind = "bot"
	TurnReport TurnKind = "report"
)

// Turn is one entry of conversation history.
type Turn struct {
	Kind TurnKind
	Text string
}

// DefaultHistoryTurns caps how many qualifying turns reach the prompt.
const DefaultHistoryTurns = 10

// Input is everything a chat prompt is built from.
type Input struct {
	Query    string
	Dataset  *dataset.Dataset
	Metrics  *analysis.DerivedMetrics
	History  []Turn
	Language string
	Mode     Mode
	// HistoryTurns overrides DefaultHistoryTurns when positive.
	HistoryTurns int
	// MaxTokens caps the estimated prompt size; 0 means unlimited.
	MaxTokens int
}

// Truncation records what was cut to honour MaxTokens. OverCap means the
// text around the context alone exceeds the cap, so the prompt stays over it.
type Truncation struct {
	Applied        bool `json:"applied"`
	HistoryDropped int  `json:"historyDropped"`
	RowsDropped    int  `json:"rowsDropped"`
	ContextClipped bool `json:"contextClipped"`
	OverCap        bool `json:"overCap"`
}

// PromptContext is an assembled prompt and what went into it.
type PromptContext struct {
	Text            string
	Mode            Mode
	Language        string
	Scope           Scope
	RowsIncluded    int
	HistoryIncluded int
	Tokens          int
	Truncation      Truncation
}

const (
	advisorInstruction = `You are a professional business advisor and startup mentor. Your role is to:

1. Guide users step-by-step in starting and growing a business, even if no dataset is provided.
2. Provide clear, actionable advice in simple language.
3. Cover topics such as market research, product development, business planning, funding, legal structure, operations, marketing, sales, customer service, and financial management.
4. Offer practical tips, common pitfalls, and best practices for new entrepreneurs.
5. If the user asks about a specific industry (e.g., footwear), tailor your advice to that field.

Always be supportive, accurate, and focus on business success. If the user uploads a dataset, use it for analysis; otherwise, provide general guidance.`

	analystInstruction = `You are a professional business data analyst and AI assistant. Your role is to:

1. Analyze CSV business data (sales, customers, revenue, expenses, churn, etc.)
2. Provide clear, actionable insights in simple language
3. Suggest specific business strategies and recommendations
4. Identify trends, patterns, and opportunities in the data
5. Offer quantitative analysis with numbers and percentages when possible

Always be professional, accurate, and focus on business value. If asked about generating reports, mention that comprehensive business reports can be generated separately.

Key areas to focus on:
- Revenue and profit analysis
- Customer behavior and churn patterns
- Sales performance and trends
- Cost optimization opportunities
- Growth forecasting and predictions
- Risk assessment and mitigation`

	noDataAdvice   = "No business data uploaded. You can still ask for business advice, startup guidance, or industry-specific tips."
	noDataAnalysis = "No business data uploaded yet. Please upload a CSV file containing your business data (sales, customers, revenue, etc.) to begin analysis."

	chatLanguageTrailer = `IMPORTANT LANGUAGE REQUIREMENT: The user has selected "%s" as their preferred language. Please ensure your response is in the appropriate language:
- For "en": Respond in English
- For "hi": Respond ONLY in Hindi (हिंदी) using Devanagari script
- For "hi_en": Respond in Hinglish (mix of Hindi and English)

Please provide a helpful, clear response based on the available data. If the question requires analysis of specific data that isn't in the sample, mention that the analysis is limited to the sample data shown. If the user asks for general business advice, answer fully even if no dataset is provided.`
)

// SystemInstruction returns the persona text for mode followed by the
// language directive.
func SystemInstruction(mode Mode, lang Profile) string {
	base := analystInstruction
	if mode == ModeGeneralAdvice {
		base = advisorInstruction
	}
	return base + "\n\n" + lang.ChatDirective
}

// Assemble builds a chat prompt. Dataset rows come from the sample only, so
// the prompt stays small however large the full data is.
func Assemble(in Input) PromptContext {
	lang := Lookup(in.Language)
	mode := in.Mode
	if mode != ModeGeneralAdvice {
		mode = ModeDataAnalysis
	}
	limit := in.HistoryTurns
	if limit <= 0 {
		limit = DefaultHistoryTurns
	}

	d := draft{
		head: SystemInstruction(mode, lang) + "\nCurrent user question: " + sanitize.Text(in.Query) + "\n",
		mid:  "\n",
		tail: "\n\n" + fmt.Sprintf(chatLanguageTrailer, lang.Key),
	}
	d.history = recentTurns(in.History, limit)

	out := PromptContext{Mode: mode, Language: lang.Key, Scope: ScopeNone}
	ds := in.Dataset
	if ds == nil {
		if mode == ModeGeneralAdvice {
			d.staticContext = noDataAdvice
		} else {
			d.staticContext = noDataAnalysis
		}
	} else {
		out.Scope = ScopeSample
		d.rows = ds.Sample
		d.context = func(rows []dataset.Row) string {
			return chatDatasetContext(ds, rows, in.Metrics)
		}
	}
	d.fit(in.MaxTokens)

	out.Text = d.render()
	out.RowsIncluded = len(d.rows)
	out.HistoryIncluded = len(d.history)
	out.Tokens = utils.CountTokens(out.Text)
	out.Truncation = d.trunc
	return out
}

func chatDatasetContext(ds *dataset.Dataset, rows []dataset.Row, m *analysis.DerivedMetrics) string {
	var b strings.Builder
	writeDatasetHeader(&b, ds)
	fmt.Fprintf(&b, "\nSample Business Data (%d rows analyzed):\n", len(rows))
	writeRecords(&b, ds.Schema, rows)
	fmt.Fprintf(&b, "\n\nANALYSIS SCOPE: This analysis covers %d sample records from a total dataset of %d records. Insights are extrapolated to represent the full dataset where applicable.", len(rows), ds.RowCount)
	writeMetrics(&b, m)
	return b.String()
}

func writeDatasetHeader(b *strings.Builder, ds *dataset.Dataset) {
	b.WriteString("\nBUSINESS DATASET CONTEXT:\n")
	fmt.Fprintf(b, "- File: %s\n", ds.FileName)
	fmt.Fprintf(b, "- Total Records: %d\n", ds.RowCount)
	fmt.Fprintf(b, "- Data Fields (%d): %s\n", len(ds.Schema), strings.Join(ds.Schema, ", "))
}

func writeRecords(b *strings.Builder, schema []string, rows []dataset.Row) {
	for i, r := range rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(b, "Record %d: %s", i+1, dataset.EncodeRow(schema, r))
	}
}

func writeMetrics(b *strings.Builder, m *analysis.DerivedMetrics) {
	if m == nil {
		return
	}
	b.WriteString("\n\nDERIVED BUSINESS METRICS:\n")
	b.WriteString(m.Summary())
}

// recentTurns keeps the last limit user and assistant turns. Report turns
// never reach the prompt.
func recentTurns(history []Turn, limit int) []Turn {
	var out []Turn
	for i := len(history) - 1; i >= 0 && len(out) < limit; i-- {
		t := history[i]
		if t.Kind != TurnUser && t.Kind != TurnBot {
			continue
		}
		out = append(out, t)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func renderHistory(turns []Turn) string {
	if len(turns) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nRecent conversation:\n")
	for _, t := range turns {
		who := "Assistant"
		if t.Kind == TurnUser {
			who = "User"
		}
		fmt.Fprintf(&b, "%s: %s\n", who, t.Text)
	}
	return b.String()
}
