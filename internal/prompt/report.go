package prompt

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/bizlens-cli/internal/analysis"
	"github.com/KaramelBytes/bizlens-cli/internal/dataset"
	"github.com/KaramelBytes/bizlens-cli/internal/utils"
)

// ReportRowLimit caps rows serialized into a report prompt.
const ReportRowLimit = 50

// ReportInput is everything a report prompt is built from.
type ReportInput struct {
	Dataset   *dataset.Dataset
	Metrics   *analysis.DerivedMetrics
	Language  string
	MaxTokens int
}

const reportInstruction = `You are an expert data analyst. Analyze the uploaded business dataset and return insights in the following strict JSON format:
{
  "summary": {
    "title": "Executive Summary",
    "description": "Brief overview of key findings",
    "keyMetrics": [{"label": "Total Records", "value": "number", "trend": "up/down/stable"}]
  },
  "churnAnalysis": {
    "title": "Customer Churn Analysis",
    "description": "Analysis of customer retention patterns",
    "metrics": [{"label": "Churn Rate", "value": "percentage", "trend": "up/down/stable"}]
  },
  "financialProjections": {
    "title": "Financial Projections",
    "description": "Revenue and growth forecasts",
    "projections": [{"period": "Q1 2024", "revenue": "$amount", "growth": "percentage"}]
  },
  "demandForecasting": {
    "title": "Demand Forecasting",
    "description": "Future demand predictions",
    "forecasts": [{"period": "Next Quarter", "demand": "high/medium/low", "confidence": "percentage"}]
  },
  "scenarioAnalysis": {
    "title": "Scenario Analysis",
    "description": "Different business scenarios",
    "scenarios": [{"name": "Best Case", "outcome": "$amount", "probability": "percentage"}]
  },
  "recommendations": {
    "title": "Strategic Recommendations",
    "description": "Actionable business recommendations",
    "actions": [{"priority": "High", "action": "description", "impact": "description"}]
  }
}`

const reportLanguageTrailer = `IMPORTANT LANGUAGE REQUIREMENT: The user has selected "%s" as their preferred language. Please ensure all report content (titles, descriptions, text) is in the appropriate language:
- For "en": Use English
- For "hi": Use Hindi (हिंदी) with Devanagari script
- For "hi_en": Use Hinglish (mix of Hindi and English)

Analyze this business data and provide comprehensive insights in the exact JSON format specified above. Include specific numbers, percentages, and actionable recommendations.`

// AssembleReport builds the report generation prompt. Rows come from the
// full data when loaded, else the sample, capped at ReportRowLimit. A nil
// dataset yields an empty context; callers validate before getting here.
func AssembleReport(in ReportInput) PromptContext {
	lang := Lookup(in.Language)
	d := draft{
		head: reportInstruction + "\n\n" + lang.ReportDirective + "\n\nDo not include any extra text. Return only JSON.\n\n",
		tail: "\n\n" + fmt.Sprintf(reportLanguageTrailer, lang.Key),
	}
	out := PromptContext{Mode: ModeReport, Language: lang.Key, Scope: ScopeNone}
	if ds := in.Dataset; ds != nil {
		full := ds.HasFullData()
		out.Scope = ScopeSample
		if full {
			out.Scope = ScopeFull
		}
		rows := ds.Rows()
		if len(rows) > ReportRowLimit {
			rows = rows[:ReportRowLimit]
		}
		d.rows = rows
		d.context = func(rows []dataset.Row) string {
			return reportDatasetContext(ds, rows, full, in.Metrics)
		}
	}
	d.fit(in.MaxTokens)

	out.Text = d.render()
	out.RowsIncluded = len(d.rows)
	out.Tokens = utils.CountTokens(out.Text)
	out.Truncation = d.trunc
	return out
}

// ScopeLabel is the scope line used in report prompts.
func ScopeLabel(ds *dataset.Dataset) string {
	if ds.HasFullData() {
		return fmt.Sprintf("COMPLETE DATASET ANALYSIS (%d records)", ds.RowCount)
	}
	return fmt.Sprintf("SAMPLE ANALYSIS (%d of %d records)", len(ds.Sample), ds.RowCount)
}

func reportDatasetContext(ds *dataset.Dataset, rows []dataset.Row, full bool, m *analysis.DerivedMetrics) string {
	var b strings.Builder
	writeDatasetHeader(&b, ds)
	fmt.Fprintf(&b, "- Analysis Scope: %s\n", ScopeLabel(ds))
	b.WriteString("\nBusiness Data for Analysis:\n")
	writeRecords(&b, ds.Schema, rows)
	writeMetrics(&b, m)
	if full {
		fmt.Fprintf(&b, "\n\nCOMPREHENSIVE ANALYSIS: This analysis is based on the complete dataset of %d records. Provide accurate calculations and insights.", ds.RowCount)
	} else {
		fmt.Fprintf(&b, "\n\nLIMITED ANALYSIS: This analysis is based on %d sample records. Provide estimates with appropriate disclaimers.", len(ds.Sample))
	}
	return b.String()
}
