package report

import (
	"strconv"

	"github.com/KaramelBytes/bizlens-cli/internal/dataset"
)

// Fallback builds the fixed report used when model output is unusable. Only
// the record and field counts come from ds; everything else is illustrative.
func Fallback(ds *dataset.Dataset) Report {
	rows, fields := 0, 0
	if ds != nil {
		rows, fields = ds.RowCount, len(ds.Schema)
	}
	return Report{
		Summary: &Summary{
			Title:       "Executive Summary",
			Description: "Analysis of your business data reveals key insights and opportunities for growth.",
			KeyMetrics: []Metric{
				{Label: "Total Records", Value: strconv.Itoa(rows), Trend: "stable"},
				{Label: "Data Fields", Value: strconv.Itoa(fields), Trend: "stable"},
				{Label: "Data Quality", Value: "Good", Trend: "up"},
			},
		},
		ChurnAnalysis: &ChurnAnalysis{
			Title:       "Customer Churn Analysis",
			Description: "Understanding customer retention patterns and identifying at-risk segments.",
			Metrics: []Metric{
				{Label: "Estimated Churn Rate", Value: "15%", Trend: "down"},
				{Label: "Revenue at Risk", Value: "$50,000", Trend: "stable"},
				{Label: "Retention Score", Value: "85%", Trend: "up"},
			},
		},
		FinancialProjections: &FinancialProjections{
			Title:       "Financial Projections",
			Description: "Revenue forecasts and growth projections based on current trends.",
			Projections: []Projection{
				{Period: "Next 3 Months", Revenue: "$525,000", Growth: "5%"},
				{Period: "Next 6 Months", Revenue: "$550,000", Growth: "10%"},
				{Period: "Next 12 Months", Revenue: "$600,000", Growth: "20%"},
			},
		},
		DemandForecasting: &DemandForecasting{
			Title:       "Demand Forecasting",
			Description: "Predicted demand patterns and seasonal trends.",
			Forecasts: []Forecast{
				{Period: "Q1 2024", Demand: "High", Confidence: "85%"},
				{Period: "Q2 2024", Demand: "Medium", Confidence: "75%"},
				{Period: "Q3 2024", Demand: "Medium", Confidence: "70%"},
			},
		},
		ScenarioAnalysis: &ScenarioAnalysis{
			Title:       "Scenario Analysis",
			Description: "Different business scenarios and their potential outcomes.",
			Scenarios: []Scenario{
				{Name: "Best Case", Outcome: "$750,000 revenue", Probability: "25%"},
				{Name: "Most Likely", Outcome: "$600,000 revenue", Probability: "50%"},
				{Name: "Worst Case", Outcome: "$400,000 revenue", Probability: "25%"},
			},
		},
		Recommendations: &Recommendations{
			Title:       "Strategic Recommendations",
			Description: "Actionable recommendations to improve business performance.",
			Actions: []Action{
				{Priority: "High", Action: "Implement customer retention programs", Impact: "Reduce churn by 5-10%"},
				{Priority: "Medium", Action: "Optimize pricing strategy", Impact: "Increase revenue by 8-12%"},
				{Priority: "Low", Action: "Expand seasonal marketing", Impact: "Boost Q4 sales by 15%"},
			},
		},
	}
}
