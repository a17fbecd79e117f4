// Package report holds the six-section business report, its parser for
// model output and the fixed fallback used when parsing fails.
package report

import (
	"errors"
	"fmt"
)

// Metric is a labelled value with an optional trend (up, down or stable).
type Metric struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Trend string `json:"trend,omitempty"`
}

type Projection struct {
	Period  string `json:"period"`
	Revenue string `json:"revenue"`
	Growth  string `json:"growth"`
}

type Forecast struct {
	Period     string `json:"period"`
	Demand     string `json:"demand"`
	Confidence string `json:"confidence"`
}

type Scenario struct {
	Name        string `json:"name"`
	Outcome     string `json:"outcome"`
	Probability string `json:"probability"`
}

type Action struct {
	Priority string `json:"priority"`
	Action   string `json:"action"`
	Impact   string `json:"impact"`
}

type Summary struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	KeyMetrics  []Metric `json:"keyMetrics"`
}

type ChurnAnalysis struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Metrics     []Metric `json:"metrics"`
}

type FinancialProjections struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Projections []Projection `json:"projections"`
}

type DemandForecasting struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Forecasts   []Forecast `json:"forecasts"`
}

type ScenarioAnalysis struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Scenarios   []Scenario `json:"scenarios"`
}

type Recommendations struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Actions     []Action `json:"actions"`
}

// Report is the structured business report. All six sections are required.
type Report struct {
	Summary              *Summary              `json:"summary"`
	ChurnAnalysis        *ChurnAnalysis        `json:"churnAnalysis"`
	FinancialProjections *FinancialProjections `json:"financialProjections"`
	DemandForecasting    *DemandForecasting    `json:"demandForecasting"`
	ScenarioAnalysis     *ScenarioAnalysis     `json:"scenarioAnalysis"`
	Recommendations      *Recommendations      `json:"recommendations"`
}

// SectionKeys are the required top-level JSON keys, in report order.
var SectionKeys = []string{
	"summary",
	"churnAnalysis",
	"financialProjections",
	"demandForecasting",
	"scenarioAnalysis",
	"recommendations",
}

// ErrIncomplete is returned by Validate when a section is missing.
var ErrIncomplete = errors.New("report is missing required sections")

// Validate checks that every section is present.
func (r *Report) Validate() error {
	if r == nil {
		return ErrIncomplete
	}
	present := []bool{
		r.Summary != nil,
		r.ChurnAnalysis != nil,
		r.FinancialProjections != nil,
		r.DemandForecasting != nil,
		r.ScenarioAnalysis != nil,
		r.Recommendations != nil,
	}
	for i, ok := range present {
		if !ok {
			return fmt.Errorf("%w: %s", ErrIncomplete, SectionKeys[i])
		}
	}
	return nil
}
