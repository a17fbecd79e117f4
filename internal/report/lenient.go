package report

import (
	"bytes"
	"encoding/json"
)

// Model output is trusted once the six sections exist, so the decoders below
// never fail: numbers and booleans keep their JSON spelling, members of the
// wrong shape decode to their zero value.

func members(b []byte) map[string]json.RawMessage {
	var m map[string]json.RawMessage
	if json.Unmarshal(b, &m) != nil {
		return nil
	}
	return m
}

func text(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if json.Unmarshal(raw, &s) != nil {
			return ""
		}
		return s
	case '{', '[', 'n':
		return ""
	}
	return string(raw)
}

func list[T any](raw json.RawMessage) []T {
	var items []json.RawMessage
	if json.Unmarshal(raw, &items) != nil || items == nil {
		return nil
	}
	out := make([]T, len(items))
	for i, item := range items {
		_ = json.Unmarshal(item, &out[i])
	}
	return out
}

func (m *Metric) UnmarshalJSON(b []byte) error {
	f := members(b)
	*m = Metric{Label: text(f["label"]), Value: text(f["value"]), Trend: text(f["trend"])}
	return nil
}

func (p *Projection) UnmarshalJSON(b []byte) error {
	f := members(b)
	*p = Projection{Period: text(f["period"]), Revenue: text(f["revenue"]), Growth: text(f["growth"])}
	return nil
}

func (fc *Forecast) UnmarshalJSON(b []byte) error {
	f := members(b)
	*fc = Forecast{Period: text(f["period"]), Demand: text(f["demand"]), Confidence: text(f["confidence"])}
	return nil
}

func (s *Scenario) UnmarshalJSON(b []byte) error {
	f := members(b)
	*s = Scenario{Name: text(f["name"]), Outcome: text(f["outcome"]), Probability: text(f["probability"])}
	return nil
}

func (a *Action) UnmarshalJSON(b []byte) error {
	f := members(b)
	*a = Action{Priority: text(f["priority"]), Action: text(f["action"]), Impact: text(f["impact"])}
	return nil
}

func (s *Summary) UnmarshalJSON(b []byte) error {
	f := members(b)
	*s = Summary{
		Title:       text(f["title"]),
		Description: text(f["description"]),
		KeyMetrics:  list[Metric](f["keyMetrics"]),
	}
	return nil
}

func (c *ChurnAnalysis) UnmarshalJSON(b []byte) error {
	f := members(b)
	*c = ChurnAnalysis{
		Title:       text(f["title"]),
		Description: text(f["description"]),
		Metrics:     list[Metric](f["metrics"]),
	}
	return nil
}

func (p *FinancialProjections) UnmarshalJSON(b []byte) error {
	f := members(b)
	*p = FinancialProjections{
		Title:       text(f["title"]),
		Description: text(f["description"]),
		Projections: list[Projection](f["projections"]),
	}
	return nil
}

func (d *DemandForecasting) UnmarshalJSON(b []byte) error {
	f := members(b)
	*d = DemandForecasting{
		Title:       text(f["title"]),
		Description: text(f["description"]),
		Forecasts:   list[Forecast](f["forecasts"]),
	}
	return nil
}

func (s *ScenarioAnalysis) UnmarshalJSON(b []byte) error {
	f := members(b)
	*s = ScenarioAnalysis{
		Title:       text(f["title"]),
		Description: text(f["description"]),
		Scenarios:   list[Scenario](f["scenarios"]),
	}
	return nil
}

func (r *Recommendations) UnmarshalJSON(b []byte) error {
	f := members(b)
	*r = Recommendations{
		Title:       text(f["title"]),
		Description: text(f["description"]),
		Actions:     list[Action](f["actions"]),
	}
	return nil
}
