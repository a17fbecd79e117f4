package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/bizlens-cli/internal/dataset"
	"github.com/KaramelBytes/bizlens-cli/internal/sanitize"
)

// Source tells whether a report came from the model or the fallback.
type Source string

const (
	SourceParsed   Source = "parsed"
	SourceFallback Source = "fallback"
)

// Outcome describes how Parse produced its report. Reason is set for
// fallbacks and is meant for logs.
type Outcome struct {
	Source Source
	Reason error
}

// ErrNoJSON means the response held no brace-delimited object.
var ErrNoJSON = errors.New("no JSON object found in response")

// Parse extracts a report from raw model text. It never fails: any problem
// yields Fallback(ds) and an Outcome carrying the reason.
func Parse(raw string, ds *dataset.Dataset) (Report, Outcome) {
	r, err := decode(sanitize.Text(raw))
	if err != nil {
		return Fallback(ds), Outcome{Source: SourceFallback, Reason: err}
	}
	return r, Outcome{Source: SourceParsed}
}

// extractObject returns the text from the first '{' to the last '}'.
func extractObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return "", false
	}
	return s[start : end+1], true
}

func decode(text string) (Report, error) {
	candidate, ok := extractObject(text)
	if !ok {
		return Report{}, ErrNoJSON
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &top); err != nil {
		return Report{}, fmt.Errorf("decode report: %w", err)
	}
	for _, key := range SectionKeys {
		v, ok := top[key]
		if !ok || isFalsy(v) {
			return Report{}, fmt.Errorf("%w: %s", ErrIncomplete, key)
		}
	}
	var r Report
	if err := json.Unmarshal([]byte(candidate), &r); err != nil {
		return Report{}, fmt.Errorf("decode report sections: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Report{}, err
	}
	return r, nil
}

// isFalsy matches the JSON values a truthiness check would reject.
func isFalsy(v json.RawMessage) bool {
	switch strings.TrimSpace(string(v)) {
	case "null", "false", "0", `""`:
		return true
	}
	return false
}
