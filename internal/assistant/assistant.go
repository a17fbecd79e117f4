// Package assistant runs one chat or report request against a session:
// validation, prompt assembly, the gateway call, sanitization and history
// bookkeeping.
package assistant

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/KaramelBytes/bizlens-cli/internal/ai"
	"github.com/KaramelBytes/bizlens-cli/internal/analysis"
	"github.com/KaramelBytes/bizlens-cli/internal/prompt"
	"github.com/KaramelBytes/bizlens-cli/internal/report"
	"github.com/KaramelBytes/bizlens-cli/internal/sanitize"
	"github.com/KaramelBytes/bizlens-cli/internal/session"
)

const (
	// NoResponseText replaces an empty chat reply.
	NoResponseText = "Sorry, I couldn't generate a response."
	// ReportReadyText follows a generated report.
	ReportReadyText = "I've generated a comprehensive business analysis report based on your data. The report includes churn analysis, financial projections, demand forecasting, scenario analysis, and strategic recommendations."
	// ReportFailedText follows a failed report request.
	ReportFailedText = "Sorry, I couldn't generate the business report. Please try again or check if your data contains the necessary business metrics."
)

// ValidationError rejects a request before any gateway call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Options are the per-call generation parameters.
type Options struct {
	Model             string
	ChatTemperature   float64
	ChatMaxTokens     int
	ReportTemperature float64
	ReportMaxTokens   int
	// PromptLimit caps prompt tokens; 0 means unlimited.
	PromptLimit  int
	HistoryTurns int
}

// DefaultOptions mirrors the chat and report call-site settings.
func DefaultOptions() Options {
	return Options{
		ChatTemperature:   0.7,
		ChatMaxTokens:     1000,
		ReportTemperature: 0.3,
		ReportMaxTokens:   2000,
		HistoryTurns:      prompt.DefaultHistoryTurns,
	}
}

type Assistant struct {
	rt  ai.Runtime
	opt Options
	log zerolog.Logger
}

func New(rt ai.Runtime, opt Options, log zerolog.Logger) *Assistant {
	return &Assistant{rt: rt, opt: opt, log: log}
}

// ChatResult describes a completed chat turn.
type ChatResult struct {
	Reply   string
	Mode    prompt.Mode
	Prompt  prompt.PromptContext
	Metrics *analysis.DerivedMetrics
}

// ChatPrompt validates query and assembles its prompt without touching s.
func (a *Assistant) ChatPrompt(s *session.Session, query string) (*ChatResult, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, &ValidationError{Field: "message", Message: "Message is required"}
	}
	res := &ChatResult{Mode: prompt.DetectMode(q)}
	if s.Dataset != nil {
		m := analysis.Derive(s.Dataset, analysis.Classify(s.Dataset.Schema))
		res.Metrics = &m
	}
	res.Prompt = prompt.Assemble(prompt.Input{
		Query:        q,
		Dataset:      s.Dataset,
		Metrics:      res.Metrics,
		History:      s.PromptHistory(),
		Language:     s.Language,
		Mode:         res.Mode,
		HistoryTurns: a.opt.HistoryTurns,
		MaxTokens:    a.opt.PromptLimit,
	})
	a.logPrompt("chat", res.Prompt)
	return res, nil
}

// Chat answers query within s. The user turn is recorded before the gateway
// call; on failure an apology turn follows it and the error is returned.
func (a *Assistant) Chat(ctx context.Context, s *session.Session, query string) (*ChatResult, error) {
	res, err := a.ChatPrompt(s, query)
	if err != nil {
		return nil, err
	}
	s.Append(prompt.TurnUser, strings.TrimSpace(query))

	text, err := a.generate(ctx, res.Prompt, a.opt.ChatTemperature, a.opt.ChatMaxTokens)
	if err != nil {
		s.Append(prompt.TurnBot, prompt.Lookup(s.Language).Apology)
		return res, fmt.Errorf("chat: %w", err)
	}
	res.Reply = sanitize.Text(text)
	if res.Reply == "" {
		res.Reply = NoResponseText
	}
	s.Append(prompt.TurnBot, res.Reply)
	return res, nil
}

// ReportResult describes a completed report request.
type ReportResult struct {
	Report  report.Report
	Outcome report.Outcome
	Prompt  prompt.PromptContext
	Metrics analysis.DerivedMetrics
}

// ReportPrompt assembles the report prompt for the session dataset.
func (a *Assistant) ReportPrompt(s *session.Session) (*ReportResult, error) {
	if s.Dataset == nil {
		return nil, &ValidationError{Field: "dataset", Message: "CSV data is required for report generation"}
	}
	res := &ReportResult{Metrics: analysis.Derive(s.Dataset, analysis.Classify(s.Dataset.Schema))}
	res.Prompt = prompt.AssembleReport(prompt.ReportInput{
		Dataset:   s.Dataset,
		Metrics:   &res.Metrics,
		Language:  s.Language,
		MaxTokens: a.opt.PromptLimit,
	})
	a.logPrompt("report", res.Prompt)
	return res, nil
}

// Report generates the business report for the session dataset. Malformed
// model output resolves to the fallback report; only gateway failures and a
// missing dataset return errors.
func (a *Assistant) Report(ctx context.Context, s *session.Session) (*ReportResult, error) {
	res, err := a.ReportPrompt(s)
	if err != nil {
		return nil, err
	}

	text, err := a.generate(ctx, res.Prompt, a.opt.ReportTemperature, a.opt.ReportMaxTokens)
	if err != nil {
		s.Append(prompt.TurnBot, ReportFailedText)
		return res, fmt.Errorf("report: %w", err)
	}
	res.Report, res.Outcome = report.Parse(text, s.Dataset)
	if res.Outcome.Source == report.SourceFallback {
		a.log.Warn().Err(res.Outcome.Reason).Msg("model output unusable; using fallback report")
	}
	s.AppendReport(res.Report)
	s.Append(prompt.TurnBot, ReportReadyText)
	return res, nil
}

func (a *Assistant) generate(ctx context.Context, pc prompt.PromptContext, temp float64, maxTokens int) (string, error) {
	start := time.Now()
	resp, err := a.rt.Generate(ctx, ai.GenerateRequest{
		Model:           a.opt.Model,
		Prompt:          pc.Text,
		Temperature:     temp,
		MaxOutputTokens: maxTokens,
	})
	if err != nil {
		a.log.Error().Err(err).
			Str("class", ai.Classify(err).String()).
			Dur("elapsed", time.Since(start)).
			Msg("gateway call failed")
		return "", err
	}
	a.log.Debug().
		Str("model", resp.Model).
		Str("request_id", resp.RequestID).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Dur("elapsed", time.Since(start)).
		Msg("gateway call finished")
	return resp.Text, nil
}

func (a *Assistant) logPrompt(kind string, pc prompt.PromptContext) {
	ev := a.log.Debug().
		Str("kind", kind).
		Str("mode", string(pc.Mode)).
		Str("language", pc.Language).
		Str("scope", string(pc.Scope)).
		Int("rows", pc.RowsIncluded).
		Int("history", pc.HistoryIncluded).
		Int("tokens", pc.Tokens)
	if pc.Truncation.Applied {
		ev = ev.Int("history_dropped", pc.Truncation.HistoryDropped).
			Int("rows_dropped", pc.Truncation.RowsDropped).
			Bool("context_clipped", pc.Truncation.ContextClipped)
	}
	ev.Msg("prompt assembled")
	if pc.Truncation.OverCap {
		a.log.Warn().
			Str("kind", kind).
			Int("tokens", pc.Tokens).
			Int("limit", a.opt.PromptLimit).
			Msg("prompt exceeds token cap after truncation")
	}
}
