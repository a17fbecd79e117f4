package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/KaramelBytes/bizlens-cli/internal/ai"
	"github.com/KaramelBytes/bizlens-cli/internal/dataset"
	"github.com/KaramelBytes/bizlens-cli/internal/prompt"
	"github.com/KaramelBytes/bizlens-cli/internal/report"
	"github.com/KaramelBytes/bizlens-cli/internal/session"
)

type stubRuntime struct {
	text  string
	err   error
	calls []ai.GenerateRequest
}

func (s *stubRuntime) Generate(_ context.Context, req ai.GenerateRequest) (*ai.GenerateResponse, error) {
	s.calls = append(s.calls, req)
	if s.err != nil {
		return nil, s.err
	}
	return &ai.GenerateResponse{Text: s.text, Model: req.Model}, nil
}

func newSession(t *testing.T, lang string, withData bool) *session.Session {
	t.Helper()
	s := session.New(t.TempDir(), lang)
	if withData {
		ds, err := dataset.FromRecords("c.csv", []string{"customer", "Status", "Sales"},
			[][]string{{"a", "Active", "$100"}, {"b", "Churned", "$50"}}, dataset.DefaultOptions())
		if err != nil {
			t.Fatalf("FromRecords: %v", err)
		}
		s.SetDataset(ds, "c.csv")
	}
	return s
}

func newAssistant(rt ai.Runtime) *Assistant {
	opt := DefaultOptions()
	opt.Model = "test-model"
	return New(rt, opt, zerolog.Nop())
}

func TestChatValidation(t *testing.T) {
	rt := &stubRuntime{text: "x"}
	s := newSession(t, "en", false)
	_, err := newAssistant(rt).Chat(context.Background(), s, "   ")
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "message" {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(rt.calls) != 0 || len(s.History) != 0 {
		t.Fatalf("validation must precede gateway call and history")
	}
}

func TestChatSuccess(t *testing.T) {
	rt := &stubRuntime{text: "<script>alert(1)</script>Revenue is up."}
	s := newSession(t, "en", true)
	s.Append(prompt.TurnUser, "earlier question")
	s.Append(prompt.TurnBot, "earlier answer")

	res, err := newAssistant(rt).Chat(context.Background(), s, "How is revenue?")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Reply != "Revenue is up." || res.Mode != prompt.ModeDataAnalysis {
		t.Fatalf("unexpected result: %+v", res)
	}
	req := rt.calls[0]
	if req.Temperature != 0.7 || req.MaxOutputTokens != 1000 || req.Model != "test-model" {
		t.Fatalf("generation params: %+v", req)
	}
	if strings.Count(req.Prompt, "How is revenue?") != 1 {
		t.Fatalf("current query should appear once:\n%s", req.Prompt)
	}
	if !strings.Contains(req.Prompt, "User: earlier question") || res.Prompt.HistoryIncluded != 2 {
		t.Fatalf("history missing from prompt")
	}
	if res.Metrics == nil || !res.Metrics.TotalRevenue.Available() {
		t.Fatalf("metrics not derived: %+v", res.Metrics)
	}
	last := s.History[len(s.History)-2:]
	if last[0].Kind != prompt.TurnUser || last[1].Kind != prompt.TurnBot || last[1].Message != "Revenue is up." {
		t.Fatalf("history not recorded: %+v", last)
	}
}

func TestChatEmptyReply(t *testing.T) {
	rt := &stubRuntime{text: "  "}
	res, err := newAssistant(rt).Chat(context.Background(), newSession(t, "en", false), "startup tips?")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if res.Reply != NoResponseText || res.Mode != prompt.ModeGeneralAdvice {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestChatFailureAppendsApology(t *testing.T) {
	gwErr := &ai.RateLimitError{APIError: &ai.APIError{StatusCode: 429}}
	for _, lang := range prompt.Languages() {
		rt := &stubRuntime{err: gwErr}
		s := newSession(t, lang, true)
		_, err := newAssistant(rt).Chat(context.Background(), s, "churn?")
		if err == nil || ai.Classify(err) != ai.ClassRateLimit {
			t.Fatalf("%s: expected rate limit error, got %v", lang, err)
		}
		if len(s.History) != 2 || s.History[0].Message != "churn?" || s.History[1].Message != prompt.Lookup(lang).Apology {
			t.Fatalf("%s: history = %+v", lang, s.History)
		}
	}
}

func TestReportRequiresDataset(t *testing.T) {
	rt := &stubRuntime{}
	_, err := newAssistant(rt).Report(context.Background(), newSession(t, "en", false))
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Field != "dataset" || len(rt.calls) != 0 {
		t.Fatalf("expected dataset validation error, got %v", err)
	}
}

func TestReportFallbackOnGarbage(t *testing.T) {
	rt := &stubRuntime{text: "I cannot produce JSON today."}
	s := newSession(t, "hi", true)
	res, err := newAssistant(rt).Report(context.Background(), s)
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if res.Outcome.Source != report.SourceFallback || res.Report.Validate() != nil {
		t.Fatalf("expected valid fallback: %+v", res.Outcome)
	}
	req := rt.calls[0]
	if req.Temperature != 0.3 || req.MaxOutputTokens != 2000 {
		t.Fatalf("generation params: %+v", req)
	}
	if !strings.Contains(req.Prompt, prompt.Lookup("hi").ReportDirective) || res.Prompt.Scope != prompt.ScopeFull {
		t.Fatalf("report prompt: scope=%s", res.Prompt.Scope)
	}
	if len(s.History) != 2 || s.History[0].Kind != prompt.TurnReport || s.History[1].Message != ReportReadyText {
		t.Fatalf("history = %+v", s.History)
	}
	if s.LastReport() == nil || s.LastReport().Summary.KeyMetrics[0].Value != "2" {
		t.Fatalf("report not stored")
	}
}

func TestReportGatewayFailure(t *testing.T) {
	rt := &stubRuntime{err: errors.New("boom")}
	s := newSession(t, "en", true)
	_, err := newAssistant(rt).Report(context.Background(), s)
	if err == nil || ai.Classify(err) != ai.ClassGeneric {
		t.Fatalf("expected generic error, got %v", err)
	}
	if len(s.History) != 1 || s.History[0].Message != ReportFailedText {
		t.Fatalf("history = %+v", s.History)
	}
}

func TestPromptPreviewDoesNotMutate(t *testing.T) {
	s := newSession(t, "hi_en", true)
	s.Append(prompt.TurnUser, "hello")
	a := New(nil, DefaultOptions(), zerolog.Nop())

	cr, err := a.ChatPrompt(s, "  revenue trend?  ")
	if err != nil {
		t.Fatalf("ChatPrompt: %v", err)
	}
	rr, err := a.ReportPrompt(s)
	if err != nil {
		t.Fatalf("ReportPrompt: %v", err)
	}
	if len(s.History) != 1 {
		t.Fatalf("preview mutated history: %+v", s.History)
	}
	if !strings.Contains(cr.Prompt.Text, "Current user question: revenue trend?\n") {
		t.Fatalf("query not trimmed in prompt:\n%s", cr.Prompt.Text)
	}
	if rr.Prompt.Mode != prompt.ModeReport || rr.Prompt.Language != "hi_en" {
		t.Fatalf("report prompt: %+v", rr.Prompt)
	}
}
