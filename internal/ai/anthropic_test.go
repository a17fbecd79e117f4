package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestAnthropicGenerate(t *testing.T) {
	var body map[string]any
	var key string
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			http.NotFound(w, r)
			return
		}
		key = r.Header.Get("X-Api-Key")
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_01","type":"message","role":"assistant","model":"claude-haiku-4-5-20251001",
"content":[{"type":"text","text":"hello from claude"}],"stop_reason":"end_turn","stop_sequence":null,
"usage":{"input_tokens":9,"output_tokens":4}}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient("ak", 5*time.Second, 1, srv.URL)
	resp, err := c.Generate(context.Background(), GenerateRequest{Model: "claude-haiku-4-5-20251001", Prompt: "hi", Temperature: 0.3, MaxOutputTokens: 200})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if resp.Text != "hello from claude" || resp.RequestID != "msg_01" || resp.Usage.CompletionTokens != 4 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if key != "ak" {
		t.Fatalf("api key header = %q", key)
	}
	if body["max_tokens"] != float64(200) || body["temperature"] != 0.3 {
		t.Fatalf("request body: %v", body)
	}
}

func TestAnthropicRateLimit(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient("ak", 5*time.Second, 1, srv.URL)
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "m", Prompt: "hi"})
	var rl *RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("expected RateLimitError, got %v", err)
	}
	if Classify(err) != ClassRateLimit {
		t.Fatalf("class = %v", Classify(err))
	}
}
