package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// retryPolicy bounds attempts for REST runtimes.
type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// hintedBackOff lets a Retry-After header replace the next computed delay.
type hintedBackOff struct {
	backoff.BackOff
	hint time.Duration
}

func (h *hintedBackOff) NextBackOff() time.Duration {
	next := h.BackOff.NextBackOff()
	if next == backoff.Stop || h.hint <= 0 {
		return next
	}
	d := h.hint
	h.hint = 0
	return d
}

func (p retryPolicy) newBackOff(ctx context.Context) (backoff.BackOff, *hintedBackOff) {
	exp := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(p.baseDelay),
		backoff.WithMaxInterval(p.maxDelay),
		backoff.WithMultiplier(2.0),
		backoff.WithRandomizationFactor(0.2),
		backoff.WithMaxElapsedTime(0),
	)
	h := &hintedBackOff{BackOff: exp}
	retries := 0
	if p.maxAttempts > 1 {
		retries = p.maxAttempts - 1
	}
	return backoff.WithContext(backoff.WithMaxRetries(h, uint64(retries)), ctx), h
}

// postJSON sends body to endpoint and decodes a 2xx response into out.
// 429, 5xx and transient network failures are retried per policy; every
// other failure is returned on the first attempt.
func postJSON(ctx context.Context, hc *http.Client, p retryPolicy, endpoint string, headers map[string]string, body, out any) (string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	b, hinted := p.newBackOff(ctx)
	var requestID string
	op := func() error {
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		httpReq.Header.Set("Content-Type", "application/json")
		for k, v := range headers {
			httpReq.Header.Set(k, v)
		}
		resp, err := hc.Do(httpReq)
		if err != nil {
			uerr := &UnreachableError{Host: hostOf(endpoint), Err: err}
			if isRetryableNetErr(err) {
				return uerr
			}
			return backoff.Permanent(uerr)
		}
		defer resp.Body.Close()
		requestID = extractRequestID(resp)
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := decodeAPIError(resp)
			retryAfter := retryAfterHint(resp)
			typed := classifyStatus(apiErr, retryAfter)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				hinted.hint = retryAfter
				return typed
			}
			return backoff.Permanent(typed)
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode response: %w", err))
		}
		return nil
	}
	if err := backoff.Retry(op, b); err != nil {
		return requestID, err
	}
	return requestID, nil
}

func decodeAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	var raw map[string]any
	_ = json.Unmarshal(body, &raw)
	apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: extractRequestID(resp)}
	src := raw
	if v, ok := raw["error"].(map[string]any); ok {
		src = v
	}
	if msg, ok := src["message"].(string); ok {
		apiErr.Message = msg
	}
	switch code := src["code"].(type) {
	case string:
		apiErr.Code = code
	case float64:
		if status, ok := src["status"].(string); ok {
			apiErr.Code = status
		} else {
			apiErr.Code = strconv.Itoa(int(code))
		}
	}
	return apiErr
}

func isRetryableNetErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

func retryAfterHint(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	secs, err := parseRetryAfterSeconds(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

// parseRetryAfterSeconds interprets Retry-After as seconds or an HTTP date.
func parseRetryAfterSeconds(v string) (int, error) {
	if s, err := strconv.Atoi(v); err == nil {
		return s, nil
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return int(d.Seconds()), nil
	}
	return 0, fmt.Errorf("invalid Retry-After: %q", v)
}

// extractRequestID pulls a best-effort request ID from common headers.
func extractRequestID(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	for _, k := range []string{"X-Request-Id", "Request-Id", "Openrouter-Request-ID", "X-Goog-Request-Id"} {
		if v := resp.Header.Get(k); v != "" {
			return v
		}
	}
	return ""
}

func hostOf(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return ""
	}
	return u.Host
}
