// Package extract implements the structured-extraction client against the
// Gemini generateContent endpoint.
//
// The service returns the structured object as JSON text embedded inside a
// response envelope (candidates → content → parts → text), so every call
// involves a second parse step. Transient failures (429, 5xx, timeouts) are
// retried with exponential backoff; everything else is terminal.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Malek720-420/InternExtract/internal/schema"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.5-flash"
	httpTimeout    = 60 * time.Second

	// maxRetries is the number of additional attempts after the first one.
	maxRetries = 3
)

// ErrUnavailable is the single failure class exposed to the rest of the
// system: callers need no finer distinction for user-facing behavior.
var ErrUnavailable = errors.New("extraction unavailable")

// The concrete failure reasons all match ErrUnavailable via errors.Is; they
// stay distinguishable for logging.
var (
	// ErrExhaustedRetries — every transient retry was consumed.
	ErrExhaustedRetries = fmt.Errorf("retries exhausted: %w", ErrUnavailable)
	// ErrPermanentRejection — non-retryable status or malformed response body.
	ErrPermanentRejection = fmt.Errorf("request rejected: %w", ErrUnavailable)
	// ErrNetworkFailure — transport-level failure before any status code.
	ErrNetworkFailure = fmt.Errorf("network failure: %w", ErrUnavailable)
)

// ErrEmptyInput reports a violated precondition: extraction is never invoked
// on input that is empty after trimming.
var ErrEmptyInput = errors.New("input text is empty")

// Client talks to the structured-inference service. The API key is injected
// configuration, never a literal. BaseURL and Backoff are settable so tests
// can point the client at a local server and collapse the backoff waits.
type Client struct {
	APIKey  string
	Model   string
	BaseURL string

	// Backoff returns the delay before retry k (k = 0,1,2): 2^k seconds.
	Backoff func(k int) time.Duration

	client *http.Client
}

// NewClient constructs a Client with a shared HTTP client and the default
// backoff schedule.
func NewClient(apiKey string) *Client {
	return &Client{
		APIKey:  apiKey,
		Model:   defaultModel,
		BaseURL: defaultBaseURL,
		Backoff: func(k int) time.Duration {
			return (1 << k) * time.Second
		},
		client: &http.Client{Timeout: httpTimeout},
	}
}

// Extract sends the raw job-offer text to the inference service and returns
// a record whose key set exactly matches the contract — gaps in the response
// are filled, never propagated.
//
// Retry policy: up to maxRetries additional attempts on a transient failure,
// waiting Backoff(k) before retry k. Terminal failures return immediately.
func (c *Client) Extract(ctx context.Context, text string) (schema.JobOfferRecord, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return schema.JobOfferRecord{}, ErrEmptyInput
	}

	prompt := extractionPrompt(text)

	for k := 0; ; k++ {
		raw, retryable, err := c.generate(ctx, prompt, schema.ResponseSchema())
		if err == nil {
			return schema.Normalize(raw), nil
		}
		if !retryable {
			return schema.JobOfferRecord{}, err
		}
		if k == maxRetries {
			return schema.JobOfferRecord{}, fmt.Errorf("%v: %w", err, ErrExhaustedRetries)
		}

		delay := c.Backoff(k)
		slog.Warn("transient inference failure, backing off", "attempt", k+1, "delay", delay, "err", err)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return schema.JobOfferRecord{}, fmt.Errorf("backoff interrupted: %w", ctx.Err())
		}
	}
}

// GenerateOnce sends a single structured request with no retry loop — any
// failure is reported once. Used by the comparison engine.
func (c *Client) GenerateOnce(ctx context.Context, prompt string, responseSchema map[string]any) (map[string]any, error) {
	raw, _, err := c.generate(ctx, prompt, responseSchema)
	return raw, err
}

// Ping sends a minimal request to check that the service is reachable.
// Failure is informational; the caller decides whether to continue.
func (c *Client) Ping(ctx context.Context) error {
	_, _, err := c.generate(ctx, "Say hello!", nil)
	return err
}

// generateRequest mirrors the generateContent request body.
type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"responseMimeType"`
	ResponseSchema   map[string]any `json:"responseSchema"`
}

// generateResponse mirrors the envelope around the structured payload.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// generate performs one request/response round trip. The second return
// reports whether the failure is worth retrying: true only for 429, 5xx and
// transport timeouts. Malformed envelopes and every other status are
// terminal.
func (c *Client) generate(ctx context.Context, prompt string, responseSchema map[string]any) (map[string]any, bool, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	}
	if responseSchema != nil {
		reqBody.GenerationConfig = &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema,
		}
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, false, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.BaseURL, c.Model, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// A timed-out round trip is indistinguishable from a slow success,
		// so it counts as transient; other transport failures are terminal.
		if isTimeout(err) {
			return nil, true, fmt.Errorf("request timed out: %w", ErrNetworkFailure)
		}
		return nil, false, fmt.Errorf("http POST: %v: %w", err, ErrNetworkFailure)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read body: %v: %w", err, ErrNetworkFailure)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("inference service returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("inference service returned %d: %w", resp.StatusCode, ErrPermanentRejection)
	}

	if responseSchema == nil {
		// Ping path: reachability is all that matters.
		return nil, false, nil
	}

	var envelope generateResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, false, fmt.Errorf("decode envelope: %v: %w", err, ErrPermanentRejection)
	}
	if len(envelope.Candidates) == 0 || len(envelope.Candidates[0].Content.Parts) == 0 {
		return nil, false, fmt.Errorf("envelope has no candidate content: %w", ErrPermanentRejection)
	}

	// Second parse step: the structured object travels as text inside the
	// envelope.
	inner := envelope.Candidates[0].Content.Parts[0].Text
	var raw map[string]any
	if err := json.Unmarshal([]byte(inner), &raw); err != nil {
		return nil, false, fmt.Errorf("decode structured payload: %v: %w", err, ErrPermanentRejection)
	}

	return raw, false, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
