// Package translate sends OCR text to remote translation services. The
// primary path batches segments into single chat-completion requests with a
// strict JSON output contract and survives rate limiting with bounded
// retries; a secondary per-item service covers what the primary could not.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// FailedPrefix tags every segment of a batch that exhausted its retries.
// Failures stay visible in the output instead of blocking the pipeline.
const FailedPrefix = "[translate failed"

// MissingKeyPrefix tags segments when no API key is configured; no network
// call is attempted.
const MissingKeyPrefix = "[missing api key]"

// IsFailureTagged reports whether a translation result carries the
// batch-failure tag and is therefore a candidate for the per-item fallback.
func IsFailureTagged(s string) bool {
	return strings.HasPrefix(s, FailedPrefix)
}

// ChatConfig configures the chat-completions translation client.
type ChatConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	MaxRetries int
	Timeout    time.Duration
}

// DefaultChatConfig returns the default client configuration.
func DefaultChatConfig() ChatConfig {
	return ChatConfig{
		BaseURL:    "https://api.openai.com/v1",
		Model:      "gpt-4o-mini",
		MaxRetries: 5,
		Timeout:    90 * time.Second,
	}
}

const (
	// maxBackoff caps the rate-limit wait regardless of what the server asks for.
	maxBackoff = 45 * time.Second
	// parseRetryBase is the short fixed-ish delay after parse or transport
	// hiccups; these are formatting problems, not capacity problems, so a
	// long exponential wait buys nothing.
	parseRetryBase = 1500 * time.Millisecond
	maxParseRetry  = 10 * time.Second
	// quotaExhaustedMarker is a best-effort substring match on the 429 body;
	// the remote service does not contract this format.
	quotaExhaustedMarker = "insufficient_quota"
)

// ChatClient translates batches of segments through an OpenAI-style
// chat-completions endpoint.
type ChatClient struct {
	cfg        ChatConfig
	httpClient *http.Client

	// injectable for tests
	sleep  func(time.Duration)
	jitter func() float64
}

// NewChatClient creates a client; zero config fields fall back to defaults.
func NewChatClient(cfg ChatConfig) *ChatClient {
	def := DefaultChatConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = def.MaxRetries
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &ChatClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		sleep:      time.Sleep,
		jitter:     rand.Float64,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// batchPayload is the strict-JSON contract sent as the user message.
type batchPayload struct {
	SourceLanguage string   `json:"source_language"`
	TargetLanguage string   `json:"target_language"`
	Segments       []string `json:"segments"`
	Instructions   string   `json:"instructions"`
}

// outcome classifies one request attempt.
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeRateLimited
	outcomeFatal
	outcomeRetryShort // parse or transport hiccup
)

// attemptResult carries the state-machine decision for one attempt.
type attemptResult struct {
	outcome      outcome
	translations []string
	err          string
	wait         time.Duration
}

// TranslateBatch translates texts in a single request, retrying per the
// rate-limit state machine. The returned slice always has the same length
// and order as the input; segments that could not be translated come back as
// the original text behind a visible failure tag.
func (c *ChatClient) TranslateBatch(ctx context.Context, texts []string, src, tgt string) []string {
	if len(texts) == 0 {
		return nil
	}
	if c.cfg.APIKey == "" {
		return tagAll(texts, MissingKeyPrefix)
	}

	// The remote translator does not care about the OCR engine's Chinese
	// variant split.
	src = foldChinese(src)
	tgt = foldChinese(tgt)

	body, err := json.Marshal(c.buildRequest(texts, src, tgt))
	if err != nil {
		return tagAll(texts, fmt.Sprintf("%s: encode request: %v]", FailedPrefix, err))
	}

	lastErr := "no attempts made"
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		res := c.attempt(ctx, body, len(texts), attempt)
		switch res.outcome {
		case outcomeSuccess:
			return fillNil(res.translations, texts)
		case outcomeRateLimited:
			lastErr = res.err
			slog.Warn("translation rate limited",
				"attempt", attempt+1, "max_retries", c.cfg.MaxRetries, "wait", res.wait)
			c.sleep(res.wait)
		case outcomeRetryShort:
			lastErr = res.err
			slog.Warn("translation attempt failed", "attempt", attempt+1, "error", res.err)
			c.sleep(res.wait)
		case outcomeFatal:
			lastErr = res.err
			slog.Error("translation failed permanently", "error", res.err)
			return tagAll(texts, fmt.Sprintf("%s: %s]", FailedPrefix, lastErr))
		}
	}

	slog.Error("translation batch exhausted retries", "retries", c.cfg.MaxRetries, "last_error", lastErr)
	return tagAll(texts, fmt.Sprintf("%s: %s]", FailedPrefix, lastErr))
}

func (c *ChatClient) buildRequest(texts []string, src, tgt string) chatRequest {
	payload, _ := json.Marshal(batchPayload{
		SourceLanguage: src,
		TargetLanguage: tgt,
		Segments:       texts,
		Instructions: "Return ONLY valid JSON with key 'translations' (array of strings), " +
			"same length as segments. No extra text.",
	})
	return chatRequest{
		Model:       c.cfg.Model,
		Temperature: 0.2,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a precise translator. Output strictly as JSON only, no markdown, no explanations.",
			},
			{Role: "user", Content: string(payload)},
		},
	}
}

func (c *ChatClient) attempt(ctx context.Context, body []byte, want, attempt int) attemptResult {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return attemptResult{outcome: outcomeFatal, err: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return attemptResult{
			outcome: outcomeRetryShort,
			err:     fmt.Sprintf("transport: %v", err),
			wait:    shortRetryDelay(attempt),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return attemptResult{
			outcome: outcomeRetryShort,
			err:     fmt.Sprintf("read response: %v", err),
			wait:    shortRetryDelay(attempt),
		}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		if strings.Contains(string(raw), quotaExhaustedMarker) {
			return attemptResult{outcome: outcomeFatal, err: quotaExhaustedMarker}
		}
		return attemptResult{
			outcome: outcomeRateLimited,
			err:     fmt.Sprintf("rate limited (429), attempt %d", attempt+1),
			wait:    c.backoffDelay(resp.Header.Get("Retry-After"), attempt),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return attemptResult{
			outcome: outcomeFatal,
			err:     fmt.Sprintf("status %d: %s", resp.StatusCode, truncate(string(raw), 200)),
		}
	}

	translations, perr := parseTranslations(raw, want)
	if perr != nil {
		return attemptResult{
			outcome: outcomeRetryShort,
			err:     fmt.Sprintf("parse: %v", perr),
			wait:    shortRetryDelay(attempt),
		}
	}
	return attemptResult{outcome: outcomeSuccess, translations: translations}
}

// backoffDelay honors a numeric Retry-After header when present, otherwise
// backs off exponentially with jitter, capped at maxBackoff either way.
func (c *ChatClient) backoffDelay(retryAfter string, attempt int) time.Duration {
	var d time.Duration
	if secs, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil && secs >= 0 {
		d = time.Duration(secs) * time.Second
	} else {
		d = time.Duration((math.Pow(2, float64(attempt)) + c.jitter()*1.5) * float64(time.Second))
	}
	return min(d, maxBackoff)
}

func shortRetryDelay(attempt int) time.Duration {
	return min(parseRetryBase+time.Duration(attempt)*time.Second, maxParseRetry)
}

// parseTranslations extracts the translations array from the model's reply,
// tolerating a markdown code fence around the JSON. A missing key or a
// length mismatch is a parse failure; the caller retries.
func parseTranslations(raw []byte, want int) ([]string, error) {
	var cr chatResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return nil, fmt.Errorf("response envelope: %w", err)
	}
	if len(cr.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	content := stripCodeFence(strings.TrimSpace(cr.Choices[0].Message.Content))

	var out struct {
		Translations []string `json:"translations"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("content json: %w", err)
	}
	if out.Translations == nil {
		return nil, fmt.Errorf("missing translations key")
	}
	if len(out.Translations) != want {
		return nil, fmt.Errorf("bad shape: expected %d translations, got %d", want, len(out.Translations))
	}
	return out.Translations, nil
}

// stripCodeFence removes an optional ```...``` wrapper, with or without a
// json language marker.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.Trim(s, "`")
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "json"); ok {
		s = strings.TrimSpace(rest)
	}
	return s
}

// foldChinese collapses the OCR engine's Chinese variant tags to the generic
// translator tag.
func foldChinese(tag string) string {
	switch tag {
	case "ch_sim", "ch_tra", "zh_sim", "zh_tra":
		return "zh"
	default:
		return tag
	}
}

func tagAll(texts []string, tag string) []string {
	out := make([]string, len(texts))
	for i, t := range texts {
		out[i] = tag + " " + t
	}
	return out
}

// fillNil replaces empty translations with the original text so the
// one-to-one mapping never silently drops a segment.
func fillNil(translations, texts []string) []string {
	for i, tr := range translations {
		if tr == "" {
			translations[i] = texts[i]
		}
	}
	return translations
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
