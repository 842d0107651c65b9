package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultLibreEndpoint is the public LibreTranslate instance.
const DefaultLibreEndpoint = "https://libretranslate.com/translate"

// LibreClient is the best-effort single-segment fallback translator.
type LibreClient struct {
	Endpoint   string
	httpClient *http.Client
}

// NewLibreClient creates a fallback client; an empty endpoint uses the
// public instance.
func NewLibreClient(endpoint string) *LibreClient {
	if endpoint == "" {
		endpoint = DefaultLibreEndpoint
	}
	return &LibreClient{
		Endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 25 * time.Second},
	}
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
}

// Translate translates a single text, returning an error on any failure so
// the caller can decide what to surface.
func (c *LibreClient) Translate(ctx context.Context, text, src, tgt string) (string, error) {
	body, err := json.Marshal(libreRequest{
		Q:      text,
		Source: foldChinese(src),
		Target: foldChinese(tgt),
		Format: "text",
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transport: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}

	var out libreResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.TranslatedText == "" {
		return "", fmt.Errorf("empty translation")
	}
	return out.TranslatedText, nil
}
