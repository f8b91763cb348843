package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/video-quiz/backend/internal/llm"
)

const googleTranslateURL = "https://translate.googleapis.com/translate_a/single"

// GoogleBackend uses the keyless Google Translate web endpoint with source
// language auto-detection.
type GoogleBackend struct {
	endpoint   string
	httpClient llm.HTTPDoer
}

func NewGoogleBackend(endpoint string, client llm.HTTPDoer) *GoogleBackend {
	if endpoint == "" {
		endpoint = googleTranslateURL
	}
	if client == nil {
		client = &http.Client{Timeout: 1 * time.Minute}
	}
	return &GoogleBackend{endpoint: endpoint, httpClient: client}
}

func (g *GoogleBackend) Name() string {
	return "google"
}

// TranslateText returns blank text unchanged without a request; the endpoint
// answers it with no segments.
func (g *GoogleBackend) TranslateText(ctx context.Context, text, targetLang string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", "auto")
	q.Set("tl", targetLang)
	q.Set("dt", "t")
	q.Set("q", text)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("Google Translate request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Google Translate error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return parseGoogleResponse(body)
}

// parseGoogleResponse concatenates the translated segments of a gtx reply:
// [[["translated","source",...],...],...].
func parseGoogleResponse(body []byte) (string, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("empty Google Translate response")
	}

	var segments [][]any
	if err := json.Unmarshal(raw[0], &segments); err != nil {
		return "", fmt.Errorf("parse segments: %w", err)
	}

	var sb strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			sb.WriteString(s)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("empty Google Translate response")
	}
	return sb.String(), nil
}
