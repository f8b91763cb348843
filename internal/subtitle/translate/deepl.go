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

const (
	deeplFreeURL = "https://api-free.deepl.com/v2/translate"
	deeplProURL  = "https://api.deepl.com/v2/translate"
)

// DeepLBackend translates using the DeepL API.
type DeepLBackend struct {
	apiKey     string
	endpoint   string
	formality  string
	httpClient llm.HTTPDoer
}

// NewDeepLBackend picks the free or pro endpoint from the key suffix unless
// endpoint is set.
func NewDeepLBackend(apiKey, preset, endpoint string, client llm.HTTPDoer) (*DeepLBackend, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("DeepL API key not configured")
	}
	if endpoint == "" {
		endpoint = deeplProURL
		if strings.HasSuffix(apiKey, ":fx") {
			endpoint = deeplFreeURL
		}
	}
	if client == nil {
		client = &http.Client{Timeout: 1 * time.Minute}
	}
	return &DeepLBackend{
		apiKey:     apiKey,
		endpoint:   endpoint,
		formality:  deeplFormality(preset),
		httpClient: client,
	}, nil
}

func (d *DeepLBackend) Name() string {
	return "deepl"
}

func (d *DeepLBackend) TranslateText(ctx context.Context, text, targetLang string) (string, error) {
	form := url.Values{}
	form.Add("text", text)
	form.Set("target_lang", deeplLangCode(targetLang))
	if d.formality != "" {
		form.Set("formality", d.formality)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Authorization", "DeepL-Auth-Key "+d.apiKey)

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("DeepL API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("DeepL API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var deeplResp struct {
		Translations []struct {
			Text string `json:"text"`
		} `json:"translations"`
	}
	if err := json.Unmarshal(body, &deeplResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(deeplResp.Translations) == 0 {
		return "", fmt.Errorf("empty DeepL response")
	}
	return deeplResp.Translations[0].Text, nil
}

// deeplFormality maps a tone preset to DeepL's formality parameter.
func deeplFormality(preset string) string {
	switch preset {
	case "documentary", "lecture":
		return "prefer_more"
	case "casual":
		return "prefer_less"
	default:
		return ""
	}
}

// deeplLangCode converts ISO 639-1 codes to DeepL format
func deeplLangCode(code string) string {
	mapping := map[string]string{
		"en": "EN-US",
		"pt": "PT-BR",
		"zh": "ZH-HANS",
	}
	if mapped, ok := mapping[strings.ToLower(code)]; ok {
		return mapped
	}
	return strings.ToUpper(code)
}
