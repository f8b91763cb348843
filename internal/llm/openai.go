package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
)

// OpenAI talks to the Chat Completions API.
type OpenAI struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	client      HTTPDoer
}

func NewOpenAI(apiKey string, opts Options) (*OpenAI, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OpenAI API key not configured")
	}
	o := &OpenAI{
		apiKey:      apiKey,
		baseURL:     defaultOpenAIBaseURL,
		model:       defaultOpenAIModel,
		temperature: opts.Temperature,
		client:      opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		o.baseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	if opts.Model != "" {
		o.model = opts.Model
	}
	if o.client == nil {
		o.client = &http.Client{Timeout: 5 * time.Minute}
	}
	return o, nil
}

func (o *OpenAI) Model() string {
	return o.model
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

func (o *OpenAI) Complete(ctx context.Context, system, user string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if strings.TrimSpace(system) != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: user})

	jsonBody, err := json.Marshal(chatRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: o.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("OpenAI API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("empty OpenAI response")
	}
	return chatResp.Choices[0].Message.Content, nil
}
