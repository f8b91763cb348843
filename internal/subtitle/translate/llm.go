package translate

import (
	"context"
	"strings"

	"github.com/video-quiz/backend/internal/llm"
)

// LLMBackend translates with a chat model, steering tone with a preset prompt.
type LLMBackend struct {
	name   string
	client llm.Client
	preset string
}

func NewLLMBackend(name string, client llm.Client, preset string) *LLMBackend {
	return &LLMBackend{name: name, client: client, preset: preset}
}

func (b *LLMBackend) Name() string {
	return b.name
}

func (b *LLMBackend) TranslateText(ctx context.Context, text, targetLang string) (string, error) {
	out, err := b.client.Complete(ctx, GetSystemPrompt(b.preset, targetLang), text)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}
