package generate

import (
	"context"

	"github.com/video-quiz/backend/internal/llm"
)

const systemPrompt = "You write multiple-choice comprehension quizzes about video transcripts. " +
	"Follow the requested line format exactly and output nothing else."

// LLMGenerator generates questions with a chat model.
type LLMGenerator struct {
	name   string
	client llm.Client
}

func NewLLMGenerator(name string, client llm.Client) *LLMGenerator {
	return &LLMGenerator{name: name, client: client}
}

func (g *LLMGenerator) Name() string {
	return g.name
}

func (g *LLMGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := g.client.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return "", &Error{Engine: g.name, Err: err}
	}
	return out, nil
}
