package generate

import (
	"fmt"
	"sort"

	"github.com/video-quiz/backend/internal/llm"
	"github.com/video-quiz/backend/internal/logger"
)

// EngineSettings carries everything needed to construct any engine.
type EngineSettings struct {
	GradioURL     string
	GradioAPIName string
	GradioToken   string
	OpenAIKey     string
	OpenAIModel   string
	OpenAIURL     string
	GeminiKey     string
	GeminiModel   string
	GeminiURL     string
	HTTPClient    llm.HTTPDoer
}

// Registry holds the engines whose endpoints or credentials are configured.
type Registry struct {
	engines map[string]Generator
}

func NewRegistry(s EngineSettings, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("component", "generate")
	r := &Registry{engines: make(map[string]Generator)}

	if s.GradioURL != "" {
		if g, err := NewGradioGenerator(s.GradioURL, s.GradioAPIName, s.GradioToken, s.HTTPClient); err == nil {
			r.engines["gradio"] = g
			log.Info("registered Gradio engine", "url", s.GradioURL)
		}
	}
	if s.OpenAIKey != "" {
		client, err := llm.NewOpenAI(s.OpenAIKey, llm.Options{BaseURL: s.OpenAIURL, Model: s.OpenAIModel, Temperature: 0.7, HTTPClient: s.HTTPClient})
		if err == nil {
			r.engines["openai"] = NewLLMGenerator("openai", client)
			log.Info("registered OpenAI engine", "model", client.Model())
		}
	}
	if s.GeminiKey != "" {
		client, err := llm.NewGemini(s.GeminiKey, llm.Options{BaseURL: s.GeminiURL, Model: s.GeminiModel, Temperature: 0.7, HTTPClient: s.HTTPClient})
		if err == nil {
			r.engines["gemini"] = NewLLMGenerator("gemini", client)
			log.Info("registered Gemini engine", "model", client.Model())
		}
	}
	return r
}

// Register adds or replaces an engine.
func (r *Registry) Register(name string, engine Generator) {
	r.engines[name] = engine
}

// Get returns the named engine.
func (r *Registry) Get(name string) (Generator, error) {
	g, ok := r.engines[name]
	if !ok {
		return nil, fmt.Errorf("unknown generation engine: %s", name)
	}
	return g, nil
}

// Names lists the registered engines in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
