package translate

import (
	"fmt"
	"sort"

	"github.com/video-quiz/backend/internal/llm"
	"github.com/video-quiz/backend/internal/logger"
)

// EngineSettings carries everything needed to construct any engine.
type EngineSettings struct {
	Preset      string
	GoogleURL   string
	DeepLKey    string
	DeepLURL    string
	OpenAIKey   string
	OpenAIModel string
	OpenAIURL   string
	GeminiKey   string
	GeminiModel string
	GeminiURL   string
	HTTPClient  llm.HTTPDoer
}

// Registry holds the engines whose credentials are configured.
type Registry struct {
	engines map[string]Backend
}

// NewRegistry registers google unconditionally and every keyed engine
// whose key is present.
func NewRegistry(s EngineSettings, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With("component", "translate")
	r := &Registry{engines: make(map[string]Backend)}

	r.engines["google"] = NewGoogleBackend(s.GoogleURL, s.HTTPClient)

	if s.DeepLKey != "" {
		if b, err := NewDeepLBackend(s.DeepLKey, s.Preset, s.DeepLURL, s.HTTPClient); err == nil {
			r.engines["deepl"] = b
			log.Info("registered DeepL engine")
		}
	}
	if s.OpenAIKey != "" {
		client, err := llm.NewOpenAI(s.OpenAIKey, llm.Options{BaseURL: s.OpenAIURL, Model: s.OpenAIModel, Temperature: 0.3, HTTPClient: s.HTTPClient})
		if err == nil {
			r.engines["openai"] = NewLLMBackend("openai", client, s.Preset)
			log.Info("registered OpenAI engine", "model", client.Model())
		}
	}
	if s.GeminiKey != "" {
		client, err := llm.NewGemini(s.GeminiKey, llm.Options{BaseURL: s.GeminiURL, Model: s.GeminiModel, Temperature: 0.3, HTTPClient: s.HTTPClient})
		if err == nil {
			r.engines["gemini"] = NewLLMBackend("gemini", client, s.Preset)
			log.Info("registered Gemini engine", "model", client.Model())
		}
	}
	return r
}

// Register adds or replaces an engine.
func (r *Registry) Register(name string, engine Backend) {
	r.engines[name] = engine
}

// Get returns the named engine.
func (r *Registry) Get(name string) (Backend, error) {
	b, ok := r.engines[name]
	if !ok {
		return nil, fmt.Errorf("unknown translation engine: %s", name)
	}
	return b, nil
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
