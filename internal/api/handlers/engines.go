package handlers

import (
	"net/http"

	"github.com/video-quiz/backend/internal/subtitle/translate"
)

// EngineLister reports the configured engines.
type EngineLister interface {
	Names() []string
}

type EnginesHandler struct {
	translators EngineLister
	generators  EngineLister
	defaults    EngineDefaults
}

// EngineDefaults are the engines used when a request names none.
type EngineDefaults struct {
	Translate string `json:"translate"`
	Generate  string `json:"generate"`
}

func NewEnginesHandler(translators, generators EngineLister, defaults EngineDefaults) *EnginesHandler {
	return &EnginesHandler{translators: translators, generators: generators, defaults: defaults}
}

// ListEngines returns the available engines and translation presets
func (h *EnginesHandler) ListEngines(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]interface{}{
		"translate": h.translators.Names(),
		"generate":  h.generators.Names(),
		"presets":   translate.Presets,
		"defaults":  h.defaults,
	}, http.StatusOK)
}

// Health reports liveness
func Health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
}
