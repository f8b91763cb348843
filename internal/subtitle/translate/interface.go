package translate

import "context"

// TextChunk is a contiguous piece of a longer text and its 0-based position.
type TextChunk struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Backend is the common interface for all translation engines. One call
// translates one piece of text into targetLang (ISO 639-1 code).
type Backend interface {
	TranslateText(ctx context.Context, text, targetLang string) (string, error)
	// Name returns the engine name
	Name() string
}
