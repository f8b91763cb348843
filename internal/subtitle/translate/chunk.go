package translate

import "unicode/utf8"

// DefaultMaxChunkSize is the chunk length, in characters, used when none is configured.
const DefaultMaxChunkSize = 500

// SplitChunks cuts text into consecutive chunks of at most max characters.
// Cuts fall on rune boundaries, never mid-character, and are otherwise blind
// to words and sentences. Concatenating the chunks in order yields text.
func SplitChunks(text string, max int) []TextChunk {
	if text == "" {
		return nil
	}
	if max <= 0 {
		max = DefaultMaxChunkSize
	}

	chunks := make([]TextChunk, 0, utf8.RuneCountInString(text)/max+1)
	start, runes := 0, 0
	for i := range text {
		if runes == max {
			chunks = append(chunks, TextChunk{Index: len(chunks), Text: text[start:i]})
			start, runes = i, 0
		}
		runes++
	}
	chunks = append(chunks, TextChunk{Index: len(chunks), Text: text[start:]})
	return chunks
}
