package translate

import (
	"fmt"
	"strings"
)

// Presets are the tone presets accepted by the LLM engines.
var Presets = []string{"general", "lecture", "casual", "documentary"}

// GetSystemPrompt returns the system prompt LLM engines use for a preset.
func GetSystemPrompt(preset, targetLang string) string {
	base := fmt.Sprintf(
		"You are a professional translator of video transcripts. Translate the user's text into %s. "+
			"The text may start or end mid-sentence because it is one piece of a longer transcript; "+
			"translate it as-is without completing or trimming sentences. "+
			"Respond with ONLY the translated text, no notes or quotes.",
		LanguageName(targetLang),
	)

	switch preset {
	case "lecture":
		return base + "\n\n" +
			"Additional guidelines for lectures and tutorials:\n" +
			"- Preserve all technical terminology with accurate translations\n" +
			"- Keep numbers, formulas, code identifiers and units unchanged\n" +
			"- Use clear, instructional language"

	case "casual":
		return base + "\n\n" +
			"Additional guidelines for vlogs and casual talk:\n" +
			"- Use natural conversational style\n" +
			"- Replace idioms with equivalent expressions rather than literal ones\n" +
			"- Match the speaker's emotional tone"

	case "documentary":
		return base + "\n\n" +
			"Additional guidelines for documentary narration:\n" +
			"- Use formal, precise language\n" +
			"- Maintain proper nouns, scientific names and place names\n" +
			"- Keep dates and measurements accurate"

	default:
		return base
	}
}

var languageNames = map[string]string{
	"ko":   "Korean",
	"en":   "English",
	"ja":   "Japanese",
	"zh":   "Chinese",
	"es":   "Spanish",
	"fr":   "French",
	"de":   "German",
	"pt":   "Portuguese",
	"it":   "Italian",
	"ru":   "Russian",
	"ar":   "Arabic",
	"hi":   "Hindi",
	"th":   "Thai",
	"vi":   "Vietnamese",
	"id":   "Indonesian",
	"auto": "auto-detected language",
}

// LanguageName maps an ISO 639-1 code to its English name, falling back to the code.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}
