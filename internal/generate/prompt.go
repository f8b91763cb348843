package generate

import (
	"fmt"
	"strings"
)

// BuildPrompt asks for exactly count four-option questions about transcript,
// written in languageLabel (e.g. "English", "Hindi"), in the line grammar
// quiz.Parse reads.
func BuildPrompt(transcript string, count int, languageLabel string) string {
	if languageLabel == "" {
		languageLabel = "English"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on the following transcript, generate exactly %d multiple-choice questions (MCQs) with 4 options each.\n", count)
	sb.WriteString("Ensure the questions cover various aspects of the video content to thoroughly check user understanding.\n")
	fmt.Fprintf(&sb, "Write the questions and options in %s.\n", languageLabel)
	sb.WriteString("Format each question as follows:\n")
	sb.WriteString("Q: [Question]\n")
	sb.WriteString("A) [Option A]\n")
	sb.WriteString("B) [Option B]\n")
	sb.WriteString("C) [Option C]\n")
	sb.WriteString("D) [Option D]\n")
	sb.WriteString("Correct Answer: [A/B/C/D]\n")
	sb.WriteString("\nTranscript:\n")
	sb.WriteString(transcript)
	sb.WriteString("\n")
	return sb.String()
}
