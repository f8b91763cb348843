package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/video-quiz/backend/internal/quiz"
)

const (
	colorTitle  = lipgloss.Color("33")
	colorMuted  = lipgloss.Color("242")
	colorCursor = lipgloss.Color("212")
	colorGood   = lipgloss.Color("42")
	colorBad    = lipgloss.Color("196")
	colorWarn   = lipgloss.Color("214")
)

func (m Model) View() string {
	switch m.phase {
	case phaseGenerating:
		return m.viewGenerating()
	case phaseAnswering:
		return m.viewQuestion()
	case phaseResults:
		return m.viewResults()
	default:
		return stylize("Error: "+errString(m.err), m.noColor, colorBad) + "\n" +
			stylize("press q to quit", m.noColor, colorMuted) + "\n"
	}
}

func (m Model) viewGenerating() string {
	line := m.spinner.View() + " Generating quiz"
	if m.stage != "" {
		line += fmt.Sprintf(" | %s %3.0f%%", m.stage, m.progress*100)
	}
	return line + "\n"
}

func (m Model) viewQuestion() string {
	if len(m.questions) == 0 {
		return "This quiz has no questions. Press s to submit or q to quit.\n"
	}
	q := m.questions[m.current]
	answers := m.session.Answers()
	answer := answers[m.current]

	answered := 0
	for _, a := range answers {
		if a.Answered {
			answered++
		}
	}

	var b strings.Builder
	b.WriteString(stylize(fmt.Sprintf("Question %d/%d", m.current+1, len(m.questions)), m.noColor, colorTitle))
	b.WriteString(stylize(fmt.Sprintf("  (%d answered)", answered), m.noColor, colorMuted))
	b.WriteString("\n\n")
	b.WriteString(bold(q.Text, m.noColor))
	b.WriteString("\n\n")

	for i, opt := range q.DisplayOptions() {
		cursor := "  "
		if i == m.cursors[m.current] {
			cursor = stylize("> ", m.noColor, colorCursor)
		}
		mark := "( )"
		if answer.Answered && answer.Selected == opt {
			mark = "(x)"
		}
		label := quiz.OptionLabel(q.Options[i])
		if label == "" {
			label = "?"
		}
		b.WriteString(fmt.Sprintf("%s%s %s) %s\n", cursor, mark, label, opt))
	}

	if m.notice != "" {
		b.WriteString("\n" + stylize(m.notice, m.noColor, colorWarn) + "\n")
	}
	b.WriteString("\n" + m.help.View(m.keys) + "\n")
	return b.String()
}

func (m Model) viewResults() string {
	var b strings.Builder
	b.WriteString(stylize("Score: "+m.result.Summary(), m.noColor, colorTitle))
	b.WriteString("\n")
	b.WriteString(m.result.Verdict())
	b.WriteString("\n\n")
	b.WriteString(RenderItems(m.result, m.noColor))
	b.WriteString("\n" + stylize("press q to quit", m.noColor, colorMuted) + "\n")
	return b.String()
}

// RenderItems lists each question's outcome with the correct answer.
func RenderItems(res quiz.Result, noColor bool) string {
	var b strings.Builder
	for _, item := range res.Items {
		var mark string
		switch item.Outcome {
		case quiz.OutcomeCorrect:
			mark = stylize("✓", noColor, colorGood)
		case quiz.OutcomeWrong:
			mark = stylize("✗", noColor, colorBad)
		case quiz.OutcomeUnanswered:
			mark = stylize("-", noColor, colorMuted)
		default:
			mark = stylize("!", noColor, colorWarn)
		}
		b.WriteString(fmt.Sprintf("%s %d. %s\n", mark, item.Index+1, item.Question))
		switch item.Outcome {
		case quiz.OutcomeWrong:
			b.WriteString(fmt.Sprintf("     your answer: %s | correct: %s\n", item.Selected, item.CorrectAnswer))
		case quiz.OutcomeUnanswered:
			b.WriteString(fmt.Sprintf("     correct: %s\n", item.CorrectAnswer))
		case quiz.OutcomeError:
			b.WriteString(fmt.Sprintf("     %s\n", item.Error))
		}
	}
	return b.String()
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}

func bold(text string, noColor bool) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Bold(true).Render(text)
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
