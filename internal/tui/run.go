package tui

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/video-quiz/backend/internal/quiz"
)

// BuildFunc produces a session, reporting progress as it goes.
type BuildFunc func(ctx context.Context, progress func(stage string, fraction float64)) (*quiz.Session, error)

// Generate runs build in the background and streams its progress and outcome
// as model messages. Progress updates are dropped when the UI falls behind;
// cancel ctx once the UI has exited.
func Generate(ctx context.Context, build BuildFunc) <-chan tea.Msg {
	events := make(chan tea.Msg, 32)
	go func() {
		defer close(events)
		session, err := build(ctx, func(stage string, fraction float64) {
			select {
			case events <- ProgressMsg{Stage: stage, Fraction: fraction}:
			default:
			}
		})
		var msg tea.Msg = SessionMsg{Session: session}
		if err != nil {
			msg = ErrorMsg{Err: err}
		}
		select {
		case events <- msg:
		case <-ctx.Done():
		}
	}()
	return events
}

// Run shows the model until the user quits and returns the final model.
func Run(ctx context.Context, in io.Reader, out io.Writer, m Model) (Model, error) {
	program := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	final, err := program.Run()
	if err != nil {
		return m, err
	}
	return final.(Model), nil
}
