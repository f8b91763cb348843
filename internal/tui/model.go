// Package tui is the terminal front end: it shows generation progress, lets
// the user answer a quiz session and renders the score.
package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/video-quiz/backend/internal/quiz"
)

type phase int

const (
	phaseGenerating phase = iota
	phaseAnswering
	phaseResults
	phaseFailed
)

// ProgressMsg reports pipeline progress while the quiz is generated.
type ProgressMsg struct {
	Stage    string
	Fraction float64
}

// SessionMsg delivers the generated session.
type SessionMsg struct {
	Session *quiz.Session
}

// ErrorMsg reports that generation failed.
type ErrorMsg struct {
	Err error
}

// Options configures the model.
type Options struct {
	NoColor bool
}

// Model drives one quiz attempt. It owns the session it is given.
type Model struct {
	phase     phase
	session   *quiz.Session
	questions []quiz.Question
	current   int
	cursors   []int
	result    quiz.Result
	err       error
	notice    string
	stage     string
	progress  float64
	events    <-chan tea.Msg
	spinner   spinner.Model
	help      help.Model
	keys      keyMap
	noColor   bool
}

// NewModel waits on events for generation progress and the session.
func NewModel(events <-chan tea.Msg, opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return Model{
		phase:   phaseGenerating,
		events:  events,
		spinner: s,
		help:    help.New(),
		keys:    defaultKeys(),
		noColor: opts.NoColor,
	}
}

// NewSessionModel starts directly on an existing session.
func NewSessionModel(session *quiz.Session, opts Options) Model {
	m := NewModel(nil, opts)
	return m.withSession(session)
}

func (m Model) withSession(session *quiz.Session) Model {
	m.phase = phaseAnswering
	m.session = session
	m.questions = session.Questions()
	m.current = 0
	m.cursors = make([]int, len(m.questions))
	return m
}

// Result is the score once the session was submitted.
func (m Model) Result() (quiz.Result, bool) {
	return m.result, m.phase == phaseResults
}

// Err is the generation or scoring failure, if any.
func (m Model) Err() error {
	return m.err
}

func (m Model) Init() tea.Cmd {
	if m.phase == phaseGenerating {
		return tea.Batch(m.spinner.Tick, waitForEvent(m.events))
	}
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = typed.Width
		return m, nil
	case tea.KeyMsg:
		if key.Matches(typed, m.keys.Quit) {
			return m, tea.Quit
		}
		if m.phase == phaseAnswering {
			return m.handleAnswerKey(typed)
		}
		return m, nil
	case spinner.TickMsg:
		if m.phase != phaseGenerating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd
	case ProgressMsg:
		m.stage = typed.Stage
		m.progress = typed.Fraction
		return m, waitForEvent(m.events)
	case SessionMsg:
		return m.withSession(typed.Session), nil
	case ErrorMsg:
		m.phase = phaseFailed
		m.err = typed.Err
		return m, nil
	}
	return m, nil
}

func (m Model) handleAnswerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	if len(m.questions) == 0 {
		if key.Matches(msg, m.keys.Submit) {
			return m.submit()
		}
		return m, nil
	}
	options := m.questions[m.current].DisplayOptions()

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursors[m.current] > 0 {
			m.cursors[m.current]--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursors[m.current] < len(options)-1 {
			m.cursors[m.current]++
		}
	case key.Matches(msg, m.keys.Prev):
		if m.current > 0 {
			m.current--
		}
	case key.Matches(msg, m.keys.Next):
		if m.current < len(m.questions)-1 {
			m.current++
		}
	case key.Matches(msg, m.keys.Select):
		if err := m.session.SelectAnswer(m.current, options[m.cursors[m.current]]); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		m.advance()
	case key.Matches(msg, m.keys.Label):
		label := strings.ToUpper(msg.String())
		if err := m.session.SelectLabel(m.current, label); err != nil {
			m.notice = err.Error()
			return m, nil
		}
		for i, opt := range m.questions[m.current].Options {
			if quiz.OptionLabel(opt) == label {
				m.cursors[m.current] = i
				break
			}
		}
		m.advance()
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}
	return m, nil
}

func (m *Model) advance() {
	if m.current < len(m.questions)-1 {
		m.current++
	}
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if err := m.session.Submit(); err != nil {
		m.notice = err.Error()
		return m, nil
	}
	res, err := m.session.Score()
	if err != nil {
		m.phase = phaseFailed
		if errors.Is(err, quiz.ErrUndefinedScore) {
			err = errors.New("the quiz has no questions to score")
		}
		m.err = err
		return m, nil
	}
	m.result = res
	m.phase = phaseResults
	return m, nil
}

// waitForEvent blocks until the next generation event is available.
func waitForEvent(events <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		if events == nil {
			return nil
		}
		msg, ok := <-events
		if !ok {
			return ErrorMsg{Err: errors.New("generation ended without a quiz")}
		}
		return msg
	}
}
