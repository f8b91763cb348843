package quiz

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle stage of a Session.
type State string

const (
	StateBuilding  State = "building"
	StateSubmitted State = "submitted"
)

// Answer is the user's selection for one question.
type Answer struct {
	Selected string `json:"selected,omitempty"`
	Answered bool   `json:"answered"`
}

// Session is one quiz attempt: a fixed list of questions, the answers
// collected so far and whether the attempt has been submitted.
//
// A Session is not safe for concurrent use; front ends that share one
// across goroutines must serialize access (see Store).
type Session struct {
	id        string
	questions []Question
	answers   []Answer
	submitted bool
	createdAt time.Time
}

// NewSession copies questions into a fresh, fully unanswered session.
func NewSession(questions []Question) *Session {
	qs := make([]Question, len(questions))
	for i, q := range questions {
		qs[i] = q.clone()
	}
	return &Session{
		id:        uuid.NewString(),
		questions: qs,
		answers:   make([]Answer, len(qs)),
		createdAt: time.Now(),
	}
}

func (s *Session) ID() string           { return s.id }
func (s *Session) Len() int             { return len(s.questions) }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) Submitted() bool      { return s.submitted }

func (s *Session) State() State {
	if s.submitted {
		return StateSubmitted
	}
	return StateBuilding
}

// Questions returns a copy of the questions for rendering.
func (s *Session) Questions() []Question {
	out := make([]Question, len(s.questions))
	for i, q := range s.questions {
		out[i] = q.clone()
	}
	return out
}

// Answers returns a copy of the current answers, parallel to Questions.
func (s *Session) Answers() []Answer {
	return append([]Answer(nil), s.answers...)
}

// SelectAnswer records option as the answer for question index, replacing
// any earlier selection for that question.
func (s *Session) SelectAnswer(index int, option string) error {
	if err := s.checkAnswerable(index); err != nil {
		return err
	}
	s.answers[index] = Answer{Selected: option, Answered: true}
	return nil
}

// SelectLabel records the display text of the option carrying label.
func (s *Session) SelectLabel(index int, label string) error {
	if err := s.checkAnswerable(index); err != nil {
		return err
	}
	text, ok := s.questions[index].OptionByLabel(label)
	if !ok {
		return fmt.Errorf("%w: question %d, label %q", ErrUnknownLabel, index+1, label)
	}
	s.answers[index] = Answer{Selected: text, Answered: true}
	return nil
}

// Submit freezes the answers. It can only happen once.
func (s *Session) Submit() error {
	if s.submitted {
		return fmt.Errorf("%w: session already submitted", ErrInvalidStateTransition)
	}
	s.submitted = true
	return nil
}

func (s *Session) checkAnswerable(index int) error {
	if s.submitted {
		return fmt.Errorf("%w: cannot answer after submit", ErrInvalidStateTransition)
	}
	if index < 0 || index >= len(s.questions) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(s.questions))
	}
	return nil
}
