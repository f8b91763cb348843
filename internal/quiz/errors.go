package quiz

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidStateTransition is returned when an operation is not allowed
	// in the session's current state (answering or submitting after submit,
	// scoring before submit).
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrIndexOutOfRange is returned for a question index outside the session.
	ErrIndexOutOfRange = errors.New("question index out of range")

	// ErrUndefinedScore is returned when scoring a session with no questions.
	ErrUndefinedScore = errors.New("score is undefined for a quiz with no questions")

	// ErrUnresolvedLabel marks a question whose correct label matches none of its options.
	ErrUnresolvedLabel = errors.New("correct answer label does not match any option")

	// ErrUnknownLabel is returned when selecting by a label the question does not offer.
	ErrUnknownLabel = errors.New("question has no option with that label")

	// ErrSessionNotFound is returned by Store lookups for unknown or expired ids.
	ErrSessionNotFound = errors.New("quiz session not found")
)

// Issue is a single problem found on a parsed question.
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// MalformedQuestionError reports why a parsed question cannot be used.
// Index is the position in the parser output, or -1 when unknown.
type MalformedQuestionError struct {
	Index  int
	Issues []Issue
}

func (e *MalformedQuestionError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	if e.Index < 0 {
		return "malformed question: " + strings.Join(parts, "; ")
	}
	return fmt.Sprintf("malformed question %d: %s", e.Index+1, strings.Join(parts, "; "))
}

type issueCollector struct {
	issues []Issue
}

func (c *issueCollector) add(field, message string) {
	c.issues = append(c.issues, Issue{Field: field, Message: message})
}

func (c *issueCollector) result() error {
	if len(c.issues) == 0 {
		return nil
	}
	return &MalformedQuestionError{Index: -1, Issues: c.issues}
}
