package generate

import (
	"context"
	"errors"
	"fmt"
)

// ErrGenerationFailure matches every error returned by a Generator.
var ErrGenerationFailure = errors.New("question generation failed")

// Generator sends one prompt to a question-generation service and returns
// its free-text reply. It is a single blocking request/response.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Error wraps a backend failure with the engine that produced it.
type Error struct {
	Engine string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("question generation failed (%s): %v", e.Engine, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrGenerationFailure }
