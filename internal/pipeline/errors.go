package pipeline

import (
	"errors"
	"fmt"

	"github.com/video-quiz/backend/internal/generate"
	"github.com/video-quiz/backend/internal/subtitle/transcript"
	"github.com/video-quiz/backend/internal/subtitle/translate"
)

var (
	// ErrEmptyResult is returned when generation yields no usable question.
	ErrEmptyResult = errors.New("no well-formed questions were generated")

	// ErrInvalidRequest is returned for requests that cannot start a run.
	ErrInvalidRequest = errors.New("invalid quiz request")
)

// Stage names one step of a run.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageTranslate Stage = "translate"
	StageGenerate  Stage = "generate"
	StageParse     Stage = "parse"
)

// kind is the sentinel every failure of the stage matches.
func (s Stage) kind() error {
	switch s {
	case StageFetch:
		return transcript.ErrTranscriptUnavailable
	case StageTranslate:
		return translate.ErrTranslationFailure
	case StageGenerate:
		return generate.ErrGenerationFailure
	default:
		return ErrEmptyResult
	}
}

// StageError reports which stage of a run failed. It matches both the
// stage's sentinel (e.g. translate.ErrTranslationFailure) and the cause.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{e.Stage.kind(), e.Err}
}

func stageErr(stage Stage, err error) *StageError {
	return &StageError{Stage: stage, Err: err}
}
