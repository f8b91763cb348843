package job

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// JobType represents the kind of job
type JobType string

const (
	JobQuiz JobType = "quiz"
)

// JobStatus represents the current state of a job
type JobStatus string

const (
	StatusPending   JobStatus = "pending"
	StatusRunning   JobStatus = "running"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusCancelled JobStatus = "cancelled"
)

// Finished reports whether the status is terminal.
func (s JobStatus) Finished() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

var (
	ErrJobNotFound = errors.New("job not found")
	// ErrJobState is returned when cancel or retry is not allowed in the job's status.
	ErrJobState = errors.New("operation not allowed in current job status")
)

// Job represents a queued quiz generation request
type Job struct {
	ID          string          `json:"id"`
	Type        JobType         `json:"type"`
	Status      JobStatus       `json:"status"`
	Ref         string          `json:"ref,omitempty"`
	Params      json.RawMessage `json:"params"`
	Progress    float64         `json:"progress"`
	Stage       string          `json:"stage,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	Attempts    int             `json:"attempts"`
	CreatedAt   time.Time       `json:"created_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// QuizParams are parameters for a quiz generation job. Either Ref (URL, video
// id or file) or Transcript must be set.
type QuizParams struct {
	Ref             string `json:"ref,omitempty"`
	Transcript      string `json:"transcript,omitempty"`
	TargetLang      string `json:"target_lang"`
	LanguageLabel   string `json:"language_label,omitempty"`
	QuestionCount   int    `json:"question_count"`
	TranslateEngine string `json:"translate_engine"`
	GenerateEngine  string `json:"generate_engine"`
}

// QuizResult is the output of a successful quiz generation
type QuizResult struct {
	SessionID string   `json:"session_id"`
	Questions int      `json:"questions"`
	Parsed    int      `json:"parsed"`
	Dropped   int      `json:"dropped"`
	Malformed []string `json:"malformed,omitempty"`
	Duration  float64  `json:"duration"` // processing time in seconds
}

// ProgressFunc records the stage a job is in and its completed fraction.
type ProgressFunc func(stage string, progress float64)

// JobHandler processes a job. It may set job.Result, which is stored on success.
type JobHandler func(ctx context.Context, job *Job, updateProgress ProgressFunc) error
