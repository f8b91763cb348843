package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/video-quiz/backend/internal/job"
	"github.com/video-quiz/backend/internal/pipeline"
)

// SubmitQuiz normalizes p and enqueues a quiz job.
func (a *App) SubmitQuiz(p job.QuizParams) (*job.Job, error) {
	if a.Queue == nil {
		return nil, fmt.Errorf("job queue is not running")
	}
	p, err := a.NormalizeParams(p)
	if err != nil {
		return nil, err
	}
	return a.Queue.Enqueue(job.JobQuiz, p.Ref, p)
}

// handleQuizJob runs one quiz job and registers the resulting session.
func (a *App) handleQuizJob(ctx context.Context, j *job.Job, updateProgress job.ProgressFunc) error {
	var p job.QuizParams
	if err := json.Unmarshal(j.Params, &p); err != nil {
		return fmt.Errorf("decode params: %w", err)
	}
	if a.Config.JobTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.Config.JobTimeout)
		defer cancel()
	}

	start := time.Now()
	res, err := a.BuildQuiz(ctx, p, func(stage pipeline.Stage, fraction float64) {
		updateProgress(string(stage), fraction)
	})
	if err != nil {
		return err
	}

	id := a.Sessions.Put(res.Session)
	out := job.QuizResult{
		SessionID: id,
		Questions: res.Session.Len(),
		Parsed:    res.Parsed,
		Dropped:   res.Dropped,
		Duration:  time.Since(start).Seconds(),
	}
	for _, m := range res.Malformed {
		out.Malformed = append(out.Malformed, m.Error())
	}
	j.Result, err = json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
