package job

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/video-quiz/backend/internal/logger"
)

const (
	pendingBuffer = 100
	pollInterval  = 2 * time.Second
)

const jobColumns = `id, type, status, ref, params, progress, stage, result, error, attempts, created_at, started_at, completed_at`

// JobQueue manages job persistence and dispatching
type JobQueue struct {
	db       *sql.DB
	log      *logger.Logger
	mu       sync.RWMutex
	pending  chan string // job IDs to process
	cancels  map[string]context.CancelFunc
	handlers map[JobType]JobHandler
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewJobQueue creates a queue and starts workers goroutines. Jobs left in the
// database by a previous process are picked up by Resume, which callers run
// once their handlers are registered.
func NewJobQueue(db *sql.DB, workers int, log *logger.Logger) *JobQueue {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	q := &JobQueue{
		db:       db,
		log:      log.With("component", "job"),
		pending:  make(chan string, pendingBuffer),
		cancels:  make(map[string]context.CancelFunc),
		handlers: make(map[JobType]JobHandler),
		ctx:      ctx,
		cancel:   cancel,
	}

	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// RegisterHandler registers a handler for a job type
func (q *JobQueue) RegisterHandler(jobType JobType, handler JobHandler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[jobType] = handler
}

// Enqueue creates a new job and adds it to the queue
func (q *JobQueue) Enqueue(jobType JobType, ref string, params interface{}) (*Job, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}

	job := &Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    StatusPending,
		Ref:       ref,
		Params:    paramsJSON,
		CreatedAt: time.Now().UTC(),
	}

	_, err = q.db.Exec(`
		INSERT INTO jobs (id, type, status, ref, params, progress, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?)`,
		job.ID, job.Type, job.Status, job.Ref, string(job.Params), job.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	q.dispatch(job.ID)
	q.log.Debug("job enqueued", "job", job.ID, "type", job.Type)
	return job, nil
}

func (q *JobQueue) dispatch(id string) {
	select {
	case q.pending <- id:
	default:
		q.log.Warn("queue full, job will be picked up on next poll", "job", id)
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	job := &Job{}
	var params, result, errMsg sql.NullString
	var startedAt, completedAt sql.NullTime

	if err := row.Scan(&job.ID, &job.Type, &job.Status, &job.Ref, &params, &job.Progress, &job.Stage,
		&result, &errMsg, &job.Attempts, &job.CreatedAt, &startedAt, &completedAt); err != nil {
		return nil, err
	}

	if params.Valid {
		job.Params = json.RawMessage(params.String)
	}
	if result.Valid && result.String != "" {
		job.Result = json.RawMessage(result.String)
	}
	if errMsg.Valid {
		job.Error = errMsg.String
	}
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}
	return job, nil
}

// GetJob retrieves a job by ID
func (q *JobQueue) GetJob(id string) (*Job, error) {
	job, err := scanJob(q.db.QueryRow(`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// ListJobs returns all jobs ordered by creation time (newest first)
func (q *JobQueue) ListJobs() ([]*Job, error) {
	rows, err := q.db.Query(`SELECT ` + jobColumns + ` FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	jobs := []*Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// CancelJob cancels a pending or running job
func (q *JobQueue) CancelJob(id string) error {
	res, err := q.db.Exec(`
		UPDATE jobs SET status = ?, completed_at = ?
		WHERE id = ? AND status IN (?, ?)`,
		StatusCancelled, time.Now().UTC(), id, StatusPending, StatusRunning,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := q.GetJob(id); err != nil {
			return err
		}
		return fmt.Errorf("%w: job %s is not pending or running", ErrJobState, id)
	}

	q.mu.Lock()
	if cancelFn, ok := q.cancels[id]; ok {
		cancelFn()
		delete(q.cancels, id)
	}
	q.mu.Unlock()

	q.log.Info("job cancelled", "job", id)
	return nil
}

// RetryJob puts a failed or cancelled job back in the queue with its
// original parameters.
func (q *JobQueue) RetryJob(id string) (*Job, error) {
	res, err := q.db.Exec(`
		UPDATE jobs SET status = ?, progress = 0, stage = '', result = NULL, error = NULL,
			started_at = NULL, completed_at = NULL
		WHERE id = ? AND status IN (?, ?)`,
		StatusPending, id, StatusFailed, StatusCancelled,
	)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := q.GetJob(id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: only failed or cancelled jobs can be retried", ErrJobState)
	}

	q.dispatch(id)
	q.log.Info("job retried", "job", id)
	return q.GetJob(id)
}

// UpdateProgress updates the stage and progress of a running job
func (q *JobQueue) UpdateProgress(id, stage string, progress float64) {
	if _, err := q.db.Exec("UPDATE jobs SET progress = ?, stage = ? WHERE id = ? AND status = ?",
		progress, stage, id, StatusRunning); err != nil {
		q.log.Warn("failed to update progress", "job", id, "error", err)
	}
}

// Stop shuts down the queue, cancelling running jobs, and waits for workers.
func (q *JobQueue) Stop() {
	q.cancel()
	q.wg.Wait()
}

// worker processes jobs from the pending channel, polling the database for
// jobs that did not fit in the channel.
func (q *JobQueue) worker() {
	defer q.wg.Done()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case jobID := <-q.pending:
			q.processJob(jobID)
		case <-ticker.C:
			q.pollPending()
		}
	}
}

func (q *JobQueue) pollPending() {
	var id string
	err := q.db.QueryRow("SELECT id FROM jobs WHERE status = ? ORDER BY created_at ASC LIMIT 1", StatusPending).Scan(&id)
	if err == nil {
		q.processJob(id)
	}
}

// claim marks a pending job as running. It reports false if another worker
// got there first or the job was cancelled.
func (q *JobQueue) claim(id string, now time.Time) bool {
	res, err := q.db.Exec(`
		UPDATE jobs SET status = ?, started_at = ?, attempts = attempts + 1
		WHERE id = ? AND status = ?`,
		StatusRunning, now, id, StatusPending)
	if err != nil {
		q.log.Error("failed to claim job", "job", id, "error", err)
		return false
	}
	n, _ := res.RowsAffected()
	return n == 1
}

// processJob runs a single job
func (q *JobQueue) processJob(jobID string) {
	now := time.Now().UTC()
	if !q.claim(jobID, now) {
		return
	}
	job, err := q.GetJob(jobID)
	if err != nil {
		q.log.Error("failed to load job", "job", jobID, "error", err)
		return
	}

	q.mu.RLock()
	handler, ok := q.handlers[job.Type]
	q.mu.RUnlock()

	if !ok {
		q.failJob(job, fmt.Sprintf("no handler for job type: %s", job.Type))
		return
	}

	ctx, cancelFn := context.WithCancel(q.ctx)
	q.mu.Lock()
	q.cancels[job.ID] = cancelFn
	q.mu.Unlock()

	updateProgress := func(stage string, progress float64) {
		q.UpdateProgress(job.ID, stage, progress)
	}

	q.log.Info("job started", "job", job.ID, "type", job.Type, "attempt", job.Attempts)
	err = handler(ctx, job, updateProgress)

	q.mu.Lock()
	delete(q.cancels, job.ID)
	q.mu.Unlock()
	cancelled := ctx.Err() != nil
	cancelFn()

	switch {
	case cancelled:
		if q.ctx.Err() != nil {
			// Shutting down: leave the job for Resume on the next start.
			q.requeue(job.ID)
		}
		q.log.Info("job stopped", "job", job.ID)
	case err != nil:
		q.failJob(job, err.Error())
	default:
		q.completeJob(job)
	}
}

func (q *JobQueue) completeJob(job *Job) {
	var result any
	if len(job.Result) > 0 {
		result = string(job.Result)
	}
	if _, err := q.db.Exec("UPDATE jobs SET status = ?, progress = 1.0, result = ?, completed_at = ? WHERE id = ? AND status = ?",
		StatusCompleted, result, time.Now().UTC(), job.ID, StatusRunning); err != nil {
		q.log.Error("failed to complete job", "job", job.ID, "error", err)
		return
	}
	q.log.Info("job completed", "job", job.ID)
}

func (q *JobQueue) failJob(job *Job, errMsg string) {
	if _, err := q.db.Exec("UPDATE jobs SET status = ?, error = ?, completed_at = ? WHERE id = ? AND status = ?",
		StatusFailed, errMsg, time.Now().UTC(), job.ID, StatusRunning); err != nil {
		q.log.Error("failed to mark job failed", "job", job.ID, "error", err)
		return
	}
	q.log.Warn("job failed", "job", job.ID, "error", errMsg)
}

func (q *JobQueue) requeue(id string) {
	_, _ = q.db.Exec("UPDATE jobs SET status = ?, started_at = NULL WHERE id = ? AND status = ?",
		StatusPending, id, StatusRunning)
}

// Resume re-queues any pending jobs found in DB on startup
func (q *JobQueue) Resume() {
	// Mark any previously "running" jobs as pending (server restarted)
	if _, err := q.db.Exec("UPDATE jobs SET status = ? WHERE status = ?", StatusPending, StatusRunning); err != nil {
		q.log.Warn("failed to reset running jobs", "error", err)
	}

	rows, err := q.db.Query("SELECT id FROM jobs WHERE status = ? ORDER BY created_at ASC", StatusPending)
	if err != nil {
		q.log.Warn("failed to resume jobs", "error", err)
		return
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err == nil {
			ids = append(ids, id)
		}
	}
	rows.Close()

	for _, id := range ids {
		q.dispatch(id)
	}
	if len(ids) > 0 {
		q.log.Info("resumed pending jobs", "count", len(ids))
	}
}
