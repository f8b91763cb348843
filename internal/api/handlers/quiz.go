package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/video-quiz/backend/internal/job"
)

// QuizSubmitter validates quiz parameters and enqueues a generation job.
type QuizSubmitter interface {
	SubmitQuiz(p job.QuizParams) (*job.Job, error)
}

type QuizHandler struct {
	submitter QuizSubmitter
}

func NewQuizHandler(submitter QuizSubmitter) *QuizHandler {
	return &QuizHandler{submitter: submitter}
}

// CreateQuiz starts an asynchronous quiz generation job. Poll the returned
// job; once completed its result carries the session id.
func (h *QuizHandler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req job.QuizParams
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	j, err := h.submitter.SubmitQuiz(req)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/jobs/"+j.ID)
	jsonResponse(w, j, http.StatusAccepted)
}
