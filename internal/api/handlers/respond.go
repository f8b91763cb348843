package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/video-quiz/backend/internal/job"
	"github.com/video-quiz/backend/internal/pipeline"
	"github.com/video-quiz/backend/internal/quiz"
)

func jsonResponse(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, job.ErrJobNotFound), errors.Is(err, quiz.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, job.ErrJobState), errors.Is(err, quiz.ErrInvalidStateTransition):
		return http.StatusConflict
	case errors.Is(err, pipeline.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, quiz.ErrIndexOutOfRange), errors.Is(err, quiz.ErrUnknownLabel), errors.Is(err, quiz.ErrUndefinedScore):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	jsonError(w, err.Error(), errorStatus(err))
}
