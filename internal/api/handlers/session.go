package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/video-quiz/backend/internal/quiz"
)

type SessionHandler struct {
	store *quiz.Store
}

func NewSessionHandler(store *quiz.Store) *SessionHandler {
	return &SessionHandler{store: store}
}

// questionView hides the correct answer until the session is submitted.
type questionView struct {
	Index         int      `json:"index"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	Labels        []string `json:"labels"`
	Selected      string   `json:"selected,omitempty"`
	Answered      bool     `json:"answered"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
}

type sessionView struct {
	ID        string         `json:"id"`
	State     quiz.State     `json:"state"`
	CreatedAt time.Time      `json:"created_at"`
	Questions []questionView `json:"questions"`
}

func viewSession(s *quiz.Session) sessionView {
	questions := s.Questions()
	answers := s.Answers()
	v := sessionView{
		ID:        s.ID(),
		State:     s.State(),
		CreatedAt: s.CreatedAt(),
		Questions: make([]questionView, len(questions)),
	}
	for i, q := range questions {
		labels := make([]string, len(q.Options))
		for j, opt := range q.Options {
			labels[j] = quiz.OptionLabel(opt)
		}
		qv := questionView{
			Index:    i,
			Question: q.Text,
			Options:  q.DisplayOptions(),
			Labels:   labels,
			Selected: answers[i].Selected,
			Answered: answers[i].Answered,
		}
		if s.Submitted() {
			qv.CorrectAnswer, _ = q.CorrectOption()
		}
		v.Questions[i] = qv
	}
	return v
}

// GetSession returns the questions and current answers
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	var view sessionView
	err := h.store.With(chi.URLParam(r, "id"), func(s *quiz.Session) error {
		view = viewSession(s)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, view, http.StatusOK)
}

// SelectAnswer records the answer for one question. The body names either
// the option text ("answer") or its label ("label").
func (h *SessionHandler) SelectAnswer(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		jsonError(w, "invalid question index", http.StatusBadRequest)
		return
	}
	var req struct {
		Answer *string `json:"answer"`
		Label  string  `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Answer == nil && req.Label == "" {
		jsonError(w, "answer or label is required", http.StatusBadRequest)
		return
	}

	var answer quiz.Answer
	err = h.store.With(chi.URLParam(r, "id"), func(s *quiz.Session) error {
		var err error
		if req.Answer != nil {
			err = s.SelectAnswer(index, *req.Answer)
		} else {
			err = s.SelectLabel(index, req.Label)
		}
		if err != nil {
			return err
		}
		answer = s.Answers()[index]
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, map[string]interface{}{
		"index":    index,
		"selected": answer.Selected,
		"answered": answer.Answered,
	}, http.StatusOK)
}

type scoreView struct {
	quiz.Result
	State      quiz.State `json:"state"`
	Percentage float64    `json:"percentage"`
	Summary    string     `json:"summary"`
	Verdict    string     `json:"verdict"`
}

func viewScore(res quiz.Result) scoreView {
	return scoreView{
		Result:     res,
		State:      quiz.StateSubmitted,
		Percentage: res.Percentage(),
		Summary:    res.Summary(),
		Verdict:    res.Verdict(),
	}
}

// Submit freezes the answers and returns the score. When the session is
// frozen but cannot be scored, the error body still carries the new state.
func (h *SessionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var (
		res       quiz.Result
		submitted bool
	)
	err := h.store.With(chi.URLParam(r, "id"), func(s *quiz.Session) error {
		if err := s.Submit(); err != nil {
			return err
		}
		submitted = true
		var err error
		res, err = s.Score()
		return err
	})
	if err != nil {
		if submitted {
			jsonResponse(w, map[string]interface{}{
				"state": quiz.StateSubmitted,
				"error": err.Error(),
			}, errorStatus(err))
			return
		}
		writeError(w, err)
		return
	}
	jsonResponse(w, viewScore(res), http.StatusOK)
}

// GetScore returns the score of a submitted session.
func (h *SessionHandler) GetScore(w http.ResponseWriter, r *http.Request) {
	var res quiz.Result
	err := h.store.With(chi.URLParam(r, "id"), func(s *quiz.Session) error {
		var err error
		res, err = s.Score()
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	jsonResponse(w, viewScore(res), http.StatusOK)
}

// DeleteSession discards a session
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if !h.store.Delete(chi.URLParam(r, "id")) {
		writeError(w, quiz.ErrSessionNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
