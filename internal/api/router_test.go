package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/video-quiz/backend/internal/app"
	"github.com/video-quiz/backend/internal/config"
	"github.com/video-quiz/backend/internal/job"
	"github.com/video-quiz/backend/internal/quiz"
)

type echoBackend struct{}

func (echoBackend) Name() string { return "echo" }

func (echoBackend) TranslateText(ctx context.Context, text, targetLang string) (string, error) {
	return text, nil
}

type cannedGenerator struct{}

func (cannedGenerator) Name() string { return "canned" }

func (cannedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	qs := []quiz.Question{
		{Text: "Capital of France?", Options: []string{"A) Berlin", "B) Paris", "C) Rome", "D) Madrid"}, CorrectLabel: "B"},
		{Text: "Red planet?", Options: []string{"A) Mars", "B) Venus", "C) Jupiter", "D) Mercury"}, CorrectLabel: "A"},
		{Text: "Minutes in an hour?", Options: []string{"A) 30", "B) 100", "C) 24", "D) 60"}, CorrectLabel: "D"},
	}
	var sb strings.Builder
	for _, q := range qs {
		sb.WriteString(q.Format())
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func newTestServer(t *testing.T, rateLimit int) (*app.App, http.Handler) {
	t.Helper()
	cfg := config.Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "jobs.db")
	cfg.Translate.Engine = "echo"
	cfg.Generate.Engine = "canned"
	cfg.RateLimit = rateLimit

	a := app.New(cfg, nil, app.Options{})
	a.Translators.Register("echo", echoBackend{})
	a.Generators.Register("canned", cannedGenerator{})
	if err := a.StartJobs(); err != nil {
		t.Fatalf("start jobs: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a, NewRouter(a)
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

// createSession runs a quiz job through the API and returns the session id.
func createSession(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/quizzes", map[string]interface{}{
		"transcript":     "A lecture about capitals, planets and time.",
		"question_count": 5,
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("create quiz: %d %s", rec.Code, rec.Body.String())
	}
	var j job.Job
	decode(t, rec, &j)

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec = do(t, h, http.MethodGet, "/api/jobs/"+j.ID, nil)
		decode(t, rec, &j)
		if j.Status.Finished() {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if j.Status != job.StatusCompleted {
		t.Fatalf("job did not complete: %s %q", j.Status, j.Error)
	}
	var res job.QuizResult
	if err := json.Unmarshal(j.Result, &res); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	return res.SessionID
}

// TestQuizFlow verifies generation, answering, submission and scoring over HTTP.
func TestQuizFlow(t *testing.T) {
	_, h := newTestServer(t, 0)
	id := createSession(t, h)

	rec := do(t, h, http.MethodGet, "/api/sessions/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get session: %d", rec.Code)
	}
	var view struct {
		State     string `json:"state"`
		Questions []struct {
			Options       []string `json:"options"`
			CorrectAnswer string   `json:"correct_answer"`
		} `json:"questions"`
	}
	decode(t, rec, &view)
	if len(view.Questions) != 3 || view.Questions[0].Options[1] != "Paris" {
		t.Fatalf("unexpected session view: %+v", view)
	}
	if view.Questions[0].CorrectAnswer != "" {
		t.Fatalf("correct answer leaked before submit")
	}

	if rec := do(t, h, http.MethodPut, "/api/sessions/"+id+"/answers/0", map[string]string{"answer": "Paris"}); rec.Code != http.StatusOK {
		t.Fatalf("select answer: %d %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, h, http.MethodPut, "/api/sessions/"+id+"/answers/1", map[string]string{"label": "B"}); rec.Code != http.StatusOK {
		t.Fatalf("select label: %d %s", rec.Code, rec.Body.String())
	}

	if rec := do(t, h, http.MethodGet, "/api/sessions/"+id+"/score", nil); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 before submit, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/sessions/"+id+"/submit", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body.String())
	}
	var score struct {
		Correct int    `json:"correct"`
		Total   int    `json:"total"`
		Summary string `json:"summary"`
	}
	decode(t, rec, &score)
	if score.Correct != 1 || score.Total != 3 || score.Summary != "1/3 (33.33%)" {
		t.Fatalf("unexpected score: %+v", score)
	}

	if rec := do(t, h, http.MethodPut, "/api/sessions/"+id+"/answers/2", map[string]string{"answer": "60"}); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 after submit, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodPost, "/api/sessions/"+id+"/submit", nil); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on second submit, got %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/sessions/"+id+"/score", nil); rec.Code != http.StatusOK {
		t.Fatalf("get score: %d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, "/api/sessions/"+id, nil); rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, "/api/sessions/"+id, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

// TestSelectAnswerErrors verifies bad indexes and labels are rejected.
func TestSelectAnswerErrors(t *testing.T) {
	_, h := newTestServer(t, 0)
	id := createSession(t, h)

	cases := []struct {
		path string
		body interface{}
		want int
	}{
		{"/answers/x", map[string]string{"answer": "a"}, http.StatusBadRequest},
		{"/answers/7", map[string]string{"answer": "a"}, http.StatusUnprocessableEntity},
		{"/answers/0", map[string]string{"label": "Z"}, http.StatusUnprocessableEntity},
		{"/answers/0", map[string]string{}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		if rec := do(t, h, http.MethodPut, "/api/sessions/"+id+tc.path, tc.body); rec.Code != tc.want {
			t.Fatalf("%s %v: expected %d, got %d (%s)", tc.path, tc.body, tc.want, rec.Code, rec.Body.String())
		}
	}
}

// TestSubmitUnscorableSession verifies the response reports the submitted state when scoring fails.
func TestSubmitUnscorableSession(t *testing.T) {
	a, h := newTestServer(t, 0)
	id := a.Sessions.Put(quiz.NewSession(nil))

	rec := do(t, h, http.MethodPost, "/api/sessions/"+id+"/submit", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d %s", rec.Code, rec.Body.String())
	}
	var body struct {
		State string `json:"state"`
		Error string `json:"error"`
	}
	decode(t, rec, &body)
	if body.State != string(quiz.StateSubmitted) || body.Error == "" {
		t.Fatalf("unexpected body: %+v", body)
	}

	rec = do(t, h, http.MethodGet, "/api/sessions/"+id, nil)
	var view struct {
		State string `json:"state"`
	}
	decode(t, rec, &view)
	if view.State != string(quiz.StateSubmitted) {
		t.Fatalf("expected session to stay submitted, got %q", view.State)
	}
	if rec := do(t, h, http.MethodPost, "/api/sessions/"+id+"/submit", nil); rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on second submit, got %d", rec.Code)
	}
}

// TestCreateQuizValidation verifies invalid requests fail before a job is queued.
func TestCreateQuizValidation(t *testing.T) {
	a, h := newTestServer(t, 0)
	for _, body := range []string{
		`{"transcript":"x","question_count":50}`,
		`{"question_count":5}`,
		`{"transcript":"x","translate_engine":"babelfish"}`,
		`{"transcript":"x","bogus":true}`,
		`not json`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/quizzes", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", body, rec.Code)
		}
	}
	jobs, err := a.Queue.ListJobs()
	if err != nil {
		t.Fatalf("list jobs: %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected no jobs, got %d", len(jobs))
	}
}

// TestJobNotFound verifies unknown job ids map to 404.
func TestJobNotFound(t *testing.T) {
	_, h := newTestServer(t, 0)
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		if rec := do(t, h, method, "/api/jobs/missing", nil); rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", method, rec.Code)
		}
	}
	if rec := do(t, h, http.MethodPost, "/api/jobs/missing/retry", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("retry: expected 404, got %d", rec.Code)
	}
}

// TestEnginesAndHealth verifies the informational endpoints.
func TestEnginesAndHealth(t *testing.T) {
	_, h := newTestServer(t, 0)
	if rec := do(t, h, http.MethodGet, "/api/health", nil); rec.Code != http.StatusOK {
		t.Fatalf("health: %d", rec.Code)
	}
	rec := do(t, h, http.MethodGet, "/api/engines", nil)
	var body struct {
		Translate []string `json:"translate"`
		Generate  []string `json:"generate"`
		Defaults  struct {
			Translate string `json:"translate"`
		} `json:"defaults"`
	}
	decode(t, rec, &body)
	if !contains(body.Translate, "google") || !contains(body.Translate, "echo") || !contains(body.Generate, "canned") {
		t.Fatalf("unexpected engines: %+v", body)
	}
	if body.Defaults.Translate != "echo" {
		t.Fatalf("unexpected defaults: %+v", body.Defaults)
	}
}

// TestQuizCreationRateLimited verifies the per-IP limit on quiz creation.
func TestQuizCreationRateLimited(t *testing.T) {
	_, h := newTestServer(t, 1)
	body := map[string]interface{}{"transcript": "x", "question_count": 5}
	if rec := do(t, h, http.MethodPost, "/api/quizzes", body); rec.Code != http.StatusAccepted {
		t.Fatalf("first request: %d %s", rec.Code, rec.Body.String())
	}
	rec := do(t, h, http.MethodPost, "/api/quizzes", body)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
