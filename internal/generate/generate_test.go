package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
)

// TestBuildPrompt verifies count, language label, grammar and transcript are embedded.
func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("the mitochondria is the powerhouse", 7, "Hindi")
	for _, want := range []string{
		"exactly 7 multiple-choice questions",
		"in Hindi",
		"Q: [Question]",
		"A) [Option A]",
		"D) [Option D]",
		"Correct Answer: [A/B/C/D]",
		"Transcript:\nthe mitochondria is the powerhouse",
	} {
		if !strings.Contains(p, want) {
			t.Fatalf("prompt missing %q:\n%s", want, p)
		}
	}
	if !strings.Contains(BuildPrompt("x", 5, ""), "in English") {
		t.Fatalf("expected English default")
	}
}

func newGradioServer(t *testing.T, stream string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/call/predict":
			var body struct {
				Data []string `json:"data"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.Data) != 1 {
				t.Fatalf("unexpected submit body: %v %+v", err, body)
			}
			if r.Header.Get("Authorization") != "Bearer hf_token" {
				t.Fatalf("missing token")
			}
			_, _ = w.Write([]byte(`{"event_id":"abc123"}`))
		case r.Method == http.MethodGet && r.URL.Path == "/call/predict/abc123":
			w.Header().Set("Content-Type", "text/event-stream")
			_, _ = fmt.Fprint(w, stream)
		default:
			http.NotFound(w, r)
		}
	}))
}

// TestGradioGenerate verifies the submit-then-stream protocol.
func TestGradioGenerate(t *testing.T) {
	stream := "event: generating\ndata: [\"Q: partial\"]\n\n" +
		"event: heartbeat\ndata: null\n\n" +
		"event: complete\ndata: [\"Q: Done?\\nA) yes\\nB) no\\nC) maybe\\nD) later\\nCorrect Answer: A\"]\n\n"
	srv := newGradioServer(t, stream)
	defer srv.Close()

	g, err := NewGradioGenerator(srv.URL+"/", "/predict", "hf_token", nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	out, err := g.Generate(context.Background(), BuildPrompt("text", 5, "English"))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(out, "Q: Done?\nA) yes") {
		t.Fatalf("unexpected output %q", out)
	}
}

// TestGradioErrorEvent verifies an error event is a generation failure.
func TestGradioErrorEvent(t *testing.T) {
	srv := newGradioServer(t, "event: error\ndata: \"queue full\"\n\n")
	defer srv.Close()

	g, _ := NewGradioGenerator(srv.URL, "", "hf_token", nil)
	_, err := g.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrGenerationFailure) || !strings.Contains(err.Error(), "queue full") {
		t.Fatalf("expected generation failure, got %v", err)
	}
}

// TestGradioStreamWithoutResult verifies a truncated stream fails.
func TestGradioStreamWithoutResult(t *testing.T) {
	srv := newGradioServer(t, "event: generating\ndata: [\"Q:\"]\n\n")
	defer srv.Close()

	g, _ := NewGradioGenerator(srv.URL, "", "hf_token", nil)
	if _, err := g.Generate(context.Background(), "prompt"); !errors.Is(err, ErrGenerationFailure) {
		t.Fatalf("expected generation failure, got %v", err)
	}
}

type failingClient struct{}

func (failingClient) Model() string { return "broken" }

func (failingClient) Complete(ctx context.Context, system, user string) (string, error) {
	return "", errors.New("upstream 503")
}

// TestLLMGeneratorWrapsFailure verifies client errors match ErrGenerationFailure.
func TestLLMGeneratorWrapsFailure(t *testing.T) {
	_, err := NewLLMGenerator("openai", failingClient{}).Generate(context.Background(), "p")
	var ge *Error
	if !errors.Is(err, ErrGenerationFailure) || !errors.As(err, &ge) || ge.Engine != "openai" {
		t.Fatalf("unexpected error %v", err)
	}
}

// TestRegistry verifies engines appear only when configured.
func TestRegistry(t *testing.T) {
	r := NewRegistry(EngineSettings{GradioURL: "http://localhost:7860", OpenAIKey: "sk"}, nil)
	if got, want := r.Names(), []string{"gradio", "openai"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if _, err := r.Get("gemini"); err == nil {
		t.Fatalf("expected unknown engine error")
	}
	if len(NewRegistry(EngineSettings{}, nil).Names()) != 0 {
		t.Fatalf("expected no engines without configuration")
	}
}

// TestSpaceURL verifies Space ids map to their hf.space host and URLs pass through.
func TestSpaceURL(t *testing.T) {
	cases := map[string]string{
		"Owner/Quiz_Gen.v2":     "https://owner-quiz-gen-v2.hf.space",
		"http://localhost:7860": "http://localhost:7860",
		"https://x.hf.space/":   "https://x.hf.space/",
		"not-a-space":           "not-a-space",
		"a/b/c":                 "a/b/c",
	}
	for in, want := range cases {
		if got := SpaceURL(in); got != want {
			t.Fatalf("SpaceURL(%q) = %q, want %q", in, got, want)
		}
	}
}
