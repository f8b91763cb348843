package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/video-quiz/backend/internal/quiz"
	"github.com/video-quiz/backend/internal/tui"
)

const quizText = `Q: Capital of France?
A) Berlin
B) Paris
C) Rome
D) Madrid
Correct Answer: B

Q: Red planet?
A) Mars
B) Venus
C) Jupiter
D) Mercury
Correct Answer: A

Q: Broken?
A) only one option
Correct Answer: A
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"QUIZGEN_CONFIG", "GRADIO_URL", "CLIENT", "OPENAI_API_KEY", "GEMINI_API_KEY", "GENERATE_ENGINE", "TRANSLATE_ENGINE", "PORT"} {
		t.Setenv(key, "")
	}
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "jobs.db"))
}

func run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

// TestUsage verifies help output and unknown commands.
func TestUsage(t *testing.T) {
	if code, out, _ := run(); code != ExitUsage || !strings.Contains(out, "quizgen <command>") {
		t.Fatalf("expected usage, got %d %q", code, out)
	}
	if code, out, _ := run("help"); code != ExitOK || !strings.Contains(out, "play") {
		t.Fatalf("expected help, got %d %q", code, out)
	}
	if code, _, errOut := run("frobnicate"); code != ExitUsage || !strings.Contains(errOut, "Unknown command: frobnicate") {
		t.Fatalf("expected unknown command, got %d %q", code, errOut)
	}
	if code, out, _ := run("parse", "--help"); code != ExitOK || !strings.Contains(out, "quizgen parse") {
		t.Fatalf("expected command usage, got %d %q", code, out)
	}
}

// TestParseReportsCounts verifies well-formed and malformed questions are counted.
func TestParseReportsCounts(t *testing.T) {
	path := writeFile(t, "quiz.txt", quizText)
	code, out, errOut := run("parse", path)
	if code != ExitOK {
		t.Fatalf("expected success, got %d (%s)", code, errOut)
	}
	if !strings.Contains(out, "3 parsed, 2 well-formed, 1 malformed") {
		t.Fatalf("unexpected summary %q", out)
	}
	if !strings.Contains(errOut, "malformed question 3") {
		t.Fatalf("expected malformed report on stderr, got %q", errOut)
	}
}

// TestParseJSONFromStdin verifies "-" reads stdin and --json prints questions.
func TestParseJSONFromStdin(t *testing.T) {
	old := stdin
	stdin = strings.NewReader(quizText)
	t.Cleanup(func() { stdin = old })

	code, out, _ := run("parse", "--json", "-")
	if code != ExitOK {
		t.Fatalf("expected success, got %d", code)
	}
	var qs []quiz.Question
	if err := json.Unmarshal([]byte(out), &qs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(qs) != 2 || qs[1].CorrectLabel != "A" {
		t.Fatalf("unexpected questions: %+v", qs)
	}
}

// TestParseNothingUsable verifies text without questions exits with an error.
func TestParseNothingUsable(t *testing.T) {
	path := writeFile(t, "empty.txt", "Sorry, I cannot help with that.")
	if code, _, _ := run("parse", path); code != ExitError {
		t.Fatalf("expected error exit, got %d", code)
	}
}

// TestPlayQuestionsFile verifies a quiz file is played and the score printed.
func TestPlayQuestionsFile(t *testing.T) {
	path := writeFile(t, "quiz.txt", quizText)
	old := runTUI
	runTUI = func(ctx context.Context, in io.Reader, out io.Writer, m tui.Model) (tui.Model, error) {
		for _, k := range []string{"b", "s"} {
			next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
			m = next.(tui.Model)
		}
		return m, nil
	}
	t.Cleanup(func() { runTUI = old })

	code, out, errOut := run("play", "--questions", path, "--no-color")
	if code != ExitOK {
		t.Fatalf("expected success, got %d (%s)", code, errOut)
	}
	if !strings.Contains(out, "Score: 1/2 (50.00%)") {
		t.Fatalf("unexpected output %q", out)
	}
}

// TestPlayArgumentErrors verifies conflicting or missing inputs are usage errors.
func TestPlayArgumentErrors(t *testing.T) {
	isolateEnv(t)
	cases := [][]string{
		{"play"},
		{"play", "--questions", "q.txt", "https://youtu.be/dQw4w9WgXcQ"},
		{"play", "--transcript", "t.txt", "https://youtu.be/dQw4w9WgXcQ"},
	}
	for _, args := range cases {
		if code, _, _ := run(args...); code != ExitUsage {
			t.Fatalf("%v: expected usage error, got %d", args, code)
		}
	}
}

// TestPlayWithoutGenerator verifies a missing generation engine is reported before any work.
func TestPlayWithoutGenerator(t *testing.T) {
	isolateEnv(t)
	transcript := writeFile(t, "t.txt", "a transcript")
	code, _, errOut := run("play", "--transcript", transcript)
	if code != ExitUsage || !strings.Contains(errOut, "no generation engine") {
		t.Fatalf("expected missing engine error, got %d %q", code, errOut)
	}
}

// TestValidate verifies configuration checks and engine listing.
func TestValidate(t *testing.T) {
	isolateEnv(t)
	t.Setenv("GRADIO_URL", "https://example.hf.space")
	code, out, errOut := run("validate")
	if code != ExitOK {
		t.Fatalf("expected success, got %d (%s)", code, errOut)
	}
	if !strings.Contains(out, "Config OK") || !strings.Contains(out, "Generation engines: gradio (default gradio)") {
		t.Fatalf("unexpected output %q", out)
	}

	bad := writeFile(t, "bad.yaml", "quiz:\n  default_questions: 99\n")
	if code, _, errOut := run("validate", "--config", bad); code != ExitError || !strings.Contains(errOut, "default_questions") {
		t.Fatalf("expected config error, got %d %q", code, errOut)
	}
}

// TestServeStartsAndStops verifies the server is built from config and shuts down cleanly.
func TestServeStartsAndStops(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PORT", "9123")
	old := serveHTTP
	var gotAddr string
	serveHTTP = func(ctx context.Context, srv *http.Server) error {
		gotAddr = srv.Addr
		if srv.Handler == nil {
			t.Fatalf("expected a handler")
		}
		return nil
	}
	t.Cleanup(func() { serveHTTP = old })

	if code, _, errOut := run("serve"); code != ExitOK {
		t.Fatalf("expected success, got %d (%s)", code, errOut)
	}
	if gotAddr != ":9123" {
		t.Fatalf("unexpected addr %q", gotAddr)
	}
	if code, _, _ := run("serve", "extra"); code != ExitUsage {
		t.Fatalf("expected usage error for extra args")
	}
}
