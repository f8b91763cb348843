package generate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/video-quiz/backend/internal/llm"
)

const defaultGradioAPIName = "predict"

// GradioGenerator calls a Gradio app's prediction endpoint through the
// two-step HTTP API: POST /call/<api> returns an event id, then
// GET /call/<api>/<event_id> streams server-sent events until "complete".
type GradioGenerator struct {
	baseURL    string
	apiName    string
	token      string
	httpClient llm.HTTPDoer
}

// NewGradioGenerator builds a generator for the app at baseURL. token is an
// optional Hugging Face access token for private Spaces.
func NewGradioGenerator(baseURL, apiName, token string, client llm.HTTPDoer) (*GradioGenerator, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("Gradio app URL not configured")
	}
	if apiName == "" {
		apiName = defaultGradioAPIName
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Minute}
	}
	return &GradioGenerator{
		baseURL:    strings.TrimRight(SpaceURL(baseURL), "/"),
		apiName:    strings.TrimPrefix(apiName, "/"),
		token:      token,
		httpClient: client,
	}, nil
}

// SpaceURL turns a Hugging Face Space id ("owner/name") into the URL its
// Gradio app is served on. Anything with a scheme is returned unchanged.
func SpaceURL(ref string) string {
	ref = strings.TrimSpace(ref)
	if strings.Contains(ref, "://") {
		return ref
	}
	owner, name, ok := strings.Cut(ref, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return ref
	}
	host := strings.NewReplacer("_", "-", ".", "-").Replace(strings.ToLower(owner + "-" + name))
	return "https://" + host + ".hf.space"
}

func (g *GradioGenerator) Name() string {
	return "gradio"
}

func (g *GradioGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	eventID, err := g.submit(ctx, prompt)
	if err != nil {
		return "", &Error{Engine: g.Name(), Err: err}
	}
	out, err := g.await(ctx, eventID)
	if err != nil {
		return "", &Error{Engine: g.Name(), Err: err}
	}
	return out, nil
}

func (g *GradioGenerator) submit(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(map[string][]any{"data": {prompt}})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	g.authorize(httpReq)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("Gradio request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Gradio error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var submitted struct {
		EventID string `json:"event_id"`
	}
	if err := json.Unmarshal(body, &submitted); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if submitted.EventID == "" {
		return "", fmt.Errorf("Gradio response has no event_id")
	}
	return submitted.EventID, nil
}

func (g *GradioGenerator) await(ctx context.Context, eventID string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint()+"/"+eventID, nil)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Accept", "text/event-stream")
	g.authorize(httpReq)

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("Gradio result request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Gradio result error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return readCompleteEvent(resp.Body)
}

// readCompleteEvent scans an SSE stream for the first "complete" or "error"
// event and decodes the first output of a complete event.
func readCompleteEvent(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var event string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			switch event {
			case "complete":
				return decodeOutput(data)
			case "error":
				if data == "" || data == "null" {
					return "", fmt.Errorf("Gradio app reported an error")
				}
				return "", fmt.Errorf("Gradio app reported an error: %s", data)
			}
		case line == "":
			event = ""
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read event stream: %w", err)
	}
	return "", fmt.Errorf("Gradio event stream ended without a result")
}

func decodeOutput(data string) (string, error) {
	var outputs []json.RawMessage
	if err := json.Unmarshal([]byte(data), &outputs); err != nil {
		return "", fmt.Errorf("parse result: %w", err)
	}
	if len(outputs) == 0 {
		return "", fmt.Errorf("Gradio result has no outputs")
	}
	var text string
	if err := json.Unmarshal(outputs[0], &text); err != nil {
		return "", fmt.Errorf("Gradio output is not text: %s", string(outputs[0]))
	}
	return text, nil
}

func (g *GradioGenerator) endpoint() string {
	return g.baseURL + "/call/" + g.apiName
}

func (g *GradioGenerator) authorize(req *http.Request) {
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}
}
