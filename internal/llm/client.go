package llm

import (
	"context"
	"net/http"
)

// HTTPDoer abstracts HTTP clients used by providers.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client sends a single system + user prompt and returns the model's text reply.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Model() string
}

// Options tune a provider. Zero values select the provider defaults.
type Options struct {
	BaseURL     string
	Model       string
	Temperature float64
	HTTPClient  HTTPDoer
}
