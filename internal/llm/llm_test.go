package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestOpenAIComplete verifies the request shape and reply extraction.
func TestOpenAIComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Fatalf("unexpected auth header %q", got)
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Model != "gpt-test" || len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Fatalf("unexpected request %+v", req)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"hola"}}]}`))
	}))
	defer srv.Close()

	client, err := NewOpenAI("sk-test", Options{BaseURL: srv.URL, Model: "gpt-test"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got, err := client.Complete(context.Background(), "be brief", "hello")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != "hola" {
		t.Fatalf("expected hola, got %q", got)
	}
}

// TestOpenAIErrorStatus verifies non-200 replies surface the body.
func TestOpenAIErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, _ := NewOpenAI("sk-test", Options{BaseURL: srv.URL})
	_, err := client.Complete(context.Background(), "", "hello")
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("expected quota error, got %v", err)
	}
}

// TestGeminiComplete verifies parts are concatenated and the key header is sent.
func TestGeminiComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/gemini-test:generateContent") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "g-key" {
			t.Fatalf("missing api key header")
		}
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Q: one"},{"text":"?"}]},"finishReason":"STOP"}]}`))
	}))
	defer srv.Close()

	client, err := NewGemini("g-key", Options{BaseURL: srv.URL, Model: "gemini-test"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got, err := client.Complete(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got != "Q: one?" {
		t.Fatalf("unexpected reply %q", got)
	}
}

// TestGeminiBlocked verifies prompt feedback is reported.
func TestGeminiBlocked(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`))
	}))
	defer srv.Close()

	client, _ := NewGemini("g-key", Options{BaseURL: srv.URL})
	if _, err := client.Complete(context.Background(), "", "x"); err == nil || !strings.Contains(err.Error(), "SAFETY") {
		t.Fatalf("expected blocked error, got %v", err)
	}
}

// TestMissingKey verifies constructors refuse empty keys.
func TestMissingKey(t *testing.T) {
	if _, err := NewOpenAI(" ", Options{}); err == nil {
		t.Fatalf("expected error for empty OpenAI key")
	}
	if _, err := NewGemini("", Options{}); err == nil {
		t.Fatalf("expected error for empty Gemini key")
	}
}
