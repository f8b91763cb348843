package translate

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeBackend upper-cases text and records every call.
type fakeBackend struct {
	mu       sync.Mutex
	calls    []string
	failOn   string
	jitter   bool
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) TranslateText(ctx context.Context, text, targetLang string) (string, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	if f.jitter {
		time.Sleep(time.Duration(rand.Intn(5)) * time.Millisecond)
	}
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return "", fmt.Errorf("backend refused %q", f.failOn)
	}
	return targetLang + ":" + strings.ToUpper(text), nil
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// TestTranslateLongTextJoinsInOrder verifies chunks are joined with a space in index order.
func TestTranslateLongTextJoinsInOrder(t *testing.T) {
	backend := &fakeBackend{}
	tr := NewChunkTranslator(backend, WithMaxChunkSize(3))

	got, err := tr.TranslateLongText(context.Background(), "abcdefgh", "fr")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if got != "fr:ABC fr:DEF fr:GH" {
		t.Fatalf("unexpected output %q", got)
	}
	if backend.callCount() != 3 {
		t.Fatalf("expected 3 backend calls, got %d", backend.callCount())
	}
	if backend.peak.Load() != 1 {
		t.Fatalf("expected sequential dispatch, peak was %d", backend.peak.Load())
	}
}

// TestTranslateLongTextConcurrentOrder verifies order survives random completion order.
func TestTranslateLongTextConcurrentOrder(t *testing.T) {
	backend := &fakeBackend{jitter: true}
	tr := NewChunkTranslator(backend, WithMaxChunkSize(2), WithConcurrency(8))

	text := "aabbccddeeffgghhiijjkkllmmnnoopp"
	got, err := tr.TranslateLongText(context.Background(), text, "de")
	if err != nil {
		t.Fatalf("translate: %v", err)
	}

	var want []string
	for _, c := range SplitChunks(text, 2) {
		want = append(want, "de:"+strings.ToUpper(c.Text))
	}
	if got != strings.Join(want, " ") {
		t.Fatalf("order not preserved:\n got %q\nwant %q", got, strings.Join(want, " "))
	}
	if backend.peak.Load() > 8 {
		t.Fatalf("concurrency limit exceeded: %d", backend.peak.Load())
	}
}

// TestTranslateLongTextEmpty verifies empty input makes no backend calls.
func TestTranslateLongTextEmpty(t *testing.T) {
	backend := &fakeBackend{}
	tr := NewChunkTranslator(backend)
	got, err := tr.TranslateLongText(context.Background(), "", "en")
	if err != nil || got != "" {
		t.Fatalf("expected empty result, got %q (%v)", got, err)
	}
	if backend.callCount() != 0 {
		t.Fatalf("expected no backend calls, got %d", backend.callCount())
	}
}

// TestTranslateLongTextFailure verifies one failing chunk fails the whole call.
func TestTranslateLongTextFailure(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		backend := &fakeBackend{failOn: "x"}
		tr := NewChunkTranslator(backend, WithMaxChunkSize(2), WithConcurrency(concurrency))

		got, err := tr.TranslateLongText(context.Background(), "aabbxxccdd", "es")
		if got != "" {
			t.Fatalf("concurrency %d: expected partial output discarded, got %q", concurrency, got)
		}
		if !errors.Is(err, ErrTranslationFailure) {
			t.Fatalf("concurrency %d: expected translation failure, got %v", concurrency, err)
		}
		var te *Error
		if !errors.As(err, &te) || te.Chunk != 2 || te.Engine != "fake" {
			t.Fatalf("concurrency %d: expected failure on chunk 2, got %+v", concurrency, err)
		}
	}
}

// TestTranslateLongTextSequentialStopsAtFailure verifies later chunks are not sent after a failure.
func TestTranslateLongTextSequentialStopsAtFailure(t *testing.T) {
	backend := &fakeBackend{failOn: "b"}
	tr := NewChunkTranslator(backend, WithMaxChunkSize(1))
	if _, err := tr.TranslateLongText(context.Background(), "abcdef", "en"); err == nil {
		t.Fatalf("expected failure")
	}
	if n := backend.callCount(); n != 2 {
		t.Fatalf("expected 2 calls before stopping, got %d", n)
	}
}

// TestTranslateLongTextCanceled verifies a canceled context is reported as a translation failure.
func TestTranslateLongTextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	backend := &fakeBackend{}
	tr := NewChunkTranslator(backend)
	_, err := tr.TranslateLongText(ctx, "some text", "en")
	if !errors.Is(err, ErrTranslationFailure) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled translation failure, got %v", err)
	}
	if backend.callCount() != 0 {
		t.Fatalf("expected no backend calls, got %d", backend.callCount())
	}
}

// TestTranslateProgress verifies progress reaches 1 after the last chunk.
func TestTranslateProgress(t *testing.T) {
	tr := NewChunkTranslator(&fakeBackend{}, WithMaxChunkSize(2), WithConcurrency(3))
	var mu sync.Mutex
	var last float64
	var updates int
	_, err := tr.Translate(context.Background(), "abcdefgh", "en", func(p float64) {
		mu.Lock()
		defer mu.Unlock()
		updates++
		if p > last {
			last = p
		}
	})
	if err != nil {
		t.Fatalf("translate: %v", err)
	}
	if updates != 4 || last != 1 {
		t.Fatalf("expected 4 updates ending at 1, got %d ending at %f", updates, last)
	}
}

// TestTranslateRateLimit verifies the limiter paces calls.
func TestTranslateRateLimit(t *testing.T) {
	tr := NewChunkTranslator(&fakeBackend{}, WithMaxChunkSize(1), WithRateLimit(50))
	start := time.Now()
	if _, err := tr.TranslateLongText(context.Background(), "abcd", "en"); err != nil {
		t.Fatalf("translate: %v", err)
	}
	// burst of 1 at 50/s: three waits of ~20ms.
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Fatalf("expected pacing, finished in %s", elapsed)
	}
}
