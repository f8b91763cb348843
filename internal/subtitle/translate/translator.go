package translate

import (
	"context"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/video-quiz/backend/internal/logger"
)

// ChunkTranslator translates text of any length by splitting it into
// fixed-size chunks, sending each chunk to a Backend and joining the
// translated chunks with a single space in their original order.
type ChunkTranslator struct {
	backend     Backend
	maxChunk    int
	concurrency int
	limiter     *rate.Limiter
	log         *logger.Logger
}

// Option configures a ChunkTranslator.
type Option func(*ChunkTranslator)

// WithMaxChunkSize sets the chunk length in characters.
func WithMaxChunkSize(n int) Option {
	return func(t *ChunkTranslator) {
		if n > 0 {
			t.maxChunk = n
		}
	}
}

// WithConcurrency lets up to n chunks be in flight at once. The default of 1
// dispatches chunks sequentially.
func WithConcurrency(n int) Option {
	return func(t *ChunkTranslator) {
		if n > 0 {
			t.concurrency = n
		}
	}
}

// WithRateLimit caps backend calls to rps per second. Zero disables pacing.
func WithRateLimit(rps float64) Option {
	return func(t *ChunkTranslator) {
		if rps > 0 {
			t.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(t *ChunkTranslator) {
		if log != nil {
			t.log = log
		}
	}
}

func NewChunkTranslator(backend Backend, opts ...Option) *ChunkTranslator {
	t := &ChunkTranslator{
		backend:     backend,
		maxChunk:    DefaultMaxChunkSize,
		concurrency: 1,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.With("component", "translate", "engine", backend.Name())
	return t
}

// Engine returns the backend name.
func (t *ChunkTranslator) Engine() string {
	return t.backend.Name()
}

// TranslateLongText translates text into targetLang.
func (t *ChunkTranslator) TranslateLongText(ctx context.Context, text, targetLang string) (string, error) {
	return t.Translate(ctx, text, targetLang, nil)
}

// Translate is TranslateLongText with progress reporting. updateProgress, if
// non-nil, receives the completed fraction after every chunk and may be
// called from several goroutines.
func (t *ChunkTranslator) Translate(ctx context.Context, text, targetLang string, updateProgress func(float64)) (string, error) {
	chunks := SplitChunks(text, t.maxChunk)
	if len(chunks) == 0 {
		return "", nil
	}

	t.log.Debug("translating text", "chunks", len(chunks), "target", targetLang, "concurrency", t.concurrency)

	results := make([]string, len(chunks))
	var completed atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency)
	for _, chunk := range chunks {
		chunk := chunk
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return &Error{Engine: t.backend.Name(), Chunk: chunk.Index, Err: err}
			}
			if t.limiter != nil {
				if err := t.limiter.Wait(gctx); err != nil {
					return &Error{Engine: t.backend.Name(), Chunk: chunk.Index, Err: err}
				}
			}
			translated, err := t.backend.TranslateText(gctx, chunk.Text, targetLang)
			if err != nil {
				return &Error{Engine: t.backend.Name(), Chunk: chunk.Index, Err: err}
			}
			results[chunk.Index] = translated

			done := completed.Add(1)
			if updateProgress != nil {
				updateProgress(float64(done) / float64(len(chunks)))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.log.Warn("translation failed", "error", err)
		return "", err
	}

	t.log.Info("translation complete", "chunks", len(chunks), "target", targetLang)
	return strings.Join(results, " "), nil
}
