// Package app wires configuration, engines, the job queue and the session
// store into the services both front ends use.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/video-quiz/backend/internal/config"
	"github.com/video-quiz/backend/internal/db"
	"github.com/video-quiz/backend/internal/generate"
	"github.com/video-quiz/backend/internal/job"
	"github.com/video-quiz/backend/internal/llm"
	"github.com/video-quiz/backend/internal/logger"
	"github.com/video-quiz/backend/internal/pipeline"
	"github.com/video-quiz/backend/internal/quiz"
	"github.com/video-quiz/backend/internal/subtitle/transcript"
	"github.com/video-quiz/backend/internal/subtitle/translate"
	"github.com/video-quiz/backend/internal/subtitle/whisper"
)

type App struct {
	Config      *config.Config
	Log         *logger.Logger
	Translators *translate.Registry
	Generators  *generate.Registry
	Source      transcript.Source
	Sessions    *quiz.Store
	Queue       *job.JobQueue

	database *db.Database
}

// Options override collaborators, mostly for tests.
type Options struct {
	HTTPClient llm.HTTPDoer
	Source     transcript.Source
}

// New builds the engines from cfg. The job queue is only created by
// StartJobs, so one-shot commands do not open a database.
func New(cfg *config.Config, log *logger.Logger, opts Options) *App {
	if log == nil {
		log = logger.Nop()
	}
	a := &App{
		Config:   cfg,
		Log:      log,
		Sessions: quiz.NewStore(cfg.SessionTTL),
	}

	a.Translators = translate.NewRegistry(translate.EngineSettings{
		Preset:      cfg.Translate.Preset,
		GoogleURL:   cfg.Translate.GoogleURL,
		DeepLKey:    cfg.Translate.DeepLAPIKey,
		OpenAIKey:   cfg.Translate.OpenAIAPIKey,
		OpenAIModel: cfg.Translate.OpenAIModel,
		GeminiKey:   cfg.Translate.GeminiAPIKey,
		GeminiModel: cfg.Translate.GeminiModel,
		HTTPClient:  opts.HTTPClient,
	}, log)

	a.Generators = generate.NewRegistry(generate.EngineSettings{
		GradioURL:     cfg.Generate.GradioURL,
		GradioAPIName: cfg.Generate.GradioAPIName,
		GradioToken:   cfg.Generate.HFToken,
		OpenAIKey:     cfg.Generate.OpenAIAPIKey,
		OpenAIModel:   cfg.Generate.OpenAIModel,
		GeminiKey:     cfg.Generate.GeminiAPIKey,
		GeminiModel:   cfg.Generate.GeminiModel,
		HTTPClient:    opts.HTTPClient,
	}, log)

	a.Source = opts.Source
	if a.Source == nil {
		src := &transcript.FileSource{
			Dir:      cfg.TranscriptDir,
			Language: cfg.Whisper.Language,
			Log:      log,
		}
		if cfg.Whisper.OpenAIAPIKey != "" {
			client, err := whisper.NewClient(cfg.Whisper.OpenAIAPIKey, llm.Options{Model: cfg.Whisper.Model, HTTPClient: opts.HTTPClient}, log)
			if err == nil {
				src.Transcriber = client
			}
		}
		a.Source = src
	}
	return a
}

// StartJobs opens the job database, starts the queue workers and resumes
// jobs left over from a previous run.
func (a *App) StartJobs() error {
	database, err := db.NewSQLite(a.Config.DBPath)
	if err != nil {
		return fmt.Errorf("open job database: %w", err)
	}
	a.database = database
	a.Queue = job.NewJobQueue(database.DB(), a.Config.Workers, a.Log)
	a.Queue.RegisterHandler(job.JobQuiz, a.handleQuizJob)
	a.Queue.Resume()
	return nil
}

// Close stops the queue and releases the database.
func (a *App) Close() error {
	if a.Queue != nil {
		a.Queue.Stop()
	}
	if a.database != nil {
		return a.database.Close()
	}
	return nil
}

// NormalizeParams fills defaults from the configuration and rejects
// requests that cannot run. Errors wrap pipeline.ErrInvalidRequest.
func (a *App) NormalizeParams(p job.QuizParams) (job.QuizParams, error) {
	p.Ref = strings.TrimSpace(p.Ref)
	q := a.Config.Quiz

	if p.Ref == "" && strings.TrimSpace(p.Transcript) == "" {
		return p, fmt.Errorf("%w: either ref or transcript is required", pipeline.ErrInvalidRequest)
	}
	if p.TargetLang == "" {
		p.TargetLang = q.DefaultLanguage
	}
	if p.QuestionCount == 0 {
		p.QuestionCount = q.DefaultQuestions
	}
	if p.QuestionCount < q.MinQuestions || p.QuestionCount > q.MaxQuestions {
		return p, fmt.Errorf("%w: question_count must be between %d and %d, got %d",
			pipeline.ErrInvalidRequest, q.MinQuestions, q.MaxQuestions, p.QuestionCount)
	}
	if p.TranslateEngine == "" {
		p.TranslateEngine = a.Config.Translate.Engine
	}
	if p.GenerateEngine == "" {
		p.GenerateEngine = a.Config.Generate.Engine
	}
	if _, err := a.Translators.Get(p.TranslateEngine); err != nil {
		return p, fmt.Errorf("%w: %v", pipeline.ErrInvalidRequest, err)
	}
	if p.GenerateEngine == "" {
		return p, fmt.Errorf("%w: no generation engine is configured", pipeline.ErrInvalidRequest)
	}
	if _, err := a.Generators.Get(p.GenerateEngine); err != nil {
		return p, fmt.Errorf("%w: %v", pipeline.ErrInvalidRequest, err)
	}
	return p, nil
}

// BuildQuiz runs the pipeline for already normalized params.
func (a *App) BuildQuiz(ctx context.Context, p job.QuizParams, progress pipeline.Progress) (*pipeline.Result, error) {
	backend, err := a.Translators.Get(p.TranslateEngine)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrInvalidRequest, err)
	}
	generator, err := a.Generators.Get(p.GenerateEngine)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pipeline.ErrInvalidRequest, err)
	}

	t := a.Config.Translate
	translator := translate.NewChunkTranslator(backend,
		translate.WithMaxChunkSize(t.MaxChunkSize),
		translate.WithConcurrency(t.Concurrency),
		translate.WithRateLimit(t.RequestsPerSecond),
		translate.WithLogger(a.Log),
	)
	orch := pipeline.New(translator, generator, a.Log)

	req := pipeline.Request{
		Transcript:    p.Transcript,
		TargetLang:    p.TargetLang,
		QuestionCount: p.QuestionCount,
		LanguageLabel: p.LanguageLabel,
	}
	if strings.TrimSpace(p.Transcript) != "" {
		return orch.RunDetailed(ctx, req, progress)
	}
	return orch.RunFromSourceDetailed(ctx, a.Source, p.Ref, req, progress)
}
