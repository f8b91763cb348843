package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/video-quiz/backend/internal/generate"
	"github.com/video-quiz/backend/internal/logger"
	"github.com/video-quiz/backend/internal/quiz"
	"github.com/video-quiz/backend/internal/subtitle/transcript"
	"github.com/video-quiz/backend/internal/subtitle/translate"
)

// Translator turns a full transcript into the target language.
type Translator interface {
	TranslateLongText(ctx context.Context, text, targetLang string) (string, error)
}

// progressTranslator is implemented by translators that can report chunk progress.
type progressTranslator interface {
	Translate(ctx context.Context, text, targetLang string, updateProgress func(float64)) (string, error)
}

// Progress receives the stage being run and the overall completed fraction.
type Progress func(stage Stage, fraction float64)

// Request describes one quiz to build.
type Request struct {
	Transcript    string `json:"transcript"`
	TargetLang    string `json:"target_lang"`
	QuestionCount int    `json:"question_count"`
	// LanguageLabel is the human-readable language name put in the prompt.
	// Empty means the English name of TargetLang.
	LanguageLabel string `json:"language_label,omitempty"`
}

func (r Request) validate(needTranscript bool) error {
	switch {
	case needTranscript && strings.TrimSpace(r.Transcript) == "":
		return fmt.Errorf("%w: transcript is empty", ErrInvalidRequest)
	case strings.TrimSpace(r.TargetLang) == "":
		return fmt.Errorf("%w: target language is required", ErrInvalidRequest)
	case r.QuestionCount < 1:
		return fmt.Errorf("%w: question count must be positive, got %d", ErrInvalidRequest, r.QuestionCount)
	}
	return nil
}

// Result is everything a run produced, for callers that report details.
type Result struct {
	Session    *quiz.Session
	Translated string
	Raw        string
	Parsed     int
	Dropped    int
	Malformed  []*quiz.MalformedQuestionError
}

// Orchestrator runs translate, generate and parse in sequence and builds a
// quiz session from the well-formed questions.
type Orchestrator struct {
	translator Translator
	generator  generate.Generator
	log        *logger.Logger
}

func New(translator Translator, generator generate.Generator, log *logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.Nop()
	}
	return &Orchestrator{
		translator: translator,
		generator:  generator,
		log:        log.With("component", "pipeline", "generator", generator.Name()),
	}
}

// Run builds a session from req.Transcript.
func (o *Orchestrator) Run(ctx context.Context, req Request, progress Progress) (*quiz.Session, error) {
	res, err := o.RunDetailed(ctx, req, progress)
	if err != nil {
		return nil, err
	}
	return res.Session, nil
}

// RunFromSource fetches the transcript for ref first. The fetched text
// replaces req.Transcript.
func (o *Orchestrator) RunFromSource(ctx context.Context, src transcript.Source, ref string, req Request, progress Progress) (*quiz.Session, error) {
	res, err := o.RunFromSourceDetailed(ctx, src, ref, req, progress)
	if err != nil {
		return nil, err
	}
	return res.Session, nil
}

func (o *Orchestrator) RunFromSourceDetailed(ctx context.Context, src transcript.Source, ref string, req Request, progress Progress) (*Result, error) {
	if err := req.validate(false); err != nil {
		return nil, err
	}
	report(progress, StageFetch, 0)
	o.log.Info("fetching transcript", "ref", ref)
	text, err := src.Fetch(ctx, ref)
	if err != nil {
		o.log.Warn("fetch failed", "ref", ref, "error", err)
		return nil, stageErr(StageFetch, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, stageErr(StageFetch, fmt.Errorf("%w: %s has an empty transcript", transcript.ErrTranscriptUnavailable, ref))
	}
	req.Transcript = text
	return o.RunDetailed(ctx, req, progress)
}

// RunDetailed is Run returning the intermediate artifacts as well.
func (o *Orchestrator) RunDetailed(ctx context.Context, req Request, progress Progress) (*Result, error) {
	if err := req.validate(true); err != nil {
		return nil, err
	}
	label := req.LanguageLabel
	if label == "" {
		label = translate.LanguageName(req.TargetLang)
	}
	log := o.log.With("target", req.TargetLang, "questions", req.QuestionCount)

	// translate: 0.0 - 0.5
	report(progress, StageTranslate, 0)
	log.Info("translating transcript", "chars", len(req.Transcript))
	translated, err := o.translate(ctx, req, progress)
	if err != nil {
		log.Warn("translation failed", "error", err)
		return nil, stageErr(StageTranslate, err)
	}

	// generate: 0.5 - 0.9
	report(progress, StageGenerate, 0.5)
	log.Info("generating questions", "label", label)
	raw, err := o.generator.Generate(ctx, generate.BuildPrompt(translated, req.QuestionCount, label))
	if err != nil {
		log.Warn("generation failed", "error", err)
		return nil, stageErr(StageGenerate, err)
	}

	// parse: 0.9 - 1.0
	report(progress, StageParse, 0.9)
	parser := quiz.NewParser()
	parsed := parser.ParseString(raw)
	valid, malformed := quiz.Filter(parsed)
	for _, m := range malformed {
		log.Warn("dropping malformed question", "error", m)
	}
	if parser.Dropped() > 0 {
		log.Warn("dropped questions without a correct answer", "count", parser.Dropped())
	}
	if len(valid) == 0 {
		return nil, stageErr(StageParse, fmt.Errorf("%w (%d parsed, %d malformed)", ErrEmptyResult, len(parsed), len(malformed)))
	}
	if len(valid) != req.QuestionCount {
		log.Info("question count differs from request", "requested", req.QuestionCount, "got", len(valid))
	}

	session := quiz.NewSession(valid)
	report(progress, StageParse, 1)
	log.Info("quiz ready", "session", session.ID(), "questions", session.Len())

	return &Result{
		Session:    session,
		Translated: translated,
		Raw:        raw,
		Parsed:     len(parsed),
		Dropped:    parser.Dropped(),
		Malformed:  malformed,
	}, nil
}

func (o *Orchestrator) translate(ctx context.Context, req Request, progress Progress) (string, error) {
	if pt, ok := o.translator.(progressTranslator); ok && progress != nil {
		return pt.Translate(ctx, req.Transcript, req.TargetLang, func(f float64) {
			progress(StageTranslate, f*0.5)
		})
	}
	return o.translator.TranslateLongText(ctx, req.Transcript, req.TargetLang)
}

func report(progress Progress, stage Stage, fraction float64) {
	if progress != nil {
		progress(stage, fraction)
	}
}
