package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/video-quiz/backend/internal/app"
	"github.com/video-quiz/backend/internal/job"
	"github.com/video-quiz/backend/internal/logger"
	"github.com/video-quiz/backend/internal/pipeline"
	"github.com/video-quiz/backend/internal/quiz"
	"github.com/video-quiz/backend/internal/tui"
)

// runTUI is a test seam for the interactive quiz.
var runTUI = tui.Run

// runPlay builds the handler for the play command.
func runPlay(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		configPath := fs.String("config", "", "Path to a YAML config file (default: $QUIZGEN_CONFIG)")
		lang := fs.String("lang", "", "Target language code (default from config)")
		label := fs.String("label", "", "Language name used in the prompt (default: English name of --lang)")
		count := fs.Int("count", 0, "Number of questions (default from config)")
		translateEngine := fs.String("translate", "", "Translation engine")
		generateEngine := fs.String("generate", "", "Generation engine")
		transcriptPath := fs.String("transcript", "", "Read the transcript from a plain text file")
		questionsPath := fs.String("questions", "", "Skip generation and play questions from a file in quiz format")
		noColor := fs.Bool("no-color", false, "Disable colors")
		verbose := fs.Bool("verbose", false, "Log pipeline progress to stderr")
		if code, ok := parseFlags(cmd, fs, args, stdout, stderr); !ok {
			return code
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		opts := tui.Options{NoColor: *noColor}

		var model tui.Model
		switch {
		case *questionsPath != "":
			if fs.NArg() > 0 || *transcriptPath != "" {
				fmt.Fprintln(stderr, "--questions cannot be combined with a reference or --transcript")
				return ExitUsage
			}
			session, err := sessionFromFile(*questionsPath)
			if err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return ExitError
			}
			model = tui.NewSessionModel(session, opts)
		default:
			params := job.QuizParams{
				TargetLang:      *lang,
				LanguageLabel:   *label,
				QuestionCount:   *count,
				TranslateEngine: *translateEngine,
				GenerateEngine:  *generateEngine,
			}
			switch {
			case *transcriptPath != "" && fs.NArg() == 0:
				data, err := os.ReadFile(*transcriptPath)
				if err != nil {
					fmt.Fprintf(stderr, "Error: %v\n", err)
					return ExitError
				}
				params.Transcript = string(data)
			case *transcriptPath == "" && fs.NArg() == 1:
				params.Ref = fs.Arg(0)
			default:
				fmt.Fprintln(stderr, "Give exactly one of <reference> or --transcript")
				printCommandUsage(cmd, stderr)
				return ExitUsage
			}

			cfg, ok := loadConfig(*configPath, stderr)
			if !ok {
				return ExitError
			}
			log := logger.Nop()
			if *verbose {
				if log, ok = newLogger(cfg.LogMode, stderr); !ok {
					return ExitError
				}
				defer log.Sync()
			}

			a := app.New(cfg, log, app.Options{})
			params, err := a.NormalizeParams(params)
			if err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				if errors.Is(err, pipeline.ErrInvalidRequest) {
					return ExitUsage
				}
				return ExitError
			}
			events := tui.Generate(ctx, func(ctx context.Context, progress func(string, float64)) (*quiz.Session, error) {
				res, err := a.BuildQuiz(ctx, params, func(stage pipeline.Stage, fraction float64) {
					progress(string(stage), fraction)
				})
				if err != nil {
					return nil, err
				}
				return res.Session, nil
			})
			model = tui.NewModel(events, opts)
		}

		final, err := runTUI(ctx, stdin, stdout, model)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return ExitError
		}
		if err := final.Err(); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return ExitError
		}
		if res, ok := final.Result(); ok {
			fmt.Fprintf(stdout, "Score: %s\n%s\n", res.Summary(), res.Verdict())
		}
		return ExitOK
	}
}

// sessionFromFile parses quiz text and keeps the well-formed questions.
func sessionFromFile(path string) (*quiz.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	valid, malformed := quiz.Filter(quiz.Parse(string(data)))
	if len(valid) == 0 {
		msgs := make([]string, 0, len(malformed))
		for _, m := range malformed {
			msgs = append(msgs, m.Error())
		}
		return nil, fmt.Errorf("%s: %w %s", path, pipeline.ErrEmptyResult, strings.Join(msgs, "; "))
	}
	return quiz.NewSession(valid), nil
}
