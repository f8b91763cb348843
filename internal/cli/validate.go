package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/video-quiz/backend/internal/app"
	"github.com/video-quiz/backend/internal/logger"
)

// runValidate builds the handler for the validate command.
func runValidate(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		configPath := fs.String("config", "", "Path to a YAML config file (default: $QUIZGEN_CONFIG)")
		if code, ok := parseFlags(cmd, fs, args, stdout, stderr); !ok {
			return code
		}
		if fs.NArg() > 0 {
			fmt.Fprintf(stderr, "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
			printCommandUsage(cmd, stderr)
			return ExitUsage
		}

		cfg, ok := loadConfig(*configPath, stderr)
		if !ok {
			return ExitError
		}
		a := app.New(cfg, logger.Nop(), app.Options{})

		fmt.Fprintln(stdout, "Config OK")
		fmt.Fprintf(stdout, "Translation engines: %s (default %s)\n", strings.Join(a.Translators.Names(), ", "), cfg.Translate.Engine)
		generators := a.Generators.Names()
		if len(generators) == 0 {
			fmt.Fprintln(stdout, "Generation engines: none configured (set GRADIO_URL, OPENAI_API_KEY or GEMINI_API_KEY)")
			return ExitOK
		}
		fmt.Fprintf(stdout, "Generation engines: %s (default %s)\n", strings.Join(generators, ", "), cfg.Generate.Engine)
		return ExitOK
	}
}
