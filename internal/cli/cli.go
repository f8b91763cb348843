// Package cli implements the quizgen command line.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/video-quiz/backend/internal/config"
	"github.com/video-quiz/backend/internal/logger"
)

const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

type Command struct {
	Name    string
	Summary string
	Usage   []string
	Run     func(args []string, stdout, stderr io.Writer) int
}

// stdin is read by commands that accept "-" as input and by the quiz UI.
var stdin io.Reader = os.Stdin

func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stdout)
		return ExitUsage
	}
	if isHelpArg(args[0]) {
		printUsage(stdout)
		return ExitOK
	}

	cmd := findCommand(args[0])
	if cmd == nil {
		fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
		printUsage(stderr)
		return ExitUsage
	}

	return cmd.Run(args[1:], stdout, stderr)
}

func findCommand(name string) *Command {
	for _, cmd := range commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

func wantsHelp(args []string) bool {
	for _, arg := range args {
		switch arg {
		case "-h", "--help":
			return true
		}
	}
	return false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  quizgen <command> [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", cmd.Name, cmd.Summary)
	}
	fmt.Fprintln(w, "\nUse \"quizgen <command> --help\" for more information.")
}

func printCommandUsage(cmd *Command, w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	for _, line := range cmd.Usage {
		fmt.Fprintf(w, "  %s\n", line)
	}
	if cmd.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", cmd.Summary)
	}
}

// parseFlags parses args, printing usage on errors. ok is false when the
// command should return code.
func parseFlags(cmd *Command, fs *flag.FlagSet, args []string, stdout, stderr io.Writer) (code int, ok bool) {
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			printCommandUsage(cmd, stdout)
			return ExitOK, false
		}
		fmt.Fprintf(stderr, "invalid arguments: %v\n", err)
		printCommandUsage(cmd, stderr)
		return ExitUsage, false
	}
	return ExitOK, true
}

// loadConfig reads the configuration and reports failures on stderr.
func loadConfig(path string, stderr io.Writer) (*config.Config, bool) {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintf(stderr, "Config error: %v\n", err)
		return nil, false
	}
	return cfg, true
}

func newLogger(mode string, stderr io.Writer) (*logger.Logger, bool) {
	log, err := logger.New(mode)
	if err != nil {
		fmt.Fprintf(stderr, "Logger error: %v\n", err)
		return nil, false
	}
	return log, true
}

func command(name, summary string, usage []string, runner func(cmd *Command) func(args []string, stdout, stderr io.Writer) int) *Command {
	cmd := &Command{
		Name:    name,
		Summary: summary,
		Usage:   usage,
	}
	cmd.Run = runner(cmd)
	return cmd
}

var commands = []*Command{
	command("serve", "Run the HTTP quiz API", []string{
		"quizgen serve [--config <path>] [--addr <host:port>]",
	}, runServe),
	command("play", "Generate a quiz and take it in the terminal", []string{
		"quizgen play [options] <youtube-url|video-id|caption-file|media-file>",
		"quizgen play [options] --transcript <file>",
		"quizgen play [options] --questions <file>",
	}, runPlay),
	command("parse", "Check generated quiz text against the question format", []string{
		"quizgen parse [--json] [<file>|-]",
	}, runParse),
	command("validate", "Validate configuration and list engines", []string{
		"quizgen validate [--config <path>]",
	}, runValidate),
}
