package cli

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/video-quiz/backend/internal/quiz"
)

// runParse builds the handler for the parse command.
func runParse(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		asJSON := fs.Bool("json", false, "Print the well-formed questions as JSON")
		if code, ok := parseFlags(cmd, fs, args, stdout, stderr); !ok {
			return code
		}
		if fs.NArg() > 1 {
			fmt.Fprintln(stderr, "Too many arguments")
			return ExitUsage
		}

		var in io.Reader = stdin
		if path := fs.Arg(0); path != "" && path != "-" {
			f, err := os.Open(path)
			if err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return ExitError
			}
			defer f.Close()
			in = f
		}

		parser := quiz.NewParser()
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 64*1024), 1<<20)
		for scanner.Scan() {
			parser.Feed(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return ExitError
		}
		parsed := parser.Finish()
		valid, malformed := quiz.Filter(parsed)

		for _, m := range malformed {
			fmt.Fprintln(stderr, m.Error())
		}
		if *asJSON {
			if valid == nil {
				valid = []quiz.Question{}
			}
			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(valid); err != nil {
				fmt.Fprintf(stderr, "Error: %v\n", err)
				return ExitError
			}
		} else {
			fmt.Fprintf(stdout, "%d parsed, %d well-formed, %d malformed, %d dropped without an answer\n",
				len(parsed), len(valid), len(malformed), parser.Dropped())
		}
		if len(valid) == 0 {
			return ExitError
		}
		return ExitOK
	}
}
