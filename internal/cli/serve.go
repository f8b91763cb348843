package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/video-quiz/backend/internal/api"
	"github.com/video-quiz/backend/internal/app"
)

// serveHTTP is a test seam for running the HTTP server until ctx is done.
var serveHTTP = func(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// runServe builds the handler for the serve command.
func runServe(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}

		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		configPath := fs.String("config", "", "Path to a YAML config file (default: $QUIZGEN_CONFIG)")
		addr := fs.String("addr", "", "Address to listen on (default: :$PORT)")
		if code, ok := parseFlags(cmd, fs, args, stdout, stderr); !ok {
			return code
		}
		if fs.NArg() > 0 {
			fmt.Fprintln(stderr, "Too many arguments")
			return ExitUsage
		}

		cfg, ok := loadConfig(*configPath, stderr)
		if !ok {
			return ExitError
		}
		log, ok := newLogger(cfg.LogMode, stderr)
		if !ok {
			return ExitError
		}
		defer log.Sync()

		a := app.New(cfg, log, app.Options{})
		if err := a.StartJobs(); err != nil {
			log.Error("failed to start job queue", "error", err)
			return ExitError
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go a.Sessions.RunJanitor(ctx, time.Minute)

		if *addr == "" {
			*addr = fmt.Sprintf(":%d", cfg.Port)
		}
		srv := &http.Server{
			Addr:              *addr,
			Handler:           api.NewRouter(a),
			ReadHeaderTimeout: 10 * time.Second,
		}
		log.Info("starting server",
			"addr", *addr,
			"translate", a.Translators.Names(),
			"generate", a.Generators.Names(),
			"db", cfg.DBPath,
		)
		if err := serveHTTP(ctx, srv); err != nil {
			log.Error("server failed", "error", err)
			return ExitError
		}
		log.Info("server stopped")
		return ExitOK
	}
}
