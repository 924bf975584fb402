// Package cli implements the kaggle command line tool.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/adamwoolhether/kaggle"
	"github.com/adamwoolhether/kaggle/client"
	"github.com/adamwoolhether/kaggle/credentials"
)

// RootOpts holds global CLI options.
type RootOpts struct {
	Config        string
	Output        string
	Debug         bool
	Quiet         bool
	RPS           int
	Timeout       time.Duration
	TraceEndpoint string
	BaseURL       string
}

// Execute runs the CLI with the given version string.
func Execute(version string) error {
	ctx, cancel := signalContext(context.Background())
	defer cancel()

	root := newRootCmd(version)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return err
	}

	return nil
}

func newRootCmd(version string) *cobra.Command {
	ro := &RootOpts{}

	root := &cobra.Command{
		Use:           "kaggle",
		Short:         "Work with Kaggle datasets, competitions and kernels",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := parseFormat(ro.Output); err != nil {
				return err
			}
			if ro.RPS < 0 {
				return errors.New("--rps must not be negative")
			}
			if ro.Timeout < 0 {
				return errors.New("--timeout must not be negative")
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&ro.Config, "config", "", "Path to kaggle.json (defaults to KAGGLE_CONFIG_DIR or ~/.kaggle)")
	root.PersistentFlags().StringVarP(&ro.Output, "output", "o", string(formatTable), "Output format: table, json, yaml")
	root.PersistentFlags().BoolVarP(&ro.Debug, "debug", "v", false, "Log requests and responses at debug level")
	root.PersistentFlags().BoolVarP(&ro.Quiet, "quiet", "q", false, "Hide progress bars and informational logs")
	root.PersistentFlags().IntVar(&ro.RPS, "rps", 0, "Limit requests per second (0 disables)")
	root.PersistentFlags().DurationVar(&ro.Timeout, "timeout", 0, "Per-request timeout including the body, e.g. 30s (0 disables)")
	root.PersistentFlags().StringVar(&ro.TraceEndpoint, "trace-endpoint", "", "Export traces to this OTLP/HTTP endpoint, e.g. localhost:4318")
	root.PersistentFlags().StringVar(&ro.BaseURL, "base-url", kaggle.DefaultBaseURL, "Kaggle API root")
	_ = root.PersistentFlags().MarkHidden("base-url")

	root.AddCommand(newDatasetsCmd(ro))
	root.AddCommand(newCompetitionsCmd(ro))
	root.AddCommand(newKernelsCmd(ro))
	root.AddCommand(newVersionCmd(version))

	return root
}

// session is a configured API client plus whatever must be flushed
// when the command finishes.
type session struct {
	*kaggle.Client
	logger   *slog.Logger
	format   format
	shutdown func(context.Context) error
}

func (s *session) close(ctx context.Context) {
	if s.shutdown == nil {
		return
	}
	if err := s.shutdown(context.WithoutCancel(ctx)); err != nil {
		s.logger.Warn("flushing traces", "error", err)
	}
}

func (ro *RootOpts) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case ro.Debug:
		level = slog.LevelDebug
	case ro.Quiet:
		level = slog.LevelWarn
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (ro *RootOpts) credentials() credentials.Source {
	if ro.Config != "" {
		return credentials.File(ro.Config)
	}

	return credentials.Default()
}

// connect builds a client from the global flags. Callers must defer
// session.close.
func (ro *RootOpts) connect(ctx context.Context, cmd *cobra.Command) (*session, error) {
	logger := ro.logger(cmd.ErrOrStderr())

	f, err := parseFormat(ro.Output)
	if err != nil {
		return nil, err
	}

	opts := []kaggle.Option{
		kaggle.WithCredentials(ro.credentials()),
		kaggle.WithBaseURL(ro.BaseURL),
		kaggle.WithLogger(logger),
		kaggle.WithUserAgent("kaggle-cli/" + cmd.Root().Version),
	}

	var httpOpts []client.Option
	if ro.RPS > 0 {
		httpOpts = append(httpOpts, client.WithThrottle(ro.RPS, ro.RPS))
	}
	if ro.Timeout > 0 {
		httpOpts = append(httpOpts, client.WithTimeout(ro.Timeout))
	}

	s := session{logger: logger, format: f}

	if ro.TraceEndpoint != "" {
		tp, err := newTracerProvider(ctx, ro.TraceEndpoint, cmd.Root().Version)
		if err != nil {
			return nil, err
		}
		s.shutdown = tp.Shutdown
		opts = append(opts, kaggle.WithTracerProvider(tp))
		httpOpts = append(httpOpts, client.WithTracing(tp))
	}

	opts = append(opts, kaggle.WithHTTPOptions(httpOpts...))

	kc, err := kaggle.New(opts...)
	if err != nil {
		s.close(ctx)
		return nil, err
	}
	s.Client = kc

	return &s, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

type runFn func(ctx context.Context, cmd *cobra.Command, s *session, args []string) error

// run adapts fn into a cobra RunE that connects before and flushes after.
func (ro *RootOpts) run(fn runFn) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		s, err := ro.connect(ctx, cmd)
		if err != nil {
			return err
		}
		defer s.close(ctx)

		return fn(ctx, cmd, s, args)
	}
}
