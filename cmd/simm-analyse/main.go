package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/simmtest/simm-analyse/internal/compute"
	"github.com/simmtest/simm-analyse/internal/config"
	"github.com/simmtest/simm-analyse/internal/record"
	"github.com/simmtest/simm-analyse/internal/report"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr, newLogger)
	cancel()
	os.Exit(code)
}

// usageError marks a wrong argument count, a bad flag or an invalid setting.
type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// app holds the flag values and collaborators of one invocation.
type app struct {
	stdout    io.Writer
	newLogger func(verbose bool) (*zap.Logger, error)
	log       *zap.Logger

	configPath string
	format     string
	strict     bool
	watch      bool
	verbose    bool
}

// newLogger builds a production JSON logger writing to stderr, so stdout
// carries only the reports.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// execute runs the command line and maps the outcome to an exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer, mkLogger func(bool) (*zap.Logger, error)) int {
	a := &app{stdout: stdout, newLogger: mkLogger}
	cmd := a.command()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if a.log != nil {
		_ = a.log.Sync()
	}
	if err == nil {
		return exitOK
	}

	var ue *usageError
	if errors.As(err, &ue) {
		fmt.Fprintf(stderr, "Error: %v\n%s", err, cmd.UsageString())
		return exitUsage
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return exitFailure
}

func (a *app) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simm-analyse [flags] <input-file>",
		Short: "Summarise SIMM retention test logs",
		Long: `simm-analyse reads a log of memory retention test runs and prints two
reports: the fraction of runs in which each location was corrupted at each
delay, and the average bit flip rate per delay.

The log is a sequence of blocks separated by a line of 32 hyphens:

  Delay: <n>, Pattern: <m>
  <location>,<location>,...,
  Diffs: <bit flips>

Exit status is 0 on success and 2 on a usage error: a wrong argument count,
an unknown flag, or an invalid setting whether it comes from a flag or the
--config file. Anything else (unreadable or malformed input or config file,
--strict on insufficient data) exits 1.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return &usageError{err: err}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log, err := a.newLogger(a.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.log = log
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runE(cmd, args[0])
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	f := cmd.Flags()
	f.StringVar(&a.configPath, "config", "", "path to a YAML config file (defaults are used when empty)")
	f.StringVar(&a.format, "format", "", "output format: text | prometheus (overrides config)")
	f.BoolVar(&a.strict, "strict", false, "fail when a table cell has no eligible observations")
	f.BoolVar(&a.watch, "watch", false, "re-run the analysis whenever the input file changes")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	return cmd
}

func (a *app) runE(cmd *cobra.Command, input string) error {
	if err := a.analyse(cmd, input); err != nil {
		return err
	}
	if !a.watch {
		return nil
	}

	paths := []string{input}
	if a.configPath != "" {
		paths = append(paths, a.configPath)
	}
	ctx := cmd.Context()
	return config.Watch(ctx, a.log, func(changed string) {
		a.log.Info("input changed, re-running analysis", zap.String("path", changed))
		if err := a.analyse(cmd, input); err != nil {
			a.log.Error("analysis failed, waiting for next change", zap.Error(err))
		}
	}, paths...)
}

// loadConfig reads the config file (if any) and applies flag overrides.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if a.configPath != "" {
		var err error
		if cfg, err = config.Load(a.configPath); err != nil {
			if errors.Is(err, config.ErrInvalid) {
				return nil, &usageError{err: err}
			}
			return nil, err
		}
	}
	if cmd.Flags().Changed("format") {
		cfg.Output.Format = a.format
	}
	if cmd.Flags().Changed("strict") {
		cfg.Analysis.Strict = a.strict
	}
	if err := cfg.Validate(); err != nil {
		return nil, &usageError{err: fmt.Errorf("config: %w", err)}
	}
	return cfg, nil
}

// analyse runs one full batch: parse, aggregate, render. Nothing is written
// to stdout unless every step succeeds.
func (a *app) analyse(cmd *cobra.Command, input string) error {
	start := time.Now()
	log := a.log.With(zap.String("run_id", uuid.NewString()), zap.String("input", input))

	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	recs, err := record.ReadFile(input, cfg.Limits())
	if err != nil {
		return err
	}
	log.Debug("records parsed", zap.Int("records", len(recs)))

	tbl := compute.Corruptability(recs)
	rates := compute.FlipRate(recs, cfg.Analysis.TestedBits)

	if undef := tbl.Undefined(); len(undef) > 0 {
		if cfg.Analysis.Strict {
			return tbl.RequireDefined()
		}
		log.Warn("cells without eligible observations",
			zap.Int("cells", len(undef)),
			zap.Uint64("first_delay", undef[0].Delay),
			zap.String("first_location", undef[0].Location),
			zap.String("marker", cfg.Output.UndefinedMarker),
		)
	}

	opts := report.Options{
		UndefinedMarker: cfg.Output.UndefinedMarker,
		MetricPrefix:    cfg.Output.MetricPrefix,
	}
	switch cfg.Output.Format {
	case config.FormatPrometheus:
		err = report.WritePrometheus(a.stdout, tbl, rates, opts)
	default:
		err = report.WriteText(a.stdout, tbl, rates, opts)
	}
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	log.Info("analysis complete",
		zap.Int("records", len(recs)),
		zap.Int("locations", len(tbl.Locations)),
		zap.Int("delays", len(rates.Delays)),
		zap.String("format", cfg.Output.Format),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
