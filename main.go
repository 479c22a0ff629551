// rsinspect checks Rust naming conventions and generic argument counts and
// reports the findings in TOON, SARIF, YAML or plain text.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phobologic/rsinspect/internal/analyze"
	"github.com/phobologic/rsinspect/internal/cache"
	"github.com/phobologic/rsinspect/internal/config"
	"github.com/phobologic/rsinspect/internal/discover"
	"github.com/phobologic/rsinspect/internal/inspect"
	"github.com/phobologic/rsinspect/internal/logging"
	"github.com/phobologic/rsinspect/internal/metrics"
	"github.com/phobologic/rsinspect/internal/model"
	"github.com/phobologic/rsinspect/internal/ranking"
	"github.com/phobologic/rsinspect/internal/toon"
	"github.com/phobologic/rsinspect/internal/watch"
)

var version = "dev"

// Exit codes.
const (
	exitError    = 1
	exitFindings = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err == nil {
		return
	}
	var findings *findingsError
	if errors.As(err, &findings) {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(exitFindings)
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(exitError)
}

// findingsError reports diagnostics at or above the --fail-on threshold.
type findingsError struct {
	Count     int
	Threshold model.Severity
}

func (e *findingsError) Error() string {
	return fmt.Sprintf("%d diagnostic(s) at or above %s", e.Count, e.Threshold)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

type rootFlags struct {
	format      string
	maxFiles    int
	maxFileSize int64
	exclude     []string
	configPath  string
	cachePath   string
	metricsOut  string
	workers     int
	watch       bool
	verbose     bool
	failOn      string
}

func newRootCmd() *cobra.Command {
	var f rootFlags

	cmd := &cobra.Command{
		Use:   "rsinspect [path]",
		Short: "Check Rust naming conventions and generic argument counts",
		Long: `rsinspect parses every Rust source file under path (default: current
directory) and reports identifiers that break the Rust naming conventions and
generic references with the wrong number of type or const arguments.

Settings are read from .rsinspect.yaml in path (see "rsinspect init"); flags
override the file and RSINSPECT_* environment variables override both file
and defaults.`,
		Args:          cobra.MaximumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, args, &f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.format, "format", "toon", "output format: toon, sarif, yaml or text")
	fl.IntVarP(&f.maxFiles, "max-files", "n", 0, "maximum number of files to report")
	fl.Int64Var(&f.maxFileSize, "max-file-size", 1<<20, "skip files larger than this many bytes")
	fl.StringArrayVar(&f.exclude, "exclude", nil, "doublestar glob of paths to skip (repeatable)")
	fl.StringVar(&f.configPath, "config", "", "config file (default: .rsinspect.yaml in path)")
	fl.StringVar(&f.cachePath, "cache", "", "report cache file path")
	fl.StringVar(&f.metricsOut, "metrics-out", "", "write Prometheus text metrics to this file")
	fl.IntVarP(&f.workers, "workers", "j", 0, "parser workers (default: one per CPU)")
	fl.BoolVarP(&f.watch, "watch", "w", false, "re-run when sources change")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "enable debug logging")
	fl.StringVar(&f.failOn, "fail-on", config.FailOnError, "exit non-zero on diagnostics at this severity: error, warning or none")
	fl.BoolP("version", "V", false, "show version and exit")

	cmd.AddCommand(newRulesCmd(), newInitCmd())
	return cmd
}

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the inspections and their default levels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), toon.EncodeRules(inspect.Rules()))
			return nil
		},
	}
}

// loadConfig reads the config file and applies explicitly set flags on top.
func loadConfig(cmd *cobra.Command, root string, f *rootFlags) (*config.Config, error) {
	cfg, err := config.Load(root, f.configPath)
	if err != nil {
		return nil, err
	}

	fl := cmd.Flags()
	if fl.Changed("format") {
		cfg.Format = f.format
	}
	if fl.Changed("max-files") {
		cfg.MaxFiles = f.maxFiles
	}
	if fl.Changed("max-file-size") {
		cfg.MaxFileSize = f.maxFileSize
	}
	if fl.Changed("exclude") {
		cfg.Exclude = append(cfg.Exclude, f.exclude...)
	}
	if fl.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fl.Changed("fail-on") {
		cfg.FailOn = f.failOn
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runAnalyze(cmd *cobra.Command, args []string, f *rootFlags) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", root)
	}

	cfg, err := loadConfig(cmd, root, f)
	if err != nil {
		return err
	}

	logger, err := logging.New(f.verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var rec *metrics.Recorder
	if f.metricsOut != "" {
		rec = metrics.New()
	}

	r := &runner{
		root:    root,
		cfg:     cfg,
		flags:   f,
		out:     cmd.OutOrStdout(),
		logger:  logger,
		metrics: rec,
	}

	report, err := r.once(cmd.Context())
	if !f.watch {
		if err != nil {
			return err
		}
		return failOn(report, cfg.FailOn)
	}
	if err != nil && !errors.Is(err, analyze.ErrNoFiles) {
		return err
	}

	return watch.Run(cmd.Context(), watch.Config{Root: root, Logger: logger}, func(ctx context.Context) error {
		_, _ = fmt.Fprintln(r.out)
		if _, err := r.once(ctx); err != nil && !errors.Is(err, analyze.ErrNoFiles) {
			if errors.Is(err, context.Canceled) {
				return err
			}
			logger.Warn("analysis failed", zap.Error(err))
		}
		return nil
	})
}

type runner struct {
	root    string
	cfg     *config.Config
	flags   *rootFlags
	out     io.Writer
	logger  *zap.Logger
	metrics *metrics.Recorder
}

// once runs a single analysis, consulting and refreshing the cache, and
// writes the rendered report.
func (r *runner) once(ctx context.Context) (*model.Report, error) {
	start := time.Now()

	files, err := discover.Files(r.root, discover.Options{
		Exclude:     r.cfg.Exclude,
		MaxFileSize: r.cfg.MaxFileSize,
	})
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return nil, analyze.ErrNoFiles
	}

	cfgText, err := r.cfg.YAML()
	if err != nil {
		return nil, err
	}
	key := cache.Key(version, cfgText)

	var report *model.Report
	if r.flags.cachePath != "" {
		if cached, ok := cache.Load(r.flags.cachePath, key, files); ok {
			r.logger.Debug("using cached report", zap.String("cache", r.flags.cachePath))
			r.metrics.CacheHit()
			report = cached
		} else {
			r.logger.Debug("cache miss", zap.String("cache", r.flags.cachePath))
		}
	}

	if report == nil {
		report, err = analyze.Run(ctx, analyze.Options{
			Root:     r.root,
			Files:    files,
			Workers:  r.cfg.Workers,
			Levels:   r.cfg.LintLevels(),
			Disabled: r.cfg.DisabledSet(),
			Logger:   r.logger,
			Metrics:  r.metrics,
		})
		if err != nil {
			return nil, err
		}
		if r.flags.cachePath != "" {
			if err := cache.Save(r.flags.cachePath, key, files, report); err != nil {
				r.logger.Warn("failed to write cache", zap.String("cache", r.flags.cachePath), zap.Error(err))
			}
		}
	}

	output, err := render(ranking.SelectFiles(report, r.cfg.MaxFiles), r.cfg.Format)
	if err != nil {
		return nil, err
	}
	_, _ = fmt.Fprintln(r.out, output)

	r.metrics.ObserveRun(start)
	if err := r.metrics.WriteFile(r.flags.metricsOut); err != nil {
		r.logger.Warn("failed to write metrics", zap.Error(err))
	}
	return report, nil
}

// failOn returns a findingsError when report holds diagnostics at or above
// threshold.
func failOn(report *model.Report, threshold string) error {
	if threshold == config.FailOnNone {
		return nil
	}
	sev := model.Severity(threshold)
	n := 0
	for _, d := range report.Diagnostics() {
		if d.Severity.Rank() >= sev.Rank() {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return &findingsError{Count: n, Threshold: sev}
}
