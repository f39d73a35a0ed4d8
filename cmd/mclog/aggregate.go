package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mclog/mclog-go/internal/export"
	"github.com/mclog/mclog-go/internal/filter"
	"github.com/mclog/mclog-go/pkg/mclog"
)

var (
	aggLogDir          string
	aggOut             string
	aggTypes           []string
	aggExcludeTypes    []string
	aggPatternFiles    []string
	aggWasmFiles       []string
	aggWasmTimeout     time.Duration
	aggFilter          string
	aggSince           string
	aggUntil           string
	aggDetectAmbiguity bool
	aggFormat          string
	aggRaw             bool
	aggStrict          bool
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Aggregate a log directory into per-kind CSV files",
	Long: `Read the server's log directory (latest.log plus rotated .log.gz
files), merge all lines chronologically, extract events, and write one
CSV file per event kind into the output directory. A run summary is
printed to stdout.

Unreadable archive files are skipped with a warning; use --strict to
fail instead.

Examples:
  # Aggregate ./logs into ./output
  mclog aggregate

  # Explicit directories
  mclog aggregate --log-dir /srv/minecraft/logs --out /tmp/report

  # Only deaths and chat
  mclog aggregate --types death,chat

  # Custom matchers from a pattern file, JSON summary
  mclog aggregate --patterns extra.yaml --format json

  # Only events involving Alice
  mclog aggregate --filter 'Player == "Alice"'`,
	RunE: runAggregate,
}

func init() {
	aggregateCmd.Flags().StringVarP(&aggLogDir, "log-dir", "d", "",
		"Server log directory (default: $LOG_DIRECTORY, then ./logs)")
	aggregateCmd.Flags().StringVarP(&aggOut, "out", "o", "output",
		"Output directory for CSV files")
	aggregateCmd.Flags().StringSliceVarP(&aggTypes, "types", "t", nil,
		"Event kinds to keep (comma-separated: join_leave,advancement,death,chat or custom)")
	aggregateCmd.Flags().StringSliceVar(&aggExcludeTypes, "exclude-types", nil,
		"Event kinds to drop (comma-separated, cannot be combined with --types)")
	aggregateCmd.Flags().StringSliceVar(&aggPatternFiles, "patterns", nil,
		"YAML pattern file with custom matchers (repeatable)")
	aggregateCmd.Flags().StringSliceVar(&aggWasmFiles, "wasm", nil,
		"WebAssembly matcher plugin (repeatable)")
	aggregateCmd.Flags().DurationVar(&aggWasmTimeout, "wasm-timeout", 0,
		"Per-line execution timeout for Wasm plugins (0 = default 50ms)")
	aggregateCmd.Flags().StringVar(&aggFilter, "filter", "",
		`Event filter expression, e.g. 'Kind == "death" && Player == "Alice"'`)
	aggregateCmd.Flags().StringVar(&aggSince, "since", "",
		"Keep only events at or after this time (RFC3339)")
	aggregateCmd.Flags().StringVar(&aggUntil, "until", "",
		"Keep only events before this time (RFC3339)")
	aggregateCmd.Flags().BoolVar(&aggDetectAmbiguity, "detect-ambiguity", false,
		"Count lines claimed by more than one matcher")
	aggregateCmd.Flags().StringVar(&aggFormat, "format", "",
		"Summary format: table, plain, json (default: table on terminals)")
	aggregateCmd.Flags().BoolVar(&aggRaw, "raw", false,
		"Include raw log lines in events")
	aggregateCmd.Flags().BoolVar(&aggStrict, "strict", false,
		"Fail on the first unreadable log file instead of skipping it")

	rootCmd.AddCommand(aggregateCmd)
}

func runAggregate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger()

	opts, cleanup, err := commonOptions(ctx, commonFlags{
		logDir:       aggLogDir,
		types:        aggTypes,
		excludeTypes: aggExcludeTypes,
		patternFiles: aggPatternFiles,
		wasmFiles:    aggWasmFiles,
		wasmTimeout:  aggWasmTimeout,
		filter:       aggFilter,
		since:        aggSince,
		until:        aggUntil,
		raw:          aggRaw,
	}, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	opts = append(opts,
		mclog.WithAmbiguityDetection(aggDetectAmbiguity),
		mclog.WithStrict(aggStrict),
	)

	result, err := mclog.Aggregate(ctx, opts...)
	if err != nil {
		return err
	}

	paths, err := export.WriteCSV(aggOut, result)
	if err != nil {
		return err
	}
	logger.Debug("wrote CSV files", "dir", aggOut, "files", len(paths))

	format := aggFormat
	if format == "" {
		format = export.DetectFormat(os.Stdout)
	}
	return export.RenderSummary(os.Stdout, result, format, export.TerminalWidth(os.Stdout))
}

// commonFlags carries the flags shared by aggregate and events.
type commonFlags struct {
	logDir       string
	types        []string
	excludeTypes []string
	patternFiles []string
	wasmFiles    []string
	wasmTimeout  time.Duration
	filter       string
	since        string
	until        string
	raw          bool
}

// commonOptions translates shared flags into run options. The returned
// cleanup must be deferred; it is always non-nil.
func commonOptions(ctx context.Context, f commonFlags, logger *slog.Logger) ([]mclog.Option, func(), error) {
	noop := func() {}

	includes, err := NormalizeEventKinds(f.types)
	if err != nil {
		return nil, noop, fmt.Errorf("invalid --types: %w", err)
	}
	excludes, err := NormalizeEventKinds(f.excludeTypes)
	if err != nil {
		return nil, noop, fmt.Errorf("invalid --exclude-types: %w", err)
	}
	if err := RejectOverlap(includes, excludes); err != nil {
		return nil, noop, err
	}

	opts := []mclog.Option{
		mclog.WithLogger(logger),
		mclog.WithIncludeRawLine(f.raw),
	}
	if f.logDir != "" {
		opts = append(opts, mclog.WithLogDir(f.logDir))
	}
	if len(includes) > 0 {
		opts = append(opts, mclog.WithIncludeKinds(includes...))
	}
	if len(excludes) > 0 {
		opts = append(opts, mclog.WithExcludeKinds(excludes...))
	}

	if f.since != "" {
		t, err := time.Parse(time.RFC3339, f.since)
		if err != nil {
			return nil, noop, fmt.Errorf("invalid --since format: %w", err)
		}
		opts = append(opts, mclog.WithSince(t))
	}
	if f.until != "" {
		t, err := time.Parse(time.RFC3339, f.until)
		if err != nil {
			return nil, noop, fmt.Errorf("invalid --until format: %w", err)
		}
		opts = append(opts, mclog.WithUntil(t))
	}

	if f.filter != "" {
		pred, err := filter.Compile(f.filter)
		if err != nil {
			return nil, noop, fmt.Errorf("invalid --filter: %w", err)
		}
		opts = append(opts, mclog.WithEventFilter(pred))
	}

	custom, cleanup, err := buildMatchers(ctx, f.patternFiles, f.wasmFiles, f.wasmTimeout, logger)
	if err != nil {
		return nil, noop, err
	}
	opts = append(opts, custom...)

	return opts, cleanup, nil
}
