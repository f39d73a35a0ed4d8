package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mclog/mclog-go/pkg/mclog"
)

var (
	evLogDir       string
	evFormat       string
	evTypes        []string
	evExcludeTypes []string
	evPatternFiles []string
	evWasmFiles    []string
	evWasmTimeout  time.Duration
	evFilter       string
	evSince        string
	evUntil        string
	evRaw          bool
	evStrict       bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Print every matched event to stdout",
	Long: `Read the server's log directory, merge all lines chronologically, and
print each matched event to stdout as it is extracted, one per line.

The default jsonl format suits piping into jq or another tool; pretty
prints a readable line per event.

Examples:
  # All events as JSON Lines
  mclog events

  # Readable output, deaths only
  mclog events --format pretty --types death

  # Events from a time window
  mclog events --since 2023-04-28T00:00:00Z --until 2023-04-29T00:00:00Z`,
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().StringVarP(&evLogDir, "log-dir", "d", "",
		"Server log directory (default: $LOG_DIRECTORY, then ./logs)")
	eventsCmd.Flags().StringVarP(&evFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	eventsCmd.Flags().StringSliceVarP(&evTypes, "types", "t", nil,
		"Event kinds to keep (comma-separated: join_leave,advancement,death,chat or custom)")
	eventsCmd.Flags().StringSliceVar(&evExcludeTypes, "exclude-types", nil,
		"Event kinds to drop (comma-separated, cannot be combined with --types)")
	eventsCmd.Flags().StringSliceVar(&evPatternFiles, "patterns", nil,
		"YAML pattern file with custom matchers (repeatable)")
	eventsCmd.Flags().StringSliceVar(&evWasmFiles, "wasm", nil,
		"WebAssembly matcher plugin (repeatable)")
	eventsCmd.Flags().DurationVar(&evWasmTimeout, "wasm-timeout", 0,
		"Per-line execution timeout for Wasm plugins (0 = default 50ms)")
	eventsCmd.Flags().StringVar(&evFilter, "filter", "",
		`Event filter expression, e.g. 'Kind == "death" && Player == "Alice"'`)
	eventsCmd.Flags().StringVar(&evSince, "since", "",
		"Keep only events at or after this time (RFC3339)")
	eventsCmd.Flags().StringVar(&evUntil, "until", "",
		"Keep only events before this time (RFC3339)")
	eventsCmd.Flags().BoolVar(&evRaw, "raw", false,
		"Include raw log lines in events")
	eventsCmd.Flags().BoolVar(&evStrict, "strict", false,
		"Fail on the first unreadable log file instead of skipping it")

	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, args []string) error {
	if !ValidFormats[evFormat] {
		return fmt.Errorf("invalid format %q (valid formats: %s)",
			evFormat, strings.Join(ValidFormatNames(), ", "))
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger()

	opts, cleanup, err := commonOptions(ctx, commonFlags{
		logDir:       evLogDir,
		types:        evTypes,
		excludeTypes: evExcludeTypes,
		patternFiles: evPatternFiles,
		wasmFiles:    evWasmFiles,
		wasmTimeout:  evWasmTimeout,
		filter:       evFilter,
		since:        evSince,
		until:        evUntil,
		raw:          evRaw,
	}, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	for ev, err := range mclog.Events(ctx, opts...) {
		if err != nil {
			var srcErr *mclog.SourceError
			if errors.As(err, &srcErr) && !evStrict {
				logger.Warn("skipping unreadable log source", "error", err)
				continue
			}
			return err
		}
		if err := OutputEvent(evFormat, ev, os.Stdout); err != nil {
			return err
		}
	}
	return nil
}
