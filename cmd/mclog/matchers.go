package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mclog/mclog-go/internal/wasm"
	"github.com/mclog/mclog-go/pkg/mclog"
	"github.com/mclog/mclog-go/pkg/mclog/pattern"
)

// buildMatchers loads custom matchers from YAML pattern files and Wasm
// plugin files and returns them as options. Returns a cleanup function
// that must be called to release plugin resources (use defer); it is
// always non-nil, even on error. If wasmTimeout is > 0 it is applied
// to every loaded plugin.
func buildMatchers(ctx context.Context, patternFiles, wasmFiles []string, wasmTimeout time.Duration, logger *slog.Logger) ([]mclog.Option, func(), error) {
	noop := func() {}

	var opts []mclog.Option
	var cleanups []func()

	cleanup := func() {
		for _, c := range cleanups {
			c()
		}
	}

	for i, path := range patternFiles {
		rm, err := pattern.NewRegexMatcherFromFile(path)
		if err != nil {
			// Errors from the pattern package carry no path.
			return nil, noop, fmt.Errorf("pattern file %d: %w", i+1, err)
		}
		opts = append(opts, mclog.WithMatcher(fmt.Sprintf("patterns-%d", i+1), rm))
	}

	for i, path := range wasmFiles {
		wm, err := wasm.Load(ctx, path, logger)
		if err != nil {
			cleanup()
			return nil, noop, fmt.Errorf("plugin file %d: %w", i+1, err)
		}
		if wasmTimeout > 0 {
			wm.SetTimeout(wasmTimeout)
		}
		opts = append(opts, mclog.WithMatcher(fmt.Sprintf("wasm-%d", i+1), wm))
		cleanups = append(cleanups, func() { wm.Close() })
	}

	return opts, cleanup, nil
}
