// Package mclog extracts structured events from Minecraft server log
// archives.
//
// This package allows you to:
//   - Aggregate a server's logs directory (latest.log plus rotated .log.gz
//     archives) into per-kind event sequences
//   - Match join/leave, advancement, death and chat lines out of the box
//   - Add custom matchers in code, from YAML pattern files, or as wasm
//     plugins
//   - Build tools like playtime reports, death leaderboards, chat exports
//
// # Basic Usage
//
// To aggregate a logs directory in one call:
//
//	result, err := mclog.Aggregate(ctx, mclog.WithLogDir("logs"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, kind := range result.Kinds() {
//	    fmt.Printf("%s: %d events\n", kind, len(result.Events[kind]))
//	}
//
// To stream events instead:
//
//	for ev, err := range mclog.Events(ctx, mclog.WithLogDir("logs")) {
//	    if err != nil {
//	        log.Printf("warning: %v", err)
//	        continue
//	    }
//	    switch ev.Kind {
//	    case mclog.KindJoinLeave:
//	        fmt.Printf("%s %s\n", ev.Player, ev.Direction)
//	    case mclog.KindDeath:
//	        fmt.Printf("%s %s\n", ev.Player, ev.Cause)
//	    }
//	}
//
// To match a single log line:
//
//	ev, err := mclog.MatchLine(line)
//	if err != nil {
//	    log.Printf("match error: %v", err)
//	} else if ev != nil {
//	    // process event
//	}
//
// # Log Files
//
// The logs directory resolves from WithLogDir, the LOG_DIRECTORY
// environment variable, or ./logs, in that order. Sources merge into a
// single chronologically ordered line stream; an unreadable file is skipped
// with a warning rather than failing the run.
//
// Lines only carry a time of day. The date comes from the rotated file name
// (or the current log's modification date) and rolls over when the clock
// wraps past midnight inside a file.
//
// # Custom Matchers
//
// Implement the [Matcher] interface for custom line matching:
//
//	type Matcher interface {
//	    Match(ctx context.Context, line logline.Line) (MatchResult, error)
//	}
//
// and register it after the built-ins with [WithMatcher]:
//
//	result, err := mclog.Aggregate(ctx,
//	    mclog.WithMatcher("raid", raidMatcher),
//	)
//
// Matchers run in registration order and the first match wins.
//
// # YAML Pattern Files
//
// For pattern-based matching without code, use the [pattern] subpackage:
//
//	import "github.com/mclog/mclog-go/pkg/mclog/pattern"
//
//	m, err := pattern.NewRegexMatcherFromFile("patterns.yaml")
//
// See the [pattern] package for the YAML format.
package mclog
