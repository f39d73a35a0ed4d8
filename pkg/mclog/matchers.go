package mclog

import (
	"context"
	"time"

	"github.com/mclog/mclog-go/internal/match"
	"github.com/mclog/mclog-go/pkg/mclog/event"
	"github.com/mclog/mclog-go/pkg/mclog/logline"
)

// NamedMatcher pairs a matcher with its registration name.
type NamedMatcher struct {
	Name    string
	Matcher Matcher
}

// DefaultMatchers returns the built-in matchers in their dispatch order:
// join/leave, advancement, chat, death. Chat precedes death so "<X> ..."
// chat bodies are never swallowed by the death fallback, and the death
// matcher runs last because its fallback claims any remaining
// "<player> <text>" body.
func DefaultMatchers() []NamedMatcher {
	return []NamedMatcher{
		{Name: string(event.JoinLeave), Matcher: builtin(match.JoinLeave)},
		{Name: string(event.Advancement), Matcher: builtin(match.Advancement)},
		{Name: string(event.Chat), Matcher: builtin(match.Chat)},
		{Name: string(event.Death), Matcher: builtin(match.Death)},
	}
}

// builtin adapts an internal match function to the Matcher interface.
func builtin(f func(logline.Line) (event.Event, bool)) Matcher {
	return MatcherFunc(func(_ context.Context, l logline.Line) (MatchResult, error) {
		if ev, ok := f(l); ok {
			return MatchResult{Event: ev, Matched: true}, nil
		}
		return MatchResult{}, nil
	})
}

// MatchLine runs a single raw log line through the built-in matchers.
//
// Return values:
//   - (*Event, nil): the line carries a recognized event
//   - (nil, nil): the line is not a recognized event (not an error)
//
// The line carries no date, so the event timestamp holds the time of day on
// the zero date. Use Events or Aggregate for real runs; this is a
// convenience for spot checks.
//
// Example:
//
//	line := "[18:40:41] [Server thread/INFO]: Alice joined the game"
//	ev, err := mclog.MatchLine(line)
//	if err != nil {
//	    log.Printf("match error: %v", err)
//	} else if ev != nil {
//	    fmt.Printf("%s: %s %s\n", ev.Kind, ev.Player, ev.Direction)
//	}
func MatchLine(line string) (*event.Event, error) {
	cur := logline.NewCursor(time.Time{})
	l := logline.Tokenize(cur, "", 1, line)

	ctx := context.Background()
	for _, nm := range DefaultMatchers() {
		res, err := nm.Matcher.Match(ctx, l)
		if err != nil {
			return nil, err
		}
		if res.Matched {
			ev := res.Event
			return &ev, nil
		}
	}
	return nil, nil
}
