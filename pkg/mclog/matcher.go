package mclog

import (
	"context"

	"github.com/mclog/mclog-go/pkg/mclog/event"
	"github.com/mclog/mclog-go/pkg/mclog/logline"
)

// MatchResult represents the outcome of offering a line to a matcher.
type MatchResult struct {
	// Event is the extracted event. Only meaningful when Matched is true.
	Event event.Event

	// Matched indicates whether the matcher claimed the line.
	Matched bool

	// Hold asks the registry to park the line and re-offer it to this
	// matcher with the next line's body appended, for events the server
	// splits across lines. The re-offer is the final verdict; a second
	// hold counts as a miss. Built-in matchers never set Hold.
	Hold bool
}

// Matcher is the interface for log line matchers.
// Implementations include the built-in matchers from DefaultMatchers,
// pattern.RegexMatcher for YAML-declared regex patterns, and wasm plugins.
type Matcher interface {
	// Match inspects a single tokenized line.
	// Returns MatchResult with Matched=true if the line carries this
	// matcher's event. Returns error only for unexpected failures, never
	// for lines that simply do not match.
	Match(ctx context.Context, line logline.Line) (MatchResult, error)
}

// MatcherFunc is an adapter to allow ordinary functions to be used as
// Matchers.
type MatcherFunc func(ctx context.Context, line logline.Line) (MatchResult, error)

// Match implements the Matcher interface.
func (f MatcherFunc) Match(ctx context.Context, line logline.Line) (MatchResult, error) {
	return f(ctx, line)
}
