package mclog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"

	"github.com/mclog/mclog-go/pkg/mclog/event"
	"github.com/mclog/mclog-go/pkg/mclog/logline"
)

// discardLogger is used when no logger is configured.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Stats counts what a registry saw during a run.
type Stats struct {
	// Lines is the number of lines offered to Dispatch.
	Lines int

	// Matched counts extracted events per kind.
	Matched map[event.Kind]int

	// Unmatched counts lines no matcher claimed.
	Unmatched int

	// Ambiguous counts lines that more than one matcher would have
	// claimed. Only populated when ambiguity detection is enabled.
	Ambiguous int

	// Errors counts matcher failures that were skipped over.
	Errors int

	// Sources is the number of log files enumerated for the run.
	Sources int

	// SourcesSkipped is the number of log files that could not be read.
	SourcesSkipped int
}

// registered pairs a matcher with its registration name.
type registered struct {
	name    string
	matcher Matcher
}

// heldLine is a parked line waiting for its successor.
type heldLine struct {
	line  logline.Line
	index int
	name  string
}

// Registry dispatches lines to matchers in registration order. The first
// matcher that claims a line wins and later matchers are not consulted,
// except diagnostically when DetectAmbiguity is set.
//
// A Registry is not safe for concurrent use; each run builds its own.
type Registry struct {
	// DetectAmbiguity keeps probing the remaining matchers after a match
	// and counts lines that more than one matcher claims. Costs an extra
	// pass per matched line, so it is off by default.
	DetectAmbiguity bool

	// MatchContinuations offers prefix-less continuation lines (stack
	// traces and the like) to the matchers instead of counting them
	// unmatched outright.
	MatchContinuations bool

	// Logger receives dispatch diagnostics. Nil disables logging.
	Logger *slog.Logger

	matchers []registered
	held     *heldLine
	stats    Stats
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a matcher under a unique name. Dispatch order is
// registration order.
func (r *Registry) Register(name string, m Matcher) error {
	if name == "" {
		return fmt.Errorf("matcher name must not be empty")
	}
	if m == nil {
		return fmt.Errorf("matcher %q is nil", name)
	}
	for _, reg := range r.matchers {
		if reg.name == name {
			return fmt.Errorf("%w: %s", ErrDuplicateMatcher, name)
		}
	}
	r.matchers = append(r.matchers, registered{name: name, matcher: m})
	return nil
}

// Names returns the registered matcher names in dispatch order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.matchers))
	for i, reg := range r.matchers {
		names[i] = reg.name
	}
	return names
}

// Dispatch offers one line to the matchers.
//
// When a previous call parked a line (a matcher returned Hold), the held
// line's body is first extended with this line and re-offered to the holding
// matcher; if that misses, the held line counts unmatched and this line goes
// through the normal chain.
//
// The returned result is unmatched for lines nothing claimed. The only error
// returned is context cancellation; matcher errors are logged, counted in
// Stats.Errors and skipped.
func (r *Registry) Dispatch(ctx context.Context, line logline.Line) (MatchResult, error) {
	r.stats.Lines++

	if r.held != nil {
		held := r.held
		r.held = nil

		combined := held.line
		combined.Body = combined.Body + "\n" + line.Body

		res, err := r.matchers[held.index].matcher.Match(ctx, combined)
		if err != nil {
			r.stats.Errors++
			r.log().Warn("matcher failed on held line",
				"matcher", held.name, "source", combined.Source, "line", combined.Number, "error", err)
		} else if res.Matched {
			if res.Event.Kind == "" {
				res.Event.Kind = event.Kind(held.name)
			}
			r.count(res.Event.Kind)
			return res, nil
		}

		r.stats.Unmatched++
		r.log().Debug("held line unmatched",
			"matcher", held.name, "source", held.line.Source, "line", held.line.Number)
	}

	if line.Continuation() && !r.MatchContinuations {
		r.stats.Unmatched++
		return MatchResult{}, nil
	}

	for i, reg := range r.matchers {
		if err := ctx.Err(); err != nil {
			return MatchResult{}, err
		}

		res, err := reg.matcher.Match(ctx, line)
		if err != nil {
			r.stats.Errors++
			r.log().Warn("matcher failed",
				"matcher", reg.name, "source", line.Source, "line", line.Number, "error", err)
			continue
		}
		if res.Hold {
			r.held = &heldLine{line: line, index: i, name: reg.name}
			return MatchResult{}, nil
		}
		if res.Matched {
			if res.Event.Kind == "" {
				res.Event.Kind = event.Kind(reg.name)
			}
			r.count(res.Event.Kind)
			if r.DetectAmbiguity {
				r.probe(ctx, i+1, line, reg.name)
			}
			return res, nil
		}
	}

	r.stats.Unmatched++
	return MatchResult{}, nil
}

// Flush settles a line still parked at end of stream. With no successor to
// extend it, the held line counts unmatched.
func (r *Registry) Flush() {
	if r.held == nil {
		return
	}
	r.stats.Unmatched++
	r.log().Debug("held line unmatched at end of stream",
		"matcher", r.held.name, "source", r.held.line.Source, "line", r.held.line.Number)
	r.held = nil
}

// probe offers the line to the matchers after the winner, counting the line
// ambiguous if any of them also claims it. Diagnostic only: probe results
// and probe errors never surface as events or error counts.
func (r *Registry) probe(ctx context.Context, from int, line logline.Line, winner string) {
	ambiguous := false
	for _, reg := range r.matchers[from:] {
		if ctx.Err() != nil {
			return
		}
		res, err := reg.matcher.Match(ctx, line)
		if err != nil || !res.Matched {
			continue
		}
		ambiguous = true
		r.log().Warn("ambiguous line matched by multiple matchers",
			"winner", winner, "also", reg.name, "source", line.Source, "line", line.Number)
	}
	if ambiguous {
		r.stats.Ambiguous++
	}
}

// Stats returns a copy of the counters.
func (r *Registry) Stats() Stats {
	s := r.stats
	s.Matched = maps.Clone(r.stats.Matched)
	return s
}

// Reset clears the counters and any held line. Registered matchers stay.
func (r *Registry) Reset() {
	r.stats = Stats{}
	r.held = nil
}

func (r *Registry) count(kind event.Kind) {
	if r.stats.Matched == nil {
		r.stats.Matched = make(map[event.Kind]int)
	}
	r.stats.Matched[kind]++
}

func (r *Registry) log() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return discardLogger
}
