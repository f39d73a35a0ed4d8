package pattern

import (
	"context"
	"fmt"
	"regexp"

	"github.com/mclog/mclog-go/pkg/mclog"
	"github.com/mclog/mclog-go/pkg/mclog/event"
	"github.com/mclog/mclog-go/pkg/mclog/logline"
)

// RegexMatcher is a Matcher implementation that matches line bodies using
// user-defined regular expression patterns from a YAML file.
//
// Patterns are tried in declaration order and the first match wins, the
// same rule the registry applies across matchers. Named capture groups
// fill the corresponding event fields; group names without an event field
// are collected into Event.Data.
//
// RegexMatcher is safe for concurrent use by multiple goroutines.
type RegexMatcher struct {
	patterns []*compiledPattern
}

// compiledPattern represents a single compiled pattern with its metadata.
type compiledPattern struct {
	id    string
	kind  event.Kind
	regex *regexp.Regexp
	named bool // whether the regex has any named capture group
}

// NewRegexMatcher creates a RegexMatcher from a pattern file.
// This function compiles all regular expressions and validates their
// syntax. Returns an error if any pattern has invalid regex syntax.
//
// Example:
//
//	pf, err := pattern.Load("patterns.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	m, err := pattern.NewRegexMatcher(pf)
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewRegexMatcher(pf *File) (*RegexMatcher, error) {
	if pf == nil {
		return nil, fmt.Errorf("pattern file is nil")
	}

	patterns := make([]*compiledPattern, 0, len(pf.Patterns))
	for i, p := range pf.Patterns {
		re, err := regexp.Compile(p.Regex)
		if err != nil {
			return nil, &PatternError{
				Index:   i,
				ID:      p.ID,
				Field:   "regex",
				Message: fmt.Sprintf("invalid regular expression: %v", err),
				Cause:   err,
			}
		}

		named := false
		for _, name := range re.SubexpNames() {
			if name != "" {
				named = true
				break
			}
		}

		patterns = append(patterns, &compiledPattern{
			id:    p.ID,
			kind:  event.Kind(p.Kind),
			regex: re,
			named: named,
		})
	}

	return &RegexMatcher{patterns: patterns}, nil
}

// NewRegexMatcherFromFile is a convenience function that loads a pattern
// file and creates a RegexMatcher in one step.
//
// Example:
//
//	m, err := pattern.NewRegexMatcherFromFile("patterns.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
func NewRegexMatcherFromFile(path string) (*RegexMatcher, error) {
	pf, err := Load(path)
	if err != nil {
		return nil, err
	}
	return NewRegexMatcher(pf)
}

// Kinds returns the distinct event kinds this matcher can produce, in
// declaration order.
func (m *RegexMatcher) Kinds() []event.Kind {
	seen := make(map[event.Kind]bool, len(m.patterns))
	var kinds []event.Kind
	for _, cp := range m.patterns {
		if seen[cp.kind] {
			continue
		}
		seen[cp.kind] = true
		kinds = append(kinds, cp.kind)
	}
	return kinds
}

// Match implements the mclog.Matcher interface. It tries the patterns in
// declaration order against the line body and builds an event from the
// first match.
func (m *RegexMatcher) Match(_ context.Context, l logline.Line) (mclog.MatchResult, error) {
	for _, cp := range m.patterns {
		matches := cp.regex.FindStringSubmatch(l.Body)
		if matches == nil {
			continue
		}

		ev := event.Event{
			Kind:      cp.kind,
			Timestamp: l.Timestamp,
		}

		if cp.named {
			names := cp.regex.SubexpNames()
			for i := 1; i < len(names) && i < len(matches); i++ {
				if names[i] == "" {
					continue
				}
				assignGroup(&ev, names[i], matches[i])
			}
		}

		return mclog.MatchResult{Event: ev, Matched: true}, nil
	}

	return mclog.MatchResult{}, nil
}

// assignGroup routes one named capture into its event field, or into Data
// when no field carries that name.
func assignGroup(ev *event.Event, name, value string) {
	switch name {
	case "player":
		ev.Player = value
	case "message":
		ev.Message = value
	case "cause":
		ev.Cause = value
	case "killer":
		ev.Killer = value
	case "advancement":
		ev.Advancement = value
	case "direction":
		ev.Direction = event.Direction(value)
	default:
		if ev.Data == nil {
			ev.Data = make(map[string]string)
		}
		ev.Data[name] = value
	}
}
