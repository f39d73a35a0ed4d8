// Package filter compiles event filter expressions.
//
// Expressions use expr-lang syntax and evaluate against one event at a
// time, e.g. `Kind == "death" && Player == "Alice"` or
// `Message matches "creeper"`.
package filter

import (
	"fmt"
	"time"

	"github.com/expr-lang/expr"

	"github.com/mclog/mclog-go/pkg/mclog/event"
)

// Env is the environment one event exposes to a filter expression.
// Typed event fields are flattened to plain strings so expressions
// stay free of conversions.
type Env struct {
	Kind            string
	Player          string
	Message         string
	Cause           string
	Killer          string
	Advancement     string
	AdvancementType string
	Direction       string
	Timestamp       time.Time
	Data            map[string]string
}

// Compile compiles src into a predicate over events. The returned
// function is safe for concurrent use. Events whose evaluation fails
// at runtime are treated as not matching.
func Compile(src string) (func(event.Event) bool, error) {
	program, err := expr.Compile(src, expr.Env(Env{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("failed to compile filter expression: %w", err)
	}

	return func(ev event.Event) bool {
		out, err := expr.Run(program, envFor(ev))
		if err != nil {
			return false
		}
		matched, ok := out.(bool)
		return ok && matched
	}, nil
}

func envFor(ev event.Event) Env {
	return Env{
		Kind:            string(ev.Kind),
		Player:          ev.Player,
		Message:         ev.Message,
		Cause:           ev.Cause,
		Killer:          ev.Killer,
		Advancement:     ev.Advancement,
		AdvancementType: string(ev.AdvancementType),
		Direction:       string(ev.Direction),
		Timestamp:       ev.Timestamp,
		Data:            ev.Data,
	}
}
