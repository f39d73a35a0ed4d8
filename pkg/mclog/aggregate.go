package mclog

import (
	"sort"

	"github.com/mclog/mclog-go/pkg/mclog/event"
)

// Aggregator groups matched events by kind, preserving arrival order within
// each kind. It belongs to a single run and a single goroutine.
type Aggregator struct {
	byKind map[event.Kind][]event.Event
	total  int
}

// NewAggregator returns an empty aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{byKind: make(map[event.Kind][]event.Event)}
}

// Add appends ev to its kind's sequence.
func (a *Aggregator) Add(ev event.Event) {
	a.byKind[ev.Kind] = append(a.byKind[ev.Kind], ev)
	a.total++
}

// Len returns the total number of aggregated events.
func (a *Aggregator) Len() int {
	return a.total
}

// Kinds returns the kinds holding at least one event: base kinds in their
// canonical order first, then custom kinds sorted by name.
func (a *Aggregator) Kinds() []event.Kind {
	return orderedKinds(a.byKind)
}

// Events returns the ordered events of one kind. The returned slice is the
// aggregator's own; callers must not modify it.
func (a *Aggregator) Events(kind event.Kind) []event.Event {
	return a.byKind[kind]
}

// Result seals the aggregation. The result takes ownership of the event
// slices; the aggregator must not be used afterward.
func (a *Aggregator) Result(stats Stats, warnings []error) *Result {
	return &Result{Events: a.byKind, Stats: stats, Warnings: warnings}
}

// Result is the outcome of one aggregation run.
type Result struct {
	// Events maps each kind to its chronologically ordered events.
	Events map[event.Kind][]event.Event

	// Stats holds the run counters.
	Stats Stats

	// Warnings lists non-fatal problems encountered during the run, such
	// as skipped sources.
	Warnings []error
}

// Kinds returns the kinds present in the result: base kinds in canonical
// order first, then custom kinds sorted by name.
func (r *Result) Kinds() []event.Kind {
	return orderedKinds(r.Events)
}

// Total returns the number of events across all kinds.
func (r *Result) Total() int {
	n := 0
	for _, evs := range r.Events {
		n += len(evs)
	}
	return n
}

func orderedKinds(m map[event.Kind][]event.Event) []event.Kind {
	base := make(map[event.Kind]bool)
	var kinds []event.Kind
	for _, k := range event.BaseKinds() {
		base[k] = true
		if len(m[k]) > 0 {
			kinds = append(kinds, k)
		}
	}

	var custom []event.Kind
	for k, evs := range m {
		if !base[k] && len(evs) > 0 {
			custom = append(custom, k)
		}
	}
	sort.Slice(custom, func(i, j int) bool { return custom[i] < custom[j] })

	return append(kinds, custom...)
}
