package mclog

import (
	"context"
	"errors"
	"iter"

	"github.com/mclog/mclog-go/internal/logfinder"
	"github.com/mclog/mclog-go/pkg/mclog/event"
	"github.com/mclog/mclog-go/pkg/mclog/logline"
)

// pipeline wires sources, registry and filters for one run.
type pipeline struct {
	cfg     *config
	reg     *Registry
	srcs    []logfinder.Source
	skipped int
}

// newPipeline validates the configuration and resolves everything that can
// fail before the first line is read.
func newPipeline(cfg *config) (*pipeline, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	reg := NewRegistry()
	reg.DetectAmbiguity = cfg.detectAmbiguity
	reg.Logger = cfg.logger

	// Built-in matchers whose kind is filtered out are not registered at
	// all, so their regex work is skipped entirely.
	for _, nm := range DefaultMatchers() {
		if !cfg.filter.wants(event.Kind(nm.Name)) {
			continue
		}
		if err := reg.Register(nm.Name, nm.Matcher); err != nil {
			return nil, err
		}
	}
	for _, nm := range cfg.matchers {
		if err := reg.Register(nm.Name, nm.Matcher); err != nil {
			return nil, err
		}
	}

	srcs, err := cfg.sources()
	if err != nil {
		return nil, err
	}

	return &pipeline{cfg: cfg, reg: reg, srcs: srcs}, nil
}

// lines returns the merged line stream over the pipeline's sources.
func (p *pipeline) lines(ctx context.Context) iter.Seq2[logline.Line, error] {
	return func(yield func(logline.Line, error) bool) {
		mergeLines(ctx, p.srcs, yield)
	}
}

// run yields matched events in stream order. Source read failures pass
// through as *SourceError with a zero event and the stream continues
// (or stops, with WithStrict); any other error is fatal and ends the
// stream.
func (p *pipeline) run(ctx context.Context) iter.Seq2[event.Event, error] {
	return func(yield func(event.Event, error) bool) {
		defer p.reg.Flush()

		for line, err := range p.lines(ctx) {
			if err != nil {
				var srcErr *SourceError
				if errors.As(err, &srcErr) {
					p.skipped++
					if !yield(event.Event{}, err) {
						return
					}
					if p.cfg.strict {
						return
					}
					continue
				}
				yield(event.Event{}, err)
				return
			}

			res, err := p.reg.Dispatch(ctx, line)
			if err != nil {
				yield(event.Event{}, err)
				return
			}
			if !res.Matched {
				continue
			}

			ev := res.Event
			if !p.cfg.filter.wants(ev.Kind) {
				continue
			}
			if !p.cfg.inTimeRange(ev.Timestamp) {
				continue
			}
			if p.cfg.eventFilter != nil && !p.cfg.eventFilter(ev) {
				continue
			}
			if p.cfg.includeRawLine && ev.Raw == "" {
				ev.Raw = line.Raw
			}

			if !yield(ev, nil) {
				return
			}
		}
	}
}

// stats assembles the final counters once the stream is drained.
func (p *pipeline) stats() Stats {
	s := p.reg.Stats()
	s.Sources = len(p.srcs)
	s.SourcesSkipped = p.skipped
	return s
}

// Events returns the matched events of one batch pass over the log archive,
// in chronological order.
//
// Errors yielded with a zero event are either *SourceError warnings (the
// stream continues) or fatal (invalid options, no log files, context
// cancellation; the stream ends). Ranging again runs a fresh pass.
//
// Example:
//
//	for ev, err := range mclog.Events(ctx, mclog.WithLogDir("logs")) {
//	    if err != nil {
//	        log.Printf("warning: %v", err)
//	        continue
//	    }
//	    fmt.Println(ev.Kind, ev.Player)
//	}
func Events(ctx context.Context, opts ...Option) iter.Seq2[event.Event, error] {
	cfg := applyOptions(opts)
	return func(yield func(event.Event, error) bool) {
		p, err := newPipeline(cfg)
		if err != nil {
			yield(event.Event{}, err)
			return
		}
		for ev, err := range p.run(ctx) {
			if !yield(ev, err) {
				return
			}
		}
	}
}

// Aggregate performs one batch pass over the log archive and groups the
// matched events by kind.
//
// Individual unreadable sources are skipped and reported in
// Result.Warnings (unless WithStrict is set). Fatal are invalid options,
// ErrLogDirNotFound, ErrNoLogFiles and context cancellation.
func Aggregate(ctx context.Context, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)
	p, err := newPipeline(cfg)
	if err != nil {
		return nil, err
	}

	agg := NewAggregator()
	var warnings []error

	for ev, err := range p.run(ctx) {
		if err != nil {
			var srcErr *SourceError
			if errors.As(err, &srcErr) && !cfg.strict {
				cfg.log().Warn("skipping unreadable log source", "error", err)
				warnings = append(warnings, err)
				continue
			}
			return nil, err
		}
		agg.Add(ev)
	}

	return agg.Result(p.stats(), warnings), nil
}
