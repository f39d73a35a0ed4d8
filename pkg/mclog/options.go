package mclog

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/mclog/mclog-go/pkg/mclog/event"
)

// Option configures Events and Aggregate using the functional options
// pattern.
type Option func(*config)

// config holds internal configuration for a run.
type config struct {
	logDir          string
	paths           []string
	filter          *kindFilter
	matchers        []NamedMatcher
	logger          *slog.Logger
	detectAmbiguity bool
	includeRawLine  bool
	eventFilter     func(event.Event) bool
	since           time.Time
	until           time.Time
	strict          bool
}

// applyOptions applies functional options to a fresh config.
func applyOptions(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// validate checks for invalid option combinations.
func (c *config) validate() error {
	if c.logDir != "" && len(c.paths) > 0 {
		return fmt.Errorf("WithLogDir and WithPaths are mutually exclusive")
	}
	for _, p := range c.paths {
		if p == "" {
			return fmt.Errorf("log path must not be empty")
		}
	}
	if c.filter != nil && len(c.filter.include) > 0 && len(c.filter.exclude) > 0 {
		return fmt.Errorf("include and exclude kinds are mutually exclusive")
	}
	for _, nm := range c.matchers {
		if nm.Name == "" {
			return fmt.Errorf("custom matcher name must not be empty")
		}
		if nm.Matcher == nil {
			return fmt.Errorf("custom matcher %q is nil", nm.Name)
		}
	}
	if !c.since.IsZero() && !c.until.IsZero() && c.until.Before(c.since) {
		return fmt.Errorf("until (%v) is before since (%v)", c.until, c.since)
	}
	return nil
}

// kindFilter is a compiled include/exclude set over event kinds.
// Exclude takes precedence over include.
type kindFilter struct {
	include map[event.Kind]struct{}
	exclude map[event.Kind]struct{}
}

// wants reports whether events of kind pass the filter.
func (f *kindFilter) wants(kind event.Kind) bool {
	if f == nil {
		return true
	}
	if _, excluded := f.exclude[kind]; excluded {
		return false
	}
	if len(f.include) > 0 {
		_, included := f.include[kind]
		return included
	}
	return true
}

// ensureFilter returns the config's filter, allocating it on first use.
func (c *config) ensureFilter() *kindFilter {
	if c.filter == nil {
		c.filter = &kindFilter{}
	}
	return c.filter
}

// WithLogDir sets the server logs directory.
// If not set, the LOG_DIRECTORY environment variable is tried, then ./logs.
func WithLogDir(dir string) Option {
	return func(c *config) {
		c.logDir = dir
	}
}

// WithPaths reads the given log files instead of discovering a directory.
// Files keep the given order for provenance; gzip archives are recognized by
// their .gz suffix.
func WithPaths(paths ...string) Option {
	return func(c *config) {
		c.paths = append(c.paths, paths...)
	}
}

// WithIncludeKinds keeps only events of the given kinds. Built-in matchers
// for other kinds are not registered at all. If called multiple times, only
// the last call takes effect.
func WithIncludeKinds(kinds ...event.Kind) Option {
	return func(c *config) {
		f := c.ensureFilter()
		f.include = make(map[event.Kind]struct{}, len(kinds))
		for _, k := range kinds {
			f.include[k] = struct{}{}
		}
	}
}

// WithExcludeKinds drops events of the given kinds. Built-in matchers for
// excluded kinds are not registered at all. If called multiple times, only
// the last call takes effect.
func WithExcludeKinds(kinds ...event.Kind) Option {
	return func(c *config) {
		f := c.ensureFilter()
		f.exclude = make(map[event.Kind]struct{}, len(kinds))
		for _, k := range kinds {
			f.exclude[k] = struct{}{}
		}
	}
}

// WithMatcher appends a custom matcher after the built-in ones. Repeated
// calls append in order. The name must be unique across the run and becomes
// the event kind when a matched event carries none.
func WithMatcher(name string, m Matcher) Option {
	return func(c *config) {
		c.matchers = append(c.matchers, NamedMatcher{Name: name, Matcher: m})
	}
}

// WithLogger sets a custom logger for run diagnostics.
// If logger is nil, logging is disabled (default behavior).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithAmbiguityDetection keeps probing the remaining matchers after a match
// and counts lines claimed by more than one matcher in Stats.Ambiguous.
// Costs an extra matcher pass per matched line. Default: false.
func WithAmbiguityDetection(enable bool) Option {
	return func(c *config) {
		c.detectAmbiguity = enable
	}
}

// WithIncludeRawLine includes the original log line in Event.Raw.
// Default: false.
func WithIncludeRawLine(include bool) Option {
	return func(c *config) {
		c.includeRawLine = include
	}
}

// WithEventFilter keeps only events for which f returns true. The filter
// runs after kind filtering, so it only sees events whose kind survived.
func WithEventFilter(f func(event.Event) bool) Option {
	return func(c *config) {
		c.eventFilter = f
	}
}

// WithSince keeps only events at or after the given time.
func WithSince(since time.Time) Option {
	return func(c *config) {
		c.since = since
	}
}

// WithUntil keeps only events before the given time.
func WithUntil(until time.Time) Option {
	return func(c *config) {
		c.until = until
	}
}

// WithStrict fails the run on the first unreadable log source instead of
// skipping it with a warning. Default: false.
func WithStrict(strict bool) Option {
	return func(c *config) {
		c.strict = strict
	}
}

// log returns the configured logger, or the discard logger.
func (c *config) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return discardLogger
}

// inTimeRange reports whether ts passes the since/until bounds.
// since is inclusive, until is exclusive; zero bounds are open.
func (c *config) inTimeRange(ts time.Time) bool {
	if !c.since.IsZero() && ts.Before(c.since) {
		return false
	}
	if !c.until.IsZero() && !ts.Before(c.until) {
		return false
	}
	return true
}
