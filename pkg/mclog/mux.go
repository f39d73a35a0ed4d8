package mclog

import (
	"bufio"
	"context"
	"io"
	"iter"

	"github.com/mclog/mclog-go/internal/logfinder"
	"github.com/mclog/mclog-go/pkg/mclog/logline"
)

// maxLineBytes caps a single log line during scanning. Command output and
// data dumps can produce very long lines; the default bufio limit is too
// small for them.
const maxLineBytes = 1024 * 1024

// sources resolves the run's log files: the explicit path list when given,
// otherwise directory discovery.
func (c *config) sources() ([]logfinder.Source, error) {
	if len(c.paths) > 0 {
		srcs := make([]logfinder.Source, 0, len(c.paths))
		for _, p := range c.paths {
			src, err := logfinder.FromPath(p)
			if err != nil {
				return nil, err
			}
			srcs = append(srcs, src)
		}
		return srcs, nil
	}

	dir, err := logfinder.FindLogDir(c.logDir)
	if err != nil {
		return nil, err
	}
	return logfinder.List(dir)
}

// Lines returns the tokenized line stream of the run's log files, merged
// into timestamp order across sources. Ties keep source enumeration order,
// so a rotation archive always precedes the current log on equal times.
//
// Errors yielded with a zero Line are either fatal (invalid options, no log
// files, context cancellation) or per-source read failures (*SourceError);
// after a *SourceError the stream continues with the next source.
//
// The sequence is finite and can be ranged over again for a fresh pass.
func Lines(ctx context.Context, opts ...Option) iter.Seq2[logline.Line, error] {
	cfg := applyOptions(opts)
	return func(yield func(logline.Line, error) bool) {
		if err := cfg.validate(); err != nil {
			yield(logline.Line{}, err)
			return
		}
		srcs, err := cfg.sources()
		if err != nil {
			yield(logline.Line{}, err)
			return
		}
		mergeLines(ctx, srcs, yield)
	}
}

// stream is one open source taking part in the merge.
type stream struct {
	src    logfinder.Source
	rc     io.ReadCloser
	sc     *bufio.Scanner
	cur    *logline.Cursor
	number int
	head   logline.Line
	err    error
	done   bool
}

// advance reads the next line into head. On end of input or read failure it
// closes the source and records any error.
func (s *stream) advance() {
	if s.sc.Scan() {
		s.number++
		s.head = logline.Tokenize(s.cur, s.src.Name, s.number, s.sc.Text())
		return
	}
	s.done = true
	if err := s.sc.Err(); err != nil {
		s.err = &SourceError{Source: s.src.Name, Err: err}
	}
	s.rc.Close()
}

// mergeLines yields the sources' lines in timestamp order. Each source gets
// its own cursor seeded from the source day, so dates resolve independently
// per file. Sources that fail to open yield a *SourceError and are skipped.
func mergeLines(ctx context.Context, srcs []logfinder.Source, yield func(logline.Line, error) bool) {
	var active []*stream
	defer func() {
		for _, s := range active {
			if !s.done {
				s.rc.Close()
			}
		}
	}()

	for _, src := range srcs {
		rc, err := src.Open()
		if err != nil {
			if !yield(logline.Line{}, &SourceError{Source: src.Name, Err: err}) {
				return
			}
			continue
		}

		sc := bufio.NewScanner(rc)
		sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

		s := &stream{src: src, rc: rc, sc: sc, cur: logline.NewCursor(src.Day)}
		s.advance()
		if s.done {
			if s.err != nil && !yield(logline.Line{}, s.err) {
				return
			}
			continue
		}
		active = append(active, s)
	}

	// Sources are few, so a linear minimum scan beats heap bookkeeping.
	// Scanning left to right with a strict Before keeps ties on the
	// earlier-listed source.
	for len(active) > 0 {
		if err := ctx.Err(); err != nil {
			yield(logline.Line{}, err)
			return
		}

		min := 0
		for i := 1; i < len(active); i++ {
			if active[i].head.Timestamp.Before(active[min].head.Timestamp) {
				min = i
			}
		}

		s := active[min]
		if !yield(s.head, nil) {
			return
		}

		s.advance()
		if s.done {
			if s.err != nil && !yield(logline.Line{}, s.err) {
				return
			}
			active = append(active[:min], active[min+1:]...)
		}
	}
}
