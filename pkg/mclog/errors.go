package mclog

import (
	"errors"
	"fmt"

	"github.com/mclog/mclog-go/internal/logfinder"
)

// Discovery sentinels, re-exported so callers need not import internal
// packages to test for them.
var (
	// ErrLogDirNotFound is returned when no log directory resolves from
	// the explicit option, the LOG_DIRECTORY environment variable, or the
	// ./logs default.
	ErrLogDirNotFound = logfinder.ErrLogDirNotFound

	// ErrNoLogFiles is returned when the resolved directory contains no
	// log files at all. This is the only unreadable-input condition that
	// fails a run; individual bad files are skipped with a warning.
	ErrNoLogFiles = logfinder.ErrNoLogFiles
)

// ErrDuplicateMatcher is returned when a matcher name is registered twice.
var ErrDuplicateMatcher = errors.New("duplicate matcher name")

// SourceError reports a log file that could not be opened or read. The
// aggregation run continues past it; the error surfaces as a warning.
type SourceError struct {
	// Source is the file name of the failed source.
	Source string

	// Err is the underlying failure.
	Err error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("log source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}
