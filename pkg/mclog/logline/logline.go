// Package logline tokenizes raw Minecraft server log lines into timestamp,
// category and message body.
//
// This package is separated from the main mclog package so that matcher
// implementations can depend on the tokenized line shape without importing
// pkg/mclog itself.
package logline

import "time"

// Category is the severity tag of a log line. The empty string means the line
// carried a timestamp but no bracketed thread/level tag.
type Category string

const (
	// CategoryInfo is an informational line ("[Server thread/INFO]").
	CategoryInfo Category = "info"

	// CategoryWarn is a warning line.
	CategoryWarn Category = "warn"

	// CategoryError is an error line.
	CategoryError Category = "error"

	// CategoryDebug is a debug line.
	CategoryDebug Category = "debug"

	// CategoryFatal is a fatal line.
	CategoryFatal Category = "fatal"

	// CategoryUnknown marks a line with no recognizable prefix at all, such
	// as a stack trace continuation. These lines keep the carried-forward
	// timestamp of the previous line and are excluded from matching unless a
	// matcher asks to extend a held line.
	CategoryUnknown Category = "unknown"
)

// Line is one tokenized log line.
type Line struct {
	// Timestamp is the full timestamp: the source's date context combined
	// with the in-line time of day. Carried forward from the previous line
	// when the line has no parseable time.
	Timestamp time.Time

	// TimeKnown reports whether Timestamp was parsed from this line rather
	// than carried forward.
	TimeKnown bool

	// Category is the severity tag, or empty when the line had none.
	Category Category

	// Thread is the logging thread ("Server thread"), when present.
	Thread string

	// Logger is the logger name from the Forge-era second bracket
	// ("net.minecraft.server.dedicated.DedicatedServer"), when present.
	Logger string

	// Body is the message text. Trailing whitespace is preserved.
	Body string

	// Raw is the whole line as read, minus a trailing carriage return.
	Raw string

	// Source identifies the originating file.
	Source string

	// Number is the 1-based line number within Source.
	Number int
}

// Continuation reports whether the line lacked any recognizable prefix and
// therefore only exists to extend a preceding logical line.
func (l Line) Continuation() bool {
	return l.Category == CategoryUnknown
}
