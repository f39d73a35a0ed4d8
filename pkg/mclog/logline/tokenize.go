package logline

import (
	"regexp"
	"strings"
	"time"
)

// Compiled regex patterns for line prefixes.
var (
	// Matches: "[18:02:10] [Server thread/INFO]: Done (3.592s)!"
	// Matches: "[18:36:38] [Server thread/INFO] [net.minecraft.server.dedicated.DedicatedServer]: Done"
	// Captures: (1) time, (2) thread, (3) level, (4) logger (optional), (5) body
	entryPattern = regexp.MustCompile(
		`^\[(\d{2}:\d{2}:\d{2})\] \[([^/\]]+)/([A-Za-z]+)\](?: \[([^\]]+)\])?: (.*)$`,
	)

	// Matches: "[12:00:00] Alice joined the game"
	// Captures: (1) time, (2) body
	bareEntryPattern = regexp.MustCompile(
		`^\[(\d{2}:\d{2}:\d{2})\] (.*)$`,
	)
)

// rolloverSlack is how far the time of day must jump backwards before the
// cursor assumes a midnight crossing. Smaller decreases happen when threads
// write slightly out of order and must not advance the date.
const rolloverSlack = 12 * time.Hour

// Cursor carries the date context for one log source. Minecraft log lines
// only record the time of day; the date comes from the source (rotated file
// name or modification date) and advances when the time of day wraps past
// midnight within the file.
//
// A Cursor belongs to a single source and a single pass. It is deliberately
// not shared: every source gets its own so that runs and tests never
// interfere through package state.
type Cursor struct {
	year  int
	month time.Month
	day   int
	loc   *time.Location

	last    time.Time
	lastTOD time.Duration
	hasLast bool
}

// NewCursor returns a cursor seeded with day's date. A zero day resolves
// times against the zero date, which keeps relative ordering intact when no
// date hint exists.
func NewCursor(day time.Time) *Cursor {
	c := &Cursor{loc: day.Location()}
	c.year, c.month, c.day = day.Date()
	return c
}

// resolve combines the cursor's date with an in-line time of day, advancing
// the date across midnight boundaries.
func (c *Cursor) resolve(hour, min, sec int) time.Time {
	tod := time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute + time.Duration(sec)*time.Second
	if c.hasLast && c.lastTOD-tod > rolloverSlack {
		next := time.Date(c.year, c.month, c.day+1, 0, 0, 0, 0, c.loc)
		c.year, c.month, c.day = next.Date()
	}
	t := time.Date(c.year, c.month, c.day, hour, min, sec, 0, c.loc)
	c.last = t
	c.lastTOD = tod
	c.hasLast = true
	return t
}

// carried returns the timestamp for a line without a parseable time: the
// previous line's timestamp, or midnight of the seed date before any line
// resolved.
func (c *Cursor) carried() time.Time {
	if c.hasLast {
		return c.last
	}
	return time.Date(c.year, c.month, c.day, 0, 0, 0, 0, c.loc)
}

// Tokenize splits one raw line into its timestamp, category and body.
// It never fails: lines without a recognizable prefix come back as
// CategoryUnknown continuations with the carried-forward timestamp, and a
// malformed time degrades the same way while the rest of the line still
// tokenizes.
func Tokenize(cur *Cursor, source string, number int, raw string) Line {
	// Trim trailing CR for Windows CRLF compatibility. Other trailing
	// whitespace is part of the body.
	raw = strings.TrimRight(raw, "\r")

	l := Line{Source: source, Number: number, Raw: raw}

	if m := entryPattern.FindStringSubmatch(raw); m != nil {
		l.Timestamp, l.TimeKnown = parseClock(cur, m[1])
		l.Thread = m[2]
		l.Category = categoryFromLevel(m[3])
		l.Logger = m[4]
		l.Body = m[5]
		return l
	}

	if m := bareEntryPattern.FindStringSubmatch(raw); m != nil {
		l.Timestamp, l.TimeKnown = parseClock(cur, m[1])
		l.Body = m[2]
		return l
	}

	l.Timestamp = cur.carried()
	l.Category = CategoryUnknown
	l.Body = raw
	return l
}

// parseClock resolves an "HH:MM:SS" capture against the cursor. Out-of-range
// values fall back to the carried-forward timestamp.
func parseClock(cur *Cursor, s string) (time.Time, bool) {
	hour := int(s[0]-'0')*10 + int(s[1]-'0')
	min := int(s[3]-'0')*10 + int(s[4]-'0')
	sec := int(s[6]-'0')*10 + int(s[7]-'0')
	if hour > 23 || min > 59 || sec > 59 {
		return cur.carried(), false
	}
	return cur.resolve(hour, min, sec), true
}

// categoryFromLevel maps a log level token to a Category. Unrecognized levels
// keep their lowercased text so nothing is lost.
func categoryFromLevel(level string) Category {
	switch strings.ToUpper(level) {
	case "INFO":
		return CategoryInfo
	case "WARN", "WARNING":
		return CategoryWarn
	case "ERROR", "SEVERE":
		return CategoryError
	case "DEBUG", "TRACE":
		return CategoryDebug
	case "FATAL":
		return CategoryFatal
	default:
		return Category(strings.ToLower(level))
	}
}
