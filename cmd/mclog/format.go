package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mclog/mclog-go/pkg/mclog/event"
)

// ValidFormats lists the valid event output formats.
var ValidFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

// ValidFormatNames returns the valid format names in sorted order.
func ValidFormatNames() []string {
	names := make([]string, 0, len(ValidFormats))
	for name := range ValidFormats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OutputEvent writes an event in the given format to the writer.
func OutputEvent(format string, ev event.Event, out io.Writer) error {
	switch format {
	case "jsonl":
		return OutputJSON(ev, out)
	case "pretty":
		return OutputPretty(ev, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputJSON writes an event as one JSON line.
func OutputJSON(ev event.Event, out io.Writer) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// OutputPretty writes an event in human-readable form.
func OutputPretty(ev event.Event, out io.Writer) error {
	ts := ev.Timestamp.Format("15:04:05")

	var err error
	switch ev.Kind {
	case event.JoinLeave:
		mark := "+"
		if ev.Direction == event.Left {
			mark = "-"
		}
		_, err = fmt.Fprintf(out, "[%s] %s %s %s\n", ts, mark, ev.Player, ev.Direction)
	case event.Advancement:
		_, err = fmt.Fprintf(out, "[%s] > %s earned [%s] (%s)\n", ts, ev.Player, ev.Advancement, ev.AdvancementType)
	case event.Death:
		_, err = fmt.Fprintf(out, "[%s] x %s died: %s\n", ts, ev.Player, ev.Cause)
	case event.Chat:
		_, err = fmt.Fprintf(out, "[%s] <%s> %s\n", ts, ev.Player, ev.Message)
	default:
		label := string(ev.Kind)
		if ev.Player != "" {
			label += " " + ev.Player
		}
		if len(ev.Data) > 0 {
			_, err = fmt.Fprintf(out, "[%s] * %s: %s\n", ts, label, formatData(ev.Data))
		} else {
			_, err = fmt.Fprintf(out, "[%s] * %s\n", ts, label)
		}
	}

	return err
}

// formatData formats a map as sorted key=value pairs.
func formatData(data map[string]string) string {
	if len(data) == 0 {
		return ""
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(data))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", quoteIfNeeded(k), quoteIfNeeded(data[k])))
	}
	return strings.Join(parts, " ")
}

// quoteIfNeeded quotes a value when it contains spaces, equals signs,
// quotes, backslashes or control characters.
func quoteIfNeeded(v string) string {
	if v == "" {
		return `""`
	}

	needsQuote := false
	for _, c := range v {
		if c == ' ' || c == '=' || c == '"' || c == '\\' || c < 0x20 || c == 0x7F {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return v
	}

	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range v {
		switch {
		case c == '\\':
			sb.WriteString(`\\`)
		case c == '"':
			sb.WriteString(`\"`)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c < 0x20 || c == 0x7F:
			sb.WriteString(fmt.Sprintf(`\x%02x`, c))
		default:
			sb.WriteRune(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
