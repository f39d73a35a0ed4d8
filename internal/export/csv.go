// Package export writes aggregation results to CSV files and renders
// run summaries.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mclog/mclog-go/pkg/mclog"
	"github.com/mclog/mclog-go/pkg/mclog/event"
)

// TimeLayout is the timestamp format used in CSV cells.
const TimeLayout = "2006-01-02 15:04:05"

// baseFiles maps base kinds to their CSV file names.
var baseFiles = map[event.Kind]string{
	event.JoinLeave:   "joins_leaves.csv",
	event.Advancement: "advancements.csv",
	event.Death:       "deaths.csv",
	event.Chat:        "messages.csv",
}

// WriteCSV writes one CSV per event kind into dir, creating the
// directory if needed. The four base kind files are always written,
// header row at minimum, so downstream consumers can rely on their
// presence. Custom kinds get "<kind>.csv" only when events exist.
// Returns the paths written, base kinds first.
func WriteCSV(dir string, result *mclog.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var paths []string
	for _, kind := range event.BaseKinds() {
		path := filepath.Join(dir, baseFiles[kind])
		if err := writeKindCSV(path, kind, result.Events[kind]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	for _, kind := range result.Kinds() {
		if _, base := baseFiles[kind]; base {
			continue
		}
		path := filepath.Join(dir, kindFileName(kind))
		if err := writeKindCSV(path, kind, result.Events[kind]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeKindCSV(path string, kind event.Kind, events []event.Event) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader(kind)); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	for _, ev := range events {
		if err := w.Write(csvRow(kind, ev)); err != nil {
			f.Close()
			return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", filepath.Base(path), err)
	}
	return nil
}

func csvHeader(kind event.Kind) []string {
	switch kind {
	case event.JoinLeave:
		return []string{"time", "player", "direction"}
	case event.Advancement:
		return []string{"time", "player", "advancement", "type"}
	case event.Death:
		return []string{"time", "player", "cause", "killer"}
	case event.Chat:
		return []string{"time", "player", "message"}
	default:
		return []string{"time", "player", "message", "data"}
	}
}

func csvRow(kind event.Kind, ev event.Event) []string {
	ts := ev.Timestamp.Format(TimeLayout)
	switch kind {
	case event.JoinLeave:
		return []string{ts, ev.Player, string(ev.Direction)}
	case event.Advancement:
		return []string{ts, ev.Player, ev.Advancement, string(ev.AdvancementType)}
	case event.Death:
		return []string{ts, ev.Player, ev.Cause, ev.Killer}
	case event.Chat:
		return []string{ts, ev.Player, ev.Message}
	default:
		data := ""
		if len(ev.Data) > 0 {
			// Map keys marshal sorted, so the cell is deterministic.
			if b, err := json.Marshal(ev.Data); err == nil {
				data = string(b)
			}
		}
		return []string{ts, ev.Player, ev.Message, data}
	}
}

// kindFileName maps a custom kind to a file name, replacing anything
// that could escape the output directory.
func kindFileName(kind event.Kind) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, string(kind))
	return name + ".csv"
}
