package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/mclog/mclog-go/pkg/mclog"
)

// Summary output formats.
const (
	FormatTable = "table"
	FormatPlain = "plain"
	FormatJSON  = "json"
)

// DetectFormat picks the default summary format for out: a table when
// out is a terminal, plain text otherwise.
func DetectFormat(out *os.File) string {
	if out == nil {
		return FormatPlain
	}
	fd := out.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return FormatTable
	}
	return FormatPlain
}

// TerminalWidth returns the render width for out, falling back to the
// COLUMNS variable and then 80.
func TerminalWidth(out *os.File) int {
	if out != nil {
		if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 0 {
			return w
		}
	}
	if cols := os.Getenv("COLUMNS"); cols != "" {
		if v, err := strconv.Atoi(cols); err == nil && v > 0 {
			return v
		}
	}
	return 80
}

// RenderSummary writes the run summary to w in the requested format.
// Format "" means table.
func RenderSummary(w io.Writer, result *mclog.Result, format string, width int) error {
	switch strings.ToLower(format) {
	case "", FormatTable:
		return renderTable(w, result, width)
	case FormatPlain:
		return renderPlain(w, result)
	case FormatJSON:
		return renderJSON(w, result)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func renderTable(w io.Writer, result *mclog.Result, width int) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	if width > 0 {
		tw.SetAllowedRowLength(width)
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignCenter},
	})

	tw.AppendHeader(table.Row{"Kind", "Events"})
	for _, kind := range result.Kinds() {
		tw.AppendRow(table.Row{string(kind), len(result.Events[kind])})
	}
	if len(result.Events) == 0 {
		tw.AppendRow(table.Row{"(none)", 0})
	}
	tw.AppendFooter(table.Row{"Total", result.Total()})
	tw.Render()

	writeStats(w, result)
	return nil
}

func renderPlain(w io.Writer, result *mclog.Result) error {
	if _, err := fmt.Fprintln(w, "kind\tevents"); err != nil {
		return err
	}
	for _, kind := range result.Kinds() {
		if _, err := fmt.Fprintf(w, "%s\t%d\n", kind, len(result.Events[kind])); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "total\t%d\n", result.Total()); err != nil {
		return err
	}
	writeStats(w, result)
	return nil
}

func writeStats(w io.Writer, result *mclog.Result) {
	s := result.Stats
	fmt.Fprintf(w, "Lines: %d (matched %d, unmatched %d, ambiguous %d, errors %d)\n",
		s.Lines, matchedTotal(s), s.Unmatched, s.Ambiguous, s.Errors)
	fmt.Fprintf(w, "Sources: %d (skipped %d)\n", s.Sources, s.SourcesSkipped)
	for _, warn := range result.Warnings {
		fmt.Fprintf(w, "Warning: %v\n", warn)
	}
}

func matchedTotal(s mclog.Stats) int {
	n := 0
	for _, c := range s.Matched {
		n += c
	}
	return n
}

type kindCount struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
}

type summaryPayload struct {
	Events         []kindCount `json:"events"`
	Total          int         `json:"total"`
	Lines          int         `json:"lines"`
	Matched        int         `json:"matched"`
	Unmatched      int         `json:"unmatched"`
	Ambiguous      int         `json:"ambiguous"`
	Errors         int         `json:"errors"`
	Sources        int         `json:"sources"`
	SourcesSkipped int         `json:"sources_skipped"`
	Warnings       []string    `json:"warnings,omitempty"`
}

func renderJSON(w io.Writer, result *mclog.Result) error {
	payload := summaryPayload{
		Events:         []kindCount{},
		Total:          result.Total(),
		Lines:          result.Stats.Lines,
		Matched:        matchedTotal(result.Stats),
		Unmatched:      result.Stats.Unmatched,
		Ambiguous:      result.Stats.Ambiguous,
		Errors:         result.Stats.Errors,
		Sources:        result.Stats.Sources,
		SourcesSkipped: result.Stats.SourcesSkipped,
	}
	for _, kind := range result.Kinds() {
		payload.Events = append(payload.Events, kindCount{Kind: string(kind), Count: len(result.Events[kind])})
	}
	for _, warn := range result.Warnings {
		payload.Warnings = append(payload.Warnings, warn.Error())
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
