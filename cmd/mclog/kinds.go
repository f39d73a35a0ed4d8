package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mclog/mclog-go/pkg/mclog/event"
)

// ValidEventKinds maps CLI names to the built-in event kinds.
var ValidEventKinds = map[string]event.Kind{
	"join_leave":  event.JoinLeave,
	"advancement": event.Advancement,
	"death":       event.Death,
	"chat":        event.Chat,
}

// ValidEventKindNames returns the built-in kind names, sorted.
func ValidEventKindNames() []string {
	names := make([]string, 0, len(ValidEventKinds))
	for name := range ValidEventKinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NormalizeEventKinds resolves user-supplied kind names: trimmed,
// case-insensitive, duplicates removed while keeping first-seen order.
// Names outside the built-in set pass through as custom kinds so
// --types can select events from pattern files and plugins. Empty
// entries are an error.
func NormalizeEventKinds(names []string) ([]event.Kind, error) {
	if len(names) == 0 {
		return nil, nil
	}

	seen := make(map[event.Kind]bool, len(names))
	kinds := make([]event.Kind, 0, len(names))
	for _, name := range names {
		norm := strings.ToLower(strings.TrimSpace(name))
		if norm == "" {
			return nil, fmt.Errorf("empty event kind (valid kinds: %s)",
				strings.Join(ValidEventKindNames(), ", "))
		}
		kind, ok := ValidEventKinds[norm]
		if !ok {
			kind = event.Kind(norm)
		}
		if seen[kind] {
			continue
		}
		seen[kind] = true
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// RejectOverlap returns an error when a kind appears in both the
// include and exclude lists.
func RejectOverlap(includes, excludes []event.Kind) error {
	if len(includes) == 0 || len(excludes) == 0 {
		return nil
	}
	excluded := make(map[event.Kind]bool, len(excludes))
	for _, k := range excludes {
		excluded[k] = true
	}
	for _, k := range includes {
		if excluded[k] {
			return fmt.Errorf("event kind %q is both included and excluded", k)
		}
	}
	return nil
}
