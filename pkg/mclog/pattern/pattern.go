// Package pattern provides custom pattern matching for Minecraft server
// logs. It allows users to define their own event kinds via YAML
// configuration files with regular expression patterns.
package pattern

// File represents the structure of a YAML pattern file.
// Pattern files allow users to extract custom events using regular
// expressions, without writing a Matcher in Go.
//
// Example YAML file:
//
//	version: 1
//	patterns:
//	  - id: whisper
//	    kind: whisper
//	    regex: '^(?P<player>\w+) whispers to you: (?P<message>.+)$'
//	  - id: raid_started
//	    kind: raid
//	    regex: '^A raid started at (?P<location>.+)$'
type File struct {
	// Version is the pattern file format version. Currently only version 1
	// is supported.
	Version int `yaml:"version"`

	// Patterns is the list of pattern definitions.
	Patterns []Pattern `yaml:"patterns"`
}

// Pattern represents a single log pattern definition.
// Each pattern consists of a unique identifier, an event kind, and a
// regular expression matched against the line body. Named capture groups
// map to event fields (player, message, cause, killer, advancement,
// direction); any other group name goes into Event.Data.
type Pattern struct {
	// ID is a unique identifier for this pattern (e.g., "whisper").
	// IDs must be unique within a pattern file.
	ID string `yaml:"id"`

	// Kind is the value for Event.Kind when this pattern matches.
	Kind string `yaml:"kind"`

	// Regex is the regular expression matched against the line body.
	Regex string `yaml:"regex"`
}
