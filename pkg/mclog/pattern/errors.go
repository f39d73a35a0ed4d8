package pattern

import "fmt"

// ValidationError reports a file-level problem with a pattern file, such
// as an unsupported version or an empty pattern list.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid pattern file: %s: %s", e.Field, e.Message)
}

// PatternError reports a problem with one pattern in the file. ID is the
// pattern's declared id, empty when the id itself is missing; Index is the
// pattern's 0-based position.
type PatternError struct {
	Index   int
	ID      string
	Field   string
	Message string
	Cause   error
}

func (e *PatternError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("pattern %q (%s): %s", e.ID, e.Field, e.Message)
	}
	return fmt.Sprintf("pattern[%d] %s: %s", e.Index, e.Field, e.Message)
}

func (e *PatternError) Unwrap() error {
	return e.Cause
}
