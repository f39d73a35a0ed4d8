package pattern

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// sanitizePathError removes the path from os.PathError so error messages
// do not expose file system paths to users.
func sanitizePathError(err error) error {
	var pathErr *os.PathError
	if errors.As(err, &pathErr) {
		return fmt.Errorf("%s: %w", pathErr.Op, pathErr.Err)
	}
	return err
}

const (
	// MaxFileSize is the maximum allowed size for a pattern file (1MB).
	// This limit prevents denial-of-service via extremely large files.
	MaxFileSize = 1 * 1024 * 1024 // 1 MB

	// MaxPatternLength is the maximum allowed length for a regex pattern
	// (512 bytes). This limit helps mitigate ReDoS (Regular Expression
	// Denial of Service) attacks through excessively complex patterns.
	MaxPatternLength = 512

	// MaxPatternCount is the maximum number of patterns allowed in a
	// pattern file. This limit prevents CPU exhaustion via files with
	// thousands of patterns.
	MaxPatternCount = 1000

	// SupportedVersion is the currently supported pattern file format
	// version.
	SupportedVersion = 1
)

// Load reads and parses a pattern file from the given path.
// Returns an error if the file cannot be read, is too large, or fails
// validation. Error messages never include the path.
//
// Example:
//
//	pf, err := pattern.Load("patterns.yaml")
//	if err != nil {
//	    log.Fatalf("failed to load pattern file: %v", err)
//	}
func Load(path string) (*File, error) {
	// Open first; os.ReadFile would not let us check the file type.
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pattern file: %w", sanitizePathError(err))
	}
	defer f.Close()

	// Stat the descriptor, not the path, to avoid TOCTOU.
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat pattern file: %w", sanitizePathError(err))
	}
	if !info.Mode().IsRegular() {
		return nil, errors.New("pattern file must be a regular file (not FIFO, device, or special file)")
	}
	if info.Size() == 0 {
		return nil, errors.New("pattern file is empty")
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("pattern file too large: %d bytes (max %d)", info.Size(), MaxFileSize)
	}

	// Read one byte past the limit so a file growing between stat and
	// read is still rejected.
	data, err := io.ReadAll(io.LimitReader(f, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read pattern file: %w", sanitizePathError(err))
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("pattern file too large: %d bytes (max %d)", len(data), MaxFileSize)
	}

	return LoadBytes(data)
}

// LoadBytes parses a pattern file from a byte slice.
// Returns an error if the data cannot be parsed or fails validation.
//
// Example:
//
//	data := []byte("version: 1\npatterns:\n  - id: test\n    ...")
//	pf, err := pattern.LoadBytes(data)
func LoadBytes(data []byte) (*File, error) {
	if len(data) == 0 {
		return nil, errors.New("pattern file is empty")
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("pattern file too large: %d bytes (max %d)", len(data), MaxFileSize)
	}

	var pf File
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := pf.Validate(); err != nil {
		return nil, err
	}

	return &pf, nil
}

// Validate performs schema-level validation on the pattern file.
// It checks for:
//   - Supported version number
//   - At least one pattern
//   - Required fields (id, kind, regex)
//   - Unique pattern IDs
//   - Pattern length limits (ReDoS protection)
//
// Note: This function does NOT compile regular expressions. Regex
// compilation and validation happens in NewRegexMatcher() to avoid
// duplicating work.
func (pf *File) Validate() error {
	if pf.Version != SupportedVersion {
		return &ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (only version %d is supported)", pf.Version, SupportedVersion),
		}
	}

	if len(pf.Patterns) == 0 {
		return &ValidationError{
			Field:   "patterns",
			Message: "at least one pattern is required",
		}
	}

	if len(pf.Patterns) > MaxPatternCount {
		return &ValidationError{
			Field:   "patterns",
			Message: fmt.Sprintf("too many patterns (%d), maximum allowed is %d", len(pf.Patterns), MaxPatternCount),
		}
	}

	seenIDs := make(map[string]int, len(pf.Patterns))

	for i, p := range pf.Patterns {
		if p.ID == "" {
			return &PatternError{
				Index:   i,
				Field:   "id",
				Message: "id is required",
			}
		}
		if p.Kind == "" {
			return &PatternError{
				Index:   i,
				ID:      p.ID,
				Field:   "kind",
				Message: "kind is required",
			}
		}
		if p.Regex == "" {
			return &PatternError{
				Index:   i,
				ID:      p.ID,
				Field:   "regex",
				Message: "regex is required",
			}
		}

		if prevIndex, exists := seenIDs[p.ID]; exists {
			return &PatternError{
				Index:   i,
				ID:      p.ID,
				Field:   "id",
				Message: fmt.Sprintf("duplicate id (previously defined at pattern[%d])", prevIndex),
			}
		}
		seenIDs[p.ID] = i

		if len(p.Regex) > MaxPatternLength {
			return &PatternError{
				Index:   i,
				ID:      p.ID,
				Field:   "regex",
				Message: fmt.Sprintf("pattern too long: %d bytes (max %d)", len(p.Regex), MaxPatternLength),
			}
		}
	}

	return nil
}
