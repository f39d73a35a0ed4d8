// Package safefile provides hardened open and read helpers for
// user-supplied paths.
package safefile

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Sentinel errors.
var (
	// ErrNotRegularFile is returned for paths that do not name a regular
	// file: symlinks, FIFOs, devices, sockets, directories.
	ErrNotRegularFile = errors.New("not a regular file")

	// ErrFileTooLarge is returned by ReadAllLimit when the file exceeds
	// the given limit.
	ErrFileTooLarge = errors.New("file too large")
)

// OpenRegular opens path and verifies it names a regular file.
//
// The check runs twice to narrow the TOCTOU window between stat and open:
//  1. os.Lstat on the path, without following symlinks
//  2. os.Open
//  3. Stat of the open descriptor, which must still be a regular file
//
// Go does not expose O_NOFOLLOW portably, so a small race window remains;
// the descriptor re-check catches a file swapped in between the two steps.
//
// The caller must close the returned file.
func OpenRegular(path string) (*os.File, os.FileInfo, error) {
	linkInfo, err := os.Lstat(path)
	if err != nil {
		return nil, nil, err
	}
	if !linkInfo.Mode().IsRegular() {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotRegularFile, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, fmt.Errorf("%w: %s", ErrNotRegularFile, path)
	}

	return f, info, nil
}

// ReadAllLimit reads the regular file at path, rejecting files larger than
// limit bytes. The size is checked once from the descriptor stat and again
// by reading one byte past the limit, so a file growing mid-read is still
// rejected.
func ReadAllLimit(path string, limit int64) ([]byte, error) {
	f, info, err := OpenRegular(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if info.Size() > limit {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrFileTooLarge, path, info.Size(), limit)
	}

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrFileTooLarge, path, limit)
	}
	return data, nil
}
