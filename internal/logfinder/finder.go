// Package logfinder provides Minecraft server log directory and archive
// discovery.
//
// A server's logs directory holds one active file, latest.log, plus rotated
// archives named YYYY-MM-DD-N.log.gz (N restarts from 1 each day). Crash
// leftovers can leave an uncompressed YYYY-MM-DD-N.log behind; both forms
// are listed.
package logfinder

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mclog/mclog-go/internal/safefile"
)

// EnvLogDir is the environment variable naming the server logs directory.
const EnvLogDir = "LOG_DIRECTORY"

// CurrentLogName is the file the server is actively writing.
const CurrentLogName = "latest.log"

// DefaultLogDir is the fallback directory relative to the working directory,
// matching where a server unpacks its logs.
const DefaultLogDir = "logs"

// Sentinel errors.
var (
	ErrLogDirNotFound = errors.New("log directory not found")
	ErrNoLogFiles     = errors.New("no log files found")
)

// rotatedNamePattern matches rotated archive names: "2023-01-02-1.log" and
// "2023-01-02-1.log.gz".
var rotatedNamePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})-(\d+)\.log(\.gz)?$`)

// Source is one discovered log file.
type Source struct {
	// Path is the absolute or dir-joined path to the file.
	Path string

	// Name is the bare file name, used as provenance in line records.
	Name string

	// Day is the local midnight of the date the file's lines start on:
	// the date embedded in a rotated name, or the modification date for
	// the current log and undated files.
	Day time.Time

	// Index is the rotation sequence within Day, 0 for the current log.
	Index int

	// Compressed marks gzip archives.
	Compressed bool

	// Current marks the actively written log.
	Current bool
}

// FindLogDir resolves the server logs directory.
//
// Priority:
//  1. explicit (if non-empty)
//  2. LOG_DIRECTORY environment variable
//  3. ./logs
//
// An explicit path or environment value that does not name a directory is an
// error rather than a silent fallthrough. The returned path has symlinks
// resolved. Returns ErrLogDirNotFound when nothing resolves.
func FindLogDir(explicit string) (string, error) {
	if explicit != "" {
		resolved, err := resolveDir(explicit)
		if err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrLogDirNotFound, explicit, err)
		}
		return resolved, nil
	}

	if envDir := os.Getenv(EnvLogDir); envDir != "" {
		resolved, err := resolveDir(envDir)
		if err != nil {
			return "", fmt.Errorf("%w: %s=%s: %v", ErrLogDirNotFound, EnvLogDir, envDir, err)
		}
		return resolved, nil
	}

	if resolved, err := resolveDir(DefaultLogDir); err == nil {
		return resolved, nil
	}

	return "", ErrLogDirNotFound
}

// resolveDir validates that dir exists and is a directory, resolving
// symlinks for path consistency.
func resolveDir(dir string) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", err
	}
	return resolved, nil
}

// List enumerates the log files in dir, oldest first. Rotated archives sort
// by their embedded date and rotation index; the current log sorts after
// rotated files of the same day. Undated .log/.log.gz files are kept with
// their modification date so copied or renamed logs still take part.
//
// Returns ErrNoLogFiles when dir contains no log files at all.
func List(dir string) ([]Source, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading log directory: %w", err)
	}

	var sources []Source
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()

		src := Source{
			Path: filepath.Join(dir, name),
			Name: name,
		}

		switch {
		case name == CurrentLogName:
			src.Current = true
			src.Day = modDay(e)

		case rotatedNamePattern.MatchString(name):
			m := rotatedNamePattern.FindStringSubmatch(name)
			day, err := time.ParseInLocation("2006-01-02", m[1], time.Local)
			if err != nil {
				day = modDay(e)
			}
			src.Day = day
			src.Index, _ = strconv.Atoi(m[2])
			src.Compressed = m[3] != ""

		case strings.HasSuffix(name, ".log.gz"):
			src.Day = modDay(e)
			src.Compressed = true

		case strings.HasSuffix(name, ".log"):
			src.Day = modDay(e)

		default:
			continue
		}

		sources = append(sources, src)
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoLogFiles, dir)
	}

	sort.SliceStable(sources, func(i, j int) bool {
		a, b := sources[i], sources[j]
		if !a.Day.Equal(b.Day) {
			return a.Day.Before(b.Day)
		}
		if a.Current != b.Current {
			return b.Current
		}
		if a.Index != b.Index {
			return a.Index < b.Index
		}
		return a.Name < b.Name
	})

	return sources, nil
}

// FromPath builds a Source for one explicitly named file. Dated rotated
// names carry their embedded date as with List; anything else takes the
// file's modification date. The file must exist.
func FromPath(path string) (Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Source{}, err
	}
	if info.IsDir() {
		return Source{}, fmt.Errorf("%s is a directory, not a log file", path)
	}

	name := filepath.Base(path)
	src := Source{
		Path:       path,
		Name:       name,
		Day:        dayOf(info.ModTime()),
		Compressed: strings.HasSuffix(name, ".gz"),
		Current:    name == CurrentLogName,
	}
	if m := rotatedNamePattern.FindStringSubmatch(name); m != nil {
		if day, err := time.ParseInLocation("2006-01-02", m[1], time.Local); err == nil {
			src.Day = day
		}
		src.Index, _ = strconv.Atoi(m[2])
	}
	return src, nil
}

// modDay returns the local midnight of the entry's modification time, or
// today's midnight when the entry cannot be stat'd.
func modDay(e os.DirEntry) time.Time {
	info, err := e.Info()
	if err != nil {
		return dayOf(time.Now())
	}
	return dayOf(info.ModTime())
}

func dayOf(t time.Time) time.Time {
	t = t.Local()
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Open returns a reader over the source's decompressed line data. Gzip
// archives are unwrapped transparently. The caller must close the returned
// reader.
func (s Source) Open() (io.ReadCloser, error) {
	f, _, err := safefile.OpenRegular(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.Name, err)
	}

	if !s.Compressed {
		return f, nil
	}

	zr, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening gzip archive %s: %w", s.Name, err)
	}
	return &gzipSource{zr: zr, f: f}, nil
}

// gzipSource reads through the gzip layer and closes both layers together.
type gzipSource struct {
	zr *gzip.Reader
	f  *os.File
}

func (g *gzipSource) Read(p []byte) (int, error) { return g.zr.Read(p) }

func (g *gzipSource) Close() error {
	zerr := g.zr.Close()
	ferr := g.f.Close()
	return errors.Join(zerr, ferr)
}
