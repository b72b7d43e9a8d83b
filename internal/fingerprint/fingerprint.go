// Package fingerprint computes the stable deduplication hash attached to
// every converted issue.
//
// The digest input couples the reported path, a coarsened line number, the
// check name and the text of the offending source line. Coarsening the line
// (rounded up to the nearest multiple of 10) keeps the fingerprint stable
// across small line drift from unrelated edits elsewhere in the file.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// FileResolutionError reports that base directories were explicitly supplied
// but none of them (nor the path as given) resolve to a readable file. That is
// caller misconfiguration, not expected data variability, so it is fatal.
type FileResolutionError struct {
	Path     string
	BaseDirs []string
}

func (e *FileResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %q against base directories %v; missing a base directory?",
		e.Path, e.BaseDirs)
}

// fileEntry is one cached candidate file. A missing file is cached too, so
// each candidate path is read from disk at most once per run.
type fileEntry struct {
	lines   []string
	missing bool
}

// Fingerprinter computes issue fingerprints for one conversion run.
//
// It keeps a per-run cache of source file contents, keyed by candidate path
// (the path as given, or joined with a base directory) — the same file
// reached via two different reported paths occupies two entries. The cache is
// discarded with the Fingerprinter; it is not process-wide state.
type Fingerprinter struct {
	baseDirs []string
	explicit bool
	log      *zap.SugaredLogger
	files    map[string]*fileEntry
	// warned tracks reported paths already logged as unresolvable, so the
	// warning fires once per file, not once per issue.
	warned map[string]bool
}

// New creates a Fingerprinter. An empty baseDirs means "no explicit guidance":
// unresolvable files degrade to an empty line-text component instead of
// failing. A nil logger is replaced with a no-op logger.
func New(baseDirs []string, log *zap.SugaredLogger) *Fingerprinter {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Fingerprinter{
		baseDirs: baseDirs,
		explicit: len(baseDirs) > 0,
		log:      log,
		files:    make(map[string]*fileEntry),
		warned:   make(map[string]bool),
	}
}

// Compute returns the lowercase hex MD5 fingerprint for one issue occurrence.
//
// The digest algorithm is a frozen wire-format detail: dashboards persist
// fingerprints across runs to track excluded issues, so changing it would
// invalidate every previously recorded exclusion. It carries no security
// meaning; MD5 is fine here.
func (f *Fingerprinter) Compute(path string, line int, checkName string) (string, error) {
	text, err := f.sourceLine(path, line)
	if err != nil {
		return "", err
	}

	rounded := int(math.Ceil(float64(line)/10.0)) * 10
	key := path + ":" + strconv.Itoa(rounded) + "-" + checkName + "-" + text
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:]), nil
}

// sourceLine returns the trimmed text of the given 1-based line, or "" when
// the lookup degrades (file not found without explicit base dirs, or line out
// of range in every candidate — cppcheck line numbers can exceed the file
// when they reflect post-preprocessing offsets such as #include'd content).
//
// A candidate is accepted only when it is readable AND covers the requested
// line: a stale or truncated copy in an earlier base directory must not
// shadow the real file behind it.
func (f *Fingerprinter) sourceLine(path string, line int) (string, error) {
	readable := false
	for _, candidate := range f.candidates(path) {
		entry := f.load(candidate)
		if entry.missing {
			continue
		}
		readable = true
		if line >= 1 && line <= len(entry.lines) {
			return strings.TrimSpace(entry.lines[line-1]), nil
		}
	}

	if !readable {
		if f.explicit {
			return "", &FileResolutionError{Path: path, BaseDirs: f.baseDirs}
		}
		if !f.warned[path] {
			f.warned[path] = true
			f.log.Warnw("source file not found; fingerprint degrades to an empty source line",
				"file", path)
		}
		return "", nil
	}

	f.log.Warnw("line number out of file range in every candidate; fingerprint degrades to an empty source line",
		"file", path, "line", line)
	return "", nil
}

// candidates returns the lookup order for a reported path: the path as
// given, then joined with each base directory in order.
func (f *Fingerprinter) candidates(path string) []string {
	candidates := make([]string, 0, len(f.baseDirs)+1)
	candidates = append(candidates, path)
	for _, base := range f.baseDirs {
		candidates = append(candidates, filepath.Join(base, path))
	}
	return candidates
}

// load returns the cached contents of one candidate path, reading it from
// disk on first use.
func (f *Fingerprinter) load(candidate string) *fileEntry {
	if entry, ok := f.files[candidate]; ok {
		return entry
	}
	entry := &fileEntry{}
	data, err := os.ReadFile(candidate)
	if err != nil {
		entry.missing = true
	} else {
		entry.lines = splitLines(string(data))
	}
	f.files[candidate] = entry
	return entry
}

// splitLines splits file content on '\n'. A trailing newline does not count
// as an extra (empty) line.
func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
