package fs

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IgnoreFileName is the per-directory file listing patterns to skip on import.
const IgnoreFileName = ".sbsignore"

// defaultIgnorePatterns are always applied: the ignore file itself and
// hidden files and directories.
var defaultIgnorePatterns = []string{IgnoreFileName, ".*"}

type ignorePattern struct {
	pattern   string
	matchPath bool // match the relative path rather than the basename
	dirOnly   bool // pattern ended in '/'
}

// IgnoreMatcher decides which paths a directory import skips. Patterns
// without '/' match the basename; patterns with '/' match the path relative
// to the import root; a trailing '/' restricts a pattern to directories.
type IgnoreMatcher struct {
	patterns []ignorePattern
}

// NewIgnoreMatcher parses raw patterns, skipping blank lines and '#'
// comments. The default patterns are included.
func NewIgnoreMatcher(rawPatterns []string) *IgnoreMatcher {
	var patterns []ignorePattern
	for _, raw := range append(append([]string{}, defaultIgnorePatterns...), rawPatterns...) {
		raw = strings.TrimSpace(raw)
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		p := ignorePattern{}
		if strings.HasSuffix(raw, "/") {
			p.dirOnly = true
			raw = strings.TrimSuffix(raw, "/")
		}
		p.pattern = raw
		p.matchPath = strings.Contains(raw, "/")
		patterns = append(patterns, p)
	}
	return &IgnoreMatcher{patterns: patterns}
}

// Match reports whether relativePath is ignored. An ignored directory is
// skipped with everything below it.
func (m *IgnoreMatcher) Match(relativePath string, isDir bool) bool {
	if relativePath == "" || relativePath == "." {
		return false
	}
	normalized := filepath.ToSlash(relativePath)
	basename := filepath.Base(relativePath)

	for _, p := range m.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		subject := basename
		if p.matchPath {
			subject = normalized
		}
		// A malformed pattern never matches.
		if ok, err := filepath.Match(p.pattern, subject); err == nil && ok {
			return true
		}
	}
	return false
}

// ParseIgnoreFile returns the raw lines of an ignore file, or nil when the
// file does not exist.
func ParseIgnoreFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening ignore file: %w", err)
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ignore file: %w", err)
	}
	return lines, nil
}
