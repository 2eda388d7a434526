// Package fs finds the files an import should read.
package fs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"sbs-go/internal/extract"
)

// Finder resolves import paths to regular files with a supported type.
type Finder struct {
	ignore []string
}

// NewFinder creates a Finder that skips the given patterns in addition to
// those of each import root's .sbsignore file.
func NewFinder(ignore []string) *Finder {
	return &Finder{ignore: ignore}
}

// Resolve returns the absolute path of rawPath and whether it is a
// directory. Symlinks and special files are rejected.
func (f *Finder) Resolve(rawPath string) (string, bool, error) {
	absPath, err := filepath.Abs(rawPath)
	if err != nil {
		return "", false, fmt.Errorf("resolving absolute path: %w", err)
	}
	info, err := os.Lstat(absPath)
	if err != nil {
		return "", false, fmt.Errorf("stat path: %w", err)
	}

	mode := info.Mode()
	switch {
	case mode&os.ModeSymlink != 0:
		return "", false, fmt.Errorf("symlinks not supported: %s", absPath)
	case mode&(os.ModeDevice|os.ModeNamedPipe|os.ModeSocket) != 0:
		return "", false, fmt.Errorf("not a regular file: %s", absPath)
	}
	return absPath, info.IsDir(), nil
}

// Find returns the importable files of rawPath in lexical order. A file
// path is returned as is, whatever its type, so that the import reports
// an unsupported type. A directory yields its files with a supported type
// that are not ignored; subdirectories are searched when recursive is set.
func (f *Finder) Find(rawPath string, recursive bool) ([]string, error) {
	root, isDir, err := f.Resolve(rawPath)
	if err != nil {
		return nil, err
	}
	if !isDir {
		return []string{root}, nil
	}

	patterns, err := ParseIgnoreFile(filepath.Join(root, IgnoreFileName))
	if err != nil {
		return nil, err
	}
	matcher := NewIgnoreMatcher(append(append([]string{}, f.ignore...), patterns...))

	var files []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive || matcher.Match(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || matcher.Match(rel, false) {
			return nil
		}
		if _, err := extract.ForFileType(filepath.Ext(p)); err != nil {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}
	return files, nil
}
