// Package fileutil provides file and path utility functions.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// tempPrefix marks intermediate documents so leftovers are recognizable.
const tempPrefix = "temp_"

// ReserveTemp creates an empty temporary file for the substituted copy of
// templatePath in dir (the system temp directory when dir is empty). The
// name keeps the template's stem and extension: temp_<stem>-<random><ext>.
// Returns the file path and a cleanup function to remove the file.
func ReserveTemp(dir, templatePath string) (path string, cleanup func(), err error) {
	ext := filepath.Ext(templatePath)
	if ext == "" {
		ext = ".docx"
	}
	pattern := tempPrefix + sanitize(Stem(templatePath)) + "-*" + ext

	tmpFile, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}

	path = tmpFile.Name()
	cleanup = func() { _ = os.Remove(path) }

	if closeErr := tmpFile.Close(); closeErr != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", closeErr)
	}

	return path, cleanup, nil
}

// sanitize drops characters CreateTemp rejects in patterns.
func sanitize(stem string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '*', 0:
			return '_'
		}
		return r
	}, stem)
}

// Stem returns the base name of path without its extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirWritable checks that a file can be created in dir (the system temp
// directory when dir is empty).
func DirWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".docx2pdf-probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "work" -> false (name)
//   - "./work.yaml" -> true (relative path)
//   - "/etc/docx2pdf.yaml" -> true (absolute)
//   - "C:\config\work.yaml" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}
