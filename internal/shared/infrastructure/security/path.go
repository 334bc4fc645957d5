// Package security guards the file paths the application opens on a
// user's behalf: the SQLite database and activity import files.
package security

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxReadBytes caps ReadFile when no limit is given.
const DefaultMaxReadBytes int64 = 4 << 20

// ErrFileTooLarge is returned by ReadFile for files over the limit.
var ErrFileTooLarge = errors.New("file too large")

// forbidden are characters that change the meaning of a path once it is
// embedded in a DSN or a shell line.
var forbidden = []string{"\x00", "\n", "\r", ";", "&", "|", "$", "`", "<", ">"}

// CleanPath returns the absolute, symlink-resolved form of path. Paths
// that do not exist yet are returned cleaned but unresolved.
func CleanPath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("path is empty")
	}
	for _, c := range forbidden {
		if strings.Contains(path, c) {
			return "", fmt.Errorf("path %q contains forbidden character %q", path, c)
		}
	}

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return abs, nil
		}
		return "", fmt.Errorf("resolve %q: %w", path, err)
	}
	return resolved, nil
}

// WithinDir is CleanPath plus a check that the result stays under dir.
func WithinDir(path, dir string) (string, error) {
	clean, err := CleanPath(path)
	if err != nil {
		return "", err
	}
	base, err := CleanPath(dir)
	if err != nil {
		return "", fmt.Errorf("base directory: %w", err)
	}
	if clean != base && !strings.HasPrefix(clean, base+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes %q", path, dir)
	}
	return clean, nil
}

// ReadFile reads a regular file at a cleaned path, refusing anything
// larger than maxBytes (DefaultMaxReadBytes when <= 0).
func ReadFile(path string, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxReadBytes
	}
	clean, err := CleanPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(clean) // #nosec G304 -- cleaned above
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s is not a regular file", clean)
	}
	if info.Size() > maxBytes {
		return nil, fmt.Errorf("%s: %w (%d > %d bytes)", clean, ErrFileTooLarge, info.Size(), maxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxBytes {
		return nil, fmt.Errorf("%s: %w", clean, ErrFileTooLarge)
	}
	return data, nil
}
