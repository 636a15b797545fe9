package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultDirPattern selects the files a directory load picks up.
const DefaultDirPattern = "**/*.{yaml,yml,json}"

// LoadError records a per-file failure during a directory load.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// DirResult is the outcome of loading a directory.
type DirResult struct {
	// Files are the loaded route files, in lexical path order.
	Files []*RouteFile

	// Errors are per-file failures; files that fail do not abort the
	// rest of the load.
	Errors []*LoadError
}

// LoadDir loads every route file under dir whose path (relative to dir)
// matches the doublestar glob pattern. An empty pattern uses
// DefaultDirPattern.
func LoadDir(dir, pattern string) (*DirResult, error) {
	if pattern == "" {
		pattern = DefaultDirPattern
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
	}

	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("directory not found: %s", dir)
		}
		return nil, fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	result := &DirResult{}
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		matched, err := doublestar.Match(pattern, filepath.ToSlash(rel))
		if err != nil || !matched {
			return err
		}

		rf, err := Load(path)
		if err != nil {
			result.Errors = append(result.Errors, &LoadError{Path: path, Err: err})
			return nil
		}
		result.Files = append(result.Files, rf)
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("failed to walk directory: %w", walkErr)
	}
	return result, nil
}
