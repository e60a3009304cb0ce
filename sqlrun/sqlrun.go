package sqlrun

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/remiges-tech/logharbour/logharbour"
)

// Executor runs one SQL script. *store.Store satisfies it.
type Executor interface {
	ExecSQL(ctx context.Context, sql string) error
}

var ErrNoFiles = errors.New("no SQL files matched")

// FileError reports the script that stopped a run.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("sql file %s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Runner executes SQL files in order, stopping at the first failure.
type Runner struct {
	exec   Executor
	logger *logharbour.Logger
}

// NewRunner returns a Runner that sends scripts to exec.
func NewRunner(exec Executor, logger *logharbour.Logger) *Runner {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Runner{exec: exec, logger: logger.WithModule("sqlrun")}
}

// Discover returns the files under dir matching any of the doublestar
// patterns (e.g. "*.sql" or "features/**/*.sql"), without duplicates, in
// lexical order of their paths relative to dir.
func Discover(dir string, patterns []string) ([]string, error) {
	fsys := os.DirFS(dir)
	seen := make(map[string]bool)
	var matches []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("pattern %q: %w", pattern, doublestar.ErrBadPattern)
		}
		found, err := doublestar.Glob(fsys, pattern)
		if err != nil {
			return nil, fmt.Errorf("error globbing pattern %s in directory %s: %w", pattern, dir, err)
		}
		for _, m := range found {
			if info, err := fs.Stat(fsys, m); err != nil || info.IsDir() {
				continue
			}
			if !seen[m] {
				seen[m] = true
				matches = append(matches, m)
			}
		}
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w in %s for %v", ErrNoFiles, dir, patterns)
	}
	sort.Strings(matches)

	paths := make([]string, len(matches))
	for i, m := range matches {
		paths[i] = filepath.Join(dir, filepath.FromSlash(m))
	}
	return paths, nil
}

// Run executes each file in the given order and returns the files that
// completed. The first failure stops the run with a *FileError.
func (r *Runner) Run(ctx context.Context, paths []string) ([]string, error) {
	done := make([]string, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		script, err := os.ReadFile(path)
		if err != nil {
			return done, &FileError{Path: path, Err: err}
		}
		if strings.TrimSpace(string(script)) == "" {
			r.logger.Warn().LogActivity("Skipping empty SQL file", map[string]any{"file": path})
			done = append(done, path)
			continue
		}
		if err := r.exec.ExecSQL(ctx, string(script)); err != nil {
			r.logger.Error(err).LogActivity("SQL file failed", map[string]any{"file": path})
			return done, &FileError{Path: path, Err: err}
		}
		r.logger.Info().LogActivity("SQL file executed", map[string]any{"file": path})
		done = append(done, path)
	}
	return done, nil
}

// RunPatterns discovers files under dir and runs them.
func (r *Runner) RunPatterns(ctx context.Context, dir string, patterns []string) ([]string, error) {
	paths, err := Discover(dir, patterns)
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, paths)
}
