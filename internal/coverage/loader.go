package coverage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/zjy-dev/gcovlens/internal/logger"
)

// FallbackDir is probed once when a run directory holds no coverage files.
const FallbackDir = "codecov"

// ErrNotDirectory is returned when a run path is missing or not a directory.
var ErrNotDirectory = errors.New("not a directory")

// Loader scans a directory tree for gcov dumps and merges them into a Run.
//
// Files are merged in lexicographic path order, so when two dumps describe the
// same source the one with the greatest path wins regardless of how the
// parsing work was scheduled.
type Loader struct {
	fs        afero.Fs
	extension string
	workers   int
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithExtension sets the coverage file suffix (default ".gcov").
func WithExtension(ext string) LoaderOption {
	return func(l *Loader) {
		if ext == "" {
			return
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		l.extension = ext
	}
}

// WithWorkers bounds the number of files parsed concurrently. Values below 1
// select runtime.NumCPU().
func WithWorkers(n int) LoaderOption {
	return func(l *Loader) {
		l.workers = n
	}
}

// NewLoader creates a Loader reading from fs.
func NewLoader(fs afero.Fs, opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:        fs,
		extension: DefaultExtension,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.workers < 1 {
		l.workers = runtime.NumCPU()
	}
	return l
}

// LoadDir loads dir from the operating system filesystem with default options.
func LoadDir(ctx context.Context, dir string) (Run, error) {
	return NewLoader(afero.NewOsFs()).Load(ctx, dir)
}

// Load scans dir recursively. If nothing is found it retries once inside
// dir/codecov. A missing or non-directory dir is an error; unreadable files
// are logged and skipped.
func (l *Loader) Load(ctx context.Context, dir string) (Run, error) {
	if err := l.checkDir(dir); err != nil {
		return nil, err
	}

	run, err := l.scan(ctx, dir)
	if err != nil {
		return nil, err
	}
	if len(run) > 0 {
		return run, nil
	}

	fallback := filepath.Join(dir, FallbackDir)
	if ok, _ := afero.DirExists(l.fs, fallback); !ok {
		return run, nil
	}
	logger.Debug("no %s files under %s, trying %s", l.extension, dir, fallback)
	// The trailing separator lets the walk enter a symlinked directory.
	return l.scan(ctx, fallback+string(filepath.Separator))
}

func (l *Loader) checkDir(dir string) error {
	info, err := l.fs.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s: %w", dir, ErrNotDirectory)
		}
		return fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}
	return nil
}

// scan parses every coverage file under dir and merges them in path order.
func (l *Loader) scan(ctx context.Context, dir string) (Run, error) {
	paths, err := l.collect(dir)
	if err != nil {
		return nil, err
	}

	results := make([]*FileCoverage, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fc, err := ParseFile(l.fs, p)
			if err != nil {
				logger.Warn("failed to parse %s: %v", p, err)
				return nil
			}
			results[i] = fc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	run := make(Run)
	for i, fc := range results {
		if fc == nil {
			continue
		}
		if _, ok := run[fc.Source]; ok {
			logger.Debug("%s replaces an earlier dump for %s", paths[i], fc.Source)
		}
		run[fc.Source] = fc
	}
	return run, nil
}

// collect returns the coverage files under dir in lexicographic order.
func (l *Loader) collect(dir string) ([]string, error) {
	var paths []string
	err := afero.Walk(l.fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			logger.Warn("skipping %s: %v", p, err)
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		isFile := info.Mode().IsRegular() || info.Mode()&os.ModeSymlink != 0
		if isFile && strings.HasSuffix(info.Name(), l.extension) {
			paths = append(paths, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	sort.Strings(paths)
	return paths, nil
}
