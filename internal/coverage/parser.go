package coverage

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding/unicode"

	"github.com/zjy-dev/gcovlens/internal/logger"
)

const (
	// DefaultExtension is the suffix of gcov annotation files.
	DefaultExtension = ".gcov"

	initialLineBuffer = 64 * 1024
	maxLineSize       = 64 * 1024 * 1024
)

// Parse reads a gcov dump and builds its coverage model. Invalid UTF-8 is
// replaced rather than rejected. name is used for diagnostics and for the
// source path fallback when the dump carries no Source header.
func Parse(r io.Reader, name string) (*FileCoverage, error) {
	decoded := unicode.UTF8.NewDecoder().Reader(r)

	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, initialLineBuffer), maxLineSize)

	fc := NewFileCoverage("")
	source := ""

	for scanner.Scan() {
		raw := scanner.Text()

		if key, value, ok := ParseHeader(raw); ok {
			if key == HeaderSource {
				if s := NormalizeSource(value); s != "" {
					source = s
				}
			}
			continue
		}
		if key, value, ok := parseRecordHeader(raw); ok {
			if key == HeaderSource {
				if s := NormalizeSource(value); s != "" {
					source = s
				}
			}
			continue
		}

		rec, ok := ParseLine(raw)
		if !ok {
			continue
		}
		if fc.set(rec) {
			logger.Debug("%s: line %d appears more than once, keeping the last record", name, rec.Number)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	if source == "" {
		source = fallbackSource(name)
	}
	fc.Source = source
	return fc, nil
}

// ParseFile parses the gcov dump at path on fs.
func ParseFile(fs afero.Fs, path string) (*FileCoverage, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f, path)
}

// fallbackSource is the base name of the dump without its extension.
func fallbackSource(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
