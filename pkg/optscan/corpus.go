// SPDX-License-Identifier: GPL-3.0-or-later

package optscan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/netdata/optprobe/logger"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/mitchellh/go-homedir"
	"github.com/sourcegraph/conc/pool"
)

const (
	maxCorpusFileSize = 16 << 20
	sniffLen          = 8000
)

// Corpus is the concatenated text of the files matched by a set of patterns.
type Corpus struct {
	Files []string
	Text  string
}

// CorpusLoader reads corpus files matched by doublestar patterns.
type CorpusLoader struct {
	*logger.Logger

	// Concurrency bounds parallel file reads; zero means 8.
	Concurrency int
}

type corpusFile struct {
	path string
	data []byte
}

// Load expands patterns (e.g. "/usr/src/linux*/tools/perf/tests/**") and reads
// every regular text file they match. Patterns that match nothing are logged
// and otherwise ignored, so a missing source tree yields an empty corpus.
// Files are concatenated in sorted path order.
func (l *CorpusLoader) Load(ctx context.Context, patterns []string) (*Corpus, error) {
	paths, err := l.expand(patterns)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return &Corpus{}, nil
	}

	n := l.Concurrency
	if n <= 0 {
		n = 8
	}

	p := pool.NewWithResults[*corpusFile]().WithContext(ctx).WithMaxGoroutines(n)

	for _, path := range paths {
		p.Go(func(ctx context.Context) (*corpusFile, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return l.readFile(path), nil
		})
	}

	files, err := p.Wait()
	if err != nil {
		return nil, fmt.Errorf("reading corpus: %w", err)
	}

	files = slices.DeleteFunc(files, func(f *corpusFile) bool { return f == nil })
	slices.SortFunc(files, func(a, b *corpusFile) int { return strings.Compare(a.path, b.path) })

	var buf strings.Builder
	corpus := &Corpus{Files: make([]string, 0, len(files))}

	for _, f := range files {
		corpus.Files = append(corpus.Files, f.path)
		buf.Write(f.data)
		if len(f.data) > 0 && f.data[len(f.data)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}
	corpus.Text = buf.String()

	l.Debugf("corpus: %d files, %d bytes", len(corpus.Files), len(corpus.Text))

	return corpus, nil
}

func (l *CorpusLoader) expand(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	for _, pattern := range patterns {
		pattern, err := homedir.Expand(pattern)
		if err != nil {
			return nil, fmt.Errorf("expanding corpus pattern: %v", err)
		}
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("invalid corpus pattern '%s'", pattern)
		}

		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly(), doublestar.WithNoFollow())
		if err != nil {
			return nil, fmt.Errorf("expanding corpus pattern '%s': %v", pattern, err)
		}
		if len(matches) == 0 {
			l.Warningf("corpus pattern '%s' matched no files", pattern)
			continue
		}

		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}

	return paths, nil
}

// readFile returns nil for files that cannot be used: unreadable, too large or binary.
func (l *CorpusLoader) readFile(path string) *corpusFile {
	fi, err := os.Stat(path)
	if err != nil {
		l.Debugf("corpus: skipping '%s': %v", path, err)
		return nil
	}
	if !fi.Mode().IsRegular() || fi.Size() > maxCorpusFileSize {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrPermission) {
			l.Warningf("corpus: reading '%s': %v", path, err)
		}
		return nil
	}

	if isBinary(data) {
		return nil
	}

	return &corpusFile{path: path, data: data}
}

func isBinary(data []byte) bool {
	return bytes.IndexByte(data[:min(len(data), sniffLen)], 0) >= 0
}
