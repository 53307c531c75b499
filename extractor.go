package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/nxadm/tail"
	"go.uber.org/zap"
)

var hostPattern = regexp.MustCompile(`_(\S+)`)

// URLExtractor finds puzzle URLs in an Apache access log
type URLExtractor struct {
	settings *Settings
	log      *zap.SugaredLogger
}

// NewURLExtractor creates an extractor using validated settings
func NewURLExtractor(settings *Settings, log *zap.SugaredLogger) *URLExtractor {
	return &URLExtractor{settings: settings, log: log}
}

// ReadURLs returns the absolute puzzle URLs from the given log file,
// deduplicated and ordered. The hostname comes from the file name itself.
func (e *URLExtractor) ReadURLs(ctx context.Context, filename string) ([]string, error) {
	host, err := HostFromFilename(filename, e.settings.LogSuffix)
	if err != nil {
		return nil, err
	}

	paths, err := scanPuzzlePaths(ctx, filename, e.settings.puzzleRe)
	if err != nil {
		return nil, err
	}
	e.log.Debugf("Found %d puzzle matches in %s", len(paths), filename)

	paths = Dedupe(paths)
	urls, byKey := SortURLs(paths, e.settings.keyRe)
	if byKey {
		e.log.Debugf("Ordering %d URLs by trailing key", len(urls))
	} else {
		e.log.Debugf("Ordering %d URLs lexicographically", len(urls))
	}

	urls, err = e.settings.filter.Apply(urls, host)
	if err != nil {
		return nil, err
	}

	prefix := e.settings.Scheme + "://" + host
	absolute := make([]string, len(urls))
	for i, u := range urls {
		absolute[i] = prefix + u.Path
	}
	return absolute, nil
}

// HostFromFilename derives the site hostname from the text following the
// first underscore of the file's base name. A trailing suffix such as
// ".log" is stripped first.
func HostFromFilename(filename, suffix string) (string, error) {
	name := filepath.Base(filename)
	if suffix != "" {
		name = strings.TrimSuffix(name, suffix)
	}

	m := hostPattern.FindStringSubmatch(name)
	if m == nil {
		return "", NewPatternError(hostPattern.String(), name)
	}
	return m[1], nil
}

// scanPuzzlePaths reads filename line by line and records the first match of
// re on each line.
func scanPuzzlePaths(ctx context.Context, filename string, re *regexp.Regexp) ([]string, error) {
	t, err := tail.TailFile(filename, tail.Config{
		Follow:    false,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewFileError(filename, err)
		}
		return nil, fmt.Errorf("opening %s: %w", filename, err)
	}

	var paths []string
	for {
		select {
		case <-ctx.Done():
			t.Kill(ctx.Err())
			return nil, ctx.Err()
		case line, ok := <-t.Lines:
			if !ok {
				if err := t.Stop(); err != nil {
					return nil, fmt.Errorf("reading %s: %w", filename, err)
				}
				return paths, nil
			}
			if line.Err != nil {
				t.Stop()
				return nil, fmt.Errorf("reading %s: %w", filename, line.Err)
			}
			if m := re.FindString(line.Text); m != "" {
				paths = append(paths, m)
			}
		}
	}
}

// Dedupe removes repeated entries, keeping the first occurrence of each.
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// SortURLs orders paths. If any path carries a trailing key the whole list
// is sorted by key (paths without one use the full path as key); otherwise
// it is sorted lexicographically. The returned flag reports which order was
// used.
func SortURLs(paths []string, keyRe *regexp.Regexp) ([]PuzzleURL, bool) {
	urls := make([]PuzzleURL, len(paths))
	byKey := false
	for i, p := range paths {
		urls[i] = PuzzleURL{Path: p}
		if m := keyRe.FindStringSubmatch(p); m != nil {
			urls[i].Key = m[1]
			byKey = true
		}
	}

	if byKey {
		slices.SortStableFunc(urls, func(a, b PuzzleURL) int {
			return strings.Compare(sortKey(a), sortKey(b))
		})
	} else {
		slices.SortFunc(urls, func(a, b PuzzleURL) int {
			return strings.Compare(a.Path, b.Path)
		})
	}
	return urls, byKey
}

func sortKey(u PuzzleURL) string {
	if u.Key != "" {
		return u.Key
	}
	return u.Path
}
