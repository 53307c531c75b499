package main

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// FilterEnv is the environment a filter expression is evaluated against
type FilterEnv struct {
	Path string
	Key  string
	Host string
}

// URLFilter keeps puzzle URLs for which a boolean expression holds
type URLFilter struct {
	source  string
	program *vm.Program
}

// NewURLFilter compiles source. An empty source yields a filter that keeps everything.
func NewURLFilter(source string) (*URLFilter, error) {
	if source == "" {
		return &URLFilter{}, nil
	}

	program, err := expr.Compile(source, expr.Env(FilterEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compiling filter %q: %w", source, err)
	}
	return &URLFilter{source: source, program: program}, nil
}

// Keep reports whether u passes the filter.
func (f *URLFilter) Keep(u PuzzleURL, host string) (bool, error) {
	if f == nil || f.program == nil {
		return true, nil
	}

	out, err := expr.Run(f.program, FilterEnv{Path: u.Path, Key: u.Key, Host: host})
	if err != nil {
		return false, fmt.Errorf("evaluating filter %q on %s: %w", f.source, u.Path, err)
	}
	keep, _ := out.(bool)
	return keep, nil
}

// Apply returns the URLs that pass the filter, in order.
func (f *URLFilter) Apply(urls []PuzzleURL, host string) ([]PuzzleURL, error) {
	if f == nil || f.program == nil {
		return urls, nil
	}

	kept := make([]PuzzleURL, 0, len(urls))
	for _, u := range urls {
		ok, err := f.Keep(u, host)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, u)
		}
	}
	return kept, nil
}
