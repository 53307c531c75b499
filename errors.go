package main

import (
	"errors"
	"fmt"
)

var (
	ErrMissingArgument = errors.New("missing log file argument")
	ErrFileNotFound    = errors.New("file not found")
	ErrPatternNotFound = errors.New("pattern not found")
	ErrDirectoryExists = errors.New("directory already exists")
	ErrTransfer        = errors.New("transfer failed")
	ErrConfigInvalid   = errors.New("invalid configuration")
)

// HTTPError represents an HTTP error with status code
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// TransferError reports a failed image retrieval. It matches ErrTransfer
// with errors.Is and unwraps to the underlying cause.
type TransferError struct {
	URL   string
	Index int
	Err   error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("%v: img%d from %s: %v", ErrTransfer, e.Index, e.URL, e.Err)
}

func (e *TransferError) Is(target error) bool {
	return target == ErrTransfer
}

func (e *TransferError) Unwrap() error {
	return e.Err
}

func NewFileError(path string, reason error) error {
	return fmt.Errorf("%w: %s: %v", ErrFileNotFound, path, reason)
}

func NewPatternError(pattern, subject string) error {
	return fmt.Errorf("%w: %s in %q", ErrPatternNotFound, pattern, subject)
}

func NewConfigError(field string, value interface{}) error {
	return fmt.Errorf("%w: field=%s value=%v", ErrConfigInvalid, field, value)
}
