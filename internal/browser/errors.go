package browser

import (
	"errors"
	"fmt"
)

var (
	ErrStaleListing        = errors.New("listing changed since it was last observed")
	ErrIndex               = errors.New("index out of range")
	ErrNotFound            = errors.New("no such file or directory")
	ErrExists              = errors.New("destination already exists")
	ErrNotDir              = errors.New("destination is not a directory")
	ErrClipboardEmpty      = errors.New("clipboard is empty")
	ErrUnsupportedPlatform = errors.New("operation not supported on this platform")
	ErrInvalidName         = errors.New("invalid name")
	ErrRecursive           = errors.New("cannot place a directory inside itself")
)

// OpError records a failed browser operation and the path it touched.
type OpError struct {
	Op   string
	Path string
	Err  error
}

func (e *OpError) Error() string {
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}
