package app

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/mitchellh/go-homedir"

	"github.com/justyntemme/thumbnav/internal/browser"
)

// parseIndex reports whether arg is a listing index.
func parseIndex(arg string) (int, bool) {
	i, err := strconv.Atoi(arg)
	if err != nil || i < 0 {
		return 0, false
	}
	return i, true
}

// resolveArg turns an index of the current listing or a path into an
// absolute path. Relative paths are taken from the session directory.
func resolveArg(s *browser.Session, arg string) (string, error) {
	if i, ok := parseIndex(arg); ok {
		listing, err := s.List()
		if err != nil {
			return "", err
		}
		e, ok := listing.At(i)
		if !ok {
			return "", &browser.OpError{Op: "resolve", Path: arg, Err: browser.ErrIndex}
		}
		if e.IsParent() {
			return "", &browser.OpError{Op: "resolve", Path: e.Path, Err: browser.ErrInvalidName}
		}
		return e.Path, nil
	}
	return absFrom(s.Dir(), arg)
}

func absFrom(base, p string) (string, error) {
	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", p, err)
	}
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(base, expanded)
	}
	return filepath.Clean(expanded), nil
}
