package browser

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"

	"github.com/justyntemme/thumbnav/internal/debug"
	"github.com/justyntemme/thumbnav/internal/store"
)

// expandPath resolves ~ and makes input absolute relative to base.
// An empty base means the process working directory.
func expandPath(input, base string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		input = "."
	}

	expanded, err := homedir.Expand(input)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(expanded) {
		return filepath.Clean(expanded), nil
	}
	if base != "" {
		return filepath.Clean(filepath.Join(base, expanded)), nil
	}
	return filepath.Abs(expanded)
}

// Open activates index i: a directory becomes the current directory,
// anything else is handed to the platform opener.
func (s *Session) Open(i int) error {
	e, err := s.resolve("open", i)
	if err != nil {
		return err
	}
	if e.IsDir {
		return s.chdir(e.Path)
	}
	return s.launch(e.Path)
}

// OpenPath is Open for a literal path. Relative paths are taken from the
// current directory and ~ is expanded.
func (s *Session) OpenPath(path string) error {
	target, err := expandPath(path, s.dir)
	if err != nil {
		return s.fail(&OpError{Op: "open", Path: path, Err: err})
	}

	info, err := os.Stat(target)
	if err != nil {
		return s.fail(&OpError{Op: "open", Path: target, Err: ErrNotFound})
	}
	if info.IsDir() {
		return s.chdir(target)
	}
	return s.launch(target)
}

// Up moves to the parent directory. It is a no-op at the root.
func (s *Session) Up() error {
	parent := filepath.Dir(s.dir)
	if parent == s.dir {
		return nil
	}
	return s.chdir(parent)
}

func (s *Session) chdir(dir string) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return s.fail(&OpError{Op: "open", Path: dir, Err: err})
	}

	debug.Log(debug.BROWSER, "chdir %s -> %s", s.dir, abs)
	s.dir = abs
	s.refresh()

	if s.settings != nil {
		if err := s.settings.SaveSetting(store.SettingLastPath, abs); err != nil {
			logrus.WithError(err).Warn("browser: could not persist last path")
		}
	}
	return nil
}

// launch does not wait for the opened application.
func (s *Session) launch(path string) error {
	debug.Log(debug.BROWSER, "open %s with %s default application", path, s.platform)
	if err := s.open(path); err != nil {
		return s.fail(&OpError{Op: "open", Path: path, Err: err})
	}
	return nil
}
