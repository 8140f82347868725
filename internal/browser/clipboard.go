package browser

import (
	"os"
	"path/filepath"

	"github.com/justyntemme/thumbnav/internal/debug"
)

// ClipMode is the pending clipboard operation.
type ClipMode int

const (
	ClipNone ClipMode = iota
	ClipCopy
	ClipCut
)

func (m ClipMode) String() string {
	switch m {
	case ClipCopy:
		return "copy"
	case ClipCut:
		return "cut"
	}
	return "none"
}

// Clipboard holds at most one pending copy or cut.
type Clipboard struct {
	Mode ClipMode
	Path string
}

// Empty reports whether nothing is pending.
func (c Clipboard) Empty() bool {
	return c.Mode == ClipNone || c.Path == ""
}

// Clipboard returns the pending operation.
func (s *Session) Clipboard() Clipboard {
	return s.clipboard
}

// Copy records index i for a later Paste, replacing whatever was pending.
func (s *Session) Copy(i int) error {
	return s.clip("copy", i, ClipCopy)
}

// Cut is Copy, but Paste moves instead of copying.
func (s *Session) Cut(i int) error {
	return s.clip("cut", i, ClipCut)
}

// CopyPath records an explicit path for copying.
func (s *Session) CopyPath(path string) error {
	return s.clipPath("copy", path, ClipCopy)
}

// CutPath records an explicit path for moving.
func (s *Session) CutPath(path string) error {
	return s.clipPath("cut", path, ClipCut)
}

func (s *Session) clip(op string, i int, mode ClipMode) error {
	e, err := s.resolve(op, i)
	if err != nil {
		return err
	}
	if e.IsParent() {
		return s.fail(&OpError{Op: op, Path: e.Path, Err: ErrInvalidName})
	}
	s.setClipboard(mode, e.Path)
	return nil
}

func (s *Session) clipPath(op, path string, mode ClipMode) error {
	abs, err := expandPath(path, s.dir)
	if err != nil {
		return s.fail(&OpError{Op: op, Path: path, Err: err})
	}
	if !pathExists(abs) {
		return s.fail(&OpError{Op: op, Path: abs, Err: ErrNotFound})
	}
	s.setClipboard(mode, abs)
	return nil
}

func (s *Session) setClipboard(mode ClipMode, path string) {
	debug.Log(debug.BROWSER, "clipboard: %s %s", mode, path)
	s.clipboard = Clipboard{Mode: mode, Path: path}
}

// Paste copies or moves the clipboard source into the current directory
// under its own base name. Nothing changes when the clipboard is empty,
// the source is gone or the name is taken; the clipboard is cleared only
// when the paste succeeds.
func (s *Session) Paste() error {
	clip := s.clipboard
	if clip.Empty() {
		return s.fail(&OpError{Op: "paste", Err: ErrClipboardEmpty})
	}

	if !pathExists(clip.Path) {
		return s.fail(&OpError{Op: "paste", Path: clip.Path, Err: ErrNotFound})
	}

	dst := filepath.Join(s.dir, filepath.Base(clip.Path))
	if pathExists(dst) {
		return s.fail(&OpError{Op: "paste", Path: dst, Err: ErrExists})
	}
	if isWithin(dst, clip.Path) {
		return s.fail(&OpError{Op: "paste", Path: dst, Err: ErrRecursive})
	}

	var err error
	if clip.Mode == ClipCut {
		err = movePath(clip.Path, dst)
	} else {
		err = copyPath(clip.Path, dst)
	}
	if err != nil {
		return s.fail(&OpError{Op: "paste", Path: dst, Err: err})
	}

	debug.Log(debug.BROWSER, "paste: %s %s -> %s", clip.Mode, clip.Path, dst)
	s.clipboard = Clipboard{}
	s.refresh()
	return nil
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
