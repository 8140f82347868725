package browser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/otiai10/copy"

	"github.com/justyntemme/thumbnav/internal/debug"
)

// renamePlatforms lists where Rename is implemented.
var renamePlatforms = map[string]bool{
	"linux": true,
}

// Rename gives index i a new name in the current directory. On platforms
// without rename support it only logs and returns ErrUnsupportedPlatform.
func (s *Session) Rename(i int, newName string) error {
	if !renamePlatforms[s.platform] {
		return s.fail(&OpError{Op: "rename", Path: newName, Err: ErrUnsupportedPlatform})
	}
	if !validName(newName) {
		return s.fail(&OpError{Op: "rename", Path: newName, Err: ErrInvalidName})
	}

	e, err := s.resolve("rename", i)
	if err != nil {
		return err
	}
	if e.IsParent() {
		return s.fail(&OpError{Op: "rename", Path: e.Path, Err: ErrInvalidName})
	}

	newPath := filepath.Join(s.dir, newName)
	if newPath == e.Path {
		return nil
	}
	if pathExists(newPath) {
		return s.fail(&OpError{Op: "rename", Path: newPath, Err: ErrExists})
	}

	if err := s.rename(e.Path, newPath); err != nil {
		return s.fail(&OpError{Op: "rename", Path: e.Path, Err: err})
	}

	debug.Log(debug.BROWSER, "renamed %s to %s", e.Path, newPath)
	s.refresh()
	return nil
}

// MoveTo moves src into dstDir under its own base name. This is the
// drag-and-drop path: both ends are explicit paths, not indices.
func (s *Session) MoveTo(src, dstDir string) error {
	srcAbs, err := expandPath(src, s.dir)
	if err != nil {
		return s.fail(&OpError{Op: "move", Path: src, Err: err})
	}
	dstAbs, err := expandPath(dstDir, s.dir)
	if err != nil {
		return s.fail(&OpError{Op: "move", Path: dstDir, Err: err})
	}

	if !pathExists(srcAbs) {
		return s.fail(&OpError{Op: "move", Path: srcAbs, Err: ErrNotFound})
	}
	info, err := os.Stat(dstAbs)
	if err != nil || !info.IsDir() {
		return s.fail(&OpError{Op: "move", Path: dstAbs, Err: ErrNotDir})
	}

	target := filepath.Join(dstAbs, filepath.Base(srcAbs))
	if pathExists(target) {
		return s.fail(&OpError{Op: "move", Path: target, Err: ErrExists})
	}
	if isWithin(target, srcAbs) {
		return s.fail(&OpError{Op: "move", Path: target, Err: ErrRecursive})
	}

	if err := movePath(srcAbs, target); err != nil {
		return s.fail(&OpError{Op: "move", Path: srcAbs, Err: err})
	}

	debug.Log(debug.BROWSER, "moved %s to %s", srcAbs, target)
	s.refresh()
	return nil
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && !strings.ContainsRune(name, filepath.Separator)
}

// isWithin reports whether path is root itself or lies below it.
func isWithin(path, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// copyPath copies a file or a whole tree, keeping modes and times.
func copyPath(src, dst string) error {
	return copy.Copy(src, dst, copy.Options{
		PreserveTimes: true,
		OnSymlink: func(string) copy.SymlinkAction {
			return copy.Shallow
		},
	})
}

// movePath renames, falling back to copy and delete across filesystems.
func movePath(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return err
	}

	debug.Log(debug.BROWSER, "move across devices: copying %s", src)
	if err := copyPath(src, dst); err != nil {
		os.RemoveAll(dst)
		return err
	}
	return os.RemoveAll(src)
}
