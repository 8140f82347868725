package fs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/justyntemme/thumbnav/internal/debug"
)

// ParentName is the synthetic entry that always heads a listing.
const ParentName = ".."

// HiddenPrefix marks entries excluded from listings unless hidden files are shown.
const HiddenPrefix = "."

// ErrNotDir is returned when a listing is requested for something that is not a directory.
var ErrNotDir = errors.New("not a directory")

type Entry struct {
	Name    string
	Path    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// IsParent reports whether e is the synthetic parent marker.
func (e Entry) IsParent() bool {
	return e.Name == ParentName
}

// Listing is one observation of a directory: parent marker first, then
// directories, then files, each group in lexicographic order.
type Listing struct {
	Dir     string
	Entries []Entry
}

// Names returns the entry names in listing order.
func (l Listing) Names() []string {
	names := make([]string, len(l.Entries))
	for i, e := range l.Entries {
		names[i] = e.Name
	}
	return names
}

// At resolves a listing index.
func (l Listing) At(i int) (Entry, bool) {
	if i < 0 || i >= len(l.Entries) {
		return Entry{}, false
	}
	return l.Entries[i], true
}

// Len returns the number of entries including the parent marker.
func (l Listing) Len() int {
	return len(l.Entries)
}

// SameAs reports whether two listings resolve every index to the same
// name and kind. Sizes and times are ignored.
func (l Listing) SameAs(other Listing) bool {
	if l.Dir != other.Dir || len(l.Entries) != len(other.Entries) {
		return false
	}
	for i := range l.Entries {
		if l.Entries[i].Name != other.Entries[i].Name || l.Entries[i].IsDir != other.Entries[i].IsDir {
			return false
		}
	}
	return true
}

// IsHidden reports whether name follows the dotfile convention.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, HiddenPrefix)
}

// List reads dir and returns its ordered listing. On error the listing
// still carries the parent marker so callers can always navigate up.
func List(dir string, showHidden bool) (Listing, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Listing{Dir: dir, Entries: []Entry{parentEntry(dir)}}, err
	}

	listing := Listing{Dir: abs, Entries: []Entry{parentEntry(abs)}}

	info, err := os.Stat(abs)
	if err != nil {
		return listing, err
	}
	if !info.IsDir() {
		return listing, fmt.Errorf("%s: %w", abs, ErrNotDir)
	}

	entries, err := ReadDir(abs)
	if err != nil {
		return listing, err
	}

	var dirs, files []Entry
	for _, e := range entries {
		if !showHidden && IsHidden(e.Name) {
			continue
		}
		if e.IsDir {
			dirs = append(dirs, e)
		} else {
			files = append(files, e)
		}
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	listing.Entries = append(listing.Entries, dirs...)
	listing.Entries = append(listing.Entries, files...)

	debug.Log(debug.FS, "List: %q -> %d dirs, %d files (hidden shown=%v)", abs, len(dirs), len(files), showHidden)
	return listing, nil
}

func parentEntry(dir string) Entry {
	return Entry{Name: ParentName, Path: filepath.Dir(dir), IsDir: true}
}

// ReadDir returns the direct children of path in no particular order.
func ReadDir(path string) ([]Entry, error) {
	debug.Log(debug.FS, "ReadDir: reading %q", path)

	var result []Entry
	var mu sync.Mutex

	// Follow symlinks so a link to a directory lists as a directory
	conf := &fastwalk.Config{
		Follow: true,
	}

	root := filepath.Clean(path)

	err := fastwalk.Walk(conf, path, func(fullPath string, d fs.DirEntry, err error) error {
		if err != nil {
			debug.Log(debug.FS_ENTRY, "ReadDir: walk error at %q: %v", fullPath, err)
			return nil
		}

		clean := filepath.Clean(fullPath)
		if clean == root {
			return nil
		}

		// Only direct children; a backslash is a legal name byte on unix
		if filepath.Dir(clean) != root {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		info, err := fastwalk.StatDirEntry(fullPath, d)
		if err != nil {
			// Broken symlink: describe the link itself
			info, err = os.Lstat(fullPath)
			if err != nil {
				debug.Log(debug.FS_ENTRY, "ReadDir: skipping %q: stat error: %v", d.Name(), err)
				return nil
			}
		}

		debug.Log(debug.FS_ENTRY, "ReadDir: %q isDir=%v size=%d mode=%s",
			d.Name(), info.IsDir(), info.Size(), info.Mode())

		mu.Lock()
		result = append(result, Entry{
			Name:    d.Name(),
			Path:    fullPath,
			IsDir:   info.IsDir(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		mu.Unlock()

		if d.IsDir() {
			return fastwalk.SkipDir
		}
		return nil
	})

	if err != nil {
		debug.Log(debug.FS, "ReadDir: walk error: %v", err)
		return nil, err
	}
	return result, nil
}

// TreeSize sums the sizes of all regular files below root. Symlinks are
// not followed so link cycles cannot loop.
func TreeSize(root string) (int64, error) {
	var total atomic.Int64

	conf := &fastwalk.Config{Follow: false}
	err := fastwalk.Walk(conf, root, func(fullPath string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		total.Add(info.Size())
		return nil
	})
	return total.Load(), err
}
