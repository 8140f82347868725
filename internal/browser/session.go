// Package browser holds the directory browser state for one caller: the
// current directory, the clipboard and the last observed listing. Every
// operation runs synchronously on the calling goroutine and reports
// failure through an error instead of aborting.
package browser

import (
	"context"
	"errors"
	"os"
	"runtime"

	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"

	"github.com/justyntemme/thumbnav/internal/debug"
	"github.com/justyntemme/thumbnav/internal/fs"
	"github.com/justyntemme/thumbnav/internal/store"
	"github.com/justyntemme/thumbnav/internal/thumbnail"
)

// Thumbnailer returns a preview image path for a source file.
// *thumbnail.Cache satisfies it.
type Thumbnailer interface {
	Get(ctx context.Context, src string) (string, error)
}

// SettingsStore persists session settings. *store.DB satisfies it.
type SettingsStore interface {
	SaveSetting(key, value string) error
}

// Opener hands a file to the desktop's default application.
type Opener func(path string) error

type Options struct {
	Dir        string // Starting directory, home when empty
	ShowHidden bool
	Thumbnails Thumbnailer   // Optional
	Settings   SettingsStore // Optional
	Open       Opener        // Defaults to the platform opener
	Platform   string        // Defaults to runtime.GOOS
}

type Session struct {
	dir        string
	showHidden bool
	clipboard  Clipboard

	snapshot    fs.Listing
	hasSnapshot bool

	thumbs   Thumbnailer
	settings SettingsStore
	open     Opener
	platform string
	rename   func(oldPath, newPath string) error
}

// NewSession starts a session in opts.Dir. The directory is not listed
// until List is called.
func NewSession(opts Options) (*Session, error) {
	dir := opts.Dir
	if dir == "" {
		home, err := homedir.Dir()
		if err != nil {
			return nil, err
		}
		dir = home
	}
	dir, err := expandPath(dir, "")
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &OpError{Op: "start", Path: dir, Err: ErrNotFound}
	}
	if !info.IsDir() {
		return nil, &OpError{Op: "start", Path: dir, Err: ErrNotDir}
	}

	s := &Session{
		dir:        dir,
		showHidden: opts.ShowHidden,
		thumbs:     opts.Thumbnails,
		settings:   opts.Settings,
		open:       opts.Open,
		platform:   opts.Platform,
		rename:     os.Rename,
	}
	if s.open == nil {
		s.open = platformOpen
	}
	if s.platform == "" {
		s.platform = runtime.GOOS
	}
	return s, nil
}

// Dir returns the current directory.
func (s *Session) Dir() string {
	return s.dir
}

// ShowHidden reports whether dotfiles are listed.
func (s *Session) ShowHidden() bool {
	return s.showHidden
}

// SetShowHidden toggles dotfiles and drops the snapshot.
func (s *Session) SetShowHidden(show bool) {
	s.showHidden = show
	s.hasSnapshot = false
	if s.settings != nil {
		value := "false"
		if show {
			value = "true"
		}
		if err := s.settings.SaveSetting(store.SettingShowHidden, value); err != nil {
			logrus.WithError(err).Warn("browser: could not persist show_hidden")
		}
	}
}

// List reads the current directory and remembers the result as the
// snapshot later index-addressed operations are checked against.
func (s *Session) List() (fs.Listing, error) {
	listing, err := fs.List(s.dir, s.showHidden)
	s.snapshot = listing
	s.hasSnapshot = true
	if err != nil {
		logrus.WithError(err).Warnf("browser: error reading directory %s", s.dir)
		return listing, &OpError{Op: "list", Path: s.dir, Err: err}
	}
	return listing, nil
}

// Names returns the names of the last observed listing, listing the
// directory first if nothing has been observed yet.
func (s *Session) Names() []string {
	return s.view().Names()
}

func (s *Session) view() fs.Listing {
	if !s.hasSnapshot {
		s.List()
	}
	return s.snapshot
}

// resolve maps an index onto the live directory. The directory is read
// again and must match the snapshot the caller's index came from.
func (s *Session) resolve(op string, i int) (fs.Entry, error) {
	current, err := fs.List(s.dir, s.showHidden)
	if err != nil {
		return fs.Entry{}, s.fail(&OpError{Op: op, Path: s.dir, Err: err})
	}
	if s.hasSnapshot && !current.SameAs(s.snapshot) {
		s.snapshot = current
		return fs.Entry{}, s.fail(&OpError{Op: op, Path: s.dir, Err: ErrStaleListing})
	}
	s.snapshot = current
	s.hasSnapshot = true

	e, ok := current.At(i)
	if !ok {
		return fs.Entry{}, s.fail(&OpError{Op: op, Path: s.dir, Err: ErrIndex})
	}
	return e, nil
}

// refresh re-reads the directory after a mutation.
func (s *Session) refresh() {
	s.hasSnapshot = false
	s.List()
}

func (s *Session) fail(err error) error {
	logrus.WithError(err).Warn("browser: operation failed")
	return err
}

// IsDir reports whether index i of the observed listing is a directory.
func (s *Session) IsDir(i int) bool {
	e, ok := s.view().At(i)
	return ok && e.IsDir
}

// Thumbnail returns a preview path for index i, or "" when there is
// none. Thumbnail failures are never reported to the caller.
func (s *Session) Thumbnail(i int) string {
	e, ok := s.view().At(i)
	if !ok || e.IsDir {
		return ""
	}
	return s.ThumbnailPath(e.Path)
}

// ThumbnailPath is Thumbnail for an explicit path.
func (s *Session) ThumbnailPath(path string) string {
	if s.thumbs == nil {
		return ""
	}
	thumb, err := s.thumbs.Get(context.Background(), path)
	if errors.Is(err, thumbnail.ErrUnsupported) {
		debug.Log(debug.BROWSER, "no thumbnail for %s: %v", path, err)
		return ""
	}
	if err != nil {
		logrus.WithError(err).Warnf("browser: thumbnail failed for %s", path)
		return ""
	}
	return thumb
}
