// Package thumbnail maps source files to preview images persisted in a
// cache directory. Cache files are named by the md5 of the absolute
// source path, so the same path always resolves to the same file.
// Entries never expire and are not invalidated when the source changes.
package thumbnail

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/justyntemme/thumbnav/internal/debug"
	"github.com/justyntemme/thumbnav/internal/fs"
	"github.com/justyntemme/thumbnav/internal/store"
)

var (
	// ErrUnsupported means no generator handles the source extension.
	ErrUnsupported = errors.New("thumbnail: unsupported file type")
	// ErrSource means the source is missing, unreadable or a directory.
	ErrSource = errors.New("thumbnail: unreadable source")
	// ErrDecode means the content could not be turned into an image.
	ErrDecode = errors.New("thumbnail: cannot decode content")
	// ErrToolMissing means an external renderer is not installed.
	ErrToolMissing = errors.New("thumbnail: renderer not installed")
)

// Index records generated thumbnails. *store.DB satisfies it.
type Index interface {
	RecordThumbnail(rec store.ThumbnailRecord) error
	Thumbnails() ([]store.ThumbnailRecord, error)
	CountThumbnails() (int, error)
	DeleteThumbnails() (int64, error)
}

type Options struct {
	Dir         string
	MaxWidth    int
	MaxHeight   int
	VideoOffset float64 // Seconds
	Pdftoppm    string
	Ffmpeg      string
	JpegQuality int
	Index       Index // Optional
}

// DefaultOptions returns the standard 180x200 box with a 1s video offset.
func DefaultOptions(dir string) Options {
	return Options{
		Dir:         dir,
		MaxWidth:    180,
		MaxHeight:   200,
		VideoOffset: 1.0,
		Pdftoppm:    "pdftoppm",
		Ffmpeg:      "ffmpeg",
		JpegQuality: 85,
	}
}

type Cache struct {
	opts Options
}

// Open creates the cache directory if needed and returns a cache over it.
func Open(opts Options) (*Cache, error) {
	if opts.Dir == "" {
		return nil, errors.New("thumbnail: cache directory not set")
	}
	def := DefaultOptions(opts.Dir)
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = def.MaxWidth
	}
	if opts.MaxHeight <= 0 {
		opts.MaxHeight = def.MaxHeight
	}
	if opts.VideoOffset < 0 {
		opts.VideoOffset = def.VideoOffset
	}
	if opts.Pdftoppm == "" {
		opts.Pdftoppm = def.Pdftoppm
	}
	if opts.Ffmpeg == "" {
		opts.Ffmpeg = def.Ffmpeg
	}
	if opts.JpegQuality <= 0 || opts.JpegQuality > 100 {
		opts.JpegQuality = def.JpegQuality
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("thumbnail: create cache dir: %w", err)
	}
	debug.Log(debug.THUMB, "cache at %s (box %dx%d)", opts.Dir, opts.MaxWidth, opts.MaxHeight)
	return &Cache{opts: opts}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.opts.Dir
}

// Key returns the cache key for path: the hex md5 of its absolute form.
func Key(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	sum := md5.Sum([]byte(abs))
	return hex.EncodeToString(sum[:]), nil
}

// PathFor returns where the thumbnail for src lives, whether or not it
// has been generated yet.
func (c *Cache) PathFor(src string) (string, error) {
	kind := KindFor(src)
	if kind == KindNone {
		return "", fmt.Errorf("%s: %w", src, ErrUnsupported)
	}
	key, err := Key(src)
	if err != nil {
		return "", fmt.Errorf("%s: %w", src, ErrSource)
	}
	return filepath.Join(c.opts.Dir, key+kind.Ext()), nil
}

// Get returns the cached thumbnail for src, generating it on a miss.
// A hit never reads the source file.
func (c *Cache) Get(ctx context.Context, src string) (string, error) {
	cachePath, err := c.PathFor(src)
	if err != nil {
		return "", err
	}

	if info, err := os.Stat(cachePath); err == nil && info.Mode().IsRegular() {
		debug.Log(debug.THUMB, "hit %s -> %s", src, cachePath)
		return cachePath, nil
	}

	debug.Log(debug.THUMB, "miss %s", src)
	if _, err := c.Generate(ctx, src, cachePath); err != nil {
		return "", err
	}

	c.record(src, cachePath)
	return cachePath, nil
}

// Generate renders a thumbnail for src into out without consulting the
// cache. An empty out writes to a new temporary file. The returned path
// is where the image was written.
func (c *Cache) Generate(ctx context.Context, src, out string) (path string, err error) {
	kind := KindFor(src)
	if kind == KindNone {
		return "", fmt.Errorf("%s: %w", src, ErrUnsupported)
	}

	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %v", src, ErrSource, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s: %w: is a directory", src, ErrSource)
	}

	// Decoders for hostile input can panic; that is a format error, not a crash
	defer func() {
		if r := recover(); r != nil {
			path = ""
			err = fmt.Errorf("%s: %w: panic: %v", src, ErrDecode, r)
		}
	}()

	start := time.Now()
	img, err := c.render(ctx, kind, src)
	if err != nil {
		return "", err
	}
	thumb := fit(img, c.opts.MaxWidth, c.opts.MaxHeight)

	if kind == KindVideo {
		path, err = writeJPEG(thumb, out, c.opts.JpegQuality)
	} else {
		path, err = writePNG(thumb, out)
	}
	if err != nil {
		return "", err
	}

	debug.Log(debug.THUMB, "generated %s (%s, %s source, %dx%d) in %s",
		path, kind, humanize.Bytes(uint64(info.Size())),
		thumb.Bounds().Dx(), thumb.Bounds().Dy(), time.Since(start))
	return path, nil
}

func (c *Cache) record(src, cachePath string) {
	if c.opts.Index == nil {
		return
	}
	abs, _ := filepath.Abs(src)
	key, _ := Key(src)
	rec := store.ThumbnailRecord{
		Key:       key,
		Source:    abs,
		CachePath: cachePath,
		Kind:      KindFor(src).String(),
	}
	if err := c.opts.Index.RecordThumbnail(rec); err != nil {
		// The file on disk is authoritative; the index is only bookkeeping
		logrus.WithError(err).Warnf("thumbnail: could not index %s", cachePath)
	}
}

// Entries returns the thumbnail index, or nil when the cache has none.
func (c *Cache) Entries() ([]store.ThumbnailRecord, error) {
	if c.opts.Index == nil {
		return nil, nil
	}
	return c.opts.Index.Thumbnails()
}

// Stats describes the cache directory.
type Stats struct {
	Files   int
	Bytes   int64
	Indexed int
}

var cacheFileRe = regexp.MustCompile(`^[0-9a-f]{32}\.(png|jpg)$`)

// Stats counts cache files on disk and rows in the index.
func (c *Cache) Stats() (Stats, error) {
	var st Stats
	entries, err := fs.ReadDir(c.opts.Dir)
	if err != nil {
		return st, err
	}
	for _, e := range entries {
		if e.IsDir || !cacheFileRe.MatchString(e.Name) {
			continue
		}
		st.Files++
		st.Bytes += e.Size
	}
	if c.opts.Index != nil {
		n, err := c.opts.Index.CountThumbnails()
		if err != nil {
			return st, err
		}
		st.Indexed = n
	}
	return st, nil
}

// Purge deletes every cache file and empties the index. Files in the
// directory that do not look like cache entries are left alone.
func (c *Cache) Purge() (int, error) {
	entries, err := fs.ReadDir(c.opts.Dir)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir || !cacheFileRe.MatchString(e.Name) {
			continue
		}
		if err := os.Remove(e.Path); err != nil {
			return removed, err
		}
		removed++
	}

	if c.opts.Index != nil {
		if _, err := c.opts.Index.DeleteThumbnails(); err != nil {
			return removed, err
		}
	}
	debug.Log(debug.THUMB, "purged %d files from %s", removed, c.opts.Dir)
	return removed, nil
}
