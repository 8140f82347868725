package thumbnail

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/h2non/filetype"

	"github.com/justyntemme/thumbnav/internal/debug"
)

// renderPDF rasterises the first page with poppler's pdftoppm.
func (c *Cache) renderPDF(ctx context.Context, src string) (image.Image, error) {
	if err := checkHeader(src, func(head []byte) bool { return filetype.Is(head, "pdf") }); err != nil {
		return nil, err
	}

	tool, err := exec.LookPath(c.opts.Pdftoppm)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.opts.Pdftoppm, ErrToolMissing)
	}

	tmpDir, err := os.MkdirTemp("", "thumbnav-pdf-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	root := filepath.Join(tmpDir, "page")
	// Scale so the long side is a little over the box; fit does the rest
	scale := strconv.Itoa(2 * max(c.opts.MaxWidth, c.opts.MaxHeight))
	cmd := exec.CommandContext(ctx, tool,
		"-f", "1", "-l", "1",
		"-singlefile",
		"-png",
		"-scale-to", scale,
		src, root,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%s: %w: pdftoppm: %v: %s", src, ErrDecode, err, strings.TrimSpace(string(out)))
	}

	f, err := os.Open(root + ".png")
	if err != nil {
		return nil, fmt.Errorf("%s: %w: pdftoppm produced no page: %v", src, ErrDecode, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", src, ErrDecode, err)
	}
	return img, nil
}

// renderVideo grabs one frame at the configured offset with ffmpeg.
func (c *Cache) renderVideo(ctx context.Context, src string) (image.Image, error) {
	tool, err := exec.LookPath(c.opts.Ffmpeg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.opts.Ffmpeg, ErrToolMissing)
	}

	offset := strconv.FormatFloat(c.opts.VideoOffset, 'f', 3, 64)
	cmd := exec.CommandContext(ctx, tool,
		"-hide_banner", "-loglevel", "error",
		"-ss", offset,
		"-i", src,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	debug.Log(debug.THUMB, "ffmpeg frame at %ss from %s", offset, src)
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s: %w: ffmpeg: %v: %s", src, ErrDecode, err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%s: %w: no frame at %ss", src, ErrDecode, offset)
	}

	img, err := png.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", src, ErrDecode, err)
	}
	return img, nil
}

func checkHeader(src string, ok func(head []byte) bool) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", src, ErrSource, err)
	}
	defer f.Close()

	head, err := sniff(f)
	if err != nil {
		return fmt.Errorf("%s: %w: %v", src, ErrSource, err)
	}
	if !ok(head) {
		return fmt.Errorf("%s: %w: content does not match extension", src, ErrDecode)
	}
	return nil
}
