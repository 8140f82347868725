package thumbnail

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/h2non/filetype"
	"github.com/nfnt/resize"
	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// sniffLen is how many leading bytes filetype needs to classify a file.
const sniffLen = 261

func (c *Cache) render(ctx context.Context, kind Kind, src string) (image.Image, error) {
	switch kind {
	case KindImage:
		return decodeImage(src)
	case KindHEIC:
		return decodeHEICFile(src)
	case KindPDF:
		return c.renderPDF(ctx, src)
	case KindVideo:
		return c.renderVideo(ctx, src)
	}
	return nil, fmt.Errorf("%s: %w", src, ErrUnsupported)
}

// sniff reads the file header so content that does not match its
// extension fails before a decoder sees it.
func sniff(f *os.File) ([]byte, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	return head[:n], nil
}

func decodeImage(src string) (image.Image, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", src, ErrSource, err)
	}
	defer f.Close()

	head, err := sniff(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", src, ErrSource, err)
	}
	if !filetype.IsImage(head) {
		return nil, fmt.Errorf("%s: %w: content is not an image", src, ErrDecode)
	}

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", src, ErrDecode, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%s: %w: empty image", src, ErrDecode)
	}
	return img, nil
}

// fit downscales img into a maxW x maxH box keeping its aspect ratio.
// Images already inside the box are returned unscaled.
func fit(img image.Image, maxW, maxH int) image.Image {
	if _, isPaletted := img.(*image.Paletted); isPaletted {
		rgba := image.NewRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
		img = rgba
	}
	return resize.Thumbnail(uint(maxW), uint(maxH), img, resize.Lanczos3)
}
