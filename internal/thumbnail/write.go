package thumbnail

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

func writePNG(img image.Image, out string) (string, error) {
	return writeImage(out, ".png", func(f *os.File) error {
		return png.Encode(f, img)
	})
}

func writeJPEG(img image.Image, out string, quality int) (string, error) {
	return writeImage(out, ".jpg", func(f *os.File) error {
		return jpeg.Encode(f, img, &jpeg.Options{Quality: quality})
	})
}

// writeImage encodes into a sibling temp file and renames it over out,
// so readers of out only ever see a complete image. An empty out gets
// a fresh file in the system temp dir.
func writeImage(out, ext string, encode func(*os.File) error) (string, error) {
	if out == "" {
		f, err := os.CreateTemp("", "thumbnav-*"+ext)
		if err != nil {
			return "", err
		}
		if err := encode(f); err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", fmt.Errorf("encode %s: %w", f.Name(), err)
		}
		return f.Name(), f.Close()
	}

	tmp := filepath.Join(filepath.Dir(out), "."+uuid.NewString()+".tmp")
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	if err := encode(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("encode %s: %w", out, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, out); err != nil {
		os.Remove(tmp)
		return "", err
	}
	return out, nil
}
