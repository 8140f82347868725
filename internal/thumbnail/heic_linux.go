//go:build linux && cgo

package thumbnail

import (
	"fmt"
	"image"
	"os"

	"github.com/jdeng/goheif"
)

func decodeHEICFile(src string) (image.Image, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", src, ErrSource, err)
	}
	defer f.Close()

	img, err := goheif.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", src, ErrDecode, err)
	}
	return img, nil
}

// heicSupported returns whether HEIC decoding is available on this platform
func heicSupported() bool {
	return true
}
