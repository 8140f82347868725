//go:build !linux || !cgo

package thumbnail

import (
	"fmt"
	"image"
)

func decodeHEICFile(src string) (image.Image, error) {
	return nil, fmt.Errorf("%s: %w: HEIC decoding not available on this platform", src, ErrUnsupported)
}

// heicSupported returns whether HEIC decoding is available on this platform
func heicSupported() bool {
	return false
}
