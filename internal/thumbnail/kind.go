package thumbnail

import (
	"path/filepath"
	"strings"
)

// Kind selects the generator used for a source file.
type Kind int

const (
	KindNone Kind = iota
	KindImage
	KindPDF
	KindVideo
	KindHEIC
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindPDF:
		return "pdf"
	case KindVideo:
		return "video"
	case KindHEIC:
		return "heic"
	}
	return "none"
}

// Ext is the extension of cache files produced for this kind.
func (k Kind) Ext() string {
	if k == KindVideo {
		return ".jpg"
	}
	return ".png"
}

var kindsByExt = map[string]Kind{
	".pdf":  KindPDF,
	".mp4":  KindVideo,
	".mov":  KindVideo,
	".mkv":  KindVideo,
	".png":  KindImage,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".gif":  KindImage,
	".bmp":  KindImage,
	".tif":  KindImage,
	".tiff": KindImage,
	".webp": KindImage,
	".heic": KindHEIC,
	".heif": KindHEIC,
}

// KindFor picks a kind from the lower-cased extension of path.
// HEIC counts as unsupported where no decoder is built in.
func KindFor(path string) Kind {
	k := kindsByExt[strings.ToLower(filepath.Ext(path))]
	if k == KindHEIC && !heicSupported() {
		return KindNone
	}
	return k
}
