package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ErrNoImage means the bytes could not be turned into an image; callers show
// "no image available" instead of processing anything.
var ErrNoImage = errors.New("no image available")

// Loader produces one decoded image.
type Loader interface {
	Load(ctx context.Context) (image.Image, error)
}

var extensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".webp", ".gif"}

func Extensions() []string {
	return extensions
}

func SupportedExt(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Decode turns encoded bytes into an image, honouring EXIF orientation.
func Decode(bs []byte) (image.Image, error) {
	if len(bs) == 0 {
		return nil, fmt.Errorf("empty input: %w", ErrNoImage)
	}

	img, err := imaging.Decode(bytes.NewReader(bs), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %v: %w", err, ErrNoImage)
	}

	if img.Bounds().Empty() {
		return nil, fmt.Errorf("image has no pixels: %w", ErrNoImage)
	}

	return img, nil
}
