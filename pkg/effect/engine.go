package effect

import (
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// Apply runs e over img and returns a new image. img is never modified.
// Grayscale and CannyEdge produce *image.Gray. The other effects return
// *image.Gray for a *image.Gray input and *image.NRGBA otherwise.
func Apply(img image.Image, e Effect) (out image.Image, err error) {
	if img == nil {
		return nil, fmt.Errorf("image is nil: %w", ErrInvalidParam)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("image %v is empty: %w", img.Bounds(), ErrInvalidParam)
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%s: %v: %w", Describe(e), r, ErrInvalidParam)
		}
	}()

	switch v := e.(type) {
	case nil, None:
		return clone(img), nil
	case Grayscale:
		g, err := grayscale(img)
		return wrap(e, g, err)
	case Blur:
		return blur(img, v.KSize)
	case CannyEdge:
		g, err := grayscale(img)
		if err != nil {
			return wrap(e, g, err)
		}
		edges, err := canny(g, v.Threshold1, v.Threshold2)
		return wrap(e, edges, err)
	case BrightnessContrast:
		return brightnessContrast(img, v.Alpha, v.Beta)
	}

	return nil, fmt.Errorf("unsupported effect %T: %w", e, ErrInvalidParam)
}

// wrap tags a backend failure with the effect that caused it.
func wrap(e Effect, out *image.Gray, err error) (image.Image, error) {
	if err != nil {
		return nil, fmt.Errorf("%s: %v: %w", Describe(e), err, ErrInvalidParam)
	}
	return out, nil
}

func New(opts ...Option) *Engine {
	e := &Engine{
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Engine is Apply with logging. It holds no per-call state and is safe for concurrent use.
type Engine struct {
	logger *zap.Logger
}

type Option func(e *Engine)

func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		e.logger = logger.With(zap.String("via", "effect-engine"))
	}
}

func (e *Engine) Apply(img image.Image, eff Effect) (image.Image, error) {
	start := time.Now()
	out, err := Apply(img, eff)
	if err != nil {
		e.logger.With(zap.String("effect", Describe(eff)), zap.Error(err)).Info("apply failed")
		return nil, err
	}

	e.logger.With(
		zap.String("effect", Describe(eff)),
		zap.Int("w", out.Bounds().Dx()),
		zap.Int("h", out.Bounds().Dy()),
		zap.String("cost", time.Since(start).String()),
	).Debug("applied")

	return out, nil
}

// toRGB copies img into an opaque NRGBA buffer anchored at (0, 0).
func toRGB(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}

func clone(img image.Image) image.Image {
	if g, ok := img.(*image.Gray); ok {
		b := g.Bounds()
		dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		for y := 0; y < b.Dy(); y++ {
			i := g.PixOffset(b.Min.X, b.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:y*dst.Stride+b.Dx()], g.Pix[i:i+b.Dx()])
		}
		return dst
	}
	return toRGB(img)
}

// sameShape turns a per-channel result back into *image.Gray when src was
// single channel; the channels of such a result are equal.
func sameShape(src image.Image, out *image.NRGBA) image.Image {
	if _, ok := src.(*image.Gray); !ok {
		return out
	}
	dst := image.NewGray(out.Bounds())
	for i, j := 0, 0; i < len(out.Pix); i, j = i+4, j+1 {
		dst.Pix[j] = out.Pix[i]
	}
	return dst
}

func pureGrayscale(img image.Image) *image.Gray {
	luma := imaging.Grayscale(toRGB(img))
	dst := image.NewGray(luma.Bounds())
	for i, j := 0, 0; i < len(luma.Pix); i, j = i+4, j+1 {
		dst.Pix[j] = luma.Pix[i]
	}
	return dst
}
