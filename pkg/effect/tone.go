package effect

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// brightnessContrast maps every channel through clamp(alpha*v + beta, 0, 255).
func brightnessContrast(img image.Image, alpha float64, beta int) (image.Image, error) {
	if math.IsNaN(alpha) || math.IsInf(alpha, 0) {
		return nil, fmt.Errorf("alpha %v is not finite: %w", alpha, ErrInvalidParam)
	}

	var lut [256]uint8
	for v := range lut {
		lut[v] = saturate(alpha*float64(v) + float64(beta))
	}

	out := imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{R: lut[c.R], G: lut[c.G], B: lut[c.B], A: 0xff}
	})
	return sameShape(img, out), nil
}

func saturate(v float64) uint8 {
	v = math.RoundToEven(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
