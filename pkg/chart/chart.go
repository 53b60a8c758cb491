package chart

import (
	"bytes"
	"image"
	"image/color"

	"github.com/fogleman/gg"

	"imagefx/pkg/effect"
)

const margin = 40.0

var (
	colorsRGB  = []color.Color{color.RGBA{R: 220, A: 255}, color.RGBA{G: 160, A: 255}, color.RGBA{B: 220, A: 255}}
	colorsGray = []color.Color{color.Black}
)

// Render draws the histogram as one curve per channel.
func Render(h effect.Histogram, width, height int) image.Image {
	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	left, top := margin, margin
	right, bottom := float64(width)-margin/2, float64(height)-margin

	dc.SetRGB(0, 0, 0)
	dc.DrawStringAnchored("Image Histogram", float64(width)/2, margin/2, 0.5, 0.5)
	dc.DrawStringAnchored("Pixel Intensity", (left+right)/2, float64(height)-margin/4, 0.5, 0)
	dc.DrawStringAnchored("0", left, bottom+12, 0.5, 0.5)
	dc.DrawStringAnchored("255", right, bottom+12, 0.5, 0.5)

	dc.SetLineWidth(1)
	dc.DrawLine(left, bottom, right, bottom)
	dc.DrawLine(left, top, left, bottom)
	dc.Stroke()

	peak := h.Peak()
	if peak == 0 || right <= left || bottom <= top {
		return dc.Image()
	}

	palette := colorsRGB
	if h.Gray() {
		palette = colorsGray
	}

	sx := (right - left) / 255
	sy := (bottom - top) / float64(peak)

	dc.SetLineWidth(1.5)
	for i, bins := range h.Channels {
		dc.SetColor(palette[i%len(palette)])
		for v, n := range bins {
			x, y := left+float64(v)*sx, bottom-float64(n)*sy
			if v == 0 {
				dc.MoveTo(x, y)
			} else {
				dc.LineTo(x, y)
			}
		}
		dc.Stroke()
	}

	return dc.Image()
}

// PNG renders the histogram and encodes it.
func PNG(h effect.Histogram, width, height int) ([]byte, error) {
	dc := gg.NewContextForImage(Render(h, width, height))
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
