package effect

import "image"

// Histogram holds 256-bin intensity counts: R, G, B for colour images, a single
// channel for *image.Gray.
type Histogram struct {
	Channels [][256]int
}

func BuildHistogram(img image.Image) Histogram {
	if img == nil || img.Bounds().Empty() {
		return Histogram{}
	}

	return histogram(img)
}

func pureHistogram(img image.Image) Histogram {
	if g, ok := img.(*image.Gray); ok {
		var bins [256]int
		b := g.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			i := g.PixOffset(b.Min.X, y)
			for _, v := range g.Pix[i : i+b.Dx()] {
				bins[v]++
			}
		}
		return Histogram{Channels: [][256]int{bins}}
	}

	rgb := toRGB(img)
	h := Histogram{Channels: make([][256]int, 3)}
	for i := 0; i < len(rgb.Pix); i += 4 {
		h.Channels[0][rgb.Pix[i]]++
		h.Channels[1][rgb.Pix[i+1]]++
		h.Channels[2][rgb.Pix[i+2]]++
	}
	return h
}

func (h Histogram) Gray() bool {
	return len(h.Channels) == 1
}

// Total is the number of pixels counted in each channel.
func (h Histogram) Total() int {
	if len(h.Channels) == 0 {
		return 0
	}
	var n int
	for _, c := range h.Channels[0] {
		n += c
	}
	return n
}

// Peak is the largest bin over all channels.
func (h Histogram) Peak() int {
	var peak int
	for _, ch := range h.Channels {
		for _, c := range ch {
			if c > peak {
				peak = c
			}
		}
	}
	return peak
}
