package live

import (
	"fmt"
	"image"

	"github.com/pkg/errors"
)

// ChannelOrder is the byte order of a packed 3-channel pixel.
type ChannelOrder int

const (
	BGR ChannelOrder = iota
	RGB
)

func (o ChannelOrder) String() string {
	if o == RGB {
		return "rgb24"
	}
	return "bgr24"
}

// Frame is one video frame in a transport's native layout.
type Frame struct {
	Width  int
	Height int
	Order  ChannelOrder
	Pix    []byte
}

func (f Frame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return errors.Errorf("invalid frame size %dx%d", f.Width, f.Height)
	}
	if want := f.Width * f.Height * 3; len(f.Pix) != want {
		return errors.Errorf("frame %dx%d needs %d bytes, got %d", f.Width, f.Height, want, len(f.Pix))
	}
	return nil
}

// ToImage converts the frame to an opaque RGB image.
func (f Frame) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	r, b := 0, 2
	if f.Order == BGR {
		r, b = 2, 0
	}
	for i, j := 0, 0; i+2 < len(f.Pix) && j+3 < len(img.Pix); i, j = i+3, j+4 {
		img.Pix[j] = f.Pix[i+r]
		img.Pix[j+1] = f.Pix[i+1]
		img.Pix[j+2] = f.Pix[i+b]
		img.Pix[j+3] = 0xff
	}
	return img
}

// FromImage packs img into a frame with the given order. Single channel
// images are expanded so every frame carries three channels.
func FromImage(img image.Image, order ChannelOrder) Frame {
	b := img.Bounds()
	f := Frame{
		Width:  b.Dx(),
		Height: b.Dy(),
		Order:  order,
		Pix:    make([]byte, b.Dx()*b.Dy()*3),
	}

	r, bl := 0, 2
	if order == BGR {
		r, bl = 2, 0
	}

	i := 0
	switch src := img.(type) {
	case *image.Gray:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, y):]
			for x := 0; x < b.Dx(); x++ {
				f.Pix[i], f.Pix[i+1], f.Pix[i+2] = row[x], row[x], row[x]
				i += 3
			}
		}
	case *image.NRGBA:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, y):]
			for x := 0; x < b.Dx(); x++ {
				f.Pix[i+r], f.Pix[i+1], f.Pix[i+bl] = row[x*4], row[x*4+1], row[x*4+2]
				i += 3
			}
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				cr, cg, cb, _ := img.At(x, y).RGBA()
				f.Pix[i+r], f.Pix[i+1], f.Pix[i+bl] = uint8(cr>>8), uint8(cg>>8), uint8(cb>>8)
				i += 3
			}
		}
	}

	return f
}

func (f Frame) String() string {
	return fmt.Sprintf("%dx%d/%s", f.Width, f.Height, f.Order)
}
