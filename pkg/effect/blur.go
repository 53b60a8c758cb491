package effect

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/gift"
)

// MaxKSize bounds the Gaussian kernel side; larger windows are rejected.
const MaxKSize = 1023

// fixed kernels used when sigma is derived from a small kernel size
var smallGaussian = map[int][]float64{
	1: {1},
	3: {0.25, 0.5, 0.25},
	5: {0.0625, 0.25, 0.375, 0.25, 0.0625},
	7: {0.03125, 0.109375, 0.21875, 0.28125, 0.21875, 0.109375, 0.03125},
}

// OddKSize returns ksize, or ksize+1 when ksize is even.
func OddKSize(ksize int) int {
	if ksize%2 == 0 {
		return ksize + 1
	}
	return ksize
}

// Sigma is the standard deviation used for a kernel of the given odd size.
func Sigma(ksize int) float64 {
	return 0.3*(float64(ksize-1)*0.5-1) + 0.8
}

func gaussianKernel(ksize int) []float64 {
	if k, ok := smallGaussian[ksize]; ok {
		return k
	}

	sigma := Sigma(ksize)
	center := ksize / 2
	kernel := make([]float64, ksize)

	var sum float64
	for i := range kernel {
		x := float64(i - center)
		kernel[i] = math.Exp(-(x * x) / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}

	return kernel
}

// squareKernel lays a 1-D kernel out as the middle row (or column) of a
// ksize*ksize matrix. Zero weights are skipped by the convolution.
func squareKernel(k []float64, vertical bool) []float32 {
	size := len(k)
	center := size / 2
	out := make([]float32, size*size)
	for i, w := range k {
		if vertical {
			out[i*size+center] = float32(w)
		} else {
			out[center*size+i] = float32(w)
		}
	}
	return out
}

func blur(img image.Image, ksize int) (image.Image, error) {
	if ksize < 1 {
		return nil, fmt.Errorf("ksize %d must be >= 1: %w", ksize, ErrInvalidParam)
	}

	k := OddKSize(ksize)
	if k > MaxKSize {
		return nil, fmt.Errorf("ksize %d exceeds %d: %w", ksize, MaxKSize, ErrInvalidParam)
	}

	src := toRGB(img)
	if k == 1 {
		return sameShape(img, src), nil
	}

	out, err := gaussian(src, k)
	if err != nil {
		return nil, fmt.Errorf("blur(ksize=%d): %v: %w", ksize, err, ErrInvalidParam)
	}
	return sameShape(img, out), nil
}

// pureGaussian blurs src with a k*k separable kernel, replicating edge pixels.
func pureGaussian(src *image.NRGBA, k int) *image.NRGBA {
	kernel := gaussianKernel(k)
	g := gift.New(
		gift.Convolution(squareKernel(kernel, false), true, false, false, 0),
		gift.Convolution(squareKernel(kernel, true), true, false, false, 0),
	)

	dst := image.NewNRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)

	return dst
}
