//go:build !gocv
// +build !gocv

package effect

import "image"

// Without OpenCV every effect runs in Go.

func grayscale(img image.Image) (*image.Gray, error) {
	return pureGrayscale(img), nil
}

func gaussian(src *image.NRGBA, k int) (*image.NRGBA, error) {
	return pureGaussian(src, k), nil
}

func canny(src *image.Gray, threshold1, threshold2 int) (*image.Gray, error) {
	return pureCanny(src, threshold1, threshold2), nil
}

func histogram(img image.Image) Histogram {
	return pureHistogram(img)
}
