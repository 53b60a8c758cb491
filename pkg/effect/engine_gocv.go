//go:build gocv
// +build gocv

package effect

import (
	"errors"
	"fmt"
	"image"
	"math"

	"gocv.io/x/gocv"
)

// With OpenCV the grayscale, blur, edge and histogram work runs in gocv.

func rgbMat(img *image.NRGBA) (gocv.Mat, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	pix := make([]byte, 0, w*h*3)
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for i := 0; i < len(row); i += 4 {
			pix = append(pix, row[i], row[i+1], row[i+2])
		}
	}
	return gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC3, pix)
}

func grayMat(img *image.Gray) (gocv.Mat, error) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	pix := make([]byte, 0, w*h)
	for y := 0; y < h; y++ {
		i := img.PixOffset(img.Bounds().Min.X, img.Bounds().Min.Y+y)
		pix = append(pix, img.Pix[i:i+w]...)
	}
	return gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8U, pix)
}

var errEmptyResult = errors.New("opencv returned an empty mat")

func grayImage(m gocv.Mat) (*image.Gray, error) {
	if m.Empty() || m.Channels() != 1 {
		return nil, errEmptyResult
	}
	dst := image.NewGray(image.Rect(0, 0, m.Cols(), m.Rows()))
	copy(dst.Pix, m.ToBytes())
	return dst, nil
}

func grayscale(img image.Image) (*image.Gray, error) {
	if g, ok := img.(*image.Gray); ok {
		return clone(g).(*image.Gray), nil
	}

	src, err := rgbMat(toRGB(img))
	if err != nil {
		return nil, fmt.Errorf("load mat failed: %w", err)
	}
	defer func() {
		_ = src.Close()
	}()

	dst := gocv.NewMat()
	defer func() {
		_ = dst.Close()
	}()

	gocv.CvtColor(src, &dst, gocv.ColorRGBToGray)
	return grayImage(dst)
}

func gaussian(img *image.NRGBA, k int) (*image.NRGBA, error) {
	src, err := rgbMat(img)
	if err != nil {
		return nil, fmt.Errorf("load mat failed: %w", err)
	}
	defer func() {
		_ = src.Close()
	}()

	dst := gocv.NewMat()
	defer func() {
		_ = dst.Close()
	}()

	gocv.GaussianBlur(src, &dst, image.Pt(k, k), 0, 0, gocv.BorderReplicate)
	if dst.Empty() || dst.Channels() != 3 {
		return nil, errEmptyResult
	}

	out := image.NewNRGBA(image.Rect(0, 0, dst.Cols(), dst.Rows()))
	pix := dst.ToBytes()
	for i, j := 0, 0; i+2 < len(pix) && j+3 < len(out.Pix); i, j = i+3, j+4 {
		out.Pix[j], out.Pix[j+1], out.Pix[j+2], out.Pix[j+3] = pix[i], pix[i+1], pix[i+2], 0xff
	}
	return out, nil
}

func canny(img *image.Gray, threshold1, threshold2 int) (*image.Gray, error) {
	src, err := grayMat(img)
	if err != nil {
		return nil, fmt.Errorf("load mat failed: %w", err)
	}
	defer func() {
		_ = src.Close()
	}()

	dst := gocv.NewMat()
	defer func() {
		_ = dst.Close()
	}()

	gocv.Canny(src, &dst, float32(threshold1), float32(threshold2))
	return grayImage(dst)
}

// histogram counts with calcHist, one channel at a time; it falls back to
// plain counting when the image cannot be handed to OpenCV.
func histogram(img image.Image) Histogram {
	var (
		src gocv.Mat
		err error
		n   int
	)
	if g, ok := img.(*image.Gray); ok {
		src, err = grayMat(g)
		n = 1
	} else {
		src, err = rgbMat(toRGB(img))
		n = 3
	}
	if err != nil {
		return pureHistogram(img)
	}
	defer func() {
		_ = src.Close()
	}()

	mask := gocv.NewMat()
	defer func() {
		_ = mask.Close()
	}()

	h := Histogram{Channels: make([][256]int, n)}
	for c := 0; c < n; c++ {
		hist := gocv.NewMat()
		gocv.CalcHist([]gocv.Mat{src}, []int{c}, mask, &hist, []int{256}, []float64{0, 256}, false)
		if hist.Empty() || hist.Rows() != 256 {
			_ = hist.Close()
			return pureHistogram(img)
		}
		for v := 0; v < 256; v++ {
			h.Channels[c][v] = int(math.Round(float64(hist.GetFloatAt(v, 0))))
		}
		_ = hist.Close()
	}
	return h
}
