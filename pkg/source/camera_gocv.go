//go:build gocv
// +build gocv

package source

import (
	"context"
	"fmt"
	"io"

	"gocv.io/x/gocv"

	"imagefx/pkg/live"
)

func OpenCamera(device int) (*Camera, error) {
	capture, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("open camera %d failed: %v: %w", device, err, ErrCameraUnavailable)
	}

	return &Camera{capture: capture, mat: gocv.NewMat(), device: device}, nil
}

// Camera reads BGR frames from a local video device.
type Camera struct {
	capture *gocv.VideoCapture
	mat     gocv.Mat
	device  int
}

func (c *Camera) Next(ctx context.Context) (live.Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return live.Frame{}, err
		}
		if ok := c.capture.Read(&c.mat); !ok {
			return live.Frame{}, io.EOF
		}
		if c.mat.Empty() {
			continue
		}
		if c.mat.Channels() != 3 {
			return live.Frame{}, fmt.Errorf("camera %d delivered %d channels", c.device, c.mat.Channels())
		}

		return live.Frame{
			Width:  c.mat.Cols(),
			Height: c.mat.Rows(),
			Order:  live.BGR,
			Pix:    c.mat.ToBytes(),
		}, nil
	}
}

func (c *Camera) Close() error {
	_ = c.mat.Close()
	return c.capture.Close()
}
