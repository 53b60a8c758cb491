//go:build !gocv
// +build !gocv

package source

import (
	"context"

	"imagefx/pkg/live"
)

// OpenCamera needs OpenCV; build with -tags gocv.
func OpenCamera(device int) (*Camera, error) {
	return nil, ErrCameraUnavailable
}

type Camera struct{}

func (c *Camera) Next(ctx context.Context) (live.Frame, error) {
	return live.Frame{}, ErrCameraUnavailable
}

func (c *Camera) Close() error {
	return nil
}
