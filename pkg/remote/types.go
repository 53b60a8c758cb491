package remote

import (
	"imagefx/pkg/effect"
	"imagefx/pkg/live"
)

type EmptyResponse struct {
}

// ApplyRequest carries either encoded image bytes or a URL to fetch.
type ApplyRequest struct {
	Image  []byte
	URL    string
	Effect string
	Params effect.Params
}

type ApplyResponse struct {
	Image  []byte
	Effect string
	Gray   bool
	Width  int
	Height int
}

type HistogramRequest struct {
	Image  []byte
	URL    string
	Effect string
	Params effect.Params
	Width  int
	Height int
}

type HistogramResponse struct {
	Channels [][256]int
	Chart    []byte
}

type FrameRequest struct {
	Frame live.Frame
}
