package remote

import (
	"bytes"
	"image"
	"image/png"
	"net/rpc"

	"github.com/pkg/errors"

	"imagefx/pkg/effect"
	"imagefx/pkg/live"
)

func New(addr string) (*Client, error) {
	client, err := rpc.DialHTTP("tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Client{rpc: client}, nil
}

type Client struct {
	rpc *rpc.Client
}

func (c *Client) Apply(img image.Image, e effect.Effect) (image.Image, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}

	var resp ApplyResponse
	if err := c.rpc.Call("Service.Apply", &ApplyRequest{
		Image:  buf.Bytes(),
		Effect: e.Name(),
		Params: effect.ToParams(e),
	}, &resp); err != nil {
		return nil, err
	}

	out, err := png.Decode(bytes.NewReader(resp.Image))
	if err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	return out, nil
}

func (c *Client) Histogram(img image.Image) ([][256]int, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}

	var resp HistogramResponse
	if err := c.rpc.Call("Service.Histogram", &HistogramRequest{Image: buf.Bytes()}, &resp); err != nil {
		return nil, err
	}
	return resp.Channels, nil
}

func (c *Client) ShowFrame(f live.Frame) error {
	return c.rpc.Call("Service.ShowFrame", &FrameRequest{Frame: f}, &EmptyResponse{})
}

func (c *Client) Close() error {
	return c.rpc.Close()
}
