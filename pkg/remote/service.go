package remote

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"imagefx/pkg/chart"
	"imagefx/pkg/effect"
	"imagefx/pkg/live"
	"imagefx/pkg/source"
)

const (
	defaultChartWidth  = 640
	defaultChartHeight = 400
)

func NewService(engine *effect.Engine, dl *source.Downloader, logger *zap.Logger) *Service {
	return &Service{
		engine:  engine,
		dl:      dl,
		logger:  logger.With(zap.String("via", "remote-service")),
		timeout: 30 * time.Second,
	}
}

// Service is exported over net/rpc; its HTTP twin is Handler.
type Service struct {
	engine  *effect.Engine
	dl      *source.Downloader
	logger  *zap.Logger
	timeout time.Duration

	mu    sync.RWMutex
	frame *live.Frame
}

func (s *Service) Apply(req *ApplyRequest, resp *ApplyResponse) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	out, eff, err := s.process(ctx, req.Image, req.URL, req.Effect, req.Params)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return errors.Wrap(err, "png encode")
	}

	_, gray := out.(*image.Gray)
	*resp = ApplyResponse{
		Image:  buf.Bytes(),
		Effect: effect.Describe(eff),
		Gray:   gray,
		Width:  out.Bounds().Dx(),
		Height: out.Bounds().Dy(),
	}
	return nil
}

func (s *Service) Histogram(req *HistogramRequest, resp *HistogramResponse) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	out, _, err := s.process(ctx, req.Image, req.URL, req.Effect, req.Params)
	if err != nil {
		return err
	}

	w, h := req.Width, req.Height
	if w <= 0 || h <= 0 {
		w, h = defaultChartWidth, defaultChartHeight
	}

	hist := effect.BuildHistogram(out)
	bs, err := chart.PNG(hist, w, h)
	if err != nil {
		return errors.Wrap(err, "render chart")
	}

	*resp = HistogramResponse{Channels: hist.Channels, Chart: bs}
	return nil
}

// ShowFrame keeps the latest live frame for preview.
func (s *Service) ShowFrame(req *FrameRequest, _ *EmptyResponse) error {
	if err := req.Frame.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = &req.Frame
	return nil
}

func (s *Service) latestFrame() (live.Frame, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.frame == nil {
		return live.Frame{}, false
	}
	return *s.frame, true
}

func (s *Service) load(ctx context.Context, bs []byte, link string) (image.Image, error) {
	switch {
	case len(bs) > 0:
		return source.Decode(bs)
	case link != "":
		return source.NewURL(s.dl, link).Load(ctx)
	}
	return nil, fmt.Errorf("neither image nor url given: %w", source.ErrNoImage)
}

func (s *Service) process(ctx context.Context, bs []byte, link, name string, params effect.Params) (image.Image, effect.Effect, error) {
	kind, err := effect.ParseKind(name)
	if err != nil {
		return nil, nil, err
	}

	eff, err := effect.FromParams(kind, params)
	if err != nil {
		return nil, nil, err
	}

	img, err := s.load(ctx, bs, link)
	if err != nil {
		return nil, nil, err
	}

	out, err := s.engine.Apply(img, eff)
	if err != nil {
		return nil, nil, err
	}

	return out, eff, nil
}
