package display

import (
	"context"

	"go.uber.org/zap"

	"imagefx/pkg/live"
)

// Sink receives processed frames of a live stream.
type Sink interface {
	Send(ctx context.Context, f live.Frame) error
}

func Mock(logger *zap.Logger) *Mocker {
	return &Mocker{l: logger.With(zap.String("via", "mock-display"))}
}

// Mocker only logs what it would show.
type Mocker struct {
	l     *zap.Logger
	shown int
}

func (m *Mocker) Send(_ context.Context, f live.Frame) error {
	m.shown++
	m.l.With(
		zap.Int("w", f.Width),
		zap.Int("h", f.Height),
		zap.Stringer("order", f.Order),
		zap.Int("seq", m.shown),
	).Debug("show-frame")
	return nil
}

func (m *Mocker) Shown() int {
	return m.shown
}

var (
	_ Sink           = (*Mocker)(nil)
	_ Sink           = (*Remote)(nil)
	_ live.FrameSink = Sink(nil)
)
