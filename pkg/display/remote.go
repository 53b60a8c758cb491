package display

import (
	"context"

	"go.uber.org/zap"

	"imagefx/pkg/live"
)

// FrameSender is the part of the rpc client a Remote display needs.
type FrameSender interface {
	ShowFrame(f live.Frame) error
}

func NewRemote(cli FrameSender, logger *zap.Logger) *Remote {
	return &Remote{cli: cli, logger: logger.With(zap.String("via", "remote-display"))}
}

// Remote forwards frames to a server, which keeps the latest one for preview.
type Remote struct {
	cli    FrameSender
	logger *zap.Logger
}

func (r *Remote) Send(ctx context.Context, f live.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := r.cli.ShowFrame(f); err != nil {
		r.logger.With(zap.Error(err), zap.Stringer("frame", f)).Info("send frame failed")
		return err
	}
	return nil
}
