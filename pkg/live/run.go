package live

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
)

// FrameSource yields frames until it returns io.EOF.
type FrameSource interface {
	Next(ctx context.Context) (Frame, error)
}

type FrameSink interface {
	Send(ctx context.Context, f Frame) error
}

// Run pulls frames from src through p into sink until src is exhausted or ctx is done.
func Run(ctx context.Context, src FrameSource, p *Processor, sink FrameSink, logger *zap.Logger) error {
	var count int
	last := time.Now()

	for {
		in, err := src.Next(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read frame failed: %w", err)
		}

		out, err := p.Recv(ctx, in)
		if err != nil {
			return fmt.Errorf("process frame failed: %w", err)
		}

		if err := sink.Send(ctx, out); err != nil {
			return fmt.Errorf("send frame failed: %w", err)
		}

		count++
		if elapsed := time.Since(last); elapsed >= time.Second {
			logger.With(
				zap.Float64("fps", float64(count)/elapsed.Seconds()),
				zap.String("frame", out.String()),
				zap.Uint64("total", p.Frames()),
			).Debug("streaming")
			count = 0
			last = time.Now()
		}
	}
}
