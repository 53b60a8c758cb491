package live

import (
	"context"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"imagefx/pkg/effect"
)

func NewProcessor(engine *effect.Engine, session *Session, logger *zap.Logger) *Processor {
	return &Processor{
		engine:  engine,
		session: session,
		logger:  logger.With(zap.String("via", "live-processor")),
	}
}

// Processor is the per-frame callback of a live stream.
type Processor struct {
	engine  *effect.Engine
	session *Session
	logger  *zap.Logger
	frames  atomic.Uint64
	failed  atomic.Uint64
	version atomic.Uint64
}

// Recv applies the session's current effect to one frame. The returned frame
// has the same size and channel order as the input. When the effect fails the
// input is passed through and the failure is only logged.
func (p *Processor) Recv(ctx context.Context, in Frame) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	if err := in.Validate(); err != nil {
		return Frame{}, err
	}

	p.frames.Inc()

	if v := p.session.Version(); p.version.Swap(v) != v {
		p.logger.With(zap.Uint64("version", v), zap.String("effect", effect.Describe(p.session.Current()))).Info("effect selected")
	}

	eff := p.session.Current()
	if eff.Kind() == effect.KindNone {
		return FromImage(in.ToImage(), in.Order), nil
	}

	out, err := p.engine.Apply(in.ToImage(), eff)
	if err != nil {
		if p.failed.Inc() == 1 {
			p.logger.With(zap.String("effect", effect.Describe(eff)), zap.Error(err)).Info("frame passed through")
		}
		return FromImage(in.ToImage(), in.Order), nil
	}

	return FromImage(out, in.Order), nil
}

func (p *Processor) Frames() uint64 {
	return p.frames.Load()
}

func (p *Processor) Failed() uint64 {
	return p.failed.Load()
}
