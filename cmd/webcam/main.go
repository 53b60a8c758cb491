package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"imagefx/pkg/config"
	"imagefx/pkg/display"
	"imagefx/pkg/effect"
	"imagefx/pkg/live"
	"imagefx/pkg/remote"
	"imagefx/pkg/source"
)

func main() {
	cfg := config.New()
	cfg.BindCommon(flag.CommandLine)
	cfg.BindLive(flag.CommandLine)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := cfg.Logger()
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.With(zap.Error(err)).Fatal("stream failed")
	}
	logger.Info("exited")
}

// limited ends a source after n frames.
type limited struct {
	live.FrameSource
	left int
}

func (l *limited) Next(ctx context.Context) (live.Frame, error) {
	if l.left == 0 {
		return live.Frame{}, io.EOF
	}
	l.left--
	return l.FrameSource.Next(ctx)
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	sel, err := cfg.Selection()
	if err != nil {
		return err
	}

	cam, err := source.OpenCamera(cfg.Camera)
	if err != nil {
		return err
	}
	defer func() {
		_ = cam.Close()
	}()

	var sink display.Sink = display.Mock(logger)
	if cfg.Remote != "" {
		cli, err := remote.New(cfg.Remote)
		if err != nil {
			return err
		}
		defer func() {
			_ = cli.Close()
		}()
		sink = display.NewRemote(cli, logger)
	}

	var src live.FrameSource = cam
	if cfg.Frames > 0 {
		src = &limited{FrameSource: cam, left: cfg.Frames}
	}

	session := live.NewSession(sel)
	p := live.NewProcessor(effect.New(effect.WithLogger(logger)), session, logger)

	// switch effects while streaming by typing e.g. "blur ksize=9"
	go func() {
		if err := live.Control(ctx, os.Stdin, session, logger); err != nil && !errors.Is(err, context.Canceled) {
			logger.With(zap.Error(err)).Info("control input closed")
		}
	}()

	logger.With(zap.String("effect", effect.Describe(sel)), zap.Int("camera", cfg.Camera)).Info("streaming")
	return live.Run(ctx, src, p, sink, logger)
}
