package main

import (
	"context"
	"log"
	"net/http"
	"os"

	flag "github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"imagefx/pkg/bot"
	"imagefx/pkg/config"
	"imagefx/pkg/effect"
	"imagefx/pkg/remote"
	"imagefx/pkg/source"
	"imagefx/pkg/store"
)

func main() {
	cfg := config.New()
	cfg.BindCommon(flag.CommandLine)
	cfg.BindServer(flag.CommandLine)
	cfg.BindOutput(flag.CommandLine)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	fx.New(
		fx.Supply(cfg),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		fx.Provide(
			func(cfg *config.Config) (*zap.Logger, error) {
				return cfg.Logger()
			},
			func(cfg *config.Config) *http.Server {
				return &http.Server{Addr: cfg.Listen}
			},
			func(logger *zap.Logger) *effect.Engine {
				return effect.New(effect.WithLogger(logger))
			},
			func(cfg *config.Config, logger *zap.Logger) *source.Downloader {
				return source.NewDownloader(logger, cfg.DownloaderOptions()...)
			},
			newStore,
			remote.NewService,
		),
		fx.Invoke(
			remote.Proxy,
			startBot,
		),
	).Run()
}

func newStore(cfg *config.Config, logger *zap.Logger) (*store.Store, error) {
	dir := cfg.OutDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	fs, err := store.NewOsFs(dir)
	if err != nil {
		return nil, err
	}
	return store.New(fs, logger), nil
}

func startBot(cfg *config.Config, engine *effect.Engine, dl *source.Downloader, st *store.Store, logger *zap.Logger, lifecycle fx.Lifecycle) error {
	if cfg.TgToken == "" {
		logger.Info("no telegram token, bot disabled")
		return nil
	}

	def, err := cfg.Selection()
	if err != nil {
		return err
	}

	b, err := bot.NewBot(cfg.TgToken, engine, dl, st, logger, bot.WithDefault(def))
	if err != nil {
		return err
	}

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			b.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			b.Stop()
			return nil
		},
	})
	return nil
}
