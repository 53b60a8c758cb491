package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"imagefx/pkg/chart"
	"imagefx/pkg/config"
	"imagefx/pkg/effect"
	"imagefx/pkg/source"
	"imagefx/pkg/store"
)

func main() {
	cfg := config.New()
	cfg.BindCommon(flag.CommandLine)
	cfg.BindSource(flag.CommandLine)
	cfg.BindOutput(flag.CommandLine)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if !cfg.HasSource() {
		log.Fatal("one of --file, --url or --wallhaven is required")
	}

	logger, err := cfg.Logger()
	if err != nil {
		log.Fatal(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.With(zap.Error(err)).Fatal("failed")
	}
}

func loader(cfg *config.Config, logger *zap.Logger) source.Loader {
	dl := source.NewDownloader(logger, append(cfg.DownloaderOptions(), source.WithProgress(true))...)

	switch {
	case cfg.File != "":
		dir, name := filepath.Split(cfg.File)
		return source.NewFile(afero.NewBasePathFs(afero.NewOsFs(), filepath.Clean(dir+".")), name, logger)
	case cfg.URL != "":
		return source.NewURL(dl, cfg.URL)
	default:
		return source.NewWallhaven(cfg.WallhavenQuery(), dl, logger)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	eff, err := cfg.Selection()
	if err != nil {
		return err
	}

	img, err := loader(cfg, logger).Load(ctx)
	if err != nil {
		return fmt.Errorf("load image failed: %w", err)
	}

	out, err := effect.New(effect.WithLogger(logger)).Apply(img, eff)
	if err != nil {
		return err
	}

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "."
	}
	fs, err := store.NewOsFs(outDir)
	if err != nil {
		return err
	}
	st := store.New(fs, logger)

	name, err := st.Save("", out)
	if err != nil {
		return err
	}
	fmt.Println(filepath.Join(outDir, st.Path(name)))

	if cfg.Histogram {
		name, err := st.Save("", chart.Render(effect.BuildHistogram(out), cfg.ChartWidth, cfg.ChartHeight))
		if err != nil {
			return err
		}
		fmt.Println(filepath.Join(outDir, st.Path(name)))
	}

	return nil
}
