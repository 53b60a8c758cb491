package source

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/moolex/wallhaven-go/api"
	"go.uber.org/zap"
)

type WallhavenQuery struct {
	Key      string
	Query    string
	Category string
	Purity   string
}

func NewWallhaven(q WallhavenQuery, dl *Downloader, logger *zap.Logger) *Wallhaven {
	wh := api.New(q.Key)
	wh.SetLogger(logger)

	cond := api.NewQuery(q.Query)
	if q.Category != "" {
		cond.SetCategory(strings.Split(q.Category, ",")...)
	}
	if q.Purity != "" {
		cond.SetPurity(strings.Split(q.Purity, ",")...)
	}
	cond.Random()

	return &Wallhaven{api: wh, cond: cond, dl: dl, log: logger}
}

// Wallhaven loads a random wallpaper matching a search, a sample image source
// for trying effects without a local file.
type Wallhaven struct {
	api  *api.API
	cond *api.QueryCond
	dl   *Downloader
	log  *zap.Logger
}

func (w *Wallhaven) Load(ctx context.Context) (image.Image, error) {
	ret, err := w.api.Query(w.cond)
	if err != nil {
		return nil, fmt.Errorf("wallhaven query failed: %w", err)
	}

	wp, err := ret.Pick(api.PickRand)
	if err != nil {
		return nil, fmt.Errorf("get wallpaper failed: %v: %w", err, ErrNoImage)
	}

	w.log.With(zap.String("id", wp.Id), zap.String("url", wp.Url), zap.String("resolution", wp.Resolution)).Info("wallpaper picked")

	return NewURL(w.dl, wp.Path).Load(ctx)
}
