package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"imagefx/pkg/effect"
	"imagefx/pkg/source"
)

// Config collects the flags of every command; each command binds only the
// groups it needs.
type Config struct {
	Debug bool

	Effect string
	Params []string

	File      string `validate:"excluded_with=URL Wallhaven"`
	URL       string `validate:"omitempty,url,excluded_with=Wallhaven"`
	Wallhaven bool

	WhKey      string
	WhQuery    string
	WhCategory string
	WhPurity   string

	OutDir      string
	Histogram   bool
	ChartWidth  int `validate:"gte=64,lte=4096"`
	ChartHeight int `validate:"gte=64,lte=4096"`

	Listen  string `validate:"omitempty,hostname_port"`
	TgToken string

	Camera int    `validate:"gte=0"`
	Remote string `validate:"omitempty,hostname_port"`
	Frames int    `validate:"gte=0"`

	MaxSize int64         `validate:"gte=0"`
	Timeout time.Duration `validate:"gt=0"`
}

func New() *Config {
	return &Config{
		Effect:      effect.KindNone.String(),
		ChartWidth:  640,
		ChartHeight: 400,
		Listen:      ":9123",
		Timeout:     30 * time.Second,
		MaxSize:     32 << 20,
	}
}

func (c *Config) BindCommon(fs *flag.FlagSet) {
	fs.BoolVar(&c.Debug, "debug", c.Debug, "set debug")
	fs.StringVarP(&c.Effect, "effect", "e", c.Effect, "effect name: none, grayscale, blur, canny, brightness-contrast")
	fs.StringSliceVarP(&c.Params, "param", "p", c.Params, "effect params as key=value, e.g. ksize=7")
	fs.Int64Var(&c.MaxSize, "max-size", c.MaxSize, "max download size in bytes, 0 for no limit")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "download timeout")
}

func (c *Config) BindSource(fs *flag.FlagSet) {
	fs.StringVarP(&c.File, "file", "f", c.File, "image file")
	fs.StringVarP(&c.URL, "url", "u", c.URL, "image url")
	fs.BoolVar(&c.Wallhaven, "wallhaven", c.Wallhaven, "random image from wallhaven")
	fs.StringVar(&c.WhKey, "wh-key", c.WhKey, "wallhaven api key")
	fs.StringVar(&c.WhQuery, "wh-query", c.WhQuery, "wallhaven query string")
	fs.StringVar(&c.WhCategory, "wh-category", c.WhCategory, "wallhaven category names")
	fs.StringVar(&c.WhPurity, "wh-purity", c.WhPurity, "wallhaven purity levels")
}

func (c *Config) BindOutput(fs *flag.FlagSet) {
	fs.StringVarP(&c.OutDir, "out", "o", c.OutDir, "output dir, defaults to the working dir")
	fs.BoolVar(&c.Histogram, "hist", c.Histogram, "also save the histogram chart")
	fs.IntVar(&c.ChartWidth, "chart-width", c.ChartWidth, "histogram chart width")
	fs.IntVar(&c.ChartHeight, "chart-height", c.ChartHeight, "histogram chart height")
}

func (c *Config) BindServer(fs *flag.FlagSet) {
	fs.StringVar(&c.Listen, "listen", c.Listen, "listen addr")
	fs.StringVar(&c.TgToken, "tg-token", c.TgToken, "telegram bot token")
}

func (c *Config) BindLive(fs *flag.FlagSet) {
	fs.IntVar(&c.Camera, "camera", c.Camera, "camera device id")
	fs.StringVar(&c.Remote, "remote", c.Remote, "remote display addr, mock display when empty")
	fs.IntVar(&c.Frames, "frames", c.Frames, "stop after n frames, 0 runs until interrupted")
}

var validate = validator.New()

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Selection(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Selection is the effect chosen with --effect and --param.
func (c *Config) Selection() (effect.Effect, error) {
	kind, err := effect.ParseKind(c.Effect)
	if err != nil {
		return nil, err
	}

	params, err := effect.ParseParams(c.Params)
	if err != nil {
		return nil, err
	}

	return effect.FromParams(kind, params)
}

// HasSource reports whether one of the image sources was given.
func (c *Config) HasSource() bool {
	return c.File != "" || c.URL != "" || c.Wallhaven
}

func (c *Config) WallhavenQuery() source.WallhavenQuery {
	return source.WallhavenQuery{
		Key:      c.WhKey,
		Query:    c.WhQuery,
		Category: c.WhCategory,
		Purity:   c.WhPurity,
	}
}

func (c *Config) DownloaderOptions() []source.DownloaderOption {
	return []source.DownloaderOption{
		source.WithMaxSize(c.MaxSize),
		source.WithTimeout(c.Timeout),
	}
}

func (c *Config) Logger() (*zap.Logger, error) {
	if c.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
