package source

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/inhies/go-bytesize"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

type DownloaderOption func(d *Downloader)

// WithMaxSize rejects bodies larger than max bytes. Zero or less disables the check.
func WithMaxSize(max int64) DownloaderOption {
	return func(d *Downloader) {
		d.maxSize = max
	}
}

func WithProgress(enabled bool) DownloaderOption {
	return func(d *Downloader) {
		d.progress = enabled
	}
}

func WithTimeout(timeout time.Duration) DownloaderOption {
	return func(d *Downloader) {
		d.cli.SetTimeout(timeout)
	}
}

func NewDownloader(logger *zap.Logger, opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		cli:     resty.New().SetDoNotParseResponse(true).SetTimeout(30 * time.Second),
		log:     logger.With(zap.String("via", "downloader")),
		maxSize: -1,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Downloader fetches raw image bytes over HTTP.
type Downloader struct {
	cli      *resty.Client
	log      *zap.Logger
	maxSize  int64
	progress bool
}

func (d *Downloader) Get(ctx context.Context, link string) ([]byte, error) {
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid url %q: %w", link, ErrNoImage)
	}

	resp, err := d.cli.R().SetContext(ctx).Get(link)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		_ = resp.RawBody().Close()
	}()

	if resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, fmt.Errorf("unexpected status %s for %s: %w", resp.Status(), link, ErrNoImage)
	}

	length := resp.RawResponse.ContentLength
	if d.maxSize > 0 && length > d.maxSize {
		return nil, fmt.Errorf("image of %s exceeds %s", bytesize.New(float64(length)), bytesize.New(float64(d.maxSize)))
	}

	var body io.Reader = resp.RawBody()
	if d.maxSize > 0 {
		body = io.LimitReader(body, d.maxSize+1)
	}

	var buf bytes.Buffer
	var w io.Writer = &buf
	if d.progress {
		w = io.MultiWriter(&buf, progressbar.DefaultBytes(length, fmt.Sprintf("Downloading %s", link)))
	}

	if _, err := io.Copy(w, body); err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}

	if d.maxSize > 0 && int64(buf.Len()) > d.maxSize {
		return nil, fmt.Errorf("image exceeds %s", bytesize.New(float64(d.maxSize)))
	}

	d.log.With(
		zap.String("url", link),
		zap.String("size", bytesize.New(float64(buf.Len())).String()),
		zap.String("type", lo.Ternary(resp.Header().Get("Content-Type") != "", resp.Header().Get("Content-Type"), "unknown")),
	).Debug("downloaded")

	return buf.Bytes(), nil
}

func NewURL(dl *Downloader, link string) *URL {
	return &URL{dl: dl, link: link}
}

// URL loads an image with an HTTP GET.
type URL struct {
	dl   *Downloader
	link string
}

func (u *URL) Load(ctx context.Context) (image.Image, error) {
	bs, err := u.dl.Get(ctx, u.link)
	if err != nil {
		return nil, err
	}
	return Decode(bs)
}
