package source

import (
	"context"
	"fmt"
	"image"

	"github.com/inhies/go-bytesize"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func NewFile(fs afero.Fs, name string, logger *zap.Logger) *File {
	return &File{fs: fs, name: name, log: logger}
}

// File loads an image stored on an afero Fs (the OS, a base path or memory).
type File struct {
	fs   afero.Fs
	name string
	log  *zap.Logger
}

func (f *File) Load(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !SupportedExt(f.name) {
		return nil, fmt.Errorf("unsupported image format %q (want one of %v): %w", f.name, Extensions(), ErrNoImage)
	}

	bs, err := afero.ReadFile(f.fs, f.name)
	if err != nil {
		return nil, fmt.Errorf("read file failed: %w", err)
	}

	img, err := Decode(bs)
	if err != nil {
		return nil, err
	}

	f.log.With(
		zap.String("file", f.name),
		zap.String("size", bytesize.New(float64(len(bs))).String()),
		zap.Int("w", img.Bounds().Dx()),
		zap.Int("h", img.Bounds().Dy()),
	).Debug("image loaded")

	return img, nil
}
