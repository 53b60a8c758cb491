package store

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path"

	"github.com/rs/xid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("image not found")

// NewOsFs roots an afero Fs at dir, which must exist.
func NewOsFs(dir string) (afero.Fs, error) {
	fs := afero.NewOsFs()
	if exists, err := afero.DirExists(fs, dir); err != nil {
		return nil, err
	} else if !exists {
		return nil, fmt.Errorf("dir %q not exists", dir)
	}
	return afero.NewBasePathFs(fs, dir), nil
}

func New(fs afero.Fs, logger *zap.Logger) *Store {
	return &Store{fs: fs, log: logger.With(zap.String("via", "store"))}
}

// Store keeps processed images as PNG files named by xid.
type Store struct {
	fs  afero.Fs
	log *zap.Logger
}

func (s *Store) filename(name string) string {
	return fmt.Sprintf("%s.png", path.Base(name))
}

// Save writes img under an optional folder and returns its name.
func (s *Store) Save(folder string, img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("png encode failed: %w", err)
	}

	name := xid.New().String()
	if folder != "" {
		if exists, err := afero.DirExists(s.fs, folder); err != nil {
			return "", err
		} else if !exists {
			if err2 := s.fs.MkdirAll(folder, 0755); err2 != nil {
				return "", err2
			}
		}
		name = path.Join(folder, name)
	}

	file := path.Join(path.Dir(name), s.filename(name))
	if err := afero.WriteFile(s.fs, file, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write %s failed: %w", file, err)
	}

	s.log.With(zap.String("file", file), zap.Int("bytes", buf.Len())).Debug("image saved")
	return name, nil
}

func (s *Store) Load(name string) (image.Image, error) {
	file := path.Join(path.Dir(name), s.filename(name))
	bs, err := afero.ReadFile(s.fs, file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
		}
		return nil, err
	}

	return png.Decode(bytes.NewReader(bs))
}

// Path is the file path of a saved image relative to the store root.
func (s *Store) Path(name string) string {
	return path.Join(path.Dir(name), s.filename(name))
}
