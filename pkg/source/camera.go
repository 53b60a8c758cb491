package source

import "errors"

var ErrCameraUnavailable = errors.New("camera unavailable")
