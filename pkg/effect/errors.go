package effect

import "errors"

// ErrInvalidParam is wrapped by every error the engine returns.
var ErrInvalidParam = errors.New("invalid parameter")
