package hauntedhouse

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrInvalidModel      = errors.New("invalid glTF model")
	ErrLoopStopped       = errors.New("render loop stopped")
)
