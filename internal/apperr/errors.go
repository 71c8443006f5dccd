package apperr

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrInvalidKey = errors.New("invalid key")
	ErrBusy       = errors.New("busy")
)
