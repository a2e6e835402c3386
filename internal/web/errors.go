package web

import "codeberg.org/mutker/dashmon/internal/errors"

const (
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrListen        = errors.ErrorCode("web_listen_failed")
	ErrServeHTTP     = errors.ErrServeHTTP
)
