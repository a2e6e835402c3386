package app

import "codeberg.org/mutker/dashmon/internal/errors"

const (
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrInitApp       = errors.ErrInitApp
	ErrLoadData      = errors.ErrLoadData
	ErrRender        = errors.ErrRender
	ErrTornDown      = errors.ErrorCode("app_torn_down")
)
