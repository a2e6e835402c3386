package source

import "codeberg.org/mutker/dashmon/internal/errors"

const (
	ErrInvalidConfig  = errors.ErrorCode("source_invalid_config")
	ErrRequestFailed  = errors.ErrorCode("source_request_failed")
	ErrBadStatus      = errors.ErrorCode("source_bad_status")
	ErrDecodeFailed   = errors.ErrorCode("source_decode_failed")
	ErrReadFileFailed = errors.ErrorCode("source_read_file_failed")
)
