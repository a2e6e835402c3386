package poller

import "codeberg.org/mutker/dashmon/internal/errors"

const (
	ErrInvalidConfig = errors.ErrInvalidConfig
	ErrRefreshFailed = errors.ErrorCode("poller_refresh_failed")
	ErrClosed        = errors.ErrorCode("poller_closed")
	ErrSuspended     = errors.ErrPollStopped
)
