package errors_test

import (
	stderrors "errors"
	"testing"

	"codeberg.org/mutker/dashmon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	errFactory := errors.New()

	err := errFactory.New(errors.ErrLoadData)
	assert.Equal(t, "Failed to load dashboard data", err.Error())

	wrapped := errFactory.Wrap(errors.ErrLoadData, stderrors.New("connection refused"))
	assert.Equal(t, "Failed to load dashboard data: connection refused", wrapped.Error())

	withData := errFactory.WithData(errors.ErrInvalidConfig, "page_size must be positive")
	assert.Equal(t, "Invalid configuration: page_size must be positive", withData.Error())

	custom := errFactory.WithMessage(errors.ErrRender, "html target failed")
	assert.Equal(t, "html target failed", custom.Error())
}

func TestUnknownCodeFallsBackToCode(t *testing.T) {
	err := errors.New().New(errors.ErrorCode("something_odd"))
	assert.Equal(t, "something_odd", err.Error())
}

func TestHasCode(t *testing.T) {
	errFactory := errors.New()
	root := stderrors.New("timeout")
	inner := errFactory.Wrap(errors.ErrTimeout, root)
	outer := errFactory.Wrap(errors.ErrLoadData, inner)

	assert.True(t, errors.HasCode(outer, errors.ErrLoadData))
	assert.True(t, errors.HasCode(outer, errors.ErrTimeout))
	assert.False(t, errors.HasCode(outer, errors.ErrRender))
	assert.False(t, errors.HasCode(root, errors.ErrTimeout))
	assert.True(t, errors.Is(outer, root))

	var appErr errors.Error
	require.True(t, errors.As(outer, &appErr))
	assert.Equal(t, errors.ErrLoadData, appErr.Code())
}
