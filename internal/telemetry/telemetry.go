// Package telemetry records applied dashboard snapshots to SQLite so recent
// history survives restarts.
package telemetry

import (
	"context"

	"codeberg.org/mutker/dashmon/internal/errors"
	"codeberg.org/mutker/dashmon/internal/logger"
)

const maxRecentLimit = 1000

type service struct {
	repo Repository
	cfg  Config
}

type noopRecorder struct{}

func NewService(cfg Config) (Recorder, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, errFactory.Wrap(ErrInvalidConfig, err)
	}

	log := logger.New("telemetry")

	if !cfg.Enabled {
		log.Debug().Msg("Telemetry disabled, using no-op recorder")
		return NewNoop(), nil
	}

	repo, err := NewRepository(cfg, log)
	if err != nil {
		log.Debug().Err(err).Msg("Failed to create telemetry repository")
		return nil, err
	}

	return &service{
		repo: repo,
		cfg:  cfg,
	}, nil
}

// NewNoop returns a recorder that stores nothing
func NewNoop() Recorder {
	return &noopRecorder{}
}

func (s *service) Record(ctx context.Context, snapshot *Snapshot) error {
	errFactory := errors.New()

	if snapshot == nil {
		return errFactory.New(ErrInvalidSnapshot)
	}

	select {
	case <-ctx.Done():
		return errFactory.Wrap(ErrOperationTimeout, ctx.Err())
	default:
		if err := s.repo.Store(snapshot); err != nil {
			return errFactory.Wrap(ErrStorageAccess, err)
		}
	}

	return nil
}

// Recent returns up to limit snapshots, newest first. limit is clamped to
// [1, 1000].
func (s *service) Recent(ctx context.Context, limit int) ([]Snapshot, error) {
	limit = max(1, min(limit, maxRecentLimit))
	return s.repo.Recent(ctx, limit)
}

func (s *service) Close() error {
	if err := s.repo.Close(); err != nil {
		return errors.New().Wrap(ErrStorageClose, err)
	}
	return nil
}

func (*noopRecorder) Record(_ context.Context, _ *Snapshot) error {
	return nil
}

func (*noopRecorder) Recent(_ context.Context, _ int) ([]Snapshot, error) {
	return nil, nil
}

func (*noopRecorder) Close() error {
	return nil
}
