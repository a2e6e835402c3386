package source

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"codeberg.org/mutker/dashmon/internal/errors"
	"codeberg.org/mutker/dashmon/internal/logger"
	"codeberg.org/mutker/dashmon/internal/models"
)

// File reads metrics.json and logs.json from a directory. When a file is
// missing or malformed it falls back to the generated data of fallback.
type File struct {
	dir      string
	fallback Source
	log      logger.Logger
}

func NewFile(dir string, fallback Source) *File {
	return &File{dir: dir, fallback: fallback, log: logger.New("source")}
}

func (s *File) FetchMetrics(ctx context.Context) ([]models.Metric, error) {
	var metrics []models.Metric
	if err := s.read(ResourceMetrics, &metrics); err != nil {
		s.log.Warn().Err(err).Str("dir", s.dir).Msg("Falling back to generated metrics")
		return s.fallback.FetchMetrics(ctx)
	}
	s.log.Debug().Int("count", len(metrics)).Msg("Loaded metrics from file")
	return metrics, nil
}

func (s *File) FetchLogs(ctx context.Context) ([]models.LogEntry, error) {
	var entries []models.LogEntry
	if err := s.read(ResourceLogs, &entries); err != nil {
		s.log.Warn().Err(err).Str("dir", s.dir).Msg("Falling back to generated logs")
		return s.fallback.FetchLogs(ctx)
	}
	s.log.Debug().Int("count", len(entries)).Msg("Loaded logs from file")
	return entries, nil
}

func (s *File) read(resource string, out any) error {
	errFactory := errors.New()

	data, err := os.ReadFile(filepath.Join(s.dir, resource+".json"))
	if err != nil {
		return errFactory.Wrap(ErrReadFileFailed, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errFactory.Wrap(ErrDecodeFailed, err)
	}

	return nil
}
