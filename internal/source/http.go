package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"codeberg.org/mutker/dashmon/internal/errors"
	"codeberg.org/mutker/dashmon/internal/instrument"
	"codeberg.org/mutker/dashmon/internal/logger"
	"codeberg.org/mutker/dashmon/internal/models"
)

// HTTP fetches metrics and logs from {baseURL}/metrics and {baseURL}/logs.
type HTTP struct {
	client  *http.Client
	baseURL string
	log     logger.Logger
}

func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	return &HTTP{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logger.New("source"),
	}
}

func (s *HTTP) FetchMetrics(ctx context.Context) ([]models.Metric, error) {
	var metrics []models.Metric
	if err := s.get(ctx, ResourceMetrics, &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

func (s *HTTP) FetchLogs(ctx context.Context) ([]models.LogEntry, error) {
	var entries []models.LogEntry
	if err := s.get(ctx, ResourceLogs, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *HTTP) get(ctx context.Context, resource string, out any) error {
	start := time.Now()
	err := s.do(ctx, resource, out)
	instrument.FetchDuration.WithLabelValues(resource).Observe(time.Since(start).Seconds())

	if err != nil {
		instrument.FetchTotal.WithLabelValues(resource, instrument.ResultFailure).Inc()
		s.log.Debug().Err(err).Str("resource", resource).Msg("Fetch failed")
		return err
	}

	instrument.FetchTotal.WithLabelValues(resource, instrument.ResultSuccess).Inc()
	return nil
}

func (s *HTTP) do(ctx context.Context, resource string, out any) error {
	errFactory := errors.New()
	url := s.baseURL + "/" + resource

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errFactory.Wrap(ErrRequestFailed, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return errFactory.Wrap(ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return errFactory.WithData(ErrBadStatus, fmt.Sprintf("GET %s: status %d", url, resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errFactory.Wrap(ErrDecodeFailed, err)
	}

	return nil
}
