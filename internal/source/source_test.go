package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codeberg.org/mutker/dashmon/internal/errors"
	"codeberg.org/mutker/dashmon/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/metrics":
			_, _ = w.Write([]byte(`[{"timestamp":1700000000000,"cpu":42.5,"memory":{"used":2048,"total":8192},"disk":{"used":250,"total":500},"network":{"in":1.5,"out":0.5}}]`))
		case "/api/logs":
			_, _ = w.Write([]byte(`[{"id":"log-001","timestamp":1700000000000,"level":"ERROR","message":"disk full","source":"system","metadata":{"requestId":"req-abc"}}]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewHTTP(srv.URL+"/api/", time.Second)

	metrics, err := src.FetchMetrics(context.Background())
	require.NoError(t, err)
	require.Len(t, metrics, 1)
	assert.InDelta(t, 42.5, metrics[0].CPU, 1e-9)
	assert.InDelta(t, 8192.0, metrics[0].Memory.Total, 1e-9)
	assert.InDelta(t, 1.5, metrics[0].Network.In, 1e-9)

	entries, err := src.FetchLogs(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.LevelError, entries[0].Level)
	assert.Equal(t, "req-abc", entries[0].Metadata.RequestID)
}

func TestHTTPFetchFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/metrics") {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()

	src := NewHTTP(srv.URL, time.Second)

	_, err := src.FetchMetrics(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrBadStatus))
	assert.Contains(t, err.Error(), "503")

	_, err = src.FetchLogs(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrDecodeFailed))
}

func TestHTTPFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTP(url, time.Second).FetchMetrics(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, ErrRequestFailed))
}

func TestSampleShape(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	src := newSample(42, func() time.Time { return now })

	metrics, err := src.FetchMetrics(context.Background())
	require.NoError(t, err)
	require.Len(t, metrics, sampleMetricCount)
	assert.Equal(t, now.UnixMilli(), metrics[len(metrics)-1].Timestamp)
	assert.Equal(t, now.Add(-55*time.Second).UnixMilli(), metrics[0].Timestamp)
	for _, m := range metrics {
		assert.GreaterOrEqual(t, m.CPU, 0.0)
		assert.Less(t, m.CPU, 100.0)
		assert.GreaterOrEqual(t, m.Memory.Used, 2048.0)
		assert.Less(t, m.Memory.Used, 6144.0)
		assert.InDelta(t, 8192.0, m.Memory.Total, 1e-9)
		assert.GreaterOrEqual(t, m.Disk.Used, 200.0)
		assert.InDelta(t, 500.0, m.Disk.Total, 1e-9)
	}

	entries, err := src.FetchLogs(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, sampleLogCount)
	assert.Equal(t, "log-001", entries[0].ID)
	assert.Equal(t, "log-020", entries[19].ID)
	for _, e := range entries {
		assert.True(t, e.Level.Valid())
		assert.Regexp(t, `^req-[0-9a-f]{9}$`, e.Metadata.RequestID)
	}
}

func TestFileFallsBackToSample(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logs.json"),
		[]byte(`[{"id":"a","timestamp":1,"level":"INFO","message":"hello","source":"x","metadata":{"requestId":"r"}}]`), 0o600))

	src := NewFile(dir, newSample(1, time.Now))

	entries, err := src.FetchLogs(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0].Message)

	metrics, err := src.FetchMetrics(context.Background())
	require.NoError(t, err)
	assert.Len(t, metrics, sampleMetricCount)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NoError(t, Config{Mode: ModeSample}.Validate())

	err := Config{Mode: ModeHTTP, BaseURL: "/api"}.Validate()
	assert.True(t, errors.HasCode(err, ErrInvalidConfig))

	err = Config{Mode: ModeFile}.Validate()
	assert.True(t, errors.HasCode(err, ErrInvalidConfig))

	err = Config{Mode: "carrier-pigeon"}.Validate()
	assert.True(t, errors.HasCode(err, ErrInvalidConfig))
}

func TestNewSelectsMode(t *testing.T) {
	src, err := New(Config{Mode: ModeSample})
	require.NoError(t, err)
	assert.IsType(t, &Sample{}, src)

	src, err = New(Config{Mode: ModeFile, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &File{}, src)

	src, err = New(DefaultConfig())
	require.NoError(t, err)
	assert.IsType(t, &HTTP{}, src)
}
