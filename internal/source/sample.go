package source

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"codeberg.org/mutker/dashmon/internal/models"
	"github.com/google/uuid"
)

const (
	sampleMetricCount = 12
	sampleLogCount    = 20
	sampleSpacing     = 5 * time.Second

	sampleMemoryTotal = 8192
	sampleDiskTotal   = 500
)

var (
	sampleSources  = []string{"system", "database", "api-server", "auth-service", "monitor"}
	sampleMessages = []string{
		"Server started successfully",
		"Database connection established",
		"API request completed",
		"User login succeeded",
		"Memory usage is high",
		"Cache refreshed",
		"Database connection failed",
		"API request failed",
		"Disk usage warning",
		"System status normal",
	}
	sampleLevels = []models.Level{models.LevelInfo, models.LevelWarn, models.LevelError, models.LevelDebug}
)

// Sample generates plausible metrics and logs without a backend. It never
// fails.
type Sample struct {
	mu  sync.Mutex
	rnd *rand.Rand
	now func() time.Time
}

func NewSample() *Sample {
	seed := uint64(time.Now().UnixNano())
	return newSample(seed, time.Now)
}

func newSample(seed uint64, now func() time.Time) *Sample {
	return &Sample{
		rnd: rand.New(rand.NewSource(int64(seed))),
		now: now,
	}
}

func (s *Sample) FetchMetrics(_ context.Context) ([]models.Metric, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	metrics := make([]models.Metric, 0, sampleMetricCount)
	for i := 0; i < sampleMetricCount; i++ {
		ts := now.Add(-time.Duration(sampleMetricCount-i-1) * sampleSpacing)
		metrics = append(metrics, s.metric(ts))
	}

	return metrics, nil
}

func (s *Sample) FetchLogs(_ context.Context) ([]models.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entries := make([]models.LogEntry, 0, sampleLogCount)
	for i := 0; i < sampleLogCount; i++ {
		ts := now.Add(-time.Duration(sampleLogCount-i-1) * sampleSpacing)
		entries = append(entries, models.LogEntry{
			ID:        fmt.Sprintf("log-%03d", i+1),
			Timestamp: ts.UnixMilli(),
			Level:     sampleLevels[s.rnd.Intn(len(sampleLevels))],
			Message:   sampleMessages[s.rnd.Intn(len(sampleMessages))],
			Source:    sampleSources[s.rnd.Intn(len(sampleSources))],
			Metadata:  models.Metadata{RequestID: requestID()},
		})
	}

	return entries, nil
}

func (s *Sample) metric(ts time.Time) models.Metric {
	return models.Metric{
		Timestamp: ts.UnixMilli(),
		CPU:       s.rnd.Float64() * 100,
		Memory: models.Usage{
			Used:  math.Floor(s.rnd.Float64()*4096) + 2048,
			Total: sampleMemoryTotal,
		},
		Disk: models.Usage{
			Used:  math.Floor(s.rnd.Float64()*100) + 200,
			Total: sampleDiskTotal,
		},
		Network: models.Network{
			In:  s.rnd.Float64() * 30,
			Out: s.rnd.Float64() * 15,
		},
	}
}

func requestID() string {
	return "req-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}
