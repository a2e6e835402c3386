package instrument

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFetchTotalLabels(t *testing.T) {
	before := testutil.ToFloat64(FetchTotal.WithLabelValues("metrics", ResultSuccess))
	FetchTotal.WithLabelValues("metrics", ResultSuccess).Inc()
	after := testutil.ToFloat64(FetchTotal.WithLabelValues("metrics", ResultSuccess))

	assert.InDelta(t, before+1, after, 1e-9)
}

func TestBoolGauge(t *testing.T) {
	PollActive.Set(BoolGauge(true))
	assert.InDelta(t, 1.0, testutil.ToFloat64(PollActive), 1e-9)

	PollActive.Set(BoolGauge(false))
	assert.InDelta(t, 0.0, testutil.ToFloat64(PollActive), 1e-9)
}
