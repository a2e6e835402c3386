package card_test

import (
	"testing"

	"codeberg.org/mutker/dashmon/internal/card"
	"codeberg.org/mutker/dashmon/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	th := card.Thresholds{Warning: 70, Critical: 90}

	assert.Equal(t, card.StatusNormal, card.Classify(50, 100, th))
	assert.Equal(t, card.StatusWarning, card.Classify(75, 100, th))
	assert.Equal(t, card.StatusCritical, card.Classify(95, 100, th))
	assert.Equal(t, card.StatusNormal, card.Classify(5, 0, th))

	// Boundaries are inclusive.
	assert.Equal(t, card.StatusWarning, card.Classify(70, 100, th))
	assert.Equal(t, card.StatusCritical, card.Classify(90, 100, th))
	assert.Equal(t, card.StatusCritical, card.Classify(7372.8, 8192, th))
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := card.NewHistory(50)
	const k = 17
	for i := 0; i < 50+k; i++ {
		h.Push(float64(i))
		require.LessOrEqual(t, h.Len(), 50)
	}

	values := h.Values()
	require.Len(t, values, 50)
	for i, v := range values {
		assert.InDelta(t, float64(k+i), v, 1e-9)
	}
}

func TestHistoryPartial(t *testing.T) {
	h := card.NewHistory(3)
	h.Push(1)
	h.Push(2)
	assert.Equal(t, []float64{1, 2}, h.Values())
	h.Push(3)
	h.Push(4)
	assert.Equal(t, []float64{2, 3, 4}, h.Values())
	assert.Equal(t, 3, h.Cap())

	assert.Equal(t, card.DefaultHistorySize, card.NewHistory(0).Cap())
}

func snapshot(cpu, memUsed, memTotal, diskUsed, diskTotal, in, out float64) models.Metric {
	return models.Metric{
		CPU:     cpu,
		Memory:  models.Usage{Used: memUsed, Total: memTotal},
		Disk:    models.Usage{Used: diskUsed, Total: diskTotal},
		Network: models.Network{In: in, Out: out},
	}
}

func TestCardUpdatePerKind(t *testing.T) {
	m := snapshot(95, 4096, 8192, 400, 500, 28, 14)

	assert.Equal(t, card.StatusCritical, card.New(card.CPU).Update(m))
	assert.Equal(t, card.StatusNormal, card.New(card.Memory).Update(m))
	assert.Equal(t, card.StatusWarning, card.New(card.Disk).Update(m))

	net := card.New(card.Network)
	assert.Equal(t, card.StatusNormal, net.Update(m))
	state := net.State()
	assert.InDelta(t, 28.0, state.In, 1e-9)
	assert.InDelta(t, 14.0, state.Out, 1e-9)
	assert.Equal(t, card.StatusNormal, state.Status)
}

func TestCardStateAndOptions(t *testing.T) {
	c := card.New(card.Memory,
		card.WithThresholds(card.Thresholds{Warning: 40, Critical: 60}),
		card.WithHistorySize(2),
	)

	c.Update(snapshot(0, 1000, 2000, 0, 0, 0, 0))
	c.Update(snapshot(0, 1500, 2000, 0, 0, 0, 0))
	c.Update(snapshot(0, 500, 2000, 0, 0, 0, 0))

	s := c.State()
	assert.Equal(t, card.Memory, s.Kind)
	assert.Equal(t, "Memory", s.Label)
	assert.Equal(t, card.StatusNormal, s.Status)
	assert.InDelta(t, 25.0, s.Percentage, 1e-9)
	assert.Equal(t, []float64{1500, 500}, s.History)
	assert.Equal(t, card.Trend{Avg: 1000, Min: 500, Max: 1500}, s.Trend)

	c.Update(snapshot(0, 1300, 2000, 0, 0, 0, 0))
	assert.Equal(t, card.StatusCritical, c.State().Status)
}

func TestCardMissingTotalFallsBack(t *testing.T) {
	c := card.New(card.Disk)
	assert.Equal(t, card.StatusCritical, c.Update(snapshot(0, 0, 0, 95, 0, 0, 0)))
	assert.InDelta(t, 100.0, c.State().MaxValue, 1e-9)
}

func TestCardTrendEmptyHistory(t *testing.T) {
	s := card.New(card.CPU).State()
	assert.Empty(t, s.History)
	assert.Equal(t, card.Trend{}, s.Trend)
}
