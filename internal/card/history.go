package card

// History is a fixed-capacity FIFO of recent values. Pushing past capacity
// evicts the oldest value.
type History struct {
	buf   []float64
	start int
	size  int
}

func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{buf: make([]float64, capacity)}
}

func (h *History) Push(v float64) {
	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = v
		h.size++
		return
	}
	h.buf[h.start] = v
	h.start = (h.start + 1) % len(h.buf)
}

func (h *History) Len() int {
	return h.size
}

func (h *History) Cap() int {
	return len(h.buf)
}

// Values returns the history oldest first.
func (h *History) Values() []float64 {
	out := make([]float64, h.size)
	for i := range out {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}
