package processor

// DefaultHistorySize is the default number of samples retained per resource
// (two minutes at a one second refresh).
const DefaultHistorySize = 120

// HistorySeries is a fixed-capacity FIFO of scalar samples backed by a ring
// buffer. Push is O(1); once full, the oldest sample is overwritten.
//
// It is not safe for concurrent use. The processor that owns it is only ever
// driven from the render loop.
type HistorySeries struct {
	data  []float64
	head  int
	count int
}

// NewHistorySeries creates a series holding at most capacity samples.
// A non-positive capacity falls back to DefaultHistorySize.
func NewHistorySeries(capacity int) *HistorySeries {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &HistorySeries{data: make([]float64, capacity)}
}

// Push appends a sample, evicting the oldest when the series is full.
func (h *HistorySeries) Push(value float64) {
	h.data[h.head] = value
	h.head = (h.head + 1) % len(h.data)
	if h.count < len(h.data) {
		h.count++
	}
}

// Len returns the number of samples currently stored.
func (h *HistorySeries) Len() int {
	return h.count
}

// Cap returns the maximum number of samples the series keeps.
func (h *HistorySeries) Cap() int {
	return len(h.data)
}

// Clear drops every sample. Capacity is unchanged.
func (h *HistorySeries) Clear() {
	h.head = 0
	h.count = 0
}

// Values returns all stored samples, oldest first. The slice is a copy and is
// never nil.
func (h *HistorySeries) Values() []float64 {
	out := h.Last(h.count)
	if out == nil {
		return []float64{}
	}
	return out
}

// Last returns the newest n samples in chronological order (oldest first).
// Returns fewer values if not enough history is available, nil for n <= 0.
func (h *HistorySeries) Last(n int) []float64 {
	if n <= 0 || h.count == 0 {
		return nil
	}
	if n > h.count {
		n = h.count
	}

	size := len(h.data)
	result := make([]float64, n)

	// head points at the next write slot, so the newest sample is at head-1
	start := (h.head - n + size) % size
	for i := 0; i < n; i++ {
		result[i] = h.data[(start+i)%size]
	}
	return result
}

// Latest returns the newest sample, or 0 and false for an empty series.
func (h *HistorySeries) Latest() (float64, bool) {
	if h.count == 0 {
		return 0, false
	}
	return h.data[(h.head-1+len(h.data))%len(h.data)], true
}
