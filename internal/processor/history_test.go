package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHistorySeries(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		expected int
	}{
		{"default size", 0, DefaultHistorySize},
		{"negative size", -3, DefaultHistorySize},
		{"custom size", 30, 30},
		{"single slot", 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistorySeries(tt.capacity)
			require.NotNil(t, h)
			assert.Equal(t, tt.expected, h.Cap())
			assert.Equal(t, 0, h.Len())
		})
	}
}

func TestHistorySeries_Values_Empty(t *testing.T) {
	h := NewHistorySeries(5)

	values := h.Values()
	assert.NotNil(t, values)
	assert.Empty(t, values)
	assert.Nil(t, h.Last(3))

	_, ok := h.Latest()
	assert.False(t, ok)
}

func TestHistorySeries_PushBelowCapacity(t *testing.T) {
	h := NewHistorySeries(5)
	h.Push(1)
	h.Push(2)
	h.Push(3)

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, []float64{1, 2, 3}, h.Values())

	latest, ok := h.Latest()
	assert.True(t, ok)
	assert.Equal(t, 3.0, latest)
}

func TestHistorySeries_Overflow(t *testing.T) {
	const capacity = 4
	h := NewHistorySeries(capacity)

	var submitted []float64
	for i := 0; i < 11; i++ {
		v := float64(i * 10)
		submitted = append(submitted, v)
		h.Push(v)
		assert.LessOrEqual(t, h.Len(), capacity)
	}

	assert.Equal(t, capacity, h.Len())
	assert.Equal(t, submitted[len(submitted)-capacity:], h.Values())
}

func TestHistorySeries_Last(t *testing.T) {
	h := NewHistorySeries(5)
	for i := 1; i <= 7; i++ {
		h.Push(float64(i))
	}

	tests := []struct {
		name     string
		n        int
		expected []float64
	}{
		{"zero", 0, nil},
		{"negative", -1, nil},
		{"two newest", 2, []float64{6, 7}},
		{"all", 5, []float64{3, 4, 5, 6, 7}},
		{"more than stored", 10, []float64{3, 4, 5, 6, 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, h.Last(tt.n))
		})
	}
}

func TestHistorySeries_ValuesIsCopy(t *testing.T) {
	h := NewHistorySeries(3)
	h.Push(1)
	h.Push(2)

	values := h.Values()
	values[0] = 99

	assert.Equal(t, []float64{1, 2}, h.Values())
}

func TestHistorySeries_Clear(t *testing.T) {
	h := NewHistorySeries(3)
	h.Push(1)
	h.Push(2)
	h.Push(3)
	h.Push(4)

	h.Clear()
	assert.Equal(t, 0, h.Len())
	assert.Equal(t, 3, h.Cap())
	assert.Empty(t, h.Values())

	h.Push(5)
	assert.Equal(t, []float64{5}, h.Values())
}
