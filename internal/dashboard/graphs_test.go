package dashboard

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparkline(t *testing.T) {
	tests := []struct {
		name     string
		data     []float64
		width    int
		percent  bool
		expected string
	}{
		{"empty data", nil, 5, true, ""},
		{"zero width", []float64{50}, 0, true, ""},
		{"percent extremes", []float64{0, 100}, 2, true, "▁█"},
		{"short series right aligned", []float64{0, 100}, 4, true, "  ▁█"},
		{"throughput scaled to peak", []float64{0, 2, 4}, 3, false, "▁▄█"},
		{"idle throughput stays low", []float64{0, 0, 0}, 3, false, "▁▁▁"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sparkline(tt.data, tt.width, tt.percent))
		})
	}
}

func TestSparkline_Downsamples(t *testing.T) {
	data := make([]float64, 100)
	for i := range data {
		data[i] = float64(i)
	}

	out := Sparkline(data, 10, true)
	assert.Equal(t, 10, utf8.RuneCountInString(out))
}

func TestBrailleGraph(t *testing.T) {
	assert.Nil(t, BrailleGraph(nil, 4, 2, true))
	assert.Nil(t, BrailleGraph([]float64{1}, 0, 2, true))

	rows := BrailleGraph([]float64{100, 100}, 3, 2, true)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, 3, utf8.RuneCountInString(row))
	}

	// two full samples fill the rightmost cell top to bottom
	assert.Equal(t, '⣿', []rune(rows[0])[2])
	assert.Equal(t, '⣿', []rune(rows[1])[2])
	assert.Equal(t, brailleBase, []rune(rows[0])[0])
}

func TestPeakBuckets(t *testing.T) {
	tests := []struct {
		name     string
		data     []float64
		n        int
		expected []float64
	}{
		{"empty", nil, 3, nil},
		{"fits", []float64{1, 2}, 4, []float64{1, 2}},
		{"same size", []float64{1, 2}, 2, []float64{1, 2}},
		{"keeps peaks", []float64{1, 9, 2, 3}, 2, []float64{9, 3}},
		{"uneven buckets", []float64{5, 1, 1, 8, 2}, 2, []float64{5, 8}},
		{"zero width", []float64{1}, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, peakBuckets(tt.data, tt.n))
		})
	}
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "", ProgressBar(0, 50))
	assert.Equal(t, "▰▰▱▱", ProgressBar(4, 50))
	assert.Equal(t, "▱▱▱▱", ProgressBar(4, -10))
	assert.Equal(t, "▰▰▰▰", ProgressBar(4, 250))
}
