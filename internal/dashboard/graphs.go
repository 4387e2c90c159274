package dashboard

import (
	"strings"
)

// Braille character rendering for high-resolution terminal graphs.
//
// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 (empty) and uses bit patterns:
// bit 0 = dot 1, bit 1 = dot 2, bit 2 = dot 3, bit 3 = dot 4,
// bit 4 = dot 5, bit 5 = dot 6, bit 6 = dot 7, bit 7 = dot 8

const brailleBase = '⠀'

// sparklineBlocks are block characters for 8-level vertical resolution (lowest to highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// brailleDots maps row/column to the bit offset for braille pattern
// [row][col] where row is 0-3 (top to bottom) and col is 0-1 (left to right)
var brailleDots = [4][2]uint8{
	{0, 3},
	{1, 4},
	{2, 5},
	{6, 7},
}

// findMinMax returns the range to scale data against. Percentage series use
// the fixed 0-100 range; throughput series scale from 0 to their peak.
func findMinMax(data []float64, percent bool) (minVal, maxVal float64) {
	if percent || len(data) == 0 {
		return 0, 100
	}

	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	// an idle series stays on the baseline
	if maxVal == minVal {
		maxVal = minVal + 1
	}
	return minVal, maxVal
}

// normalizeValue converts a value to 0-1 range given min/max bounds.
func normalizeValue(val, minVal, maxVal float64) float64 {
	if maxVal > minVal {
		return (val - minVal) / (maxVal - minVal)
	}
	return 0.5
}

// clampInt clamps an integer to a range [0, maxVal].
func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// Sparkline renders data as a single row of block characters, width cells
// wide. Non-percent series are scaled to their own peak.
func Sparkline(data []float64, width int, percent bool) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}

	minVal, maxVal := findMinMax(data, percent)

	// Short series are drawn right-aligned rather than stretched.
	points := peakBuckets(data, width)

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", width-len(points)))
	for _, val := range points {
		normalized := normalizeValue(val, minVal, maxVal)
		idx := clampInt(int(normalized*float64(len(sparklineBlocks)-1)), len(sparklineBlocks)-1)
		b.WriteRune(sparklineBlocks[idx])
	}
	return b.String()
}

// BrailleGraph renders data as height rows of braille characters, width
// cells wide. Each cell holds two samples and four vertical levels.
func BrailleGraph(data []float64, width, height int, percent bool) []string {
	if len(data) == 0 || width <= 0 || height <= 0 {
		return nil
	}

	minVal, maxVal := findMinMax(data, percent)
	totalDots := height * 4
	targetPoints := width * 2

	resampled := peakBuckets(data, targetPoints)

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = brailleBase
		}
	}

	// right-aligned when the series is shorter than the graph
	horizOffset := targetPoints - len(resampled)

	for i, val := range resampled {
		normalized := normalizeValue(val, minVal, maxVal)
		dotHeight := clampInt(int(normalized*float64(totalDots)), totalDots)

		charCol := (i + horizOffset) / 2
		if charCol >= width {
			continue
		}
		subCol := (i + horizOffset) % 2

		// Fill dots from bottom up
		for dot := 0; dot < dotHeight; dot++ {
			row := height - 1 - (dot / 4)
			if row < 0 {
				continue
			}
			subRow := 3 - (dot % 4)
			grid[row][charCol] |= rune(1 << brailleDots[subRow][subCol])
		}
	}

	lines := make([]string, height)
	for i, row := range grid {
		lines[i] = string(row)
	}
	return lines
}

// peakBuckets shrinks data to n points, keeping the largest sample of each
// bucket so short spikes stay visible. Data that already fits is returned as is.
func peakBuckets(data []float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if len(data) <= n {
		return data
	}

	out := make([]float64, n)
	for i := range out {
		lo := i * len(data) / n
		hi := (i + 1) * len(data) / n
		peak := data[lo]
		for _, v := range data[lo+1 : hi] {
			peak = max(peak, v)
		}
		out[i] = peak
	}
	return out
}
