// Package layout maps a terminal size and layout mode to one rectangle per
// dashboard widget.
//
// Row 0 is always the header and never part of a plan; every widget starts at
// row 1 or below. Plans are computed fresh each frame and are never cached.
package layout

import (
	"strings"

	"github.com/rileyhilliard/sysmon/internal/snapshot"
)

// Mode selects how widgets are arranged.
type Mode string

const (
	// ModeDetailed is a 2x2 grid of resource widgets above a full-width process list.
	ModeDetailed Mode = "detailed"
	// ModeCompact stacks the resource widgets in a narrow left column and gives
	// the process list the rest of the screen.
	ModeCompact Mode = "compact"
	// ModeMinimal puts the resource widgets in a short top bar.
	ModeMinimal Mode = "minimal"
)

// Modes lists the valid modes in cycling order.
var Modes = []Mode{ModeDetailed, ModeCompact, ModeMinimal}

// Widget names, in the order a plan is drawn.
var Widgets = []string{snapshot.CPU, snapshot.Memory, snapshot.Disk, snapshot.Network, snapshot.Processes}

// minimalBarHeight is the height of the top bar in minimal mode.
const minimalBarHeight = 5

// maxGridRowHeight caps each of the two grid rows in detailed mode.
const maxGridRowHeight = 10

// Valid reports whether m is one of the known modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeDetailed, ModeCompact, ModeMinimal:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (m Mode) String() string {
	return string(m)
}

// ParseMode converts a user-supplied string to a Mode. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseMode(s string) (Mode, bool) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return ModeDetailed, false
	}
	return m, true
}

// Rect is a screen rectangle in cells. Width and Height are never negative in
// a computed plan.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the rect covers no cells.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Inset shrinks the rect by n cells on every side. The result is clamped to a
// zero-area rect rather than going negative.
func (r Rect) Inset(n int) Rect {
	out := Rect{X: r.X + n, Y: r.Y + n, Width: r.Width - 2*n, Height: r.Height - 2*n}
	if out.Width < 0 {
		out.Width = 0
	}
	if out.Height < 0 {
		out.Height = 0
	}
	return out
}

// Plan maps widget names to their rectangles.
type Plan map[string]Rect

// Layout computes the plan for a terminal of the given size. It is a pure
// function of its arguments. An unknown mode is laid out as ModeDetailed.
func Layout(width, height int, mode Mode) Plan {
	width = nonNegative(width)
	// row 0 is the header; a zero-height terminal has no room for it
	top := min(1, nonNegative(height))
	content := nonNegative(height - 1)

	switch mode {
	case ModeCompact:
		return compact(width, content, top)
	case ModeMinimal:
		return minimal(width, content, top)
	default:
		return detailed(width, content, top)
	}
}

// detailed: cpu and memory on top, disk and network below them, processes
// across the full width underneath.
func detailed(width, height, y0 int) Plan {
	top := min(height/2, maxGridRowHeight)
	middle := min(height/2, maxGridRowHeight)
	bottom := nonNegative(height - top - middle)

	left := width / 2
	right := width - left

	return Plan{
		snapshot.CPU:       {X: 0, Y: y0, Width: left, Height: top},
		snapshot.Memory:    {X: left, Y: y0, Width: right, Height: top},
		snapshot.Disk:      {X: 0, Y: y0 + top, Width: left, Height: middle},
		snapshot.Network:   {X: left, Y: y0 + top, Width: right, Height: middle},
		snapshot.Processes: {X: 0, Y: y0 + top + middle, Width: width, Height: bottom},
	}
}

// compact: resource widgets stacked in the left third, processes on the right
// at full content height. Network absorbs the rounding remainder.
func compact(width, height, y0 int) Plan {
	left := width / 3
	right := width - left

	quarter := height / 4
	network := height - 3*quarter

	return Plan{
		snapshot.CPU:       {X: 0, Y: y0, Width: left, Height: quarter},
		snapshot.Memory:    {X: 0, Y: y0 + quarter, Width: left, Height: quarter},
		snapshot.Disk:      {X: 0, Y: y0 + 2*quarter, Width: left, Height: quarter},
		snapshot.Network:   {X: 0, Y: y0 + 3*quarter, Width: left, Height: network},
		snapshot.Processes: {X: left, Y: y0, Width: right, Height: height},
	}
}

// minimal: four resource widgets side by side in a short bar, processes below.
func minimal(width, height, y0 int) Plan {
	bar := min(minimalBarHeight, height)
	quarter := width / 4

	return Plan{
		snapshot.CPU:       {X: 0, Y: y0, Width: quarter, Height: bar},
		snapshot.Memory:    {X: quarter, Y: y0, Width: quarter, Height: bar},
		snapshot.Disk:      {X: 2 * quarter, Y: y0, Width: quarter, Height: bar},
		snapshot.Network:   {X: 3 * quarter, Y: y0, Width: width - 3*quarter, Height: bar},
		snapshot.Processes: {X: 0, Y: y0 + bar, Width: width, Height: height - bar},
	}
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
