package dashboard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/cellbuf"
	"github.com/mattn/go-runewidth"

	"github.com/rileyhilliard/sysmon/internal/layout"
)

// Pen is the style of a single cell. The zero Pen draws unstyled text.
// Colours are "#RRGGBB" hex or an ANSI index; anything else draws unstyled.
type Pen struct {
	Fg   lipgloss.Color
	Bg   lipgloss.Color
	Bold bool
}

// Surface is everything widgets and overlays may draw with. All operations
// clip to the surface bounds; drawing into a zero-area rect does nothing.
type Surface interface {
	Size() (width, height int)
	SetCell(x, y int, r rune, p Pen)
	// Text writes s starting at (x, y) and returns the number of columns used.
	// Text that runs past the right edge is cut off.
	Text(x, y int, s string, p Pen) int
	Fill(r layout.Rect, p Pen)
	// Box draws a rounded border around r with title in the top edge.
	Box(r layout.Rect, title string, p Pen)
}

// Canvas is a Surface backed by a cellbuf buffer. Later writes overwrite
// earlier ones, so overlays are drawn simply by drawing them last.
type Canvas struct {
	width  int
	height int
	buf    *cellbuf.Buffer
}

var _ Surface = (*Canvas)(nil)

// NewCanvas creates a blank canvas. Negative sizes are treated as zero.
func NewCanvas(width, height int) *Canvas {
	width, height = max(width, 0), max(height, 0)
	return &Canvas{width: width, height: height, buf: cellbuf.NewBuffer(width, height)}
}

// Size returns the canvas dimensions in cells.
func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

func (c *Canvas) inBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < c.width && y < c.height
}

// SetCell writes one rune. Double-width runes take two cells and are dropped
// if the second cell would be off-screen.
func (c *Canvas) SetCell(x, y int, r rune, p Pen) {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		return
	}
	if !c.inBounds(x, y) || !c.inBounds(x+w-1, y) {
		return
	}
	cl := cellbuf.NewCell(r)
	cl.Style = penStyleCell(p)
	c.buf.SetCell(x, y, cl)
}

// Text writes s left to right from (x, y) and returns the columns consumed.
func (c *Canvas) Text(x, y int, s string, p Pen) int {
	if y < 0 || y >= c.height {
		return 0
	}
	col := x
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col+w > c.width {
			break
		}
		if col >= 0 {
			c.SetCell(col, y, r, p)
		}
		col += w
	}
	if col < x {
		return 0
	}
	return col - x
}

// Fill paints every cell in r with a space in pen p.
func (c *Canvas) Fill(r layout.Rect, p Pen) {
	if r.Empty() {
		return
	}
	area := cellbuf.Rect(r.X, r.Y, r.Width, r.Height).Intersect(c.buf.Bounds())
	if area.Empty() {
		return
	}
	blank := cellbuf.BlankCell
	blank.Style = penStyleCell(p)
	c.buf.FillRect(&blank, area)
}

// Box draws a rounded border. Rects smaller than 2x2 have no room for a
// border and are left untouched.
func (c *Canvas) Box(r layout.Rect, title string, p Pen) {
	if r.Width < 2 || r.Height < 2 {
		return
	}
	x0, y0 := r.X, r.Y
	x1, y1 := r.X+r.Width-1, r.Y+r.Height-1

	for x := x0 + 1; x < x1; x++ {
		c.SetCell(x, y0, '─', p)
		c.SetCell(x, y1, '─', p)
	}
	for y := y0 + 1; y < y1; y++ {
		c.SetCell(x0, y, '│', p)
		c.SetCell(x1, y, '│', p)
	}
	c.SetCell(x0, y0, '╭', p)
	c.SetCell(x1, y0, '╮', p)
	c.SetCell(x0, y1, '╰', p)
	c.SetCell(x1, y1, '╯', p)

	// "╭─ title ─╮" needs at least 4 columns of frame around the title
	if title == "" || r.Width < 6 {
		return
	}
	label := runewidth.Truncate(" "+title+" ", r.Width-4, "…")
	titlePen := p
	titlePen.Bold = true
	c.Text(x0+2, y0, label, titlePen)
}

// cellAt returns the cell drawn at (x, y). The right half of a wide rune
// reports the rune it belongs to.
func (c *Canvas) cellAt(x, y int) *cellbuf.Cell {
	if !c.inBounds(x, y) {
		return nil
	}
	cl := c.buf.Cell(x, y)
	if cl != nil && cl.Width == 0 && x > 0 {
		return c.buf.Cell(x-1, y)
	}
	return cl
}

// Row returns the text of row y without styling, or "" if y is off-screen.
func (c *Canvas) Row(y int) string {
	if y < 0 || y >= c.height {
		return ""
	}
	var b strings.Builder
	for x := 0; x < c.width; x++ {
		cl := c.buf.Cell(x, y)
		if cl == nil || cl.Width == 0 {
			continue
		}
		b.WriteString(cl.String())
	}
	return b.String()
}

// PenAt returns the pen of the cell at (x, y).
func (c *Canvas) PenAt(x, y int) Pen {
	cl := c.cellAt(x, y)
	if cl == nil {
		return Pen{}
	}
	return cellPen(cl.Style)
}

// Plain returns the whole canvas as unstyled text, one line per row.
func (c *Canvas) Plain() string {
	lines := make([]string, c.height)
	for y := range lines {
		lines[y] = c.Row(y)
	}
	return strings.Join(lines, "\n")
}

// Render returns the canvas as styled text. Runs of cells sharing a pen are
// rendered through a single lipgloss style, so the active colour profile
// applies.
func (c *Canvas) Render() string {
	styles := make(map[Pen]lipgloss.Style)
	lines := make([]string, c.height)

	for y := 0; y < c.height; y++ {
		var line strings.Builder
		var run strings.Builder
		var runPen Pen

		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runPen == (Pen{}) {
				line.WriteString(run.String())
			} else {
				st, ok := styles[runPen]
				if !ok {
					st = penStyle(runPen)
					styles[runPen] = st
				}
				line.WriteString(st.Render(run.String()))
			}
			run.Reset()
		}

		for x := 0; x < c.width; x++ {
			cl := c.buf.Cell(x, y)
			if cl == nil || cl.Width == 0 {
				continue
			}
			if pen := cellPen(cl.Style); pen != runPen {
				flush()
				runPen = pen
			}
			run.WriteString(cl.String())
		}
		flush()
		lines[y] = line.String()
	}

	return strings.Join(lines, "\n")
}

func penStyle(p Pen) lipgloss.Style {
	st := lipgloss.NewStyle()
	if p.Fg != "" {
		st = st.Foreground(p.Fg)
	}
	if p.Bg != "" {
		st = st.Background(p.Bg)
	}
	if p.Bold {
		st = st.Bold(true)
	}
	return st
}

// penStyleCell converts a pen to the cell style stored in the buffer.
func penStyleCell(p Pen) cellbuf.Style {
	var st cellbuf.Style
	st.Fg = ansiColor(p.Fg)
	st.Bg = ansiColor(p.Bg)
	if p.Bold {
		st.Attrs |= cellbuf.BoldAttr
	}
	return st
}

// cellPen is the inverse of penStyleCell.
func cellPen(st cellbuf.Style) Pen {
	return Pen{
		Fg:   penColor(st.Fg),
		Bg:   penColor(st.Bg),
		Bold: st.Attrs.Contains(cellbuf.BoldAttr),
	}
}

func ansiColor(c lipgloss.Color) ansi.Color {
	v := string(c)
	if v == "" {
		return nil
	}
	if strings.HasPrefix(v, "#") && len(v) == 7 {
		n, err := strconv.ParseUint(v[1:], 16, 32)
		if err != nil {
			return nil
		}
		return ansi.RGBColor{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n)}
	}
	n, err := strconv.Atoi(v)
	switch {
	case err != nil || n < 0 || n > 255:
		return nil
	case n < 16:
		return ansi.BasicColor(n)
	default:
		return ansi.IndexedColor(n)
	}
}

func penColor(c ansi.Color) lipgloss.Color {
	switch c := c.(type) {
	case nil:
		return ""
	case ansi.BasicColor:
		return lipgloss.Color(strconv.Itoa(int(c)))
	case ansi.IndexedColor:
		return lipgloss.Color(strconv.Itoa(int(c)))
	case ansi.RGBColor:
		return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B))
	default:
		r, g, b, _ := c.RGBA()
		return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r>>8, g>>8, b>>8))
	}
}
