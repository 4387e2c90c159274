package dashboard

import (
	"fmt"

	"github.com/rileyhilliard/sysmon/internal/layout"
)

// Help overlay dimensions. The box is clipped on smaller terminals.
const (
	helpWidth  = 60
	helpHeight = 15
)

// HelpBinding represents a single keyboard shortcut entry.
type HelpBinding struct {
	Key  string
	Desc string
}

// HelpBindings defines all keyboard shortcuts shown in the help overlay.
var HelpBindings = []HelpBinding{
	{Key: "q / Ctrl+C", Desc: "Quit"},
	{Key: "h / ?", Desc: "Toggle this help"},
	{Key: "1 / 2 / 3", Desc: "Detailed / compact / minimal layout"},
	{Key: "l", Desc: "Cycle layout"},
	{Key: "tab / shift+tab", Desc: "Select next / previous widget"},
	{Key: "p / m", Desc: "Sort processes by CPU / memory"},
	{Key: "s", Desc: "Save a snapshot"},
	{Key: "c", Desc: "Toggle colour"},
	{Key: "r", Desc: "Reset statistics"},
	{Key: "a", Desc: "Toggle alert box"},
}

func (d *Dashboard) drawHelp(c *Canvas) {
	w, h := c.Size()
	bw, bh := min(helpWidth, w), min(helpHeight, h)
	box := layout.Rect{X: (w - bw) / 2, Y: (h - bh) / 2, Width: bw, Height: bh}
	if box.Empty() {
		return
	}

	t := d.theme
	c.Fill(box, t.overlay())
	c.Box(box, "Help", Pen{Fg: t.Accent, Bg: t.Surface})

	p := newPane(c, box.Inset(1))
	p.r.X++
	p.r.Width--
	keyPen := Pen{Fg: t.TextPrimary, Bg: t.Surface, Bold: true}
	descPen := Pen{Fg: t.TextSecondary, Bg: t.Surface}

	p.line(segment{"Keyboard Shortcuts", Pen{Fg: t.Accent, Bg: t.Surface, Bold: true}})
	for _, b := range HelpBindings {
		p.line(segment{fmt.Sprintf("%-17s", b.Key), keyPen}, segment{b.Desc, descPen})
	}
	p.line(segment{"Press any key to close", Pen{Fg: t.TextMuted, Bg: t.Surface}})
}
