package dashboard

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/rileyhilliard/sysmon/internal/layout"
	"github.com/rileyhilliard/sysmon/internal/processor"
)

// Widget draws one resource view into its assigned rectangle. The dashboard
// draws the frame; r is the area inside it. v is nil until the first
// snapshot for the widget arrives.
type Widget interface {
	Name() string
	Render(s Surface, r layout.Rect, v processor.View)
}

// WidgetOptions controls how the stock widgets draw.
type WidgetOptions struct {
	Theme        Theme
	Thresholds   processor.Thresholds
	ShowGraphs   bool
	ProcessCount int
}

// DefaultWidgets returns the five stock widgets in display order.
func DefaultWidgets(opts WidgetOptions) []Widget {
	base := widgetBase{opts: opts}
	return []Widget{
		&CPUWidget{base},
		&MemoryWidget{base},
		&DiskWidget{base},
		&NetworkWidget{base},
		&ProcessesWidget{base},
	}
}

type widgetBase struct {
	opts WidgetOptions
}

func (b widgetBase) theme() Theme { return b.opts.Theme }

// pane writes successive lines into a rect, clipping each one to its width.
type pane struct {
	s   Surface
	r   layout.Rect
	row int
}

func newPane(s Surface, r layout.Rect) *pane {
	return &pane{s: s, r: r}
}

func (p *pane) remaining() int {
	return p.r.Height - p.row
}

// segment is a run of text in one pen.
type segment struct {
	text string
	pen  Pen
}

// line writes the segments on the next free row. Returns false once the
// pane is full.
func (p *pane) line(segs ...segment) bool {
	if p.remaining() <= 0 || p.r.Width <= 0 {
		return false
	}
	x := p.r.X
	limit := p.r.X + p.r.Width
	for _, seg := range segs {
		if x >= limit {
			break
		}
		text := runewidth.Truncate(seg.text, limit-x, "")
		x += p.s.Text(x, p.r.Y+p.row, text, seg.pen)
	}
	p.row++
	return true
}

// graph fills the remaining rows with a graph of history. Tall panes get a
// braille graph; a single free row gets a sparkline.
func (p *pane) graph(history []float64, percent bool, pen Pen) {
	rows := p.remaining()
	if rows <= 0 || len(history) == 0 {
		return
	}
	if rows == 1 {
		p.line(segment{Sparkline(history, p.r.Width, percent), pen})
		return
	}
	for _, row := range BrailleGraph(history, p.r.Width, rows, percent) {
		p.line(segment{row, pen})
	}
}

func waiting(s Surface, r layout.Rect, t Theme) {
	newPane(s, r).line(segment{"waiting for data…", t.muted()})
}

// meter writes "label bar value" with the bar taking whatever width is left.
func (p *pane) meter(label string, percent float64, value string, labelPen, barPen Pen) {
	barWidth := p.r.Width - runewidth.StringWidth(label) - runewidth.StringWidth(value) - 2
	if barWidth < 3 {
		p.line(segment{label + " ", labelPen}, segment{value, barPen})
		return
	}
	p.line(
		segment{label + " ", labelPen},
		segment{ProgressBar(barWidth, percent), barPen},
		segment{" " + value, barPen},
	)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%5.1f%%", v)
}

func formatRate(mbps float64) string {
	switch {
	case mbps >= 1024:
		return fmt.Sprintf("%.2f GB/s", mbps/1024)
	case mbps >= 1:
		return fmt.Sprintf("%.2f MB/s", mbps)
	default:
		return fmt.Sprintf("%.1f KB/s", mbps*1024)
	}
}

// CPUWidget shows overall and per-core usage, load, clocks and a usage graph.
type CPUWidget struct{ widgetBase }

func (w *CPUWidget) Name() string { return string(processor.ResourceCPU) }

func (w *CPUWidget) Render(s Surface, r layout.Rect, v processor.View) {
	t := w.theme()
	view, ok := v.(processor.CPUView)
	if !ok {
		waiting(s, r, t)
		return
	}
	th := w.opts.Thresholds.CPU
	p := newPane(s, r)

	p.meter("Usage", view.UsagePercent, formatPercent(view.UsagePercent), t.label(), t.metric(view.UsagePercent, th))
	p.line(
		segment{"Load  ", t.label()},
		segment{fmt.Sprintf("%.2f %.2f %.2f", view.LoadAvg.One, view.LoadAvg.Five, view.LoadAvg.Fifteen), t.text()},
		segment{fmt.Sprintf("  %d cores · %s", view.CoreCount, view.UtilizationLevel), t.muted()},
	)

	info := []segment{{"Freq  ", t.label()}, {fmt.Sprintf("%.0f MHz", view.Frequency.CurrentMHz), t.text()}}
	if view.Temperature != nil {
		info = append(info, segment{fmt.Sprintf("  %.1f°C", view.Temperature.Celsius), t.text()})
	}
	if view.PotentialBottleneck {
		info = append(info, segment{"  bottleneck", Pen{Fg: t.Critical, Bold: true}})
	}
	p.line(info...)

	// per-core bars only if they leave room for a graph
	if len(view.PerCorePercent) > 0 && p.remaining() > len(view.PerCorePercent)+1 {
		for i, pct := range view.PerCorePercent {
			p.meter(fmt.Sprintf("%3d", i), pct, formatPercent(pct), t.muted(), t.metric(pct, th))
		}
	}

	if w.opts.ShowGraphs {
		p.graph(view.History, true, t.graph())
	}
}

// MemoryWidget shows RAM and swap usage and a usage graph.
type MemoryWidget struct{ widgetBase }

func (w *MemoryWidget) Name() string { return string(processor.ResourceMemory) }

func (w *MemoryWidget) Render(s Surface, r layout.Rect, v processor.View) {
	t := w.theme()
	view, ok := v.(processor.MemoryView)
	if !ok {
		waiting(s, r, t)
		return
	}
	th := w.opts.Thresholds.Memory
	p := newPane(s, r)

	p.meter("RAM ", view.UsagePercent, formatPercent(view.UsagePercent), t.label(), t.metric(view.UsagePercent, th))
	p.line(
		segment{"Used ", t.label()},
		segment{fmt.Sprintf("%.1f / %.1f GB", view.Used, view.Total), t.text()},
		segment{fmt.Sprintf("  avail %.1f GB", view.Available), t.muted()},
	)
	p.meter("Swap", view.SwapPercent, formatPercent(view.SwapPercent), t.label(), t.metric(view.SwapPercent, th))

	if w.opts.ShowGraphs {
		p.graph(view.History, true, t.graph())
	}
}

// DiskWidget shows usage, throughput and per-partition usage.
type DiskWidget struct{ widgetBase }

func (w *DiskWidget) Name() string { return string(processor.ResourceDisk) }

func (w *DiskWidget) Render(s Surface, r layout.Rect, v processor.View) {
	t := w.theme()
	view, ok := v.(processor.DiskView)
	if !ok {
		waiting(s, r, t)
		return
	}
	th := w.opts.Thresholds.Disk
	p := newPane(s, r)

	p.meter("Usage", view.UsagePercent, formatPercent(view.UsagePercent), t.label(), t.metric(view.UsagePercent, th))
	p.line(
		segment{"R ", t.label()},
		segment{formatRate(view.ReadSpeed), t.text()},
		segment{"  W ", t.label()},
		segment{formatRate(view.WriteSpeed), t.text()},
	)

	graphRows := 0
	if w.opts.ShowGraphs && len(view.History) > 0 {
		graphRows = 1
	}
	for _, part := range view.Partitions {
		if p.remaining() <= graphRows {
			break
		}
		p.meter(truncateLabel(part.Mountpoint, 10), part.UsagePercent, formatPercent(part.UsagePercent), t.muted(), t.metric(part.UsagePercent, th))
	}

	if w.opts.ShowGraphs {
		p.graph(view.History, false, t.graph())
	}
}

// NetworkWidget shows total and per-interface throughput.
type NetworkWidget struct{ widgetBase }

func (w *NetworkWidget) Name() string { return string(processor.ResourceNetwork) }

func (w *NetworkWidget) Render(s Surface, r layout.Rect, v processor.View) {
	t := w.theme()
	view, ok := v.(processor.NetworkView)
	if !ok {
		waiting(s, r, t)
		return
	}
	p := newPane(s, r)

	p.line(
		segment{"↓ ", Pen{Fg: t.Healthy}},
		segment{formatRate(view.DownloadSpeed), t.text()},
		segment{"  ↑ ", Pen{Fg: t.Accent}},
		segment{formatRate(view.UploadSpeed), t.text()},
	)

	graphRows := 0
	if w.opts.ShowGraphs && len(view.History) > 0 {
		graphRows = 1
	}
	for _, iface := range view.Interfaces {
		if p.remaining() <= graphRows {
			break
		}
		p.line(
			segment{truncateLabel(iface.Name, 10) + " ", t.muted()},
			segment{"↓" + formatRate(iface.DownloadSpeed) + " ↑" + formatRate(iface.UploadSpeed), t.label()},
		)
	}

	if w.opts.ShowGraphs {
		p.graph(view.History, false, t.graph())
	}
}

// ProcessesWidget shows the process table in the order it is given.
type ProcessesWidget struct{ widgetBase }

func (w *ProcessesWidget) Name() string { return string(processor.ResourceProcesses) }

func (w *ProcessesWidget) Render(s Surface, r layout.Rect, v processor.View) {
	t := w.theme()
	view, ok := v.(processor.ProcessesView)
	if !ok {
		waiting(s, r, t)
		return
	}
	p := newPane(s, r)

	nameWidth := r.Width - 25
	if nameWidth < 4 {
		nameWidth = 4
	}

	p.line(segment{fmt.Sprintf("%8s %-*s %7s %7s", "PID", nameWidth, "NAME", "CPU%", "MEM%"), Pen{Fg: t.TextSecondary, Bold: true}})

	limit := len(view.Processes)
	if w.opts.ProcessCount > 0 && w.opts.ProcessCount < limit {
		limit = w.opts.ProcessCount
	}
	for _, proc := range view.Processes[:limit] {
		if p.remaining() <= 0 {
			break
		}
		name := runewidth.FillRight(runewidth.Truncate(proc.Name, nameWidth, "…"), nameWidth)
		p.line(
			segment{fmt.Sprintf("%8d ", proc.PID), t.muted()},
			segment{name + " ", t.text()},
			segment{fmt.Sprintf("%6.1f%%", proc.CPUPercent), t.metric(proc.CPUPercent, w.opts.Thresholds.CPU)},
			segment{fmt.Sprintf(" %6.1f%%", proc.MemoryPercent), t.label()},
		)
	}
}

func truncateLabel(s string, width int) string {
	return runewidth.FillRight(runewidth.Truncate(strings.TrimSpace(s), width, "…"), width)
}
