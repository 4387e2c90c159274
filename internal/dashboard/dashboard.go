// Package dashboard turns processed snapshots into terminal frames.
//
// The Dashboard keeps the last view per widget, the alert ledger and two
// overlay flags (help and alerts). Each Update merges a snapshot into that
// state and renders one frame onto a fresh Canvas: header row, widget frames
// at the rects the layout manager assigns, then the overlays on top.
//
// A Dashboard is owned by a single render loop and is not safe for
// concurrent use.
package dashboard

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/rileyhilliard/sysmon/internal/layout"
	"github.com/rileyhilliard/sysmon/internal/logger"
	"github.com/rileyhilliard/sysmon/internal/processor"
)

// Default terminal size used until the first Resize.
const (
	DefaultWidth  = 80
	DefaultHeight = 24
)

// alertBoxEntries is how many ledger entries the alert box shows.
const alertBoxEntries = 3

// statusTTL is how long a status message stays in the header.
const statusTTL = 5 * time.Second

// Title shown at the left of the header row.
const Title = "Linux System Monitor"

// ProcessSort selects the display order of the process table.
type ProcessSort int

const (
	SortByCPU ProcessSort = iota
	SortByMemory
)

func (s ProcessSort) String() string {
	if s == SortByMemory {
		return "memory"
	}
	return "cpu"
}

// Dashboard owns per-widget display state and the alert ledger.
type Dashboard struct {
	layout  *layout.Manager
	widgets []Widget
	cache   map[string]processor.View
	system  processor.SystemView

	ledger *AlertLedger
	sinks  []AlertSink

	now        func() time.Time
	log        logger.Logger
	theme      Theme
	thresholds processor.Thresholds
	showGraphs bool
	procCount  int

	width, height int
	showHelp      bool
	showAlerts    bool
	active        int
	procSort      ProcessSort

	status   string
	statusAt time.Time
	frame    string
	canvas   *Canvas
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithClock sets the clock used to stamp ledger entries and the header.
func WithClock(now func() time.Time) Option {
	return func(d *Dashboard) {
		if now != nil {
			d.now = now
		}
	}
}

// WithWidgets replaces the stock widgets.
func WithWidgets(widgets ...Widget) Option {
	return func(d *Dashboard) { d.widgets = widgets }
}

// WithAlertSinks registers sinks that receive every new ledger entry.
func WithAlertSinks(sinks ...AlertSink) Option {
	return func(d *Dashboard) { d.sinks = append(d.sinks, sinks...) }
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(d *Dashboard) {
		if l != nil {
			d.log = l
		}
	}
}

// WithTheme sets the colour theme.
func WithTheme(t Theme) Option {
	return func(d *Dashboard) { d.theme = t }
}

// WithThresholds sets the thresholds used to colour meters.
func WithThresholds(t processor.Thresholds) Option {
	return func(d *Dashboard) { d.thresholds = t }
}

// WithGraphs turns history graphs on or off in the stock widgets.
func WithGraphs(show bool) Option {
	return func(d *Dashboard) { d.showGraphs = show }
}

// WithProcessCount caps the rows in the stock process table. Zero shows all.
func WithProcessCount(n int) Option {
	return func(d *Dashboard) {
		if n >= 0 {
			d.procCount = n
		}
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(d *Dashboard) { d.Resize(width, height) }
}

// New creates a Dashboard drawing with the given layout manager.
func New(manager *layout.Manager, opts ...Option) *Dashboard {
	if manager == nil {
		manager = layout.NewManager(layout.ModeDetailed)
	}
	d := &Dashboard{
		layout:     manager,
		cache:      make(map[string]processor.View),
		system:     processor.SystemView{Hostname: processor.UnknownHostname},
		ledger:     NewAlertLedger(AlertTTL),
		now:        time.Now,
		log:        logger.Noop(),
		theme:      DarkTheme,
		thresholds: processor.DefaultThresholds(),
		showGraphs: true,
		width:      DefaultWidth,
		height:     DefaultHeight,
		showAlerts: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.widgets == nil {
		d.widgets = DefaultWidgets(WidgetOptions{
			Theme:        d.theme,
			Thresholds:   d.thresholds,
			ShowGraphs:   d.showGraphs,
			ProcessCount: d.procCount,
		})
	}
	return d
}

// Layout returns the layout manager.
func (d *Dashboard) Layout() *layout.Manager {
	return d.layout
}

// Update merges s into the display cache, records its alerts and renders a
// frame.
func (d *Dashboard) Update(s processor.Snapshot) string {
	for _, v := range s.Views() {
		d.cache[string(v.Resource())] = v
	}
	d.system = s.System
	d.UpdateAlerts(s.Alerts)
	return d.Render()
}

// UpdateAlerts expires ledger entries older than the TTL, then appends one
// entry per warning or critical alert, stamped with the dashboard clock.
// Entries are not deduplicated by resource.
func (d *Dashboard) UpdateAlerts(alerts map[processor.Resource]processor.Alert) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Warn("updating alerts failed: %v", r)
		}
	}()

	now := d.now()
	if n := d.ledger.Purge(now); n > 0 {
		d.log.Debug("expired %d alert(s)", n)
	}

	for _, r := range alertOrder(alerts) {
		alert := alerts[r]
		if !alert.Level.Valid() {
			continue
		}
		if alert.Resource == "" {
			alert.Resource = r
		}
		alert.RaisedAt = now
		d.ledger.Append(alert)
		d.emit(alert)
	}
}

// alertOrder returns the keys of alerts with cpu, memory and disk first and
// anything else after them in name order.
func alertOrder(alerts map[processor.Resource]processor.Alert) []processor.Resource {
	order := make([]processor.Resource, 0, len(alerts))
	known := make(map[processor.Resource]bool, len(processor.AlertResources))
	for _, r := range processor.AlertResources {
		known[r] = true
		if _, ok := alerts[r]; ok {
			order = append(order, r)
		}
	}

	var extra []processor.Resource
	for r := range alerts {
		if !known[r] {
			extra = append(extra, r)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(order, extra...)
}

func (d *Dashboard) emit(alert processor.Alert) {
	for _, sink := range d.sinks {
		if err := sink.Record(alert); err != nil {
			d.log.Warn("alert sink failed: %v", err)
		}
	}
}

// Render draws a full frame for the current size, mode and state.
func (d *Dashboard) Render() (frame string) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("render failed: %v", r)
			frame = d.frame
		}
	}()

	c := NewCanvas(d.width, d.height)
	plan := d.layout.Plan(d.width, d.height)

	d.drawHeader(c)
	for _, w := range d.widgets {
		rect, ok := plan[w.Name()]
		if !ok {
			continue
		}
		d.drawWidget(c, w, rect)
	}

	if d.showHelp {
		d.drawHelp(c)
	}
	if d.showAlerts && d.ledger.Len() > 0 {
		d.drawAlerts(c)
	}

	d.canvas = c
	d.frame = c.Render()
	return d.frame
}

// Frame returns the last rendered frame.
func (d *Dashboard) Frame() string {
	return d.frame
}

// Plain returns the last rendered frame without styling.
func (d *Dashboard) Plain() string {
	if d.canvas == nil {
		return ""
	}
	return d.canvas.Plain()
}

func (d *Dashboard) drawWidget(c *Canvas, w Widget, rect layout.Rect) {
	if rect.Empty() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			d.log.Warn("widget %s failed to render: %v", w.Name(), r)
		}
	}()

	name := w.Name()
	c.Box(rect, d.widgetTitle(name), d.theme.border(name == d.ActiveWidget()))

	view := d.cache[name]
	if procs, ok := view.(processor.ProcessesView); ok && d.procSort == SortByMemory {
		view = sortByMemory(procs)
	}
	w.Render(c, rect.Inset(1), view)
}

func (d *Dashboard) widgetTitle(name string) string {
	title := processor.Resource(name).Label()
	if name == string(processor.ResourceProcesses) {
		if v, ok := d.cache[name].(processor.ProcessesView); ok {
			title = fmt.Sprintf("%s (%d) by %s", title, v.Total, d.procSort)
		}
	}
	return title
}

// sortByMemory returns a copy of v ordered by memory usage, highest first.
// The cached view keeps the processor's CPU order.
func sortByMemory(v processor.ProcessesView) processor.ProcessesView {
	procs := append([]processor.Process{}, v.Processes...)
	sort.SliceStable(procs, func(i, j int) bool {
		return procs[i].MemoryPercent > procs[j].MemoryPercent
	})
	v.Processes = procs
	return v
}

func (d *Dashboard) drawHeader(c *Canvas) {
	w, _ := c.Size()
	if w == 0 {
		return
	}
	t := d.theme
	c.Fill(layout.Rect{X: 0, Y: 0, Width: w, Height: 1}, t.header())

	now := d.now()
	x := c.Text(1, 0, Title, t.header())
	x += c.Text(1+x, 0, " | "+now.Format("2006-01-02 15:04:05"), t.header())
	x += c.Text(1+x, 0, " | Press 'q' to quit, 'h' for help", t.headerDim())

	right := fmt.Sprintf("%s · up %s ", d.system.Hostname, formatUptime(d.system.Uptime))
	pen := t.headerDim()
	if d.status != "" && now.Sub(d.statusAt) < statusTTL {
		right = d.status + " "
		pen = Pen{Fg: t.Accent, Bg: t.Surface, Bold: true}
	}
	rw := runewidth.StringWidth(right)
	if start := w - rw; start > x+2 {
		c.Text(start, 0, right, pen)
	}
}

func formatUptime(d time.Duration) string {
	if d <= 0 {
		return "0m"
	}
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm", days, hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// alertBoxRect places the alert box for n entries in the bottom-right
// corner of a w x h screen.
func alertBoxRect(w, h, n int) layout.Rect {
	width := min(50, w-4)
	height := n + 2
	r := layout.Rect{X: w - width - 2, Y: h - height - 1, Width: width, Height: height}
	if r.X < 0 {
		r.X = 0
	}
	if r.Y < 1 {
		r.Y = 1
	}
	if r.Width < 0 {
		r.Width = 0
	}
	return r
}

func (d *Dashboard) drawAlerts(c *Canvas) {
	entries := d.ledger.Recent(alertBoxEntries)
	w, h := c.Size()
	box := alertBoxRect(w, h, len(entries))
	if box.Width < 2 || box.Height < 2 {
		return
	}

	t := d.theme
	c.Fill(box, t.overlay())
	c.Box(box, "Alerts", Pen{Fg: t.levelColor(worstLevel(entries)), Bg: t.Surface})

	p := newPane(c, box.Inset(1))
	for _, e := range entries {
		pen := Pen{Fg: t.levelColor(e.Level), Bg: t.Surface, Bold: e.Level == processor.LevelCritical}
		p.line(segment{fmt.Sprintf(" %s %s", e.RaisedAt.Format("15:04:05"), e.Message), pen})
	}
}

func worstLevel(entries []processor.Alert) processor.Level {
	for _, e := range entries {
		if e.Level == processor.LevelCritical {
			return processor.LevelCritical
		}
	}
	return processor.LevelWarning
}

// Resize sets the terminal size. Negative values are treated as zero.
func (d *Dashboard) Resize(width, height int) {
	d.width = max(width, 0)
	d.height = max(height, 0)
}

// Size returns the terminal size the dashboard renders for.
func (d *Dashboard) Size() (int, int) {
	return d.width, d.height
}

// ToggleHelp flips the help overlay.
func (d *Dashboard) ToggleHelp() {
	d.showHelp = !d.showHelp
}

// ShowHelp reports whether the help overlay is visible.
func (d *Dashboard) ShowHelp() bool {
	return d.showHelp
}

// ToggleAlerts flips the alert box.
func (d *Dashboard) ToggleAlerts() {
	d.showAlerts = !d.showAlerts
}

// ShowAlerts reports whether the alert box is enabled.
func (d *Dashboard) ShowAlerts() bool {
	return d.showAlerts
}

// NextWidget moves the selection to the next widget.
func (d *Dashboard) NextWidget() {
	d.active = (d.active + 1) % len(layout.Widgets)
}

// PrevWidget moves the selection to the previous widget.
func (d *Dashboard) PrevWidget() {
	d.active = (d.active - 1 + len(layout.Widgets)) % len(layout.Widgets)
}

// ActiveWidget returns the name of the selected widget.
func (d *Dashboard) ActiveWidget() string {
	return layout.Widgets[d.active]
}

// SetProcessSort changes the process table display order.
func (d *Dashboard) SetProcessSort(s ProcessSort) {
	d.procSort = s
}

// ProcessSort returns the process table display order.
func (d *Dashboard) ProcessSort() ProcessSort {
	return d.procSort
}

// SetStatus shows msg in the header for a few seconds.
func (d *Dashboard) SetStatus(msg string) {
	d.status = strings.TrimSpace(msg)
	d.statusAt = d.now()
}

// Status returns the current status message, or "" once it has expired.
func (d *Dashboard) Status() string {
	if d.status == "" || d.now().Sub(d.statusAt) >= statusTTL {
		return ""
	}
	return d.status
}

// Ledger returns a copy of the alert ledger, oldest first.
func (d *Dashboard) Ledger() []processor.Alert {
	return d.ledger.Entries()
}

// Recent returns the n most recent ledger entries, oldest first.
func (d *Dashboard) Recent(n int) []processor.Alert {
	return d.ledger.Recent(n)
}

// Cache returns the last view stored for the named widget.
func (d *Dashboard) Cache(name string) (processor.View, bool) {
	v, ok := d.cache[name]
	return v, ok
}

// System returns the system info from the last update.
func (d *Dashboard) System() processor.SystemView {
	return d.system
}
