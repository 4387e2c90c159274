// Package tui hosts the dashboard in a Bubble Tea program.
//
// The program's Update goroutine is the only loop that touches the
// processor and dashboard. One refresh cycle is:
//
//	tickMsg -> collectCmd (off-loop) -> rawMsg -> Process + Dashboard.Update
//
// and the next tick is scheduled only after the rawMsg has been handled, so
// frames never overlap. Key presses arrive between cycles and are handled
// immediately, which keeps quit responsive whatever the interval.
package tui

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/rileyhilliard/sysmon/internal/collector"
	"github.com/rileyhilliard/sysmon/internal/dashboard"
	"github.com/rileyhilliard/sysmon/internal/export"
	"github.com/rileyhilliard/sysmon/internal/layout"
	"github.com/rileyhilliard/sysmon/internal/logger"
	"github.com/rileyhilliard/sysmon/internal/processor"
	"github.com/rileyhilliard/sysmon/internal/snapshot"
)

// DefaultInterval is used when no positive interval is configured.
const DefaultInterval = time.Second

// Recorder receives every processed snapshot, e.g. a CSV export.
type Recorder interface {
	Record(processor.Snapshot) error
}

// tickMsg starts a refresh cycle.
type tickMsg time.Time

// rawMsg carries one collected snapshot back to the loop.
type rawMsg snapshot.Raw

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	ctx       context.Context
	source    collector.Source
	processor *processor.Processor
	dashboard *dashboard.Dashboard
	interval  time.Duration
	log       logger.Logger
	now       func() time.Time

	recorder       Recorder
	snapshotDir    string
	snapshotFormat export.Format
	autoSnapshot   time.Duration
	lastAuto       time.Time
	retention      export.Retention

	colour      bool
	baseProfile termenv.Profile

	last       processor.Snapshot
	haveLast   bool
	collecting bool
	quitting   bool
}

// Option configures a Model.
type Option func(*Model)

// WithContext sets the parent context for collections.
func WithContext(ctx context.Context) Option {
	return func(m *Model) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// WithInterval sets the refresh interval.
func WithInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// WithClock sets the clock used for snapshot file names and auto snapshots.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// WithRecorder records every processed snapshot.
func WithRecorder(r Recorder) Option {
	return func(m *Model) { m.recorder = r }
}

// WithSnapshots sets where the snapshot key writes and in which format.
// A positive every also writes one snapshot per period.
func WithSnapshots(dir string, format export.Format, every time.Duration) Option {
	return func(m *Model) {
		m.snapshotDir = dir
		m.snapshotFormat = format
		m.autoSnapshot = every
	}
}

// WithRetention prunes the snapshot directory after every save.
func WithRetention(r export.Retention) Option {
	return func(m *Model) { m.retention = r }
}

// WithColour sets whether colour starts enabled.
func WithColour(on bool) Option {
	return func(m *Model) { m.colour = on }
}

// New creates a model. The processor and dashboard are owned by the model
// from here on.
func New(source collector.Source, p *processor.Processor, d *dashboard.Dashboard, opts ...Option) Model {
	m := Model{
		ctx:            context.Background(),
		source:         source,
		processor:      p,
		dashboard:      d,
		interval:       DefaultInterval,
		log:            logger.Noop(),
		now:            time.Now,
		snapshotFormat: export.FormatJSON,
		colour:         true,
		baseProfile:    lipgloss.ColorProfile(),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if !m.colour {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
	return m
}

// Init collects the first snapshot immediately.
func (m Model) Init() tea.Cmd {
	return m.collectCmd()
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.dashboard.Resize(msg.Width, msg.Height)
		m.dashboard.Render()
		return m, nil

	case tickMsg:
		if m.collecting {
			return m, nil
		}
		return m, m.collectCmd()

	case rawMsg:
		m.collecting = false
		m.refresh(snapshot.Raw(msg))
		return m, m.tickCmd()
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return m.dashboard.Frame()
}

// refresh runs one process/render pass and the per-snapshot side effects.
func (m *Model) refresh(raw snapshot.Raw) {
	s := m.processor.Process(raw)
	m.last, m.haveLast = s, true
	m.dashboard.Update(s)

	if m.recorder != nil {
		if err := m.recorder.Record(s); err != nil {
			m.log.Warn("csv export failed: %v", err)
			m.dashboard.SetStatus("CSV export failed")
		}
	}

	if m.autoSnapshot > 0 {
		now := m.now()
		if m.lastAuto.IsZero() {
			m.lastAuto = now
		} else if now.Sub(m.lastAuto) >= m.autoSnapshot {
			m.lastAuto = now
			m.saveSnapshot()
		}
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		m.quitting = true
		return *m, tea.Quit
	}

	// any other key just closes the help overlay
	if m.dashboard.ShowHelp() {
		m.dashboard.ToggleHelp()
		m.dashboard.Render()
		return *m, nil
	}

	lm := m.dashboard.Layout()
	switch {
	case key.Matches(msg, keys.Help):
		m.dashboard.ToggleHelp()
	case key.Matches(msg, keys.Detailed):
		lm.SetMode(layout.ModeDetailed)
	case key.Matches(msg, keys.Compact):
		lm.SetMode(layout.ModeCompact)
	case key.Matches(msg, keys.Minimal):
		lm.SetMode(layout.ModeMinimal)
	case key.Matches(msg, keys.CycleLayout):
		lm.Next()
	case key.Matches(msg, keys.NextWidget):
		m.dashboard.NextWidget()
	case key.Matches(msg, keys.PrevWidget):
		m.dashboard.PrevWidget()
	case key.Matches(msg, keys.SortCPU):
		m.dashboard.SetProcessSort(dashboard.SortByCPU)
	case key.Matches(msg, keys.SortMemory):
		m.dashboard.SetProcessSort(dashboard.SortByMemory)
	case key.Matches(msg, keys.Snapshot):
		m.saveSnapshot()
	case key.Matches(msg, keys.Colour):
		m.toggleColour()
	case key.Matches(msg, keys.Reset):
		m.processor.ResetHistory()
		m.dashboard.SetStatus("Statistics reset")
	case key.Matches(msg, keys.Alerts):
		m.dashboard.ToggleAlerts()
	default:
		return *m, nil
	}

	m.dashboard.Render()
	return *m, nil
}

func (m *Model) saveSnapshot() {
	if !m.haveLast {
		m.dashboard.SetStatus("No data to snapshot yet")
		return
	}
	path, err := export.SaveSnapshot(m.snapshotDir, m.last, m.snapshotFormat, m.now())
	if err != nil {
		m.log.Warn("snapshot failed: %v", err)
		m.dashboard.SetStatus("Snapshot failed")
		return
	}
	m.log.Info("snapshot saved to %s", path)
	m.dashboard.SetStatus("Snapshot saved to " + path)

	removed, err := export.Prune(m.snapshotDir, m.retention, m.now())
	if err != nil {
		m.log.Warn("snapshot pruning failed: %v", err)
	} else if removed > 0 {
		m.log.Debug("pruned %d old snapshots", removed)
	}
}

func (m *Model) toggleColour() {
	m.colour = !m.colour
	if m.colour {
		lipgloss.SetColorProfile(m.baseProfile)
		m.dashboard.SetStatus("Colour on")
		return
	}
	lipgloss.SetColorProfile(termenv.Ascii)
	m.dashboard.SetStatus("Colour off")
}

// Colour reports whether colour output is enabled.
func (m Model) Colour() bool {
	return m.colour
}

// Last returns the most recent processed snapshot and whether there is one.
func (m Model) Last() (processor.Snapshot, bool) {
	return m.last, m.haveLast
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// collectCmd runs the collector outside the loop with a deadline of one
// interval. It captures only values, never model state.
func (m *Model) collectCmd() tea.Cmd {
	m.collecting = true
	ctx, source, interval := m.ctx, m.source, m.interval
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		return rawMsg(source.Collect(ctx))
	}
}

// Run starts the full-screen program and blocks until it exits. A
// cancelled ctx ends the program without an error.
func Run(ctx context.Context, m Model) error {
	m.ctx = ctx
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && stderrors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
