package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/rileyhilliard/sysmon/internal/collector"
	"github.com/rileyhilliard/sysmon/internal/config"
	"github.com/rileyhilliard/sysmon/internal/dashboard"
	"github.com/rileyhilliard/sysmon/internal/errors"
	"github.com/rileyhilliard/sysmon/internal/export"
	"github.com/rileyhilliard/sysmon/internal/journal"
	"github.com/rileyhilliard/sysmon/internal/layout"
	"github.com/rileyhilliard/sysmon/internal/logger"
	"github.com/rileyhilliard/sysmon/internal/notify"
	"github.com/rileyhilliard/sysmon/internal/processor"
	"github.com/rileyhilliard/sysmon/internal/tui"
)

// monitorCommand loads and validates the configuration, builds the
// collect/process/render pipeline and runs the dashboard until the user quits
// or ctx is cancelled.
func monitorCommand(ctx context.Context, cfgPath string, o overrides) error {
	cfg, _, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		return err
	}
	o.apply(cfg)

	if err := config.Validate(cfg); err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrTerminal,
			"The dashboard needs an interactive terminal",
			"Use 'sysmon snapshot' for one-shot output in scripts and pipes.")
	}

	log, closeLog, err := openLogger(cfg.General)
	if err != nil {
		return err
	}
	defer closeLog()

	sess, err := newSession(cfg, log)
	if err != nil {
		return err
	}
	defer sess.Close()

	for _, w := range sess.warnings {
		fmt.Fprintln(os.Stderr, w)
	}

	log.Info("sysmon starting: interval=%s layout=%s", cfg.General.UpdateInterval, cfg.Display.Layout)
	err = tui.Run(ctx, sess.model(cfg, log))
	log.Info("sysmon stopped")
	return err
}

func (o overrides) apply(cfg *config.Config) {
	if o.IntervalSet {
		cfg.General.UpdateInterval = o.Interval
	}
	if o.Layout != "" {
		cfg.Display.Layout = o.Layout
	}
	if o.Theme != "" {
		cfg.Display.Theme = o.Theme
	}
	if o.Log {
		cfg.General.EnableLogging = true
	}
	if o.ExportCSV != "" {
		cfg.Export.CSVExportPath = config.ExpandPath(o.ExportCSV)
	}
}

// openLogger returns the file logger when logging is enabled and the no-op
// logger otherwise. The TUI owns the terminal, so nothing may log to stderr
// while it runs.
func openLogger(g config.GeneralConfig) (logger.Logger, func(), error) {
	if !g.EnableLogging {
		return logger.Noop(), func() {}, nil
	}
	fl, err := logger.NewFileLogger(g.LogPath, "sysmon")
	if err != nil {
		return nil, nil, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't open the log file in %s", g.LogPath),
			"Check general.log_path, or run without --log.")
	}
	return fl, func() { _ = fl.Close() }, nil
}

// session is one dashboard run: the pipeline plus every resource it opened.
type session struct {
	host      *collector.Host
	processor *processor.Processor
	dashboard *dashboard.Dashboard
	recorder  *export.Recorder

	closers  []io.Closer
	warnings []string
}

// newSession builds the pipeline from a validated configuration. A journal
// or CSV file that cannot be opened is an error; an unreachable Telegram API
// only disables notifications.
func newSession(cfg *config.Config, log logger.Logger) (*session, error) {
	system := collector.NewSystem()
	hostname, err := system.Hostname()
	if err != nil {
		hostname = processor.UnknownHostname
	}

	s := &session{}
	var sinks []dashboard.AlertSink

	if path := cfg.Alerts.JournalPath; path != "" {
		j, err := journal.Open(path, hostname)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, j)
		sinks = append(sinks, j)
	}

	if tg := cfg.Alerts.Telegram; tg.Enabled() {
		bot, err := notify.Dial(tg.Token, tg.ChatID,
			notify.WithMinLevel(processor.Level(strings.ToLower(tg.MinLevel))),
			notify.WithHostname(hostname),
			notify.WithCooldown(tg.Cooldown),
			notify.WithLogger(log))
		if err != nil {
			log.Warn("telegram notifier disabled: %v", err)
			s.warnings = append(s.warnings, "Telegram notifications are off: the bot API could not be reached.")
		} else {
			s.closers = append(s.closers, bot)
			sinks = append(sinks, bot)
		}
	}

	if path := cfg.Export.CSVExportPath; path != "" {
		rec, err := export.OpenRecorder(path)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.recorder = rec
		s.closers = append(s.closers, rec)
	}

	mode, ok := layout.ParseMode(cfg.Display.Layout)
	if !ok {
		mode = layout.ModeDetailed
	}

	s.host = collector.NewHost(
		collector.WithDiskPath(cfg.Alerts.DiskPath),
		// collect more rows than shown so sorting by memory has something to pick from
		collector.WithProcessLimit(max(cfg.Display.ProcessCount, collector.DefaultProcessLimit)),
		collector.WithLogger(log),
	)
	s.processor = processor.New(
		processor.WithHistorySize(cfg.Display.GraphHistory),
		processor.WithThresholds(cfg.Alerts.Thresholds()),
		processor.WithSystemInfo(system),
		processor.WithLogger(log),
	)
	s.dashboard = dashboard.New(layout.NewManager(mode),
		dashboard.WithTheme(dashboard.ThemeByName(cfg.Display.Theme)),
		dashboard.WithThresholds(cfg.Alerts.Thresholds()),
		dashboard.WithGraphs(cfg.Display.ShowGraphs),
		dashboard.WithProcessCount(cfg.Display.ProcessCount),
		dashboard.WithAlertSinks(sinks...),
		dashboard.WithLogger(log),
	)
	return s, nil
}

// model wraps the session in a Bubble Tea model.
func (s *session) model(cfg *config.Config, log logger.Logger) tui.Model {
	format, ok := export.ParseFormat(cfg.Export.SnapshotFormat)
	if !ok {
		format = export.FormatJSON
	}

	opts := []tui.Option{
		tui.WithInterval(cfg.General.UpdateInterval),
		tui.WithLogger(log),
		tui.WithSnapshots(cfg.Export.SnapshotPath, format, cfg.Export.AutoSnapshotInterval),
		tui.WithRetention(cfg.Export.Retention.Retention()),
	}
	if s.recorder != nil {
		opts = append(opts, tui.WithRecorder(s.recorder))
	}
	return tui.New(s.host, s.processor, s.dashboard, opts...)
}

// Close releases everything the session opened, newest first.
func (s *session) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i].Close()
	}
	s.closers = nil
}
