package config

import (
	"time"

	"github.com/rileyhilliard/sysmon/internal/export"
	"github.com/rileyhilliard/sysmon/internal/processor"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete sysmon configuration file.
type Config struct {
	Version int           `yaml:"version" mapstructure:"version"`
	General GeneralConfig `yaml:"general" mapstructure:"general"`
	Display DisplayConfig `yaml:"display" mapstructure:"display"`
	Alerts  AlertsConfig  `yaml:"alerts" mapstructure:"alerts"`
	Export  ExportConfig  `yaml:"export" mapstructure:"export"`
}

// GeneralConfig controls the refresh loop and logging.
type GeneralConfig struct {
	// UpdateInterval is the time between collections. Accepts a duration
	// string ("500ms", "2s") or a plain number of seconds.
	UpdateInterval time.Duration `yaml:"update_interval" mapstructure:"update_interval"`

	// EnableLogging writes a log file to LogPath while the dashboard runs.
	EnableLogging bool `yaml:"enable_logging" mapstructure:"enable_logging"`

	// LogPath is the directory holding sysmon.log.
	LogPath string `yaml:"log_path" mapstructure:"log_path"`
}

// DisplayConfig controls how the dashboard looks.
type DisplayConfig struct {
	// Theme is "dark" or "light".
	Theme string `yaml:"theme" mapstructure:"theme"`

	// Layout is the starting layout: "detailed", "compact", or "minimal".
	Layout string `yaml:"layout" mapstructure:"layout"`

	// ShowGraphs toggles history sparklines in the widgets.
	ShowGraphs bool `yaml:"show_graphs" mapstructure:"show_graphs"`

	// GraphHistory is how many samples each history series keeps.
	GraphHistory int `yaml:"graph_history" mapstructure:"graph_history"`

	// ProcessCount caps the rows in the process table.
	ProcessCount int `yaml:"process_count" mapstructure:"process_count"`
}

// ThresholdConfig is a warning/critical pair in percent.
type ThresholdConfig struct {
	Warning  float64 `yaml:"warning" mapstructure:"warning"`
	Critical float64 `yaml:"critical" mapstructure:"critical"`
}

// AlertsConfig holds thresholds and where alerts are delivered.
type AlertsConfig struct {
	CPU    ThresholdConfig `yaml:"cpu" mapstructure:"cpu"`
	Memory ThresholdConfig `yaml:"memory" mapstructure:"memory"`
	Disk   ThresholdConfig `yaml:"disk" mapstructure:"disk"`

	// DiskPath is the filesystem whose usage the disk alert watches.
	DiskPath string `yaml:"disk_path" mapstructure:"disk_path"`

	// JournalPath is a SQLite file that records every alert. Empty disables it.
	JournalPath string `yaml:"journal_path" mapstructure:"journal_path"`

	Telegram TelegramConfig `yaml:"telegram" mapstructure:"telegram"`
}

// TelegramConfig configures push notifications. An empty token disables them.
type TelegramConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	ChatID int64  `yaml:"chat_id" mapstructure:"chat_id"`

	// MinLevel is the lowest alert level sent: "warning" or "critical".
	MinLevel string `yaml:"min_level" mapstructure:"min_level"`

	// Cooldown holds back repeat messages about the same resource. Zero
	// sends one per alert.
	Cooldown time.Duration `yaml:"cooldown" mapstructure:"cooldown"`
}

// ExportConfig controls snapshot and CSV output.
type ExportConfig struct {
	// SnapshotPath is the directory snapshot files are written to.
	SnapshotPath string `yaml:"snapshot_path" mapstructure:"snapshot_path"`

	// SnapshotFormat is "json", "yaml", or "csv".
	SnapshotFormat string `yaml:"snapshot_format" mapstructure:"snapshot_format"`

	// CSVExportPath appends one row per refresh when set.
	CSVExportPath string `yaml:"csv_export_path" mapstructure:"csv_export_path"`

	// AutoSnapshotInterval writes a snapshot on this period. Zero disables it.
	AutoSnapshotInterval time.Duration `yaml:"auto_snapshot_interval" mapstructure:"auto_snapshot_interval"`

	// Retention prunes old files from SnapshotPath after each save.
	Retention RetentionConfig `yaml:"retention" mapstructure:"retention"`
}

// RetentionConfig bounds the snapshot directory. Zero values are unlimited.
type RetentionConfig struct {
	KeepFiles int `yaml:"keep_files" mapstructure:"keep_files"`
	KeepDays  int `yaml:"keep_days" mapstructure:"keep_days"`
	MaxSizeMB int `yaml:"max_size_mb" mapstructure:"max_size_mb"`
}

// Retention converts the settings for export.Prune.
func (r RetentionConfig) Retention() export.Retention {
	return export.Retention(r)
}

// Thresholds converts the alert settings into processor thresholds.
func (a AlertsConfig) Thresholds() processor.Thresholds {
	return processor.Thresholds{
		CPU:    processor.Threshold(a.CPU),
		Memory: processor.Threshold(a.Memory),
		Disk:   processor.Threshold(a.Disk),
	}
}

// Enabled reports whether Telegram notifications are configured.
func (t TelegramConfig) Enabled() bool {
	return t.Token != ""
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		General: GeneralConfig{
			UpdateInterval: time.Second,
			EnableLogging:  false,
			LogPath:        "~/.local/share/sysmon/logs",
		},
		Display: DisplayConfig{
			Theme:        "dark",
			Layout:       "detailed",
			ShowGraphs:   true,
			GraphHistory: 120,
			ProcessCount: 15,
		},
		Alerts: AlertsConfig{
			CPU:      ThresholdConfig{Warning: 75, Critical: 90},
			Memory:   ThresholdConfig{Warning: 80, Critical: 90},
			Disk:     ThresholdConfig{Warning: 80, Critical: 90},
			DiskPath: "/",
			Telegram: TelegramConfig{MinLevel: "critical", Cooldown: 30 * time.Minute},
		},
		Export: ExportConfig{
			SnapshotPath:   "~/.local/share/sysmon/snapshots",
			SnapshotFormat: "json",
			Retention:      RetentionConfig{KeepFiles: 100},
		},
	}
}
