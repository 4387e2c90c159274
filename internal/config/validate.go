package config

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/sysmon/internal/errors"
	"github.com/rileyhilliard/sysmon/internal/layout"
)

var (
	// Themes are the accepted display.theme values.
	Themes = []string{"dark", "light"}
	// SnapshotFormats are the accepted export.snapshot_format values.
	SnapshotFormats = []string{"json", "yaml", "csv"}
	// AlertLevels are the accepted alerts.telegram.min_level values.
	AlertLevels = []string{"warning", "critical"}
)

// Validate checks every setting and reports all problems at once. The
// returned error is a CONFIG error whose Problems lists each message.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if cfg.Version > CurrentConfigVersion {
		add("This config is from the future (version %d, but sysmon only knows up to %d)", cfg.Version, CurrentConfigVersion)
	}

	// General
	if cfg.General.UpdateInterval <= 0 {
		add("Update interval must be greater than 0")
	}

	// Display
	if !oneOf(cfg.Display.Theme, Themes) {
		add("Theme must be either 'dark' or 'light' (got '%s')", cfg.Display.Theme)
	}
	if _, ok := layout.ParseMode(cfg.Display.Layout); !ok {
		add("Layout must be one of: 'detailed', 'compact', 'minimal' (got '%s')", cfg.Display.Layout)
	}
	if cfg.Display.GraphHistory <= 0 {
		add("Graph history must be greater than 0")
	}
	if cfg.Display.ProcessCount <= 0 {
		add("Process count must be greater than 0")
	}

	// Alerts
	validateThreshold("CPU", cfg.Alerts.CPU, add)
	validateThreshold("Memory", cfg.Alerts.Memory, add)
	validateThreshold("Disk", cfg.Alerts.Disk, add)

	if tg := cfg.Alerts.Telegram; tg.Enabled() {
		if tg.ChatID == 0 {
			add("Telegram chat_id is required when a token is set")
		}
		if !oneOf(tg.MinLevel, AlertLevels) {
			add("Telegram min_level must be 'warning' or 'critical' (got '%s')", tg.MinLevel)
		}
		if tg.Cooldown < 0 {
			add("Telegram cooldown must be greater than or equal to 0")
		}
	}

	// Export
	if !oneOf(cfg.Export.SnapshotFormat, SnapshotFormats) {
		add("Snapshot format must be one of: 'json', 'yaml', 'csv' (got '%s')", cfg.Export.SnapshotFormat)
	}
	if cfg.Export.AutoSnapshotInterval < 0 {
		add("Auto snapshot interval must be greater than or equal to 0")
	}
	if r := cfg.Export.Retention; r.KeepFiles < 0 || r.KeepDays < 0 || r.MaxSizeMB < 0 {
		add("Snapshot retention limits must be greater than or equal to 0")
	}

	if len(problems) == 0 {
		return nil
	}
	return errors.NewValidation(problems, "Fix the settings above, or run 'sysmon init' to write a fresh config.")
}

func validateThreshold(name string, t ThresholdConfig, add func(string, ...interface{})) {
	if t.Warning < 0 || t.Warning > 100 {
		add("%s warning threshold must be between 0 and 100", name)
	}
	if t.Critical < 0 || t.Critical > 100 {
		add("%s critical threshold must be between 0 and 100", name)
	}
	if t.Warning > t.Critical {
		add("%s warning threshold (%g) must not exceed the critical threshold (%g)", name, t.Warning, t.Critical)
	}
}

func oneOf(value string, allowed []string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
