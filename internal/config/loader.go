package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/rileyhilliard/sysmon/internal/errors"
)

const (
	// ConfigFileName is the per-directory config file name.
	ConfigFileName = ".sysmon.yaml"
	// GlobalConfigDir is the directory for the user config, relative to home.
	GlobalConfigDir = ".config/sysmon"
	// GlobalConfigFile is the user config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. SYSMON_DISPLAY_LAYOUT.
	EnvPrefix = "SYSMON"
)

// Load reads config from the specified path. An empty path yields the
// defaults with environment overrides applied.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if os.IsNotExist(err) {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Config file not found",
					"Run 'sysmon init' to create a config file, or specify one with --config")
			}
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file",
				"Check the file exists and is valid YAML")
		}
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .sysmon.yaml in current directory
// 3. ~/.config/sysmon/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	if global := GlobalPath(); global != "" {
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// GlobalPath returns ~/.config/sysmon/config.yaml, or "" if home is unknown.
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}

// LoadOrDefault loads config from the found path, or returns defaults if
// nothing is found. The returned path is empty in the latter case.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// newViper creates a viper instance with every default registered, so that
// environment overrides apply to keys absent from the file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// setDefaults mirrors DefaultConfig into viper.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()

	v.SetDefault("version", d.Version)

	v.SetDefault("general.update_interval", d.General.UpdateInterval)
	v.SetDefault("general.enable_logging", d.General.EnableLogging)
	v.SetDefault("general.log_path", d.General.LogPath)

	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("display.layout", d.Display.Layout)
	v.SetDefault("display.show_graphs", d.Display.ShowGraphs)
	v.SetDefault("display.graph_history", d.Display.GraphHistory)
	v.SetDefault("display.process_count", d.Display.ProcessCount)

	v.SetDefault("alerts.cpu.warning", d.Alerts.CPU.Warning)
	v.SetDefault("alerts.cpu.critical", d.Alerts.CPU.Critical)
	v.SetDefault("alerts.memory.warning", d.Alerts.Memory.Warning)
	v.SetDefault("alerts.memory.critical", d.Alerts.Memory.Critical)
	v.SetDefault("alerts.disk.warning", d.Alerts.Disk.Warning)
	v.SetDefault("alerts.disk.critical", d.Alerts.Disk.Critical)
	v.SetDefault("alerts.disk_path", d.Alerts.DiskPath)
	v.SetDefault("alerts.journal_path", d.Alerts.JournalPath)
	v.SetDefault("alerts.telegram.token", d.Alerts.Telegram.Token)
	v.SetDefault("alerts.telegram.chat_id", d.Alerts.Telegram.ChatID)
	v.SetDefault("alerts.telegram.min_level", d.Alerts.Telegram.MinLevel)
	v.SetDefault("alerts.telegram.cooldown", d.Alerts.Telegram.Cooldown)

	v.SetDefault("export.snapshot_path", d.Export.SnapshotPath)
	v.SetDefault("export.snapshot_format", d.Export.SnapshotFormat)
	v.SetDefault("export.csv_export_path", d.Export.CSVExportPath)
	v.SetDefault("export.auto_snapshot_interval", d.Export.AutoSnapshotInterval)
	v.SetDefault("export.retention.keep_files", d.Export.Retention.KeepFiles)
	v.SetDefault("export.retention.keep_days", d.Export.Retention.KeepDays)
	v.SetDefault("export.retention.max_size_mb", d.Export.Retention.MaxSizeMB)
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := &Config{}

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		secondsToDurationHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(cfg, hook); err != nil {
		source := "the config file"
		if path != "" {
			source = path
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+source)
	}

	cfg.General.LogPath = ExpandPath(cfg.General.LogPath)
	cfg.Alerts.JournalPath = ExpandPath(cfg.Alerts.JournalPath)
	cfg.Export.SnapshotPath = ExpandPath(cfg.Export.SnapshotPath)
	cfg.Export.CSVExportPath = ExpandPath(cfg.Export.CSVExportPath)

	return cfg, nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// secondsToDurationHook lets durations be written as plain numbers of
// seconds, e.g. "update_interval: 0.5".
func secondsToDurationHook() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data interface{}) (interface{}, error) {
		if to != durationType || from == durationType {
			return data, nil
		}
		switch n := data.(type) {
		case int:
			return time.Duration(n) * time.Second, nil
		case int64:
			return time.Duration(n) * time.Second, nil
		case float64:
			return time.Duration(n * float64(time.Second)), nil
		}
		return data, nil
	}
}
