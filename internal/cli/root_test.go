package cli

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/sysmon/internal/config"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"init", "config", "snapshot", "alerts", "version", "completion"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestRootFlags(t *testing.T) {
	tests := []struct {
		name      string
		shorthand string
	}{
		{"interval", "i"},
		{"layout", "l"},
		{"theme", "t"},
		{"log", ""},
		{"export-csv", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := rootCmd.Flags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
		})
	}

	configFlag := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)
}

// parseRootFlags registers the root flags on a throwaway command so the
// real rootCmd keeps its state.
func parseRootFlags(t *testing.T, args ...string) overrides {
	t.Helper()

	origInterval, origLayout, origTheme, origLog, origCSV := intervalFlag, layoutFlag, themeFlag, logFlag, exportCSVFlag
	t.Cleanup(func() {
		intervalFlag, layoutFlag, themeFlag, logFlag, exportCSVFlag = origInterval, origLayout, origTheme, origLog, origCSV
	})
	intervalFlag, layoutFlag, themeFlag, logFlag, exportCSVFlag = 1.0, "", "", false, ""

	cmd := &cobra.Command{Use: "sysmon"}
	cmd.Flags().Float64VarP(&intervalFlag, "interval", "i", 1.0, "")
	cmd.Flags().StringVarP(&layoutFlag, "layout", "l", "", "")
	cmd.Flags().StringVarP(&themeFlag, "theme", "t", "", "")
	cmd.Flags().BoolVar(&logFlag, "log", false, "")
	cmd.Flags().StringVar(&exportCSVFlag, "export-csv", "", "")
	require.NoError(t, cmd.ParseFlags(args))

	return overridesFromFlags(cmd)
}

func TestOverridesFromFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want overrides
	}{
		{
			name: "nothing set",
			args: nil,
			want: overrides{},
		},
		{
			name: "interval in fractional seconds",
			args: []string{"-i", "0.5"},
			want: overrides{Interval: 500 * time.Millisecond, IntervalSet: true},
		},
		{
			name: "explicit default interval still counts",
			args: []string{"--interval", "1"},
			want: overrides{Interval: time.Second, IntervalSet: true},
		},
		{
			name: "zero interval is passed through for validation",
			args: []string{"-i", "0"},
			want: overrides{IntervalSet: true},
		},
		{
			name: "display and export flags",
			args: []string{"-l", "compact", "-t", "light", "--log", "--export-csv", "/tmp/out.csv"},
			want: overrides{Layout: "compact", Theme: "light", Log: true, ExportCSV: "/tmp/out.csv"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseRootFlags(t, tt.args...))
		})
	}
}

func TestOverridesApply(t *testing.T) {
	t.Run("empty overrides keep the config", func(t *testing.T) {
		cfg := config.DefaultConfig()
		overrides{}.apply(cfg)
		assert.Equal(t, config.DefaultConfig(), cfg)
	})

	t.Run("set fields replace the config", func(t *testing.T) {
		cfg := config.DefaultConfig()
		overrides{
			Interval:    2 * time.Second,
			IntervalSet: true,
			Layout:      "minimal",
			Theme:       "light",
			Log:         true,
			ExportCSV:   "/tmp/sysmon.csv",
		}.apply(cfg)

		assert.Equal(t, 2*time.Second, cfg.General.UpdateInterval)
		assert.Equal(t, "minimal", cfg.Display.Layout)
		assert.Equal(t, "light", cfg.Display.Theme)
		assert.True(t, cfg.General.EnableLogging)
		assert.Equal(t, "/tmp/sysmon.csv", cfg.Export.CSVExportPath)
	})

	t.Run("export path is expanded", func(t *testing.T) {
		t.Setenv("HOME", "/home/tester")
		cfg := config.DefaultConfig()
		overrides{ExportCSV: "~/stats.csv"}.apply(cfg)
		assert.Equal(t, "/home/tester/stats.csv", cfg.Export.CSVExportPath)
	})
}

func TestSecondsToDuration(t *testing.T) {
	assert.Equal(t, time.Second, secondsToDuration(1))
	assert.Equal(t, 250*time.Millisecond, secondsToDuration(0.25))
	assert.Equal(t, time.Duration(0), secondsToDuration(0))
}
