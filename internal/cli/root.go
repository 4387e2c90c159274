package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/sysmon/internal/errors"
)

// Global and root command flags
var (
	cfgFile       string
	intervalFlag  float64
	layoutFlag    string
	themeFlag     string
	logFlag       bool
	exportCSVFlag string
)

// rootCmd starts the dashboard when run without a subcommand
var rootCmd = &cobra.Command{
	Use:   "sysmon",
	Short: "Terminal-based system monitor",
	Long: `sysmon shows live CPU, memory, disk, network and process usage in a
full-screen terminal dashboard, and raises alerts when usage crosses the
configured thresholds.

Configuration is read from --config, ./.sysmon.yaml or
~/.config/sysmon/config.yaml, in that order. Flags override the file.

Examples:
  sysmon
  sysmon --layout compact --interval 2
  sysmon --theme light --export-csv ~/sysmon.csv`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return monitorCommand(cmd.Context(), cfgFile, overridesFromFlags(cmd))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to configuration file")

	rootCmd.Flags().Float64VarP(&intervalFlag, "interval", "i", 1.0, "update interval in seconds")
	rootCmd.Flags().StringVarP(&layoutFlag, "layout", "l", "", "layout (detailed, compact, minimal)")
	rootCmd.Flags().StringVarP(&themeFlag, "theme", "t", "", "color theme (dark, light)")
	rootCmd.Flags().BoolVar(&logFlag, "log", false, "enable logging to file")
	rootCmd.Flags().StringVar(&exportCSVFlag, "export-csv", "", "append one CSV row per update to this file")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err == nil {
		return
	}
	if code, ok := errors.GetExitCode(err); ok {
		os.Exit(code)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// overrides holds the root flags the user actually set. Unset fields leave
// the loaded configuration alone.
type overrides struct {
	Interval    time.Duration
	IntervalSet bool
	Layout      string
	Theme       string
	Log         bool
	ExportCSV   string
}

func overridesFromFlags(cmd *cobra.Command) overrides {
	o := overrides{
		Layout:    layoutFlag,
		Theme:     themeFlag,
		Log:       logFlag,
		ExportCSV: exportCSVFlag,
	}
	if cmd.Flags().Changed("interval") {
		o.Interval = secondsToDuration(intervalFlag)
		o.IntervalSet = true
	}
	return o
}

func secondsToDuration(secs float64) time.Duration {
	return time.Duration(secs * float64(time.Second))
}
