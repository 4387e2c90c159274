package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rileyhilliard/sysmon/internal/config"
	"github.com/rileyhilliard/sysmon/internal/errors"
	"github.com/rileyhilliard/sysmon/internal/layout"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Path           string // Where to write; empty means ./.sysmon.yaml
	Overwrite      bool   // Overwrite existing config without asking
	NonInteractive bool   // Skip prompts, write defaults
}

// initAnswers are the values the init form asks for.
type initAnswers struct {
	Theme          string
	Layout         string
	UpdateInterval string
	ShowGraphs     bool
	SnapshotFormat string
	JournalPath    string
}

var (
	initForce  bool
	initGlobal bool
	initYes    bool
)

// initCmd writes a new configuration file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a sysmon configuration file",
	Long: `Create a configuration file with interactive prompts.

The file is written to ./.sysmon.yaml, or to ~/.config/sysmon/config.yaml
with --global. Without a terminal, or with --yes, the defaults are written.

Examples:
  sysmon init
  sysmon init --global
  sysmon init --yes --force`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := InitOptions{
			Overwrite:      initForce,
			NonInteractive: initYes || !term.IsTerminal(int(os.Stdin.Fd())),
		}
		if initGlobal {
			opts.Path = config.GlobalPath()
		}
		return Init(opts)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing config")
	initCmd.Flags().BoolVar(&initGlobal, "global", false, "write the global config in ~/.config/sysmon")
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "skip prompts and write defaults")
	rootCmd.AddCommand(initCmd)
}

// Init creates a new configuration file.
func Init(opts InitOptions) error {
	configPath := opts.Path
	if configPath == "" {
		configPath = filepath.Join(".", config.ConfigFileName)
	}

	// Check for existing config
	if _, err := os.Stat(configPath); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", configPath),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", configPath)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	answers := defaultAnswers()
	if !opts.NonInteractive {
		if err := promptAnswers(&answers); err != nil {
			return err
		}
	}

	cfg, err := buildInitConfig(answers)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	if err := config.Save(cfg, configPath); err != nil {
		return err
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Println("Run 'sysmon' to start the dashboard.")
	return nil
}

func defaultAnswers() initAnswers {
	d := config.DefaultConfig()
	return initAnswers{
		Theme:          d.Display.Theme,
		Layout:         d.Display.Layout,
		UpdateInterval: d.General.UpdateInterval.String(),
		ShowGraphs:     d.Display.ShowGraphs,
		SnapshotFormat: d.Export.SnapshotFormat,
		JournalPath:    d.Alerts.JournalPath,
	}
}

func promptAnswers(a *initAnswers) error {
	layoutOptions := make([]huh.Option[string], 0, len(layout.Modes))
	for _, m := range layout.Modes {
		layoutOptions = append(layoutOptions, huh.NewOption(m.String(), m.String()))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Theme").
				Options(huh.NewOptions(config.Themes...)...).
				Value(&a.Theme),
			huh.NewSelect[string]().
				Title("Starting layout").
				Description("Press 1/2/3 or l in the dashboard to switch").
				Options(layoutOptions...).
				Value(&a.Layout),
			huh.NewInput().
				Title("Update interval").
				Description("A duration like 500ms or 2s, or a number of seconds").
				Value(&a.UpdateInterval).
				Validate(func(s string) error {
					_, err := parseInterval(s)
					return err
				}),
			huh.NewConfirm().
				Title("Show history graphs?").
				Value(&a.ShowGraphs),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Snapshot format").
				Description("Used by the 's' key in the dashboard").
				Options(huh.NewOptions(config.SnapshotFormats...)...).
				Value(&a.SnapshotFormat),
			huh.NewInput().
				Title("Alert journal").
				Description("SQLite file that keeps every alert; leave empty to disable").
				Placeholder("~/.local/share/sysmon/alerts.db").
				Value(&a.JournalPath),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Try 'sysmon init --yes' to write the defaults instead")
	}
	return nil
}

// buildInitConfig turns form answers into a config based on the defaults.
func buildInitConfig(a initAnswers) (*config.Config, error) {
	interval, err := parseInterval(a.UpdateInterval)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("'%s' doesn't look like a valid interval", a.UpdateInterval),
			"Try something like 1s, 500ms, or 2.")
	}

	cfg := config.DefaultConfig()
	cfg.General.UpdateInterval = interval
	cfg.Display.Theme = strings.ToLower(a.Theme)
	cfg.Display.Layout = strings.ToLower(a.Layout)
	cfg.Display.ShowGraphs = a.ShowGraphs
	cfg.Export.SnapshotFormat = strings.ToLower(a.SnapshotFormat)
	cfg.Alerts.JournalPath = strings.TrimSpace(a.JournalPath)
	return cfg, nil
}

// parseInterval accepts a Go duration or a plain number of seconds.
func parseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		d := secondsToDuration(secs)
		if d <= 0 {
			return 0, fmt.Errorf("interval must be greater than 0")
		}
		return d, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("interval must be greater than 0")
	}
	return d, nil
}
