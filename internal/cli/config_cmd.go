package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/sysmon/internal/config"
	"github.com/rileyhilliard/sysmon/internal/errors"
	"github.com/rileyhilliard/sysmon/internal/ui"
)

// configCmd groups the configuration subcommands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit the configuration",
	Long: `Inspect and edit the sysmon configuration.

Examples:
  sysmon config show
  sysmon config validate
  sysmon config path
  sysmon config set display.layout compact`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration sysmon would run with, after defaults,
the config file and SYSMON_* environment variables are merged.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowCommand(cmd.OutOrStdout(), cfgFile)
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration for problems",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configValidateCommand(cmd.OutOrStdout(), cfgFile)
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show which configuration file is used",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configPathCommand(cmd.OutOrStdout(), cfgFile)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one configuration value",
	Long: `Set one dotted key in the active configuration file, keeping its
comments and layout. Creates ./.sysmon.yaml when no file exists yet.

Examples:
  sysmon config set display.theme light
  sysmon config set alerts.cpu.critical 95
  sysmon config set general.update_interval 2s`,
	Args: cobra.ExactArgs(2),
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) != 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return config.KnownKeys(), cobra.ShellCompDirectiveNoFileComp
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return configSetCommand(cmd.OutOrStdout(), cfgFile, args[0], args[1])
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func configShowCommand(w io.Writer, explicit string) error {
	cfg, path, err := config.LoadOrDefault(explicit)
	if err != nil {
		return err
	}

	if path == "" {
		fmt.Fprintln(w, "# no config file found, showing defaults")
	} else {
		fmt.Fprintf(w, "# %s\n", path)
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to encode configuration",
			"This is unexpected - please report it.")
	}
	return encoder.Close()
}

// configValidateCommand prints a check list and fails with exit code 1 when
// the configuration has problems. The list itself is the error report.
func configValidateCommand(w io.Writer, explicit string) error {
	cfg, path, err := config.LoadOrDefault(explicit)
	if err != nil {
		return err
	}

	source := path
	if source == "" {
		source = "defaults (no config file found)"
	}

	err = config.Validate(cfg)
	problems := errors.ProblemsOf(err)
	if err != nil && len(problems) == 0 {
		return err
	}

	var rows []ui.CheckRow
	if len(problems) == 0 {
		rows = append(rows, ui.CheckRow{Status: "pass", Category: source, Message: "Configuration is valid"})
	}
	for _, p := range problems {
		rows = append(rows, ui.CheckRow{Status: "fail", Category: source, Message: p})
	}
	if len(problems) > 0 {
		rows[len(rows)-1].Suggestion = "Fix the settings above, or edit them with 'sysmon config set'."
	}

	fmt.Fprint(w, ui.RenderCheckList(rows))
	if len(problems) > 0 {
		return errors.NewExitError(1)
	}
	return nil
}

func configPathCommand(w io.Writer, explicit string) error {
	active, err := config.Find(explicit)
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	describe := func(path string) string {
		switch {
		case path == "":
			return "(unavailable)"
		case path == active:
			return path + " (active)"
		case fileExists(path):
			return path
		default:
			return path + " (missing)"
		}
	}

	pairs := []ui.KeyValue{}
	if explicit != "" {
		pairs = append(pairs, ui.KeyValue{Key: "--config", Value: describe(explicit)})
	}
	pairs = append(pairs,
		ui.KeyValue{Key: "local", Value: describe(filepath.Join(cwd, config.ConfigFileName))},
		ui.KeyValue{Key: "global", Value: describe(config.GlobalPath())},
	)
	if active == "" {
		pairs = append(pairs, ui.KeyValue{Key: "active", Value: "none, using defaults"})
	}

	fmt.Fprint(w, ui.RenderKeyValues(pairs))
	return nil
}

func configSetCommand(w io.Writer, explicit, key, value string) error {
	target, err := config.Find(explicit)
	if err != nil {
		return err
	}
	if target == "" {
		target = filepath.Join(".", config.ConfigFileName)
	}

	if err := config.SetValue(target, key, value); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Couldn't set %s", key),
			"Run 'sysmon config show' to see the available keys.")
	}
	fmt.Fprintf(w, "Set %s = %s in %s\n", key, value, target)

	// the edit is kept either way; point out what is now wrong
	cfg, err := config.Load(target)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
