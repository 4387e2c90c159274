package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/sysmon/internal/config"
	"github.com/rileyhilliard/sysmon/internal/errors"
)

func TestConfigShow(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		isolate(t)

		var buf bytes.Buffer
		require.NoError(t, configShowCommand(&buf, ""))

		out := buf.String()
		assert.Contains(t, out, "# no config file found, showing defaults")
		assert.Contains(t, out, "layout: detailed")
		assert.Contains(t, out, "update_interval: 1s")
	})

	t.Run("local file merged over defaults", func(t *testing.T) {
		dir := isolate(t)
		path := writeLocalConfig(t, dir, "display:\n  layout: compact\n")

		var buf bytes.Buffer
		require.NoError(t, configShowCommand(&buf, ""))

		out := buf.String()
		assert.Contains(t, out, "# "+path)
		assert.Contains(t, out, "layout: compact")
		assert.Contains(t, out, "theme: dark")
	})
}

func TestConfigValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		isolate(t)

		var buf bytes.Buffer
		require.NoError(t, configValidateCommand(&buf, ""))
		assert.Contains(t, buf.String(), "Configuration is valid")
		assert.Contains(t, buf.String(), "defaults (no config file found)")
	})

	t.Run("invalid exits 1 after listing every problem", func(t *testing.T) {
		dir := isolate(t)
		writeLocalConfig(t, dir, `
display:
  layout: grid
  process_count: 0
`)

		var buf bytes.Buffer
		err := configValidateCommand(&buf, "")

		code, ok := errors.GetExitCode(err)
		require.True(t, ok)
		assert.Equal(t, 1, code)

		out := buf.String()
		assert.Contains(t, out, "grid")
		assert.Contains(t, out, "Process count must be greater than 0")
		assert.Contains(t, out, "sysmon config set")
	})

	t.Run("unreadable file is returned as is", func(t *testing.T) {
		dir := isolate(t)
		writeLocalConfig(t, dir, "display: [unclosed\n")

		var buf bytes.Buffer
		err := configValidateCommand(&buf, "")

		require.Error(t, err)
		_, isExit := errors.GetExitCode(err)
		assert.False(t, isExit)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
	})
}

func TestConfigPath(t *testing.T) {
	t.Run("nothing found", func(t *testing.T) {
		isolate(t)

		var buf bytes.Buffer
		require.NoError(t, configPathCommand(&buf, ""))

		out := buf.String()
		assert.Contains(t, out, config.ConfigFileName+" (missing)")
		assert.Contains(t, out, "none, using defaults")
	})

	t.Run("local file is active", func(t *testing.T) {
		dir := isolate(t)
		path := writeLocalConfig(t, dir, "version: 1\n")

		var buf bytes.Buffer
		require.NoError(t, configPathCommand(&buf, ""))

		out := buf.String()
		assert.Contains(t, out, path+" (active)")
		assert.NotContains(t, out, "using defaults")
	})

	t.Run("explicit path wins", func(t *testing.T) {
		dir := isolate(t)
		writeLocalConfig(t, dir, "version: 1\n")
		explicit := filepath.Join(dir, "other.yaml")
		require.NoError(t, os.WriteFile(explicit, []byte("version: 1\n"), 0o644))

		var buf bytes.Buffer
		require.NoError(t, configPathCommand(&buf, explicit))

		out := buf.String()
		assert.Contains(t, out, "--config")
		assert.Contains(t, out, explicit+" (active)")
		assert.NotContains(t, out, config.ConfigFileName+" (active)")
	})
}

func TestConfigSet(t *testing.T) {
	t.Run("creates the local file", func(t *testing.T) {
		dir := isolate(t)

		var buf bytes.Buffer
		require.NoError(t, configSetCommand(&buf, "", "display.layout", "minimal"))
		assert.Contains(t, buf.String(), "Set display.layout = minimal")

		cfg, err := config.Load(filepath.Join(dir, config.ConfigFileName))
		require.NoError(t, err)
		assert.Equal(t, "minimal", cfg.Display.Layout)
	})

	t.Run("edits the active file in place", func(t *testing.T) {
		dir := isolate(t)
		path := writeLocalConfig(t, dir, "# my settings\nalerts:\n  cpu:\n    warning: 70\n")

		var buf bytes.Buffer
		require.NoError(t, configSetCommand(&buf, "", "alerts.cpu.critical", "85"))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "# my settings")

		cfg, err := config.Load(path)
		require.NoError(t, err)
		assert.Equal(t, 70.0, cfg.Alerts.CPU.Warning)
		assert.Equal(t, 85.0, cfg.Alerts.CPU.Critical)
	})

	t.Run("unknown key", func(t *testing.T) {
		isolate(t)

		var buf bytes.Buffer
		err := configSetCommand(&buf, "", "display.colour", "on")

		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrConfig))
		assert.NoFileExists(t, config.ConfigFileName)
	})

	t.Run("invalid value is written but reported", func(t *testing.T) {
		isolate(t)

		var buf bytes.Buffer
		err := configSetCommand(&buf, "", "alerts.memory.warning", "150")

		require.Error(t, err)
		assert.NotEmpty(t, errors.ProblemsOf(err))
		assert.FileExists(t, config.ConfigFileName)
	})
}
