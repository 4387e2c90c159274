package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fakes "github.com/rileyhilliard/sysmon/internal/collector/testing"
	"github.com/rileyhilliard/sysmon/internal/errors"
	"github.com/rileyhilliard/sysmon/internal/export"
	"github.com/rileyhilliard/sysmon/internal/processor"
	"github.com/rileyhilliard/sysmon/internal/snapshot"
)

func rawWithCPU(usage float64) snapshot.Raw {
	return snapshot.Raw{
		Timestamp: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		CPU:       snapshot.Section{"usage_percent": usage},
	}
}

func TestTakeSnapshot(t *testing.T) {
	t.Run("processes the second reading", func(t *testing.T) {
		src := fakes.NewFakeSource(rawWithCPU(3), rawWithCPU(42))
		p := processor.New()

		s, err := takeSnapshot(context.Background(), src, p, time.Millisecond)

		require.NoError(t, err)
		assert.Equal(t, 2, src.CallCount())
		assert.Equal(t, 42.0, s.CPU.UsagePercent)
		assert.Equal(t, []float64{42}, p.History(processor.ResourceCPU), "the baseline is not processed")
	})

	t.Run("zero window collects once", func(t *testing.T) {
		src := fakes.NewFakeSource(rawWithCPU(7))

		s, err := takeSnapshot(context.Background(), src, processor.New(), 0)

		require.NoError(t, err)
		assert.Equal(t, 1, src.CallCount())
		assert.Equal(t, 7.0, s.CPU.UsagePercent)
	})

	t.Run("cancelled while waiting", func(t *testing.T) {
		src := fakes.NewFakeSource(rawWithCPU(1))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := takeSnapshot(ctx, src, processor.New(), time.Hour)

		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrCollect))
		assert.Equal(t, 1, src.CallCount())
	})

	t.Run("threshold breach carries an alert", func(t *testing.T) {
		src := fakes.NewFakeSource(rawWithCPU(99))

		s, err := takeSnapshot(context.Background(), src, processor.New(), 0)

		require.NoError(t, err)
		require.Contains(t, s.Alerts, processor.ResourceCPU)
		assert.Equal(t, processor.LevelCritical, s.Alerts[processor.ResourceCPU].Level)
	})
}

func TestSnapshotCommand_UnknownFormat(t *testing.T) {
	isolate(t)

	var buf bytes.Buffer
	err := snapshotCommand(context.Background(), &buf, "", snapshotOptions{Format: "xml"})

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExport))
	assert.Contains(t, err.Error(), "xml")
	assert.Empty(t, buf.String())
}

func TestSnapshotCommand_InvalidConfig(t *testing.T) {
	dir := isolate(t)
	writeLocalConfig(t, dir, "export:\n  snapshot_format: xml\n")

	var buf bytes.Buffer
	err := snapshotCommand(context.Background(), &buf, "", snapshotOptions{})

	require.Error(t, err)
	assert.NotEmpty(t, errors.ProblemsOf(err))
}

func TestWriteSnapshotFile(t *testing.T) {
	s := processor.New().Process(rawWithCPU(12.5))
	path := filepath.Join(t.TempDir(), "out", "snap.json")

	require.NoError(t, writeSnapshotFile(path, s, export.FormatJSON))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	cpu, ok := decoded["cpu"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 12.5, cpu["usage_percent"])
}

func TestWriteSnapshotFile_Unwritable(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := writeSnapshotFile(filepath.Join(blocker, "snap.json"), processor.Snapshot{}, export.FormatJSON)

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExport))
}
