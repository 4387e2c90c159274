package cli

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/sysmon/internal/errors"
	"github.com/rileyhilliard/sysmon/internal/journal"
	"github.com/rileyhilliard/sysmon/internal/processor"
)

// seedJournal records one alert per age, each age before now.
func seedJournal(t *testing.T, path string, now time.Time, ages ...time.Duration) {
	t.Helper()
	j, err := journal.Open(path, "box")
	require.NoError(t, err)
	defer j.Close()

	for i, age := range ages {
		require.NoError(t, j.Record(processor.Alert{
			Resource: processor.ResourceCPU,
			Level:    processor.LevelWarning,
			Message:  fmt.Sprintf("alert number %d", i),
			RaisedAt: now.Add(-age),
		}))
	}
}

func TestAlertsCommand(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		opts     alertsOptions
		contains []string
		excludes []string
	}{
		{
			name:     "window filters older alerts",
			opts:     alertsOptions{Since: time.Hour},
			contains: []string{"alert number 1", "alert number 2", "Showing 2 of 3 recorded alerts."},
			excludes: []string{"alert number 0"},
		},
		{
			name:     "zero window shows everything",
			opts:     alertsOptions{},
			contains: []string{"alert number 0", "alert number 1", "alert number 2", "Showing 3 of 3"},
		},
		{
			name:     "limit keeps the newest",
			opts:     alertsOptions{Limit: 1},
			contains: []string{"alert number 2", "Showing 1 of 3"},
			excludes: []string{"alert number 1"},
		},
		{
			name:     "empty window",
			opts:     alertsOptions{Since: 10 * time.Second},
			contains: []string{"No alerts in this window (3 alerts recorded in total)."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			path := filepath.Join(dir, "alerts.db")
			seedJournal(t, path, now, 2*time.Hour, 30*time.Minute, time.Minute)

			tt.opts.Journal = path
			var buf bytes.Buffer
			require.NoError(t, alertsCommand(context.Background(), &buf, "", tt.opts, now))

			out := buf.String()
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, out, unwanted)
			}
		})
	}
}

func TestAlertsCommand_TableColumns(t *testing.T) {
	now := time.Now()
	dir := isolate(t)
	path := filepath.Join(dir, "alerts.db")
	seedJournal(t, path, now, time.Minute)

	var buf bytes.Buffer
	require.NoError(t, alertsCommand(context.Background(), &buf, "", alertsOptions{Journal: path, Since: time.Hour}, now))

	out := buf.String()
	assert.Contains(t, out, "LEVEL")
	assert.Contains(t, out, "WARNING")
	assert.Contains(t, out, "box")
	assert.Contains(t, out, processor.ResourceCPU.Label())
}

func TestAlertsCommand_JournalFromConfig(t *testing.T) {
	now := time.Now()
	dir := isolate(t)
	path := filepath.Join(dir, "alerts.db")
	seedJournal(t, path, now, time.Minute)
	writeLocalConfig(t, dir, "alerts:\n  journal_path: "+path+"\n")

	var buf bytes.Buffer
	require.NoError(t, alertsCommand(context.Background(), &buf, "", alertsOptions{Since: time.Hour}, now))
	assert.Contains(t, buf.String(), "alert number 0")
}

func TestAlertsCommand_NoJournal(t *testing.T) {
	dir := isolate(t)

	t.Run("not configured", func(t *testing.T) {
		var buf bytes.Buffer
		err := alertsCommand(context.Background(), &buf, "", alertsOptions{}, time.Now())

		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrJournal))
		assert.Contains(t, err.Error(), "No alert journal configured")
	})

	t.Run("file missing", func(t *testing.T) {
		missing := filepath.Join(dir, "missing.db")

		var buf bytes.Buffer
		err := alertsCommand(context.Background(), &buf, "", alertsOptions{Journal: missing}, time.Now())

		require.Error(t, err)
		assert.True(t, errors.IsCode(err, errors.ErrJournal))
		assert.NoFileExists(t, missing, "reading must not create a journal")
	})
}
