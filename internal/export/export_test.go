package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/sysmon/internal/errors"
	"github.com/rileyhilliard/sysmon/internal/processor"
)

var sampleTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func sampleSnapshot() processor.Snapshot {
	return processor.Snapshot{
		CPU: processor.CPUView{
			UsagePercent:     92.5,
			PerCorePercent:   []float64{90, 95},
			CoreCount:        2,
			LoadAvg:          processor.LoadAvg{One: 3, Five: 2, Fifteen: 1, OneNormalized: 1.5},
			Frequency:        processor.Frequency{CurrentMHz: 2400},
			Temperature:      &processor.Temperature{Celsius: 70, Fahrenheit: 158},
			UtilizationLevel: "high",
			History:          []float64{80, 92.5},
		},
		Memory: processor.MemoryView{UsagePercent: 50, Used: 8, Total: 16, History: []float64{50}},
		Disk: processor.DiskView{
			UsagePercent: 85,
			ReadSpeed:    1.25,
			WriteSpeed:   0.5,
			Partitions:   []processor.Partition{{Mountpoint: "/", UsagePercent: 85, Used: 85, Total: 100}},
			History:      []float64{1.75},
		},
		Network: processor.NetworkView{
			DownloadSpeed: 3,
			UploadSpeed:   1,
			Interfaces:    []processor.Interface{{Name: "eth0", DownloadSpeed: 3, UploadSpeed: 1}},
			History:       []float64{4},
		},
		Processes: processor.ProcessesView{
			Processes: []processor.Process{{PID: 42, Name: "postgres", CPUPercent: 30, MemoryPercent: 10}},
			Total:     1,
		},
		System: processor.SystemView{Timestamp: sampleTime, Uptime: time.Hour, Hostname: "box"},
		Alerts: map[processor.Resource]processor.Alert{
			processor.ResourceCPU: {
				Resource: processor.ResourceCPU,
				Level:    processor.LevelCritical,
				Message:  "CPU usage over 90%",
				RaisedAt: sampleTime,
			},
			processor.ResourceDisk: {
				Resource: processor.ResourceDisk,
				Level:    processor.LevelWarning,
				Message:  "Disk usage over 80%",
				RaisedAt: sampleTime,
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in     string
		want   Format
		wantOK bool
	}{
		{"json", FormatJSON, true},
		{"YAML", FormatYAML, true},
		{" csv ", FormatCSV, true},
		{"xml", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseFormat(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteSnapshot_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, sampleSnapshot(), FormatJSON))

	var decoded processor.Snapshot
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleSnapshot(), decoded)
	assert.Contains(t, buf.String(), `"usage_percent": 92.5`)
}

func TestWriteSnapshot_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, sampleSnapshot(), FormatYAML))

	var decoded processor.Snapshot
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, sampleSnapshot(), decoded)
	assert.Contains(t, buf.String(), "hostname: box")
}

func TestWriteSnapshot_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, sampleSnapshot(), FormatCSV))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"section", "metric", "value"}, rows[0])
	assert.Contains(t, rows, []string{"cpu", "usage_percent", "92.50"})
	assert.Contains(t, rows, []string{"cpu", "core1_percent", "95.00"})
	assert.Contains(t, rows, []string{"cpu", "temperature_celsius", "70.00"})
	assert.Contains(t, rows, []string{"partition", "/", "85.00"})
	assert.Contains(t, rows, []string{"interface", "eth0_download_mbps", "3.00"})
	assert.Contains(t, rows, []string{"process", "42:postgres", "30.00"})
	assert.Contains(t, rows, []string{"system", "timestamp", "2026-03-14T09:26:53Z"})

	// alerts come out in resource name order
	n := len(rows)
	assert.Equal(t, []string{"alert", "cpu", "critical"}, rows[n-2])
	assert.Equal(t, []string{"alert", "disk", "warning"}, rows[n-1])
}

func TestWriteSnapshot_CSVNoTemperature(t *testing.T) {
	s := sampleSnapshot()
	s.CPU.Temperature = nil

	var buf bytes.Buffer
	require.NoError(t, WriteSnapshot(&buf, s, FormatCSV))
	assert.NotContains(t, buf.String(), "temperature")
}

func TestWriteSnapshot_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSnapshot(&buf, sampleSnapshot(), Format("xml"))
	assert.Error(t, err)
}

func TestSaveSnapshot(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "snapshots")

	for _, format := range []Format{FormatJSON, FormatYAML, FormatCSV} {
		t.Run(string(format), func(t *testing.T) {
			path, err := SaveSnapshot(dir, sampleSnapshot(), format, sampleTime)
			require.NoError(t, err)

			assert.Equal(t, filepath.Join(dir, "sysmon-snapshot-20260314-092653"+format.Ext()), path)
			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.NotEmpty(t, data)
		})
	}
}

func TestSaveSnapshot_UnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := SaveSnapshot(filepath.Join(file, "snaps"), sampleSnapshot(), FormatJSON, sampleTime)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExport))
}

func TestRecorder_WritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "stats.csv")

	r, err := OpenRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.Record(sampleSnapshot()))
	require.NoError(t, r.Close())

	// reopening appends without a second header
	r, err = OpenRecorder(path)
	require.NoError(t, err)
	require.NoError(t, r.Record(sampleSnapshot()))
	require.NoError(t, r.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "timestamp,"))

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, RecorderHeader, rows[0])
	assert.Equal(t, []string{
		"2026-03-14T09:26:53Z", "92.50", "50.00", "85.00", "1.25", "0.50", "3.00", "1.00",
		"critical", "", "warning",
	}, rows[1])
}

func TestRecorder_Writer(t *testing.T) {
	var buf bytes.Buffer
	r := NewRecorder(&buf)

	require.NoError(t, r.Record(processor.Snapshot{System: processor.SystemView{Timestamp: sampleTime}}))
	require.NoError(t, r.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(RecorderHeader, ","), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2026-03-14T09:26:53Z,0.00"))
}

func TestOpenRecorder_BadPath(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err := OpenRecorder(filepath.Join(file, "stats.csv"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrExport))
}
