// Package export writes processed snapshots to files: one-off snapshot
// documents in json, yaml or csv, and a CSV recorder that appends one row
// per refresh.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/sysmon/internal/errors"
	"github.com/rileyhilliard/sysmon/internal/processor"
)

// Format is a snapshot file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// ParseFormat returns the format named s, case-insensitively.
func ParseFormat(s string) (Format, bool) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatCSV:
		return f, true
	}
	return "", false
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	return "." + string(f)
}

// fileTimeLayout names snapshot files so they sort chronologically.
const fileTimeLayout = "20060102-150405"

// WriteSnapshot encodes s to w in the given format.
func WriteSnapshot(w io.Writer, s processor.Snapshot, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case FormatCSV:
		return writeSnapshotCSV(w, s)
	default:
		return fmt.Errorf("unknown snapshot format %q", format)
	}
}

// SaveSnapshot writes s into dir as sysmon-snapshot-<time>.<ext> and
// returns the file path.
func SaveSnapshot(dir string, s processor.Snapshot, format Format, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrExport,
			"Can't create snapshot directory "+dir,
			"Check export.snapshot_path points somewhere writable.")
	}

	name := snapshotPrefix + now.Format(fileTimeLayout) + format.Ext()
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrExport,
			"Can't create snapshot file "+path,
			"Check export.snapshot_path points somewhere writable.")
	}

	if err := WriteSnapshot(f, s, format); err != nil {
		f.Close()
		return "", errors.WrapWithCode(err, errors.ErrExport,
			"Failed to write snapshot", "")
	}
	if err := f.Close(); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrExport,
			"Failed to write snapshot", "")
	}
	return path, nil
}

// writeSnapshotCSV flattens s into section,metric,value rows.
func writeSnapshotCSV(w io.Writer, s processor.Snapshot) error {
	cw := csv.NewWriter(w)
	rows := [][]string{{"section", "metric", "value"}}
	add := func(section, metric, value string) {
		rows = append(rows, []string{section, metric, value})
	}

	add("system", "timestamp", s.System.Timestamp.Format(time.RFC3339))
	add("system", "hostname", s.System.Hostname)
	add("system", "uptime_seconds", formatFloat(s.System.Uptime.Seconds()))

	add("cpu", "usage_percent", formatFloat(s.CPU.UsagePercent))
	add("cpu", "core_count", strconv.Itoa(s.CPU.CoreCount))
	for i, p := range s.CPU.PerCorePercent {
		add("cpu", fmt.Sprintf("core%d_percent", i), formatFloat(p))
	}
	add("cpu", "load_1min", formatFloat(s.CPU.LoadAvg.One))
	add("cpu", "load_5min", formatFloat(s.CPU.LoadAvg.Five))
	add("cpu", "load_15min", formatFloat(s.CPU.LoadAvg.Fifteen))
	add("cpu", "frequency_mhz", formatFloat(s.CPU.Frequency.CurrentMHz))
	if s.CPU.Temperature != nil {
		add("cpu", "temperature_celsius", formatFloat(s.CPU.Temperature.Celsius))
	}
	add("cpu", "utilization_level", s.CPU.UtilizationLevel)

	add("memory", "usage_percent", formatFloat(s.Memory.UsagePercent))
	add("memory", "used_gb", formatFloat(s.Memory.Used))
	add("memory", "total_gb", formatFloat(s.Memory.Total))
	add("memory", "swap_percent", formatFloat(s.Memory.SwapPercent))

	add("disk", "usage_percent", formatFloat(s.Disk.UsagePercent))
	add("disk", "read_mbps", formatFloat(s.Disk.ReadSpeed))
	add("disk", "write_mbps", formatFloat(s.Disk.WriteSpeed))
	for _, p := range s.Disk.Partitions {
		add("partition", p.Mountpoint, formatFloat(p.UsagePercent))
	}

	add("network", "download_mbps", formatFloat(s.Network.DownloadSpeed))
	add("network", "upload_mbps", formatFloat(s.Network.UploadSpeed))
	for _, i := range s.Network.Interfaces {
		add("interface", i.Name+"_download_mbps", formatFloat(i.DownloadSpeed))
		add("interface", i.Name+"_upload_mbps", formatFloat(i.UploadSpeed))
	}

	for _, p := range s.Processes.Processes {
		add("process", strconv.FormatInt(p.PID, 10)+":"+p.Name, formatFloat(p.CPUPercent))
	}

	for _, r := range sortedAlertResources(s.Alerts) {
		add("alert", string(r), string(s.Alerts[r].Level))
	}

	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func sortedAlertResources(alerts map[processor.Resource]processor.Alert) []processor.Resource {
	out := make([]processor.Resource, 0, len(alerts))
	for r := range alerts {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
