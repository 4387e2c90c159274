package export

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rileyhilliard/sysmon/internal/errors"
	"github.com/rileyhilliard/sysmon/internal/processor"
)

// RecorderHeader is the first row of every CSV recording.
var RecorderHeader = []string{
	"timestamp",
	"cpu_percent",
	"memory_percent",
	"disk_percent",
	"disk_read_mbps",
	"disk_write_mbps",
	"net_down_mbps",
	"net_up_mbps",
	"cpu_alert",
	"memory_alert",
	"disk_alert",
}

// Recorder appends one CSV row per snapshot. The header is written once,
// only when the file starts out empty.
type Recorder struct {
	closer io.Closer
	w      *csv.Writer
}

// OpenRecorder opens path for appending, creating it and its directory.
func OpenRecorder(path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrExport,
			"Can't create CSV export directory",
			"Check --export-csv points somewhere writable.")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrExport,
			"Can't open CSV export file "+path,
			"Check --export-csv points somewhere writable.")
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.WrapWithCode(err, errors.ErrExport,
			"Can't open CSV export file "+path, "")
	}

	r := newRecorder(f, f, info.Size() == 0)
	if err := r.w.Error(); err != nil {
		f.Close()
		return nil, errors.WrapWithCode(err, errors.ErrExport, "Failed to write CSV header", "")
	}
	return r, nil
}

// NewRecorder records into w and writes the header immediately.
func NewRecorder(w io.Writer) *Recorder {
	return newRecorder(w, nil, true)
}

func newRecorder(w io.Writer, closer io.Closer, header bool) *Recorder {
	r := &Recorder{closer: closer, w: csv.NewWriter(w)}
	if header {
		r.w.Write(RecorderHeader)
		r.w.Flush()
	}
	return r
}

// Record appends the summary row for s and flushes it.
func (r *Recorder) Record(s processor.Snapshot) error {
	ts := s.System.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	row := []string{
		ts.Format(time.RFC3339),
		formatFloat(s.CPU.UsagePercent),
		formatFloat(s.Memory.UsagePercent),
		formatFloat(s.Disk.UsagePercent),
		formatFloat(s.Disk.ReadSpeed),
		formatFloat(s.Disk.WriteSpeed),
		formatFloat(s.Network.DownloadSpeed),
		formatFloat(s.Network.UploadSpeed),
		string(s.Alerts[processor.ResourceCPU].Level),
		string(s.Alerts[processor.ResourceMemory].Level),
		string(s.Alerts[processor.ResourceDisk].Level),
	}
	if err := r.w.Write(row); err != nil {
		return errors.WrapWithCode(err, errors.ErrExport, "Failed to write CSV row", "")
	}
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		return errors.WrapWithCode(err, errors.ErrExport, "Failed to write CSV row", "")
	}
	return nil
}

// Close flushes and closes the underlying file, if any.
func (r *Recorder) Close() error {
	r.w.Flush()
	if r.closer == nil {
		return r.w.Error()
	}
	if err := r.w.Error(); err != nil {
		r.closer.Close()
		return err
	}
	return r.closer.Close()
}
