package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/sysmon/internal/collector"
	"github.com/rileyhilliard/sysmon/internal/config"
	"github.com/rileyhilliard/sysmon/internal/errors"
	"github.com/rileyhilliard/sysmon/internal/export"
	"github.com/rileyhilliard/sysmon/internal/processor"
	"github.com/rileyhilliard/sysmon/internal/util"
)

// DefaultSampleWindow is how long snapshot waits between its two collections.
const DefaultSampleWindow = time.Second

// snapshotOptions holds the snapshot command flags.
type snapshotOptions struct {
	Format string
	Output string
	Save   bool
	Sample time.Duration
}

var snapshotFlags snapshotOptions

// snapshotCmd collects once and prints the processed snapshot
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Print one processed snapshot and exit",
	Long: `Collect system metrics once, process them and print the result
without starting the dashboard. Speeds are measured over the sample window.

Examples:
  sysmon snapshot
  sysmon snapshot --format yaml
  sysmon snapshot --format csv --output usage.csv
  sysmon snapshot --save`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return snapshotCommand(cmd.Context(), cmd.OutOrStdout(), cfgFile, snapshotFlags)
	},
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotFlags.Format, "format", "f", "", "output format (json, yaml, csv); defaults to export.snapshot_format")
	snapshotCmd.Flags().StringVarP(&snapshotFlags.Output, "output", "o", "", "write to this file instead of stdout")
	snapshotCmd.Flags().BoolVar(&snapshotFlags.Save, "save", false, "write a timestamped file to export.snapshot_path")
	snapshotCmd.Flags().DurationVar(&snapshotFlags.Sample, "sample", DefaultSampleWindow, "time between the two collections used for rates")
	snapshotCmd.MarkFlagsMutuallyExclusive("output", "save")
	rootCmd.AddCommand(snapshotCmd)
}

func snapshotCommand(ctx context.Context, w io.Writer, explicit string, opts snapshotOptions) error {
	cfg, _, err := config.LoadOrDefault(explicit)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	formatName := opts.Format
	if formatName == "" {
		formatName = cfg.Export.SnapshotFormat
	}
	format, ok := export.ParseFormat(formatName)
	if !ok {
		return errors.New(errors.ErrExport,
			fmt.Sprintf("Unknown snapshot format: %s", formatName),
			"Supported formats: json, yaml, csv")
	}

	host := collector.NewHost(
		collector.WithDiskPath(cfg.Alerts.DiskPath),
		collector.WithProcessLimit(cfg.Display.ProcessCount),
	)
	p := processor.New(
		processor.WithHistorySize(cfg.Display.GraphHistory),
		processor.WithThresholds(cfg.Alerts.Thresholds()),
		processor.WithSystemInfo(collector.NewSystem()),
	)

	s, err := takeSnapshot(ctx, host, p, opts.Sample)
	if err != nil {
		return err
	}

	switch {
	case opts.Save:
		now := time.Now()
		path, err := export.SaveSnapshot(cfg.Export.SnapshotPath, s, format, now)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Snapshot saved to %s\n", path)
		removed, err := export.Prune(cfg.Export.SnapshotPath, cfg.Export.Retention.Retention(), now)
		if err != nil {
			return err
		}
		if removed > 0 {
			fmt.Fprintf(w, "Removed %d old %s\n", removed, util.Pluralize(removed, "snapshot", "snapshots"))
		}
		return nil
	case opts.Output != "":
		return writeSnapshotFile(config.ExpandPath(opts.Output), s, format)
	default:
		if err := export.WriteSnapshot(w, s, format); err != nil {
			return errors.WrapWithCode(err, errors.ErrExport, "Failed to write snapshot", "")
		}
		return nil
	}
}

// takeSnapshot collects twice, sample apart, and processes the second
// reading. Counter-based rates and CPU usage need the first as a baseline.
func takeSnapshot(ctx context.Context, src collector.Source, p *processor.Processor, sample time.Duration) (processor.Snapshot, error) {
	if sample > 0 {
		src.Collect(ctx)

		timer := time.NewTimer(sample)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return processor.Snapshot{}, errors.WrapWithCode(ctx.Err(), errors.ErrCollect,
				"Snapshot cancelled", "")
		case <-timer.C:
		}
	}
	return p.Process(src.Collect(ctx)), nil
}

func writeSnapshotFile(path string, s processor.Snapshot, format export.Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrExport,
			"Can't create directory for "+path,
			"Check the --output path points somewhere writable.")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrExport,
			"Can't create snapshot file "+path,
			"Check the --output path points somewhere writable.")
	}
	if err := export.WriteSnapshot(f, s, format); err != nil {
		f.Close()
		return errors.WrapWithCode(err, errors.ErrExport, "Failed to write snapshot", "")
	}
	if err := f.Close(); err != nil {
		return errors.WrapWithCode(err, errors.ErrExport, "Failed to write snapshot", "")
	}
	return nil
}
