package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/sysmon/internal/config"
	"github.com/rileyhilliard/sysmon/internal/errors"
	"github.com/rileyhilliard/sysmon/internal/journal"
	"github.com/rileyhilliard/sysmon/internal/ui"
	"github.com/rileyhilliard/sysmon/internal/util"
)

// alertsOptions holds the alerts command flags.
type alertsOptions struct {
	Journal string
	Since   time.Duration
	Limit   int
}

var alertsFlags alertsOptions

// alertsCmd lists alerts from the journal
var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List alerts recorded in the alert journal",
	Long: `List the alerts the dashboard wrote to the SQLite alert journal,
newest first. The journal is only written while alerts.journal_path is set.

Examples:
  sysmon alerts
  sysmon alerts --since 1h
  sysmon alerts --journal /var/lib/sysmon/alerts.db --limit 200`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return alertsCommand(cmd.Context(), cmd.OutOrStdout(), cfgFile, alertsFlags, time.Now())
	},
}

func init() {
	alertsCmd.Flags().StringVar(&alertsFlags.Journal, "journal", "", "journal file; defaults to alerts.journal_path")
	alertsCmd.Flags().DurationVar(&alertsFlags.Since, "since", 24*time.Hour, "only show alerts newer than this (0 for all)")
	alertsCmd.Flags().IntVarP(&alertsFlags.Limit, "limit", "n", 50, "maximum number of alerts to show")
	rootCmd.AddCommand(alertsCmd)
}

func alertsCommand(ctx context.Context, w io.Writer, explicit string, opts alertsOptions, now time.Time) error {
	path := config.ExpandPath(opts.Journal)
	if path == "" {
		cfg, _, err := config.LoadOrDefault(explicit)
		if err != nil {
			return err
		}
		path = cfg.Alerts.JournalPath
	}
	if path == "" {
		return errors.New(errors.ErrJournal,
			"No alert journal configured",
			"Set one with 'sysmon config set alerts.journal_path ~/.local/share/sysmon/alerts.db'.")
	}
	if !fileExists(path) {
		return errors.New(errors.ErrJournal,
			"Alert journal not found: "+path,
			"The journal is created the first time the dashboard runs with alerts.journal_path set.")
	}

	j, err := journal.Open(path, "")
	if err != nil {
		return err
	}
	defer j.Close()

	var since time.Time
	if opts.Since > 0 {
		since = now.Add(-opts.Since)
	}
	entries, err := j.Recent(ctx, since, opts.Limit)
	if err != nil {
		return err
	}
	total, err := j.Count(ctx)
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintf(w, "No alerts in this window (%d %s recorded in total).\n", total, util.Pluralize(total, "alert", "alerts"))
		return nil
	}

	columns := []ui.TableColumn{
		{Title: "TIME", Width: 19},
		{Title: "HOST", Width: 16},
		{Title: "LEVEL", Width: 8},
		{Title: "RESOURCE", Width: 8},
		{Title: "MESSAGE", Width: 48},
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.RaisedAt.Local().Format("2006-01-02 15:04:05"),
			e.Hostname,
			strings.ToUpper(string(e.Level)),
			e.Resource.Label(),
			e.Message,
		})
	}

	fmt.Fprintln(w, ui.RenderSimpleTable(columns, rows))
	fmt.Fprintf(w, "Showing %d of %d recorded %s.\n", len(entries), total, util.Pluralize(total, "alert", "alerts"))
	return nil
}
