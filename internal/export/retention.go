package export

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rileyhilliard/sysmon/internal/errors"
)

// snapshotPrefix starts every file SaveSnapshot writes. Pruning never
// touches anything else in the directory.
const snapshotPrefix = "sysmon-snapshot-"

// Retention limits how many snapshot files are kept. Zero fields are
// unlimited.
type Retention struct {
	KeepFiles int
	KeepDays  int
	MaxSizeMB int
}

// Enabled reports whether any limit is set.
func (r Retention) Enabled() bool {
	return r.KeepFiles > 0 || r.KeepDays > 0 || r.MaxSizeMB > 0
}

// snapshotFile represents a saved snapshot with metadata for pruning decisions.
type snapshotFile struct {
	path    string
	modTime time.Time
	size    int64
}

// Prune removes old snapshot files from dir according to r and returns how
// many it deleted. Priority: MaxSizeMB > KeepDays > KeepFiles.
func Prune(dir string, r Retention, now time.Time) (int, error) {
	if dir == "" || !r.Enabled() {
		return 0, nil
	}

	files, err := listSnapshots(dir)
	if err != nil {
		return 0, err
	}

	// Newest first; every rule below deletes from the tail
	sort.Slice(files, func(i, j int) bool {
		return files[i].modTime.After(files[j].modTime)
	})

	removed := 0
	remove := func(f snapshotFile) error {
		if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
			return errors.WrapWithCode(err, errors.ErrExport,
				"Can't delete snapshot "+f.path,
				"Check your permissions.")
		}
		removed++
		return nil
	}

	// Priority 1: MaxSizeMB
	if r.MaxSizeMB > 0 {
		maxBytes := int64(r.MaxSizeMB) * 1024 * 1024
		var total int64
		for _, f := range files {
			total += f.size
		}
		for total > maxBytes && len(files) > 0 {
			oldest := files[len(files)-1]
			if err := remove(oldest); err != nil {
				return removed, err
			}
			total -= oldest.size
			files = files[:len(files)-1]
		}
	}

	// Priority 2: KeepDays
	if r.KeepDays > 0 {
		cutoff := now.Add(-time.Duration(r.KeepDays) * 24 * time.Hour)
		for len(files) > 0 && files[len(files)-1].modTime.Before(cutoff) {
			if err := remove(files[len(files)-1]); err != nil {
				return removed, err
			}
			files = files[:len(files)-1]
		}
	}

	// Priority 3: KeepFiles
	if r.KeepFiles > 0 && len(files) > r.KeepFiles {
		for _, f := range files[r.KeepFiles:] {
			if err := remove(f); err != nil {
				return removed, err
			}
		}
	}

	return removed, nil
}

// listSnapshots returns the snapshot files in dir with metadata.
func listSnapshots(dir string) ([]snapshotFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrExport,
			"Can't read snapshot directory "+dir,
			"Check your permissions.")
	}

	var files []snapshotFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), snapshotPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue // Skip entries we can't stat
		}
		files = append(files, snapshotFile{
			path:    filepath.Join(dir, entry.Name()),
			modTime: info.ModTime(),
			size:    info.Size(),
		})
	}
	return files, nil
}
