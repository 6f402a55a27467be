// Package status finds merge reports left in a project and tells which of
// them still wait for review.
package status

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dusk-indust/unitymerge/internal/report"
)

// skipDirs are never descended into. Unity regenerates Library and Temp.
var skipDirs = []string{"Library", "Temp", "Logs", "obj", "node_modules"}

// ReportStatus describes one report file found on disk.
type ReportStatus struct {
	Path         string
	Merged       string // the merged document the report belongs to
	MergedExists bool
	Summary      report.Summary
	Err          error // set when the report cannot be parsed
}

// Pending reports whether the report still asks for review: it logged a
// conflict, or it cannot be read back.
func (s ReportStatus) Pending() bool {
	return s.Err != nil || s.Summary.Conflicts > 0
}

// Label is a one-word state for listings.
func (s ReportStatus) Label() string {
	switch {
	case s.Err != nil:
		return "malformed"
	case !s.MergedExists:
		return "orphaned"
	case s.Summary.Conflicts > 0:
		return "review"
	default:
		return "clean"
	}
}

// ScanReports walks root for files ending in suffix and loads each one.
// Hidden directories and Unity's generated directories are skipped. The
// result is sorted by path.
func ScanReports(root, suffix string) ([]ReportStatus, error) {
	var out []ReportStatus
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || slices.Contains(skipDirs, name)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), suffix) || d.Name() == suffix {
			return nil
		}
		out = append(out, Inspect(path, suffix))
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b ReportStatus) int { return strings.Compare(a.Path, b.Path) })
	return out, nil
}

// Inspect loads the report at path. Load failures are carried in Err.
func Inspect(path, suffix string) ReportStatus {
	s := ReportStatus{Path: path, Merged: strings.TrimSuffix(path, suffix)}
	if _, err := os.Stat(s.Merged); err == nil {
		s.MergedExists = true
	} else if !errors.Is(err, fs.ErrNotExist) {
		s.Err = err
		return s
	}
	r, err := report.LoadFile(path)
	if err != nil {
		s.Err = err
		return s
	}
	s.Summary = r.Loaded().Summary()
	return s
}

// CountPending returns how many of statuses still wait for review.
func CountPending(statuses []ReportStatus) int {
	n := 0
	for _, s := range statuses {
		if s.Pending() {
			n++
		}
	}
	return n
}
