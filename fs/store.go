package fs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/sdkdrift"
)

// Compile-time interface verification.
var _ sdkdrift.ReportStore = (*ReportStore)(nil)

// LatestName is the file that always holds the most recent report.
const LatestName = "latest.json"

// ReportStore writes each report as a timestamped JSON snapshot and
// overwrites a "latest" copy alongside it.
type ReportStore struct {
	dir string
}

// NewReportStore creates a ReportStore rooted at dir.
func NewReportStore(dir string) *ReportStore {
	return &ReportStore{dir: dir}
}

// Save persists r and returns the path of its timestamped snapshot.
func (s *ReportStore) Save(r *sdkdrift.AnalysisReport) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}

	path := filepath.Join(s.dir, snapshotName(r))
	if err := writeFileAtomic(path, data); err != nil {
		return "", err
	}
	if err := writeFileAtomic(filepath.Join(s.dir, LatestName), data); err != nil {
		return "", err
	}
	return path, nil
}

// Latest returns the most recently saved report, or sdkdrift.ErrNoReport.
func (s *ReportStore) Latest() (*sdkdrift.AnalysisReport, error) {
	r, err := Load(filepath.Join(s.dir, LatestName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, sdkdrift.ErrNoReport
	}
	return r, err
}

// Load reads a report snapshot from path.
func Load(path string) (*sdkdrift.AnalysisReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r sdkdrift.AnalysisReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", path, err)
	}
	return &r, nil
}

func snapshotName(r *sdkdrift.AnalysisReport) string {
	id := r.ID
	if len(id) > 8 {
		id = id[:8]
	}
	return fmt.Sprintf("report-%s-%s.json", r.Timestamp.UTC().Format("20060102T150405Z"), id)
}

// writeFileAtomic writes data to a temporary file in the same directory and
// renames it over path, so readers never observe a partial report.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
