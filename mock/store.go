package mock

import (
	"context"

	"github.com/fwojciec/sdkdrift"
)

// Compile-time interface verification.
var (
	_ sdkdrift.SnapshotReader = (*SnapshotReader)(nil)
	_ sdkdrift.ReportStore    = (*ReportStore)(nil)
	_ sdkdrift.HistoryStore   = (*HistoryStore)(nil)
)

// SnapshotReader is a mock implementation of sdkdrift.SnapshotReader.
type SnapshotReader struct {
	ReadFn func(ctx context.Context, dir string) (sdkdrift.Snapshot, error)
}

func (r *SnapshotReader) Read(ctx context.Context, dir string) (sdkdrift.Snapshot, error) {
	return r.ReadFn(ctx, dir)
}

// ReportStore is a mock implementation of sdkdrift.ReportStore.
type ReportStore struct {
	SaveFn   func(r *sdkdrift.AnalysisReport) (string, error)
	LatestFn func() (*sdkdrift.AnalysisReport, error)
}

func (s *ReportStore) Save(r *sdkdrift.AnalysisReport) (string, error) {
	return s.SaveFn(r)
}

func (s *ReportStore) Latest() (*sdkdrift.AnalysisReport, error) {
	return s.LatestFn()
}

// HistoryStore is a mock implementation of sdkdrift.HistoryStore.
type HistoryStore struct {
	AppendFn func(path string, e sdkdrift.HistoryEntry) error
	LoadFn   func(path string) ([]sdkdrift.HistoryEntry, error)
}

func (s *HistoryStore) Append(path string, e sdkdrift.HistoryEntry) error {
	return s.AppendFn(path, e)
}

func (s *HistoryStore) Load(path string) ([]sdkdrift.HistoryEntry, error) {
	return s.LoadFn(path)
}
