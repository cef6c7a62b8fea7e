package ports

import "go.trai.ch/ripple/internal/core/domain"

// SnapshotSource produces per-file dependency snapshots from on-disk
// dependency reports. The graph core never interprets the report format
// itself; it only consumes the structured result.
//
//go:generate mockgen -source=snapshot_source.go -destination=mocks/mock_snapshot_source.go -package=mocks
type SnapshotSource interface {
	// Load reads and parses the report at path. It returns the snapshot
	// together with a hash of the raw report bytes, which callers may use
	// to skip re-integrating an unchanged report. A malformed or unreadable
	// report yields a nil snapshot and an error.
	Load(path string) (*domain.Snapshot, uint64, error)
}
