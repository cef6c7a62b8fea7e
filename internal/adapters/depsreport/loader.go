// Package depsreport parses on-disk dependency reports into per-file
// snapshots for the graph integrator.
package depsreport

import (
	"os"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/ripple/internal/core/domain"
	"go.trai.ch/ripple/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.SnapshotSource = (*Loader)(nil)

// cacheSize bounds the number of parsed snapshots kept in memory. Reports
// are re-read after every compilation, but most of them do not change
// between integrations.
const cacheSize = 256

type cacheEntry struct {
	hash     uint64
	snapshot *domain.Snapshot
}

// Loader implements ports.SnapshotSource for YAML dependency reports,
// keeping an LRU cache of parsed snapshots keyed by report path and
// content hash.
type Loader struct {
	cache *lru.Cache[string, cacheEntry]
}

// NewLoader creates a new Loader.
func NewLoader() (*Loader, error) {
	cache, err := lru.New[string, cacheEntry](cacheSize)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create snapshot cache")
	}
	return &Loader{cache: cache}, nil
}

// Load reads and parses the report at path, returning the snapshot and the
// xxhash of the raw report bytes. Unchanged reports are served from cache.
func (l *Loader) Load(path string) (*domain.Snapshot, uint64, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path comes from the build configuration
	if err != nil {
		return nil, 0, zerr.With(zerr.Wrap(err, "failed to read dependency report"), "path", path)
	}

	sum := xxhash.Sum64(data)
	if entry, ok := l.cache.Get(path); ok && entry.hash == sum {
		return entry.snapshot, sum, nil
	}

	snapshot, err := Parse(path, data)
	if err != nil {
		return nil, 0, err
	}
	l.cache.Add(path, cacheEntry{hash: sum, snapshot: snapshot})
	return snapshot, sum, nil
}
