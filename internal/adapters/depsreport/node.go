package depsreport

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ripple/internal/core/ports"
)

// NodeID is the unique identifier for the snapshot source Graft node.
const NodeID graft.ID = "adapter.deps_report"

func init() {
	graft.Register(graft.Node[ports.SnapshotSource]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.SnapshotSource, error) {
			return NewLoader()
		},
	})
}
