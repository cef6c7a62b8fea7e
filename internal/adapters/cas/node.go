package cas

import (
	"context"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/ripple/internal/core/ports"
)

const NodeID graft.ID = "adapter.build_info_store"

// defaultStatePath is where build info lives relative to the working
// directory when no other location is configured.
const defaultStatePath = ".ripple/state.json"

func init() {
	graft.Register(graft.Node[ports.BuildInfoStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.BuildInfoStore, error) {
			store, err := NewStore(filepath.Clean(defaultStatePath))
			if err != nil {
				return nil, err
			}
			return store, nil
		},
	})
}
