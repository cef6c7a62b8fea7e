package telemetry

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	rippleprogrock "go.trai.ch/ripple/internal/adapters/telemetry/progrock"
	"go.trai.ch/ripple/internal/core/ports"
)

// TracerNodeID is the unique identifier for the telemetry adapter Graft node.
const TracerNodeID graft.ID = "adapter.telemetry"

func init() {
	graft.Register(graft.Node[ports.Tracer]{
		ID:        TracerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Tracer, error) {
			if os.Getenv("RIPPLE_PROGRESS") != "" {
				return rippleprogrock.New(), nil
			}
			return NewNoOpTracer(), nil
		},
	})
}
