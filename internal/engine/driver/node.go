package driver

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/ripple/internal/adapters/cas"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ripple/internal/adapters/depsreport" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ripple/internal/adapters/logger"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ripple/internal/adapters/shell"      //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ripple/internal/adapters/telemetry"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ripple/internal/core/ports"
)

// NodeID is the unique identifier for the driver Graft node.
const NodeID graft.ID = "engine.driver"

func init() {
	graft.Register(graft.Node[*Driver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			depsreport.NodeID,
			shell.NodeID,
			cas.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*Driver, error) {
			source, err := graft.Dep[ports.SnapshotSource](ctx)
			if err != nil {
				return nil, err
			}

			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}

			store, err := graft.Dep[ports.BuildInfoStore](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			d := NewDriver(source, executor, store, log, tracer)
			if os.Getenv("RIPPLE_VERIFY") != "" {
				d.EnableVerification()
			}
			if dir := os.Getenv("RIPPLE_DOT_DIR"); dir != "" {
				d.EnableDotExport(dir)
			}
			return d, nil
		},
	})
}
