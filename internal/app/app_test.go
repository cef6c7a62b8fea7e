package app_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ripple/internal/adapters/telemetry"
	"go.trai.ch/ripple/internal/app"
	"go.trai.ch/ripple/internal/core/domain"
	"go.trai.ch/ripple/internal/core/ports/mocks"
	"go.trai.ch/ripple/internal/engine/driver"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	loader   *mocks.MockConfigLoader
	source   *mocks.MockSnapshotSource
	executor *mocks.MockExecutor
	store    *mocks.MockBuildInfoStore
	app      *app.App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	f := &fixture{
		loader:   mocks.NewMockConfigLoader(ctrl),
		source:   mocks.NewMockSnapshotSource(ctrl),
		executor: mocks.NewMockExecutor(ctrl),
		store:    mocks.NewMockBuildInfoStore(ctrl),
	}
	drv := driver.NewDriver(f.source, f.executor, f.store, log, telemetry.NewNoOpTracer())
	f.app = app.New(f.loader, drv)
	return f
}

func buildTask() *domain.Task {
	return &domain.Task{
		Name:       domain.NewInternedString("build"),
		Command:    []string{"cc", "-c", "build.c"},
		DepsReport: domain.NewInternedString("build.deps.yaml"),
	}
}

func buildSnapshot() *domain.Snapshot {
	file := domain.NewInternedString("build.deps.yaml")
	return &domain.Snapshot{
		File: file,
		Nodes: []domain.SnapshotNode{
			{
				Key:         domain.NewKey(domain.KindTopLevel, "", "main", domain.AspectInterface),
				Fingerprint: "fp1",
				OwningFile:  file,
				Uses:        []domain.Key{domain.ExternalKey("vendor/libc")},
			},
			{Key: domain.ExternalKey("vendor/libc")},
		},
	}
}

func TestApp_Run(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load("ripple.yaml").Return([]*domain.Task{buildTask()}, nil)
	f.source.EXPECT().Load("build.deps.yaml").Return(buildSnapshot(), uint64(1), nil).AnyTimes()
	f.store.EXPECT().Get(gomock.Any()).Return(nil, nil).AnyTimes()
	f.store.EXPECT().Put(gomock.Any()).Return(nil).AnyTimes()
	f.executor.EXPECT().Execute(gomock.Any(), gomock.Any()).Return(nil)

	err := f.app.Run(context.Background(), []string{"build"})
	require.NoError(t, err)
}

func TestApp_Run_UnknownTarget(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load("ripple.yaml").Return([]*domain.Task{buildTask()}, nil)

	err := f.app.Run(context.Background(), []string{"deploy"})
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}

func TestApp_Run_ConfigError(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load("ripple.yaml").Return(nil, assert.AnError)

	err := f.app.Run(context.Background(), nil)
	assert.Error(t, err)
}

func TestApp_SetConfigPath(t *testing.T) {
	f := newFixture(t)
	f.app.SetConfigPath("custom.yaml")

	f.loader.EXPECT().Load("custom.yaml").Return(nil, assert.AnError)
	assert.Error(t, f.app.Run(context.Background(), nil))
}

func TestApp_Graph(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load("ripple.yaml").Return([]*domain.Task{buildTask()}, nil)
	f.source.EXPECT().Load("build.deps.yaml").Return(buildSnapshot(), uint64(1), nil)

	var out strings.Builder
	require.NoError(t, f.app.Graph(context.Background(), &out))
	assert.Contains(t, out.String(), "digraph ripple")
	assert.Contains(t, out.String(), "main")
}

func TestApp_Externals(t *testing.T) {
	f := newFixture(t)

	f.loader.EXPECT().Load("ripple.yaml").Return([]*domain.Task{buildTask()}, nil)
	f.source.EXPECT().Load("build.deps.yaml").Return(buildSnapshot(), uint64(1), nil)

	names, err := f.app.Externals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"vendor/libc"}, names)
}
