package driver_test

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ripple/internal/adapters/telemetry"
	"go.trai.ch/ripple/internal/core/domain"
	"go.trai.ch/ripple/internal/core/ports/mocks"
	"go.trai.ch/ripple/internal/engine/driver"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	source   *mocks.MockSnapshotSource
	executor *mocks.MockExecutor
	store    *mocks.MockBuildInfoStore
	driver   *driver.Driver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	f := &fixture{
		source:   mocks.NewMockSnapshotSource(ctrl),
		executor: mocks.NewMockExecutor(ctrl),
		store:    mocks.NewMockBuildInfoStore(ctrl),
	}
	f.driver = driver.NewDriver(f.source, f.executor, f.store, log, telemetry.NewNoOpTracer())
	return f
}

func task(name, report string) *domain.Task {
	return &domain.Task{
		Name:       domain.NewInternedString(name),
		Command:    []string{"cc", "-c", name + ".c"},
		DepsReport: domain.NewInternedString(report),
	}
}

// declSnapshot builds a snapshot for file declaring key with the given
// fingerprint, optionally recording uses.
func declSnapshot(file string, key domain.Key, fingerprint string, uses ...domain.Key) *domain.Snapshot {
	f := domain.NewInternedString(file)
	return &domain.Snapshot{
		File: f,
		Nodes: []domain.SnapshotNode{
			{Key: key, Fingerprint: fingerprint, OwningFile: f, Uses: uses},
		},
	}
}

func TestDriver_Register_DuplicateReport(t *testing.T) {
	f := newFixture(t)

	a := task("a", "shared.deps.yaml")
	b := task("b", "shared.deps.yaml")

	require.NoError(t, f.driver.Register(a))
	require.NoError(t, f.driver.Register(a), "re-registering the same task is fine")
	assert.Error(t, f.driver.Register(b))
}

func TestDriver_LoadFromPath_SkipsUnchangedReport(t *testing.T) {
	f := newFixture(t)

	a := task("a", "a.deps.yaml")
	key := domain.NewKey(domain.KindTopLevel, "", "f", domain.AspectInterface)
	snapshot := declSnapshot("a.deps.yaml", key, "fp1")

	f.source.EXPECT().Load("a.deps.yaml").Return(snapshot, uint64(11), nil).Times(2)

	first, err := f.driver.LoadFromPath(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, domain.AffectsDownstream, first)

	second, err := f.driver.LoadFromPath(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, domain.UpToDate, second)
}

func TestDriver_LoadFromPath_MissingReport(t *testing.T) {
	f := newFixture(t)

	a := task("a", "a.deps.yaml")
	f.source.EXPECT().Load("a.deps.yaml").Return(nil, uint64(0), os.ErrNotExist)

	result, err := f.driver.LoadFromPath(context.Background(), a)
	require.NoError(t, err)
	assert.Equal(t, domain.HadError, result)
	assert.True(t, f.driver.IsMarked(a), "unreadable report marks the file cascading")
}

func TestDriver_LoadFromPath_ContractViolation(t *testing.T) {
	f := newFixture(t)

	a := task("a", "a.deps.yaml")
	b := task("b", "b.deps.yaml")
	key := domain.NewKey(domain.KindTopLevel, "", "f", domain.AspectInterface)

	f.source.EXPECT().Load("a.deps.yaml").Return(declSnapshot("a.deps.yaml", key, "fp1"), uint64(1), nil)
	// A use-only record must not carry a fingerprint.
	bad := &domain.Snapshot{
		File:  domain.NewInternedString("b.deps.yaml"),
		Nodes: []domain.SnapshotNode{{Key: key, Fingerprint: "fp2"}},
	}
	f.source.EXPECT().Load("b.deps.yaml").Return(bad, uint64(2), nil)

	_, err := f.driver.LoadFromPath(context.Background(), a)
	require.NoError(t, err)

	result, err := f.driver.LoadFromPath(context.Background(), b)
	assert.Equal(t, domain.HadError, result)
	assert.ErrorIs(t, err, domain.ErrExpatFingerprint)
}

func TestDriver_Run_SchedulesDependentsInWaves(t *testing.T) {
	f := newFixture(t)

	a := task("a", "a.deps.yaml")
	b := task("b", "b.deps.yaml")
	require.NoError(t, f.driver.Register(b))

	defA := domain.NewKey(domain.KindNominalType, "", "Widget", domain.AspectInterface)
	defB := domain.NewKey(domain.KindTopLevel, "", "main", domain.AspectImplementation)

	// The report of a changes when its compile runs; b's stays put.
	gomock.InOrder(
		f.source.EXPECT().Load("a.deps.yaml").
			Return(declSnapshot("a.deps.yaml", defA, "fp1"), uint64(1), nil).Times(2),
		f.source.EXPECT().Load("a.deps.yaml").
			Return(declSnapshot("a.deps.yaml", defA, "fp1-changed"), uint64(3), nil),
	)
	f.source.EXPECT().Load("b.deps.yaml").
		Return(declSnapshot("b.deps.yaml", defB, "fp2", defA), uint64(2), nil).AnyTimes()

	f.store.EXPECT().Get(gomock.Any()).Return(nil, nil).AnyTimes()
	f.store.EXPECT().Put(gomock.Any()).Return(nil).AnyTimes()

	f.executor.EXPECT().Execute(gomock.Any(), a).Return(nil)
	f.executor.EXPECT().Execute(gomock.Any(), b).Return(nil)

	err := f.driver.Run(context.Background(), []*domain.Task{a}, 2)
	require.NoError(t, err)
}

func TestDriver_Run_FailedTaskDoesNotScheduleDependents(t *testing.T) {
	f := newFixture(t)

	a := task("a", "a.deps.yaml")
	b := task("b", "b.deps.yaml")
	require.NoError(t, f.driver.Register(b))

	f.source.EXPECT().Load("a.deps.yaml").Return(nil, uint64(0), os.ErrNotExist).AnyTimes()
	f.source.EXPECT().Load("b.deps.yaml").Return(nil, uint64(0), os.ErrNotExist).AnyTimes()
	f.store.EXPECT().Get(gomock.Any()).Return(nil, nil).AnyTimes()

	f.executor.EXPECT().Execute(gomock.Any(), a).Return(assert.AnError)
	// No Execute expectation for b: a failed compile stops the wave there.

	err := f.driver.Run(context.Background(), []*domain.Task{a}, 1)
	assert.ErrorIs(t, err, domain.ErrBuildExecutionFailed)
	assert.True(t, f.driver.IsMarked(a))
}

func TestDriver_Run_SkipsTaskWithUnchangedRecordedBuild(t *testing.T) {
	f := newFixture(t)

	a := task("a", "a.deps.yaml")
	key := domain.NewKey(domain.KindTopLevel, "", "f", domain.AspectInterface)
	hash := uint64(77)

	f.source.EXPECT().Load("a.deps.yaml").
		Return(declSnapshot("a.deps.yaml", key, "fp1"), hash, nil).AnyTimes()
	f.store.EXPECT().Get("a").
		Return(&domain.BuildInfo{TaskName: "a", ReportHash: strconv.FormatUint(hash, 16)}, nil)
	// No Execute expectation: the report is unchanged since the last build.

	err := f.driver.Run(context.Background(), []*domain.Task{a}, 1)
	require.NoError(t, err)
}

func TestDriver_MarkExternal(t *testing.T) {
	f := newFixture(t)

	a := task("a", "a.deps.yaml")
	require.NoError(t, f.driver.Register(a))

	external := domain.ExternalKey("vendor/libui")
	file := domain.NewInternedString("a.deps.yaml")
	snapshot := &domain.Snapshot{
		File: file,
		Nodes: []domain.SnapshotNode{
			{
				Key:         domain.NewKey(domain.KindTopLevel, "", "f", domain.AspectInterface),
				Fingerprint: "fp1",
				OwningFile:  file,
				Uses:        []domain.Key{external},
			},
			{Key: external},
		},
	}

	f.source.EXPECT().Load("a.deps.yaml").Return(snapshot, uint64(5), nil)

	_, err := f.driver.LoadFromPath(context.Background(), a)
	require.NoError(t, err)

	assert.Equal(t, []string{"vendor/libui"}, f.driver.ExternalDependencyNames())

	affected := f.driver.MarkExternal("vendor/libui")
	require.Len(t, affected, 1)
	assert.Same(t, a, affected[0])

	assert.Empty(t, f.driver.MarkExternal("vendor/unknown"))
}

func TestDriver_DotExport(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	f.driver.EnableDotExport(dir)

	a := task("a", "a.deps.yaml")
	key := domain.NewKey(domain.KindTopLevel, "", "f", domain.AspectInterface)
	f.source.EXPECT().Load("a.deps.yaml").Return(declSnapshot("a.deps.yaml", key, "fp1"), uint64(1), nil)

	_, err := f.driver.LoadFromPath(context.Background(), a)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "a.0.dot"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "digraph ripple")
}
