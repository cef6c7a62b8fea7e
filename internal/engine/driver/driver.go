// Package driver implements the recompilation driver. It merges per-task
// dependency reports into the whole-program graph and schedules the compile
// waves a change propagates to.
package driver

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.trai.ch/ripple/internal/adapters/dot"
	"go.trai.ch/ripple/internal/core/domain"
	"go.trai.ch/ripple/internal/core/ports"
	"go.trai.ch/zerr"
)

// Driver owns the dependency graph for one build session. Compile commands
// run concurrently but every graph access is serialized behind one mutex.
type Driver struct {
	source   ports.SnapshotSource
	executor ports.Executor
	store    ports.BuildInfoStore
	log      ports.Logger
	tracer   ports.Tracer

	mu            sync.Mutex
	graph         *domain.DepGraph
	tasksByReport map[domain.InternedString]*domain.Task
	reportHashes  map[domain.InternedString]uint64
	dotSeq        map[string]int

	verify bool
	dotDir string
}

// NewDriver creates a driver over an empty graph.
func NewDriver(
	source ports.SnapshotSource,
	executor ports.Executor,
	store ports.BuildInfoStore,
	log ports.Logger,
	tracer ports.Tracer,
) *Driver {
	return &Driver{
		source:        source,
		executor:      executor,
		store:         store,
		log:           log,
		tracer:        tracer,
		graph:         domain.NewDepGraph(),
		tasksByReport: make(map[domain.InternedString]*domain.Task),
		reportHashes:  make(map[domain.InternedString]uint64),
		dotSeq:        make(map[string]int),
	}
}

// EnableVerification runs the graph's internal consistency check after every
// integration. Meant for debugging; cost grows with graph size.
func (d *Driver) EnableVerification() { d.verify = true }

// EnableDotExport writes a Graphviz rendering of the graph into dir after
// every integration, numbered per task.
func (d *Driver) EnableDotExport(dir string) { d.dotDir = dir }

// Register records the task before any snapshot exists, so cascade queries
// can map its report path back to it.
func (d *Driver) Register(task *domain.Task) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.tasksByReport[task.DepsReport]; ok && prev != task {
		return zerr.With(zerr.With(
			zerr.New("deps report already registered to another task"),
			"report", task.DepsReport.String()),
			"task", prev.Name.String())
	}
	d.tasksByReport[task.DepsReport] = task
	return nil
}

// LoadFromPath reads the task's dependency report and integrates it into the
// graph. A report whose bytes match the last integration is skipped. An
// unreadable or malformed report yields HadError and marks the file
// cascading, so every consumer is conservatively treated as affected. A
// non-nil error means the snapshot violated the integration contract and the
// session should be abandoned.
func (d *Driver) LoadFromPath(_ context.Context, task *domain.Task) (domain.LoadResult, error) {
	snapshot, hash, err := d.source.Load(task.DepsReport.String())
	if err != nil {
		d.log.Warn(fmt.Sprintf(
			"dependency report for %s unavailable, treating downstream state as unknown: %v",
			task.Name.String(), err))
		d.mu.Lock()
		d.graph.MarkIntransitive(task.DepsReport)
		d.mu.Unlock()
		return domain.HadError, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if prev, ok := d.reportHashes[task.DepsReport]; ok && prev == hash {
		return domain.UpToDate, nil
	}

	result, err := d.graph.Integrate(snapshot)
	if err != nil {
		return domain.HadError, zerr.With(err, "task", task.Name.String())
	}
	d.reportHashes[task.DepsReport] = hash

	if d.verify {
		if err := d.graph.Verify(); err != nil {
			return domain.HadError, zerr.With(err, "task", task.Name.String())
		}
	}
	if d.dotDir != "" {
		d.exportDot(task)
	}
	return result, nil
}

// IsMarked reports whether the task's report file is flagged as cascading.
func (d *Driver) IsMarked(task *domain.Task) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.graph.IsMarked(task.DepsReport)
}

// MarkTransitive returns the tasks owning every file reached from the
// task's report file, the task itself included.
func (d *Driver) MarkTransitive(task *domain.Task) []*domain.Task {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tasksForFiles(d.graph.MarkTransitive(task.DepsReport))
}

// MarkExternal returns the tasks affected by a change to the named external
// dependency.
func (d *Driver) MarkExternal(name string) []*domain.Task {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tasksForFiles(d.graph.MarkExternal(name))
}

// ExportDot renders the current graph in Graphviz format.
func (d *Driver) ExportDot(out io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return dot.Write(out, d.graph)
}

// ExternalDependencyNames returns the external dependencies the graph has
// seen so far, sorted, each exactly once.
func (d *Driver) ExternalDependencyNames() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.graph.ExternalDependencyNames()
}

// registeredTasks returns every registered task, sorted by name.
func (d *Driver) registeredTasks() []*domain.Task {
	d.mu.Lock()
	defer d.mu.Unlock()

	tasks := make([]*domain.Task, 0, len(d.tasksByReport))
	for _, task := range d.tasksByReport {
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].Name.String() < tasks[j].Name.String()
	})
	return tasks
}

// tasksForFiles maps report files back to their registered tasks. Callers
// must hold d.mu.
func (d *Driver) tasksForFiles(files []domain.InternedString) []*domain.Task {
	tasks := make([]*domain.Task, 0, len(files))
	for _, file := range files {
		task, ok := d.tasksByReport[file]
		if !ok {
			d.log.Warn(fmt.Sprintf("no task registered for report %s", file.String()))
			continue
		}
		tasks = append(tasks, task)
	}
	return tasks
}

// exportDot writes the current graph next to the previous exports for the
// task. Callers must hold d.mu.
func (d *Driver) exportDot(task *domain.Task) {
	name := task.Name.String()
	seq := d.dotSeq[name]
	d.dotSeq[name] = seq + 1

	path := filepath.Join(d.dotDir, fmt.Sprintf("%s.%d.dot", name, seq))
	//nolint:gosec // Path is derived from the configured export directory
	f, err := os.Create(path)
	if err != nil {
		d.log.Warn(fmt.Sprintf("failed to create dot export %s: %v", path, err))
		return
	}
	defer func() { _ = f.Close() }()

	if err := dot.Write(f, d.graph); err != nil {
		d.log.Warn(fmt.Sprintf("failed to write dot export %s: %v", path, err))
	}
}
