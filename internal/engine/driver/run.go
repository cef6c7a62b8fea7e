package driver

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.trai.ch/ripple/internal/core/domain"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// taskResult is the outcome of one compile attempt inside a wave.
type taskResult struct {
	task    *domain.Task
	load    domain.LoadResult
	execErr error
	fatal   error
}

// Run compiles the target tasks and every task their changes reach, wave by
// wave, with at most parallelism commands in flight. Targets in the first
// wave whose report bytes match the last recorded build are skipped; tasks
// scheduled by a dependency's change always run. A failed compile is
// reported but its dependents are not scheduled.
func (d *Driver) Run(ctx context.Context, targets []*domain.Task, parallelism int) error {
	if parallelism < 1 {
		parallelism = 1
	}
	for _, task := range targets {
		if err := d.Register(task); err != nil {
			return err
		}
	}

	// Prior-session reports are integrated up front so cascade queries can
	// see edges between tasks that are not themselves targets.
	for _, task := range d.registeredTasks() {
		if _, err := d.LoadFromPath(ctx, task); err != nil {
			return err
		}
	}

	executed := make(map[*domain.Task]struct{})
	wave := dedupeTasks(targets)
	force := false

	var errs error
	for len(wave) > 0 {
		d.tracer.EmitPlan(ctx, taskNames(wave))
		for _, task := range wave {
			executed[task] = struct{}{}
		}

		results := make([]taskResult, len(wave))
		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(parallelism)
		for i, task := range wave {
			eg.Go(func() error {
				results[i] = d.runTask(egCtx, task, force)
				return nil
			})
		}
		_ = eg.Wait()

		var next []*domain.Task
		seen := make(map[*domain.Task]struct{})
		for _, res := range results {
			if res.fatal != nil {
				return res.fatal
			}
			if res.execErr != nil {
				errs = errors.Join(errs, zerr.With(
					zerr.Wrap(res.execErr, "task execution failed"),
					"task", res.task.Name.String()))
				continue
			}
			if res.load == domain.UpToDate {
				continue
			}
			for _, dep := range d.MarkTransitive(res.task) {
				if _, done := executed[dep]; done {
					continue
				}
				if _, queued := seen[dep]; queued {
					continue
				}
				seen[dep] = struct{}{}
				next = append(next, dep)
			}
		}

		sort.Slice(next, func(i, j int) bool {
			return next[i].Name.String() < next[j].Name.String()
		})
		wave = next
		force = true
	}

	if errs != nil {
		return errors.Join(domain.ErrBuildExecutionFailed, errs)
	}
	return nil
}

// runTask compiles one task and integrates the report it produced. When
// force is false and nothing marked the task, a report whose hash matches
// the last recorded build skips the compile entirely.
func (d *Driver) runTask(ctx context.Context, task *domain.Task, force bool) taskResult {
	name := task.Name.String()
	ctx, span := d.tracer.Start(ctx, "compile "+name)
	defer span.End()
	span.SetAttribute("report", task.DepsReport.String())

	if !force && !d.IsMarked(task) && d.upToDate(task) {
		d.log.Info(fmt.Sprintf("%s: report unchanged since last build, skipping", name))
		span.SetAttribute("cached", true)
		load, fatal := d.LoadFromPath(ctx, task)
		if fatal == nil && load == domain.AffectsDownstream {
			// The graph had not seen this report yet, but its bytes match
			// the last recorded build. Downstream tasks are not rescheduled.
			load = domain.UpToDate
		}
		return taskResult{task: task, load: load, fatal: fatal}
	}

	if err := d.executor.Execute(ctx, task); err != nil {
		span.RecordError(err)
		d.mu.Lock()
		d.graph.MarkIntransitive(task.DepsReport)
		d.mu.Unlock()
		return taskResult{task: task, load: domain.HadError, execErr: err}
	}

	load, fatal := d.LoadFromPath(ctx, task)
	if fatal != nil {
		return taskResult{task: task, load: load, fatal: fatal}
	}
	span.SetAttribute("result", load.String())

	if load != domain.HadError {
		d.recordBuild(task, load)
	}
	return taskResult{task: task, load: load}
}

// upToDate reports whether the task's current report bytes match the hash
// recorded after its last successful build.
func (d *Driver) upToDate(task *domain.Task) bool {
	_, hash, err := d.source.Load(task.DepsReport.String())
	if err != nil {
		return false
	}
	info, err := d.store.Get(task.Name.String())
	if err != nil || info == nil {
		return false
	}
	return info.ReportHash == formatHash(hash)
}

// recordBuild persists the integrated report hash so future sessions can
// skip an unchanged task.
func (d *Driver) recordBuild(task *domain.Task, load domain.LoadResult) {
	d.mu.Lock()
	hash, ok := d.reportHashes[task.DepsReport]
	d.mu.Unlock()
	if !ok {
		return
	}

	info := domain.BuildInfo{
		TaskName:   task.Name.String(),
		ReportHash: formatHash(hash),
		Result:     load.String(),
		Timestamp:  time.Now(),
	}
	if err := d.store.Put(info); err != nil {
		d.log.Warn(fmt.Sprintf("failed to record build info for %s: %v", task.Name.String(), err))
	}
}

func formatHash(hash uint64) string {
	return strconv.FormatUint(hash, 16)
}

func dedupeTasks(tasks []*domain.Task) []*domain.Task {
	seen := make(map[*domain.Task]struct{}, len(tasks))
	out := make([]*domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if _, ok := seen[task]; ok {
			continue
		}
		seen[task] = struct{}{}
		out = append(out, task)
	}
	return out
}

func taskNames(tasks []*domain.Task) []string {
	names := make([]string, 0, len(tasks))
	for _, task := range tasks {
		names = append(names, task.Name.String())
	}
	return names
}
