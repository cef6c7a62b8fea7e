// Package app implements the application layer for ripple.
package app

import (
	"context"
	"io"
	"runtime"

	"go.trai.ch/ripple/internal/core/domain"
	"go.trai.ch/ripple/internal/core/ports"
	"go.trai.ch/ripple/internal/engine/driver"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	driver       *driver.Driver

	configPath string
}

// New creates a new App instance.
func New(loader ports.ConfigLoader, drv *driver.Driver) *App {
	return &App{
		configLoader: loader,
		driver:       drv,
		configPath:   "ripple.yaml",
	}
}

// SetConfigPath overrides the configuration file location.
func (a *App) SetConfigPath(path string) {
	a.configPath = path
}

// Run compiles the named target tasks together with every task their
// changes reach. An empty target list selects all tasks.
func (a *App) Run(ctx context.Context, targetNames []string) error {
	tasks, err := a.loadTasks()
	if err != nil {
		return err
	}

	targets, err := selectTargets(tasks, targetNames)
	if err != nil {
		return err
	}

	return a.driver.Run(ctx, targets, runtime.NumCPU())
}

// Graph integrates every task's dependency report without compiling
// anything and renders the resulting whole-program graph in Graphviz format.
func (a *App) Graph(ctx context.Context, out io.Writer) error {
	if err := a.loadReports(ctx); err != nil {
		return err
	}
	return a.driver.ExportDot(out)
}

// Externals integrates every task's dependency report and returns the
// external dependency names the graph references.
func (a *App) Externals(ctx context.Context) ([]string, error) {
	if err := a.loadReports(ctx); err != nil {
		return nil, err
	}
	return a.driver.ExternalDependencyNames(), nil
}

func (a *App) loadTasks() ([]*domain.Task, error) {
	tasks, err := a.configLoader.Load(a.configPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	for _, task := range tasks {
		if err := a.driver.Register(task); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

func (a *App) loadReports(ctx context.Context) error {
	tasks, err := a.loadTasks()
	if err != nil {
		return err
	}
	for _, task := range tasks {
		if _, err := a.driver.LoadFromPath(ctx, task); err != nil {
			return err
		}
	}
	return nil
}

func selectTargets(tasks []*domain.Task, names []string) ([]*domain.Task, error) {
	if len(names) == 0 {
		return tasks, nil
	}

	byName := make(map[string]*domain.Task, len(tasks))
	for _, task := range tasks {
		byName[task.Name.String()] = task
	}

	targets := make([]*domain.Task, 0, len(names))
	for _, name := range names {
		task, ok := byName[name]
		if !ok {
			return nil, zerr.With(domain.ErrTaskNotFound, "task", name)
		}
		targets = append(targets, task)
	}
	return targets, nil
}
