// Package config provides the configuration loader for ripple.
package config

import (
	"os"
	"sort"

	"go.trai.ch/ripple/internal/core/domain"
	"go.trai.ch/ripple/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct{}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load reads a configuration file from the given path and returns the
// compile tasks it declares, sorted by name for deterministic scheduling.
func (l *Loader) Load(path string) ([]*domain.Task, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is provided by user
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read config file")
	}

	var file ripplefile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.Wrap(err, "failed to parse config file")
	}

	// Each task must map one-to-one to a dependency report: the report path
	// identifies the task's file inside the graph.
	reportOwners := make(map[string]string)

	names := make([]string, 0, len(file.Tasks))
	for name := range file.Tasks {
		names = append(names, name)
	}
	sort.Strings(names)

	tasks := make([]*domain.Task, 0, len(names))
	for _, name := range names {
		dto := file.Tasks[name]

		if len(dto.Cmd) == 0 {
			return nil, zerr.With(zerr.New("task has no command"), "task_name", name)
		}
		if dto.DepsReport == "" {
			return nil, zerr.With(zerr.New("task has no depsReport"), "task_name", name)
		}
		if owner, taken := reportOwners[dto.DepsReport]; taken {
			err := zerr.With(zerr.New("depsReport shared between tasks"), "report", dto.DepsReport)
			err = zerr.With(err, "task_name", name)
			return nil, zerr.With(err, "other_task", owner)
		}
		reportOwners[dto.DepsReport] = name

		tasks = append(tasks, &domain.Task{
			Name:        domain.NewInternedString(name),
			Command:     dto.Cmd,
			WorkingDir:  domain.NewInternedString(dto.WorkingDir),
			Environment: dto.Environment,
			DepsReport:  domain.NewInternedString(dto.DepsReport),
		})
	}

	return tasks, nil
}
