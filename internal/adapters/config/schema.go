package config

// ripplefile represents the structure of the ripple.yaml configuration file.
type ripplefile struct {
	Version string             `yaml:"version"`
	Tasks   map[string]taskDTO `yaml:"tasks"`
}

// taskDTO represents a compile task definition in the configuration.
type taskDTO struct {
	Cmd         []string          `yaml:"cmd"`
	WorkingDir  string            `yaml:"workingDir"`
	Environment map[string]string `yaml:"environment"`
	DepsReport  string            `yaml:"depsReport"`
}
