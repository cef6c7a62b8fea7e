package depsreport

// reportDoc is the on-disk structure of a dependency report. One report is
// written per compiled file by the compiler frontend; the path of the
// report doubles as the file's identifier inside the graph.
type reportDoc struct {
	Version int       `yaml:"version"`
	Nodes   []nodeDTO `yaml:"nodes"`
}

// nodeDTO is one declared or used entity in a report.
type nodeDTO struct {
	Key keyDTO `yaml:"key"`

	// Fingerprint is the content signature of the declaration; empty for
	// use-only records.
	Fingerprint string `yaml:"fingerprint,omitempty"`

	// Defines marks the entity as declared in this file. Use-only records
	// leave it false.
	Defines bool `yaml:"defines,omitempty"`

	Uses []keyDTO `yaml:"uses,omitempty"`
}

// keyDTO is the report spelling of a dependency key.
type keyDTO struct {
	Kind    string `yaml:"kind"`
	Context string `yaml:"context,omitempty"`
	Name    string `yaml:"name"`
	Aspect  string `yaml:"aspect"`
}
