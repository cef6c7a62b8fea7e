package domain

// Task is one compile invocation managed by the driver. Each task maps
// one-to-one to the dependency report its compilation produces; the report
// path doubles as the file's stable identifier inside the graph.
type Task struct {
	Name        InternedString
	Command     []string
	WorkingDir  InternedString
	Environment map[string]string

	// DepsReport is the path of the dependency report written by the
	// compile command.
	DepsReport InternedString
}
