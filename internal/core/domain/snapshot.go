package domain

// SnapshotNode is one entry of a per-file dependency snapshot. It is an
// input-only value: the integrator copies what it needs and the snapshot is
// discarded afterwards.
type SnapshotNode struct {
	Key Key

	// Fingerprint is a content signature of the entity's definition. Empty
	// when the producer did not compute one. Use-only nodes must not carry
	// a fingerprint.
	Fingerprint string

	// OwningFile is the report path of the file defining the entity. Empty
	// when the node merely records a use of a key not defined locally.
	// When set it must equal the snapshot's own file.
	OwningFile InternedString

	// Uses lists the keys this entity's definition depends on.
	Uses []Key
}

// OwnsFile reports whether the node is a genuine declaration rather than a
// use-only record.
func (n *SnapshotNode) OwnsFile() bool {
	return n.OwningFile.String() != ""
}

// Snapshot is the dependency information for one compiled file, produced
// externally per compilation and fed to the integrator exactly once.
type Snapshot struct {
	// File is the stable identifier of the compiled file, canonically the
	// path of its dependency report.
	File InternedString

	Nodes []SnapshotNode
}
