package domain

// Node is a vertex of the whole-program graph: one declared entity, or a
// synthetic per-file anchor or external reference. Nodes are owned
// exclusively by the NodeStore and live for the whole build session;
// traversals key their visited sets on node identity, not value.
type Node struct {
	key         Key
	fingerprint string

	// owningFile is the report path of the defining file, or empty while
	// the defining file is not yet known (an "expat" node).
	owningFile InternedString
}

func newNode(key Key, fingerprint string, owningFile InternedString) *Node {
	return &Node{key: key, fingerprint: fingerprint, owningFile: owningFile}
}

// Key returns the node's dependency key.
func (n *Node) Key() Key { return n.key }

// Fingerprint returns the content signature of the entity's definition,
// empty if none was recorded.
func (n *Node) Fingerprint() string { return n.fingerprint }

// OwningFile returns the report path of the defining file, empty for expats.
func (n *Node) OwningFile() InternedString { return n.owningFile }

// IsExpat reports whether the defining file is not yet known.
func (n *Node) IsExpat() bool { return n.owningFile.String() == "" }

// updateFingerprint overwrites the fingerprint and reports whether it
// differed from before.
func (n *Node) updateFingerprint(fingerprint string) bool {
	changed := n.fingerprint != fingerprint
	n.fingerprint = fingerprint
	return changed
}

// String renders the node for logs and dot output.
func (n *Node) String() string {
	file := n.owningFile.String()
	if file == "" {
		file = "<expat>"
	}
	return n.key.String() + " in " + file
}
