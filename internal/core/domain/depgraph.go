// Package domain contains the core domain model for the incremental
// recompilation graph: dependency keys, graph nodes, the node store, and the
// integration and cascade-marking logic that decides which files a change
// reaches.
package domain

import "go.trai.ch/zerr"

// LoadResult is the outcome of integrating one file's dependency snapshot.
type LoadResult uint8

const (
	// UpToDate means the snapshot matched the graph; nothing downstream
	// needs to be recompiled because of this file.
	UpToDate LoadResult = iota
	// AffectsDownstream means at least one key changed; consumers of this
	// file must be re-examined.
	AffectsDownstream
	// HadError means the snapshot could not be produced at all. The caller
	// should treat the file's dependency state as unknown.
	HadError
)

// String returns a human-readable form of the result.
func (r LoadResult) String() string {
	switch r {
	case UpToDate:
		return "up to date"
	case AffectsDownstream:
		return "affects downstream"
	case HadError:
		return "had error"
	default:
		return "unknown"
	}
}

// DepGraph is the whole-program dependency graph. It merges per-file
// snapshots one at a time, tracks which definition every key's users are,
// and answers "which files does this change reach" queries.
//
// The graph lives for one build session and is mutated in place between
// incremental builds. It has no internal locking; callers integrating
// snapshots from concurrent compilations must serialize access.
type DepGraph struct {
	nodes *NodeStore

	// usesByDef maps a definition key to the set of keys using it. The set
	// is monotonic: entries are never retracted when a using file is
	// re-integrated without the edge. That can only cause conservative
	// over-marking, never under-marking.
	usesByDef map[Key]map[Key]struct{}

	// cascading holds the files whose interface some consumer observed.
	// Any future change to such a file must propagate to all consumers.
	// Membership is permanent for the build session.
	cascading map[InternedString]struct{}

	// externals holds the names of external dependencies referenced by the
	// graph, each exactly once.
	externals map[string]struct{}
}

// NewDepGraph creates an empty whole-program graph.
func NewDepGraph() *DepGraph {
	return &DepGraph{
		nodes:     NewNodeStore(),
		usesByDef: make(map[Key]map[Key]struct{}),
		cascading: make(map[InternedString]struct{}),
		externals: make(map[string]struct{}),
	}
}

// Integrate merges one file's snapshot into the graph, detecting additions,
// removals, relocations, and fingerprint changes. A non-nil error means the
// snapshot violated the integration contract; the graph may then be
// inconsistent and the build session should be abandoned.
func (g *DepGraph) Integrate(s *Snapshot) (LoadResult, error) {
	file := s.File

	// Nodes previously owned by this file that the snapshot does not match
	// again have disappeared from the source.
	disappeared := make(map[Key]*Node)
	for n := range g.nodes.NodesInFile(file) {
		disappeared[n.key] = n
	}

	changedKeys := make(map[Key]struct{})
	for i := range s.Nodes {
		n := &s.Nodes[i]
		g.recordUses(n)

		inPlace := g.nodes.Find(file, n.Key)
		if inPlace != nil {
			delete(disappeared, n.Key)
		}

		changed, err := g.integrateNode(n, file, inPlace)
		if err != nil {
			return HadError, err
		}
		if changed {
			changedKeys[n.Key] = struct{}{}
		}

		if n.Key.Kind == KindExternalDepend {
			g.externals[n.Key.Name.String()] = struct{}{}
		}
	}

	for key, n := range disappeared {
		changedKeys[key] = struct{}{}
		g.nodes.Erase(n)
	}

	if len(changedKeys) == 0 {
		return UpToDate, nil
	}
	return AffectsDownstream, nil
}

// integrateNode merges a single snapshot node and reports whether it changed
// anything a downstream file could observe.
func (g *DepGraph) integrateNode(n *SnapshotNode, file InternedString, inPlace *Node) (bool, error) {
	var expat *Node
	if inPlace == nil {
		expat = g.nodes.Find(InternedString{}, n.Key)
	}

	if n.OwnsFile() {
		return g.integrateDeclNode(n, file, inPlace, expat), nil
	}

	dupsExistInOtherFiles := inPlace == nil && expat == nil && g.nodes.CountForKey(n.Key) > 0
	return g.integrateUseOnlyNode(n, inPlace, expat, dupsExistInOtherFiles)
}

// integrateDeclNode handles a snapshot node that is a genuine declaration in
// the integrated file.
func (g *DepGraph) integrateDeclNode(n *SnapshotNode, file InternedString, inPlace, expat *Node) bool {
	if inPlace != nil {
		return inPlace.updateFingerprint(n.Fingerprint)
	}
	if expat != nil {
		// Some other file depended on this key without knowing where it
		// was defined; the definition has now arrived.
		g.nodes.Relocate(expat, file)
		expat.updateFingerprint(n.Fingerprint)
		return true
	}
	g.nodes.Insert(newNode(n.Key, n.Fingerprint, file))
	return true
}

// integrateUseOnlyNode handles a snapshot node that records a use of a key
// not defined in the integrated file.
func (g *DepGraph) integrateUseOnlyNode(n *SnapshotNode, inPlace, expat *Node, dupsExistInOtherFiles bool) (bool, error) {
	if dupsExistInOtherFiles || expat != nil {
		// The key is already represented elsewhere; nothing to do. Such a
		// record has no definition here, so a fingerprint is a contract
		// violation by the snapshot producer.
		if n.Fingerprint != "" {
			return false, zerr.With(ErrExpatFingerprint, "key", n.Key.String())
		}
		return false, nil
	}
	if inPlace != nil {
		// The key was defined in this very file before but no longer is;
		// demote the node to an expat. Only a fingerprint difference makes
		// this observable downstream.
		changed := inPlace.updateFingerprint(n.Fingerprint)
		g.nodes.Relocate(inPlace, InternedString{})
		return changed, nil
	}
	g.nodes.Insert(newNode(n.Key, n.Fingerprint, InternedString{}))
	return true, nil
}

// recordUses unions the snapshot node's use edges into the reverse-use
// index, skipping self-loops. Stale entries are deliberately never removed.
func (g *DepGraph) recordUses(n *SnapshotNode) {
	for _, used := range n.Uses {
		if used == n.Key {
			continue
		}
		users := g.usesByDef[used]
		if users == nil {
			users = make(map[Key]struct{})
			g.usesByDef[used] = users
		}
		users[n.Key] = struct{}{}
	}
}
