package domain

import (
	"slices"
	"sort"
)

// IsMarked reports whether the file is flagged as cascading: some consumer
// observed it through an interface-level edge, so any future change to it
// must be treated as affecting every consumer.
func (g *DepGraph) IsMarked(file InternedString) bool {
	_, ok := g.cascading[file]
	return ok
}

// MarkIntransitive unconditionally adds the file to the cascading set and
// reports whether it was newly added.
func (g *DepGraph) MarkIntransitive(file InternedString) bool {
	if _, ok := g.cascading[file]; ok {
		return false
	}
	g.cascading[file] = struct{}{}
	return true
}

// MarkTransitive walks the reverse-use index from every node owned by the
// file and returns the distinct files owning a reached node, sorted and
// including the seed. Files reached across an interface-level edge are
// added to the cascading set along the way; implementation-only edges still
// propagate reachability but do not themselves mark anything.
func (g *DepGraph) MarkTransitive(file InternedString) []InternedString {
	visited := make(map[*Node]struct{})
	for n := range g.nodes.NodesInFile(file) {
		g.cascadeWalk(visited, n)
	}

	seen := make(map[InternedString]struct{})
	var files []InternedString
	for n := range visited {
		if n.IsExpat() {
			continue
		}
		if _, ok := seen[n.owningFile]; ok {
			continue
		}
		seen[n.owningFile] = struct{}{}
		files = append(files, n.owningFile)
	}
	sortFiles(files)
	return files
}

// cascadeWalk runs the transitive-closure walk seeded at def, accumulating
// reached nodes into visited. An explicit worklist bounds stack depth on
// deep dependency chains; the visited set doubles as the cycle guard.
//
// The interface test gates marking, not traversal: a use reached through an
// interface-level key marks the using file as cascading, and the walk
// continues through every use either way.
func (g *DepGraph) cascadeWalk(visited map[*Node]struct{}, def *Node) {
	worklist := []*Node{def}
	for len(worklist) > 0 {
		n := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if _, ok := visited[n]; ok {
			continue
		}
		visited[n] = struct{}{}

		for useKey := range g.usesByDef[n.key] {
			for use := range g.nodes.NodesForKey(useKey) {
				if use.key.IsInterface() && !use.IsExpat() {
					g.cascading[use.owningFile] = struct{}{}
				}
				if _, ok := visited[use]; !ok {
					worklist = append(worklist, use)
				}
			}
		}
	}
}

// MarkExternal computes the files affected by a change to an
// externally-defined name. Every file with a concrete node whose key uses
// the external dependency is returned together with its transitive
// dependents, skipping files already marked as cascading.
func (g *DepGraph) MarkExternal(externalName string) []InternedString {
	key := ExternalKey(externalName)

	seen := make(map[InternedString]struct{})
	var uses []InternedString
	for useKey := range g.usesByDef[key] {
		for n := range g.nodes.NodesForKey(useKey) {
			if n.IsExpat() || g.IsMarked(n.owningFile) {
				continue
			}
			if _, ok := seen[n.owningFile]; !ok {
				seen[n.owningFile] = struct{}{}
				uses = append(uses, n.owningFile)
			}
			for _, f := range g.MarkTransitive(n.owningFile) {
				if _, ok := seen[f]; !ok {
					seen[f] = struct{}{}
					uses = append(uses, f)
				}
			}
		}
	}
	sortFiles(uses)
	return uses
}

// ExternalDependencyNames returns the currently tracked external
// dependencies, sorted, each exactly once. Drivers use the list to set up
// their own external-change watchers.
func (g *DepGraph) ExternalDependencyNames() []string {
	names := make([]string, 0, len(g.externals))
	for name := range g.externals {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func sortFiles(files []InternedString) {
	sort.Slice(files, func(i, j int) bool {
		return files[i].String() < files[j].String()
	})
}
