package domain

import "iter"

// Nodes iterates every live node of the graph. Intended for debug exports
// and consistency checks; order is unspecified.
func (g *DepGraph) Nodes() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		stop := false
		g.nodes.ForEachEntry(func(_ InternedString, _ Key, n *Node) {
			if stop {
				return
			}
			if !yield(n) {
				stop = true
			}
		})
	}
}

// Arcs iterates every definition-to-use arc currently expressible against
// the graph: for each recorded (def, use) key pair, every concrete pairing
// of nodes carrying those keys. Intended for debug exports; order is
// unspecified.
func (g *DepGraph) Arcs() iter.Seq2[*Node, *Node] {
	return func(yield func(*Node, *Node) bool) {
		for defKey, useKeys := range g.usesByDef {
			for defNode := range g.nodes.NodesForKey(defKey) {
				for useKey := range useKeys {
					for useNode := range g.nodes.NodesForKey(useKey) {
						if !yield(defNode, useNode) {
							return
						}
					}
				}
			}
		}
	}
}
