package domain

import "go.trai.ch/zerr"

// Verify checks the data-model invariants: at most one node per (file, key)
// pair, no key represented both concretely and as an expat, agreement
// between every node's owning file and its index placement, and
// exactly-once tracking of external-dependency names.
//
// Violations are programming-contract errors, not recoverable runtime
// conditions. The driver runs Verify after each integration when debug
// verification is enabled; production builds may skip it for speed.
func (g *DepGraph) Verify() error {
	// Shadow the primary index while walking it, so duplicates and
	// misplacements surface regardless of which map copy is corrupt.
	shadow := make(map[Key]map[InternedString]*Node)

	var violation error
	g.nodes.ForEachEntry(func(file InternedString, key Key, n *Node) {
		if violation != nil {
			return
		}
		byFile := shadow[n.key]
		if byFile == nil {
			byFile = make(map[InternedString]*Node)
			shadow[n.key] = byFile
		}
		if _, dup := byFile[n.owningFile]; dup {
			violation = zerr.With(ErrDuplicateNode, "key", n.key.String())
			return
		}
		byFile[n.owningFile] = n

		if n.owningFile != file {
			violation = zerr.With(zerr.With(ErrMisplacedNode, "key", key.String()),
				"indexed_file", file.String())
			return
		}
		if n.key != key {
			violation = zerr.With(ErrMisplacedNode, "key", key.String())
			return
		}
		if n.key.Kind == KindExternalDepend {
			if _, tracked := g.externals[n.key.Name.String()]; !tracked {
				violation = zerr.With(ErrUntrackedExternal, "name", n.key.Name.String())
				return
			}
		}
	})
	if violation != nil {
		return violation
	}

	// A resolved key must not keep its expat around.
	for key, byFile := range shadow {
		if _, hasExpat := byFile[InternedString{}]; hasExpat && len(byFile) > 1 {
			return zerr.With(ErrConcreteAndExpat, "key", key.String())
		}
	}

	// The secondary index must agree with the primary one.
	var crossCount int
	for _, files := range g.nodes.byKey {
		crossCount += len(files)
	}
	for key, byFile := range shadow {
		for file, n := range byFile {
			if g.nodes.byKey[key][file] != n {
				return zerr.With(ErrMisplacedNode, "key", key.String())
			}
		}
	}
	if crossCount != g.nodes.Len() {
		return zerr.New("node store indices diverged")
	}
	return nil
}
