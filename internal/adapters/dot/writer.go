// Package dot renders the dependency graph in Graphviz format for debugging.
package dot

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"go.trai.ch/ripple/internal/core/domain"
	"go.trai.ch/zerr"
)

// Write renders every node and definition-to-use arc of the graph. Output is
// sorted so successive exports of the same graph compare equal.
func Write(out io.Writer, graph *domain.DepGraph) error {
	var nodes []string
	for n := range graph.Nodes() {
		attrs := ""
		if graph.IsMarked(n.OwningFile()) {
			attrs = ", color=red"
		}
		nodes = append(nodes, fmt.Sprintf("  %s [label=%s%s];", quote(n.String()), quote(label(n)), attrs))
	}
	sort.Strings(nodes)

	var arcs []string
	for def, use := range graph.Arcs() {
		arcs = append(arcs, fmt.Sprintf("  %s -> %s;", quote(def.String()), quote(use.String())))
	}
	sort.Strings(arcs)

	var b strings.Builder
	b.WriteString("digraph ripple {\n")
	for _, line := range nodes {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for _, line := range arcs {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString("}\n")

	if _, err := io.WriteString(out, b.String()); err != nil {
		return zerr.Wrap(err, "failed to write dot export")
	}
	return nil
}

func label(n *domain.Node) string {
	if fp := n.Fingerprint(); fp != "" {
		return n.Key().String() + "\\n" + fp
	}
	return n.Key().String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
