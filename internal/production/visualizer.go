package production

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/comalice/statenode/internal/core"
	"github.com/comalice/statenode/internal/primitives"
)

// DefaultVisualizer renders a machine's node tree as Graphviz DOT.
type DefaultVisualizer struct{}

// ExportDOT generates Graphviz DOT source for the machine. Nodes on an active
// path of current are highlighted.
func (v *DefaultVisualizer) ExportDOT(m *core.Machine, current primitives.StateValue) string {
	var buf bytes.Buffer
	buf.WriteString(`digraph Statechart {
  rankdir=LR;
  compound=true;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
`)

	active := activeNodes(m, current)
	renderNode(&buf, m.Root(), active, 1)

	for _, edge := range collectEdges(m) {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", edge.From, edge.To, edge.Label)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// activeNodes marks every node on a path of current.
func activeNodes(m *core.Machine, current primitives.StateValue) map[string]bool {
	active := make(map[string]bool)
	for _, path := range primitives.ToStatePaths(current) {
		cursor := m.Root()
		active[cursor.ID] = true
		for _, key := range path {
			next, ok := cursor.Child(key)
			if !ok {
				break
			}
			cursor = next
			active[cursor.ID] = true
		}
	}
	return active
}

// Edge represents a transition edge.
type Edge struct {
	From  string
	To    string
	Label string
}

// collectEdges lists one edge per transition target, in document order.
// Targetless transitions become self-loops.
func collectEdges(m *core.Machine) []Edge {
	var edges []Edge
	for _, n := range m.Nodes() {
		for _, t := range n.Transitions() {
			label := eventLabel(t)
			if t.Targetless() {
				edges = append(edges, Edge{From: n.ID, To: n.ID, Label: label})
				continue
			}
			for _, target := range t.Target {
				edges = append(edges, Edge{From: n.ID, To: target.ID, Label: label})
			}
		}
	}
	return edges
}

func eventLabel(t *core.Transition) string {
	label := t.EventType
	if label == primitives.NullEvent {
		label = "always"
	}
	if t.Guard != nil {
		label += " [" + t.Guard.Name() + "]"
	}
	if t.In != "" {
		label += " in(" + t.In + ")"
	}
	return label
}

// renderNode recursively renders nodes; compound and parallel nodes become clusters.
func renderNode(buf *bytes.Buffer, n *core.Node, active map[string]bool, depth int) {
	indent := strings.Repeat("  ", depth)
	if len(n.Children) == 0 {
		attrs := []string{fmt.Sprintf("label=%q", n.Key)}
		switch n.Kind {
		case primitives.Final:
			attrs = append(attrs, "peripheries=2")
		case primitives.History:
			label := "H"
			if n.History == primitives.DeepHistory {
				label = "H*"
			}
			attrs = append(attrs[:0], fmt.Sprintf("label=%q", label), "shape=circle")
		}
		if active[n.ID] {
			attrs = append(attrs, "style=filled", "fillcolor=lightgreen")
		}
		fmt.Fprintf(buf, "%s%q [%s];\n", indent, n.ID, strings.Join(attrs, " "))
		return
	}

	fmt.Fprintf(buf, "%ssubgraph %q {\n", indent, "cluster_"+n.ID)
	fmt.Fprintf(buf, "%s  label=%q;\n", indent, fmt.Sprintf("%s (%s)", n.Key, n.Kind))
	switch {
	case active[n.ID]:
		fmt.Fprintf(buf, "%s  style=filled; fillcolor=orange;\n", indent)
	case n.Kind == primitives.Parallel:
		fmt.Fprintf(buf, "%s  style=\"filled,dashed\"; fillcolor=lightblue;\n", indent)
	}
	// Anchor node so edges can point at the cluster itself.
	fmt.Fprintf(buf, "%s  %q [label=%q shape=point];\n", indent, n.ID, n.Key)
	for _, child := range n.Children {
		renderNode(buf, child, active, depth+1)
	}
	fmt.Fprintf(buf, "%s}\n", indent)
}
