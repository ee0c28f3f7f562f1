// Helper functions for ancestry and ordering calculations over the node tree.
// Placed in separate file to organize code.

package core

import "sort"

// ancestors returns n and its ancestors, innermost first.
func ancestors(n *Node) []*Node {
	var out []*Node
	for cursor := n; cursor != nil; cursor = cursor.Parent {
		out = append(out, cursor)
	}
	return out
}

// isDescendant reports whether n is a proper descendant of ancestor.
func isDescendant(n, ancestor *Node) bool {
	for cursor := n.Parent; cursor != nil; cursor = cursor.Parent {
		if cursor == ancestor {
			return true
		}
	}
	return false
}

// lca returns the least common ancestor of a and b, counting each node as
// its own ancestor.
func lca(a, b *Node) *Node {
	seen := make(map[*Node]bool)
	for _, n := range ancestors(a) {
		seen[n] = true
	}
	for _, n := range ancestors(b) {
		if seen[n] {
			return n
		}
	}
	return nil
}

// entrySet lists the nodes entered when source transitions to config:
// for each node, the chain up to source inclusive when it lies inside source,
// otherwise up to the least common ancestor exclusive. Outermost first.
func entrySet(source *Node, config []*Node) []*Node {
	var out []*Node
	for _, target := range config {
		stop := lca(source, target)
		if target == source || isDescendant(target, source) {
			stop = source.Parent
		}
		for cursor := target; cursor != nil && cursor != stop; cursor = cursor.Parent {
			out = append(out, cursor)
		}
	}
	out = dedupe(out)
	sortByOrder(out)
	return out
}

func dedupe(nodes []*Node) []*Node {
	seen := make(map[*Node]bool, len(nodes))
	out := nodes[:0:0]
	for _, n := range nodes {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

func sortByOrder(nodes []*Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].Order < nodes[j].Order
	})
}
