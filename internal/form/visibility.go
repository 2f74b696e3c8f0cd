package form

// Visible reports whether a field is shown for the current values.
// All conditions must hold; a field without conditions is always shown.
func Visible(n *Node, lookup Lookup) bool {
	for _, c := range n.conditions {
		if !c.Holds(lookup) {
			return false
		}
	}
	return true
}

// VisibleTree returns the tree with hidden fields pruned.
// A hidden section hides its whole subtree.
func (t Tree) VisibleTree(lookup Lookup) Tree {
	out := make(Tree, 0, len(t))
	for _, n := range t {
		if !Visible(n, lookup) {
			continue
		}
		if n.IsSection() {
			n = n.withChildren(n.children().VisibleTree(lookup))
		}
		out = append(out, n)
	}
	return out
}

// MapLookup adapts a value map to a Lookup.
func MapLookup(values map[string]any) Lookup {
	return func(id string) (any, bool) {
		v, ok := values[id]
		return v, ok
	}
}
