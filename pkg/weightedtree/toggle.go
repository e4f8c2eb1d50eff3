package weightedtree

import "fmt"

// ToggleNode collapses an expanded node or expands a collapsed one and runs
// a pass rooted at it. Toggling a leaf does nothing.
func (v *Viz[D]) ToggleNode(n *Node[D]) error {
	if n == nil || v.registry[n.ID] != n {
		return ErrUnknownNode
	}

	if !toggle(n) {
		return nil
	}

	v.log.Debug("toggle", "viz", v.id, "node", n.ID, "expanded", n.IsExpanded())
	v.render(n)

	return nil
}

// ToggleKey toggles the node with the given ID.
func (v *Viz[D]) ToggleKey(id string) error {
	n, ok := v.registry[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}

	return v.ToggleNode(n)
}

// toggle swaps the visible and collapsed children of n and reports whether
// anything changed.
func toggle[D any](n *Node[D]) bool {
	if n.IsLeaf() {
		return false
	}

	n.children, n.collapsed = n.collapsed, n.children

	return true
}
