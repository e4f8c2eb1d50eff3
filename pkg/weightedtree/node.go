package weightedtree

// Node wraps one caller datum and owns every layout field computed for it.
// The datum itself is never modified.
type Node[D any] struct {
	// Datum is the caller value this node stands for.
	Datum D
	// ID is the key accessor result, cached when the node is first prepared.
	ID string
	// Depth is the edge count from the root.
	Depth  int
	Parent *Node[D]

	// Value and Label cache the accessor results of the latest preparation.
	Value float64
	Label string

	// X is the horizontal (depth axis) position, Y the vertical one.
	X, Y float64
	// X0 and Y0 hold the position before the current pass. They are
	// meaningful only while HasPrev is set.
	X0, Y0  float64
	HasPrev bool

	// Radius is the node radius computed by the latest layout pass.
	Radius float64

	children  []*Node[D]
	collapsed []*Node[D]
	laidOut   bool
}

// Children returns the visible children. It is nil for collapsed nodes and leaves.
func (n *Node[D]) Children() []*Node[D] { return n.children }

// CollapsedChildren returns the hidden children. It is nil for expanded nodes and leaves.
func (n *Node[D]) CollapsedChildren() []*Node[D] { return n.collapsed }

// IsLeaf reports whether the node has no children at all.
func (n *Node[D]) IsLeaf() bool { return n.children == nil && n.collapsed == nil }

// IsExpanded reports whether the node shows its children.
func (n *Node[D]) IsExpanded() bool { return n.children != nil }

// IsCollapsed reports whether the node hides its children.
func (n *Node[D]) IsCollapsed() bool { return n.collapsed != nil }

// LaidOut reports whether the node has been positioned by at least one pass.
func (n *Node[D]) LaidOut() bool { return n.laidOut }

// Link connects a visible node to its parent. Links are keyed by Target.ID.
type Link[D any] struct {
	Source *Node[D]
	Target *Node[D]
}

// Range is the value extent observed at one depth.
type Range struct {
	Min, Max float64
}
