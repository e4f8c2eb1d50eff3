// Package tidy positions the nodes of a rooted tree for node-link diagrams.
//
// It implements the Reingold-Tilford "tidy tree" algorithm with the linear-time
// improvements described by Buchheim, Jünger and Leipert. Layout is a pure
// function: it keeps no state between calls and never mutates the caller's tree.
package tidy

// Separation reports the breadth distance, in node-size units, between two
// adjacent nodes. siblings is true when both nodes share a parent.
type Separation[T any] func(a, b T, siblings bool) float64

// Options configures a layout run.
type Options[T any] struct {
	// NodeSize is the breadth distance of one separation unit.
	NodeSize float64
	// LevelSize is the distance between two consecutive depths.
	LevelSize float64
	// Separation defaults to DefaultSeparation.
	Separation Separation[T]
}

// Placement is the computed position of one node.
type Placement[T any] struct {
	Node T
	// Parent is the index of the parent placement, -1 for the root.
	Parent int
	Depth  int
	// Breadth is the position across siblings; the root is at 0.
	Breadth float64
	// Level is Depth scaled by LevelSize.
	Level float64
}

// DefaultSeparation keeps siblings one unit apart and cousins two.
func DefaultSeparation[T any](_, _ T, siblings bool) float64 {
	if siblings {
		return 1
	}

	return 2
}

type wnode[T any] struct {
	item     T
	parent   *wnode[T]
	children []*wnode[T]

	ancestor        *wnode[T]
	defaultAncestor *wnode[T]
	thread          *wnode[T]

	prelim float64
	mod    float64
	change float64
	shift  float64

	index int
	depth int
	x     float64
}

type layouter[T any] struct {
	separation Separation[T]
}

// Layout computes placements for every node reachable from root through
// children. The result is in depth-first pre-order with the root first and
// siblings in the order children returns them.
func Layout[T any](root T, children func(T) []T, opts Options[T]) []Placement[T] {
	sep := opts.Separation
	if sep == nil {
		sep = DefaultSeparation[T]
	}

	lay := &layouter[T]{separation: sep}

	super := &wnode[T]{}
	top, order := wrap(root, children, super)
	super.children = []*wnode[T]{top}

	lay.firstWalk(top)
	super.mod = -top.prelim
	secondWalk(top)

	out := make([]Placement[T], len(order))
	index := make(map[*wnode[T]]int, len(order))

	for i, wn := range order {
		index[wn] = i

		parent := -1
		if wn.parent != super {
			parent = index[wn.parent]
		}

		out[i] = Placement[T]{
			Node:    wn.item,
			Parent:  parent,
			Depth:   wn.depth,
			Breadth: wn.x * opts.NodeSize,
			Level:   float64(wn.depth) * opts.LevelSize,
		}
	}

	return out
}

// wrap builds the internal tree and returns it with its pre-order listing.
func wrap[T any](root T, children func(T) []T, super *wnode[T]) (*wnode[T], []*wnode[T]) {
	top := &wnode[T]{item: root, parent: super}
	top.ancestor = top

	order := []*wnode[T]{}
	stack := []*wnode[T]{top}

	for len(stack) > 0 {
		wn := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, wn)

		kids := children(wn.item)
		wn.children = make([]*wnode[T], len(kids))

		for i, kid := range kids {
			child := &wnode[T]{item: kid, parent: wn, index: i, depth: wn.depth + 1}
			child.ancestor = child
			wn.children[i] = child
		}

		for i := len(wn.children) - 1; i >= 0; i-- {
			stack = append(stack, wn.children[i])
		}
	}

	return top, order
}

func (l *layouter[T]) sep(a, b *wnode[T]) float64 {
	return l.separation(a.item, b.item, a.parent == b.parent)
}

// firstWalk computes preliminary breadths bottom-up, left to right.
func (l *layouter[T]) firstWalk(v *wnode[T]) {
	for _, child := range v.children {
		l.firstWalk(child)
	}

	siblings := v.parent.children

	var left *wnode[T]
	if v.index > 0 {
		left = siblings[v.index-1]
	}

	if n := len(v.children); n > 0 {
		executeShifts(v)

		midpoint := (v.children[0].prelim + v.children[n-1].prelim) / 2

		if left != nil {
			v.prelim = left.prelim + l.sep(v, left)
			v.mod = v.prelim - midpoint
		} else {
			v.prelim = midpoint
		}
	} else if left != nil {
		v.prelim = left.prelim + l.sep(v, left)
	}

	anc := v.parent.defaultAncestor
	if anc == nil {
		anc = siblings[0]
	}

	v.parent.defaultAncestor = l.apportion(v, left, anc)
}

// apportion pushes the subtree rooted at v away from its left siblings'
// subtrees so that contours never overlap.
func (l *layouter[T]) apportion(v, left, anc *wnode[T]) *wnode[T] {
	if left == nil {
		return anc
	}

	vip, vop := v, v
	vim := left
	vom := v.parent.children[0]

	sip, sop := vip.mod, vop.mod
	sim, som := vim.mod, vom.mod

	for {
		vim = nextRight(vim)
		vip = nextLeft(vip)

		if vim == nil || vip == nil {
			break
		}

		vom = nextLeft(vom)
		vop = nextRight(vop)
		vop.ancestor = v

		shift := vim.prelim + sim - vip.prelim - sip + l.sep(vim, vip)
		if shift > 0 {
			moveSubtree(nextAncestor(vim, v, anc), v, shift)

			sip += shift
			sop += shift
		}

		sim += vim.mod
		sip += vip.mod
		som += vom.mod
		sop += vop.mod
	}

	if vim != nil && nextRight(vop) == nil {
		vop.thread = vim
		vop.mod += sim - sop
	}

	if vip != nil && nextLeft(vom) == nil {
		vom.thread = vip
		vom.mod += sip - som
		anc = v
	}

	return anc
}

// secondWalk resolves final breadths top-down by accumulating modifiers.
func secondWalk[T any](v *wnode[T]) {
	v.x = v.prelim + v.parent.mod
	v.mod += v.parent.mod

	for _, child := range v.children {
		secondWalk(child)
	}
}

func nextLeft[T any](v *wnode[T]) *wnode[T] {
	if len(v.children) > 0 {
		return v.children[0]
	}

	return v.thread
}

func nextRight[T any](v *wnode[T]) *wnode[T] {
	if n := len(v.children); n > 0 {
		return v.children[n-1]
	}

	return v.thread
}

func moveSubtree[T any](wm, wp *wnode[T], shift float64) {
	change := shift / float64(wp.index-wm.index)
	wp.change -= change
	wp.shift += shift
	wm.change += change
	wp.prelim += shift
	wp.mod += shift
}

func executeShifts[T any](v *wnode[T]) {
	var shift, change float64

	for i := len(v.children) - 1; i >= 0; i-- {
		w := v.children[i]
		w.prelim += shift
		w.mod += shift
		change += w.change
		shift += w.shift + change
	}
}

func nextAncestor[T any](vim, v, anc *wnode[T]) *wnode[T] {
	if vim.ancestor.parent == v.parent {
		return vim.ancestor
	}

	return anc
}
