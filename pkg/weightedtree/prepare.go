package weightedtree

import (
	"fmt"
	"math"
)

// prepare builds the wrapper tree for the configured data. With reset the
// previous registry is ignored and every node below the first level starts
// collapsed; otherwise wrappers are reused by ID so positions and expansion
// state survive. The current tree is replaced only when preparation succeeds.
func (v *Viz[D]) prepare(reset bool) error {
	if err := v.scan(); err != nil {
		return err
	}

	prev := v.registry
	if reset {
		prev = nil
	}

	p := &preparer[D]{
		cfg:      &v.cfg,
		prev:     prev,
		reset:    reset,
		registry: make(map[string]*Node[D], len(v.registry)),
	}

	root := p.build(v.cfg.Data, nil, 0)

	v.root = root
	v.registry = p.registry
	v.maxDepth = p.maxDepth

	v.emit(Event[D]{Name: EventDataPrepped, Node: root})

	return nil
}

// scan checks key uniqueness and acyclicity without touching any wrapper.
func (v *Viz[D]) scan() error {
	seen := make(map[string]bool)
	onPath := make(map[string]bool)

	var walk func(d D) error

	walk = func(d D) error {
		id := v.cfg.Key(d)

		if onPath[id] {
			return fmt.Errorf("%w: %q", ErrCycle, id)
		}

		if seen[id] {
			return fmt.Errorf("%w: %q", ErrDuplicateKey, id)
		}

		seen[id] = true
		onPath[id] = true

		for _, c := range v.cfg.Children(d) {
			if err := walk(c); err != nil {
				return err
			}
		}

		delete(onPath, id)

		return nil
	}

	return walk(v.cfg.Data)
}

type preparer[D any] struct {
	cfg      *Config[D]
	prev     map[string]*Node[D]
	reset    bool
	registry map[string]*Node[D]
	maxDepth int
}

func (p *preparer[D]) build(d D, parent *Node[D], depth int) *Node[D] {
	id := p.cfg.Key(d)

	n, reused := p.prev[id]
	if !reused {
		n = &Node[D]{ID: id}
		if parent == nil {
			n.HasPrev = true
		}
	}

	wasCollapsed := reused && n.IsCollapsed()

	n.Datum = d
	n.Depth = depth
	n.Parent = parent
	n.Value = finite(p.cfg.Value(d))
	n.Label = p.cfg.Label(d)

	if !n.HasPrev && parent != nil {
		n.X0, n.Y0 = parent.X, parent.Y
		n.HasPrev = parent.laidOut
	}

	p.registry[id] = n
	p.maxDepth = max(p.maxDepth, depth)

	var kids []*Node[D]
	for _, c := range p.cfg.Children(d) {
		kids = append(kids, p.build(c, n, depth+1))
	}

	n.children, n.collapsed = nil, nil

	switch {
	case len(kids) == 0:
	case p.reset && depth > 0, wasCollapsed:
		n.collapsed = kids
	default:
		n.children = kids
	}

	return n
}

// finite maps NaN and infinities to zero so they cannot poison a depth range.
func finite(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}

	return x
}
