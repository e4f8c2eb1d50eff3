package transition

import "sync"

// Group counts in-flight work and runs a callback exactly once when the
// count returns to zero after the group has been armed.
type Group struct {
	mu       sync.Mutex
	pending  int
	armed    bool
	fired    bool
	onSettle func()
}

// NewGroup creates a group that calls onSettle when it settles.
func NewGroup(onSettle func()) *Group {
	return &Group{onSettle: onSettle}
}

// Add registers n more units of work.
func (g *Group) Add(n int) {
	g.mu.Lock()
	g.pending += n
	g.mu.Unlock()
}

// Done completes one unit of work.
func (g *Group) Done() {
	g.mu.Lock()
	g.pending--
	fire := g.ready()
	g.mu.Unlock()

	if fire {
		g.onSettle()
	}
}

// Arm declares that no more work will be added. A group armed with nothing
// pending settles immediately.
func (g *Group) Arm() {
	g.mu.Lock()
	g.armed = true
	fire := g.ready()
	g.mu.Unlock()

	if fire {
		g.onSettle()
	}
}

// Pending returns the outstanding unit count.
func (g *Group) Pending() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.pending
}

// Settled reports whether the callback has run.
func (g *Group) Settled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.fired
}

func (g *Group) ready() bool {
	if g.fired || !g.armed || g.pending > 0 {
		return false
	}

	g.fired = true

	return g.onSettle != nil
}
