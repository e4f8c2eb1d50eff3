package weightedtree

import (
	"maps"
	"slices"
	"time"

	"github.com/Sumatoshi-tech/wtree/pkg/svg"
	"github.com/Sumatoshi-tech/wtree/pkg/transition"
)

// render runs one layout pass rooted at opRoot and schedules the transitions
// that move the scene from its current state to the new layout. Nodes and
// links that appear grow out of opRoot's previous position; the ones that
// disappear shrink into its new position.
func (v *Viz[D]) render(opRoot *Node[D]) {
	started := time.Now()

	fr := v.layout(opRoot)

	v.pass++
	stats := PassStats{
		Pass:         v.pass,
		Visible:      len(v.nodes),
		CanvasWidth:  fr.width,
		CanvasHeight: fr.height,
		ScrollTop:    fr.scrollTop,
	}

	sc := v.scene
	from := svg.Point{X: opRoot.X0, Y: opRoot.Y0}
	to := svg.Point{X: opRoot.X, Y: opRoot.Y}

	nodes := make([]*nodeShape[D], 0, len(v.nodes))
	visible := make(map[string]bool, len(v.nodes))

	for _, n := range v.nodes {
		visible[n.ID] = true

		shape, ok := sc.nodes[n.ID]
		if ok {
			shape.node = n
			shape.exiting = false
			stats.Updated++
		} else {
			shape = sc.enterNode(n, enterPoint(n, from))
			stats.Entered++
		}

		nodes = append(nodes, shape)
	}

	links := make([]*linkShape[D], 0, len(v.links))
	linked := make(map[string]bool, len(v.links))

	for _, l := range v.links {
		linked[l.Target.ID] = true

		shape, ok := sc.links[l.Target.ID]
		if ok {
			shape.link = l
			shape.exiting = false
			stats.LinksUpdated++
		} else {
			shape = sc.enterLink(l, enterPoint(l.Target, from))
			stats.LinksEntered++
		}

		links = append(links, shape)
	}

	v.emit(Event[D]{Name: EventUpdate, Element: sc.root, Node: opRoot})

	barrier := transition.NewGroup(func() {
		v.emit(Event[D]{Name: EventNodeRefresh, Element: sc.root, Node: opRoot})
	})

	for _, shape := range nodes {
		barrier.Add(1)
		v.moveNode(shape, svg.Point{X: shape.node.X, Y: shape.node.Y}, shape.node.Radius, barrier.Done)
	}

	barrier.Arm()

	for _, id := range slices.Sorted(maps.Keys(sc.nodes)) {
		shape := sc.nodes[id]
		if visible[id] {
			continue
		}

		if !shape.exiting {
			shape.exiting = true
			stats.Exited++
		}

		shape.node.HasPrev = false
		v.moveNode(shape, to, hiddenRadius, func() { sc.removeNode(id, shape) })
	}

	for _, shape := range links {
		l := shape.link
		v.moveLink(shape,
			svg.Point{X: l.Source.X, Y: l.Source.Y},
			svg.Point{X: l.Target.X, Y: l.Target.Y},
			2*l.Target.Radius, nil)
	}

	for _, id := range slices.Sorted(maps.Keys(sc.links)) {
		shape := sc.links[id]
		if linked[id] {
			continue
		}

		if !shape.exiting {
			shape.exiting = true
			stats.LinksExited++
		}

		v.moveLink(shape, to, to, shape.width, func() { sc.removeLink(id, shape) })
	}

	v.moveCanvas(svg.Point{X: fr.width, Y: fr.height}, fr.scrollTop)

	for _, n := range v.nodes {
		n.X0, n.Y0 = n.X, n.Y
		n.HasPrev = true
		n.laidOut = true
	}

	stats.LayoutDuration = time.Since(started)
	v.stats = stats

	v.log.Debug("layout pass",
		"viz", v.id,
		"pass", stats.Pass,
		"root", opRoot.ID,
		"visible", stats.Visible,
		"entered", stats.Entered,
		"updated", stats.Updated,
		"exited", stats.Exited,
		"canvas_width", stats.CanvasWidth,
		"canvas_height", stats.CanvasHeight,
		"duration", stats.LayoutDuration,
	)
}

// enterPoint is where a new element appears: its own previous position when
// it has one, the operation root's previous position otherwise.
func enterPoint[D any](n *Node[D], fallback svg.Point) svg.Point {
	if n.HasPrev {
		return svg.Point{X: n.X0, Y: n.Y0}
	}

	return fallback
}

func (v *Viz[D]) moveNode(shape *nodeShape[D], pos svg.Point, radius float64, onEnd func()) {
	if !shape.exiting {
		shape.style()
	}

	start, startRadius := shape.pos, shape.radius

	v.timeline.Start(nodeKeyPrefix+shape.node.ID, v.cfg.Duration, func(t float64) {
		shape.place(lerpPoint(start, pos, t), transition.Lerp(startRadius, radius, t))
	}, onEnd)
}

func (v *Viz[D]) moveLink(shape *linkShape[D], source, target svg.Point, width float64, onEnd func()) {
	if !shape.exiting {
		shape.style()
	}

	startSource, startTarget, startWidth := shape.source, shape.target, shape.width

	v.timeline.Start(linkKeyPrefix+shape.link.Target.ID, v.cfg.Duration, func(t float64) {
		shape.place(
			lerpPoint(startSource, source, t),
			lerpPoint(startTarget, target, t),
			transition.Lerp(startWidth, width, t),
		)
	}, onEnd)
}

func (v *Viz[D]) moveCanvas(canvas svg.Point, scrollTop float64) {
	sc := v.scene
	start, startScroll := sc.canvas, sc.scrollTop

	v.timeline.Start(canvasKey, v.cfg.Duration, func(t float64) {
		sc.setCanvas(lerpPoint(start, canvas, t), transition.Lerp(startScroll, scrollTop, t))
	}, nil)
}

func lerpPoint(a, b svg.Point, t float64) svg.Point {
	return svg.Point{X: transition.Lerp(a.X, b.X, t), Y: transition.Lerp(a.Y, b.Y, t)}
}
