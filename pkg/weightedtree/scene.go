package weightedtree

import (
	"fmt"

	"github.com/Sumatoshi-tech/wtree/pkg/svg"
)

const (
	nodeKeyPrefix = "node:"
	linkKeyPrefix = "link:"
	canvasKey     = "canvas"

	// hiddenRadius stands in for zero so renderers keep drawing the circle.
	hiddenRadius = 1e-6
	labelOffset  = 10

	fillOpacity     = 0.4
	strokeOpacity   = 0.35
	inactiveOpacity = 0.15
)

type nodeShape[D any] struct {
	node    *Node[D]
	group   *svg.Element
	circle  *svg.Element
	label   *svg.Element
	pos     svg.Point
	radius  float64
	exiting bool
}

func (s *nodeShape[D]) place(pos svg.Point, radius float64) {
	s.pos, s.radius = pos, radius
	s.group.Set("transform", svg.Translate(pos))
	s.circle.SetFloat("r", radius)
}

// style refreshes the attributes that follow node state rather than time.
func (s *nodeShape[D]) style() {
	n := s.node

	opacity := fillOpacity
	if n.Value <= 0 {
		opacity = inactiveOpacity
	}

	class := "node"
	if n.IsCollapsed() {
		class += " collapsed"
	}

	s.group.Set("class", class)
	s.circle.SetFloat("fill-opacity", opacity)

	x, anchor := float64(labelOffset), "start"
	if !n.IsLeaf() {
		x, anchor = -labelOffset, "end"
	}

	s.label.SetFloat("x", x).Set("text-anchor", anchor)
	s.label.Text = n.Label
}

type linkShape[D any] struct {
	link    Link[D]
	path    *svg.Element
	source  svg.Point
	target  svg.Point
	width   float64
	exiting bool
}

func (s *linkShape[D]) place(source, target svg.Point, width float64) {
	s.source, s.target, s.width = source, target, width
	s.path.Set("d", svg.Diagonal(source, target))
	s.path.SetFloat("stroke-width", width)
}

func (s *linkShape[D]) style() {
	opacity := strokeOpacity
	if s.link.Target.Value <= 0 {
		opacity = inactiveOpacity
	}

	s.path.SetFloat("stroke-opacity", opacity)
}

// scene is the retained element tree plus the keyed shape indexes used to
// reconcile one pass against the previous one.
type scene[D any] struct {
	id string

	root           *svg.Element
	background     *svg.Element
	plot           *svg.Element
	plotBackground *svg.Element
	linkLayer      *svg.Element
	nodeLayer      *svg.Element

	nodes map[string]*nodeShape[D]
	links map[string]*linkShape[D]

	canvas    svg.Point
	scrollTop float64
	seq       int
}

func newScene[D any](id string, width, height float64) *scene[D] {
	sc := &scene[D]{
		id:     id,
		root:   svg.Root(width, height).Set("id", id).Set("class", "weighted-tree").Set("overflow", "visible"),
		nodes:  make(map[string]*nodeShape[D]),
		links:  make(map[string]*linkShape[D]),
		canvas: svg.Point{X: width, Y: height},
	}

	sc.background = sc.root.AppendNew("rect").Set("class", "background").Set("fill", "none")
	sc.plot = sc.root.AppendNew("g").Set("class", "plot")
	sc.plotBackground = sc.plot.AppendNew("rect").Set("class", "plot-background").Set("fill", "none")
	sc.linkLayer = sc.plot.AppendNew("g").Set("class", "links")
	sc.nodeLayer = sc.plot.AppendNew("g").Set("class", "nodes")

	return sc
}

// resize applies the container and plot geometry of a measure.
func (sc *scene[D]) resize(width, height float64, size Size) {
	sc.background.SetFloat("width", width).SetFloat("height", height)
	sc.plot.Set("transform", svg.Translate(svg.Point{X: size.Left, Y: size.Top + size.Height/2}))
	sc.plotBackground.
		SetFloat("y", -size.Height/2).
		SetFloat("width", size.Width).
		SetFloat("height", size.Height)
}

func (sc *scene[D]) setCanvas(canvas svg.Point, scrollTop float64) {
	sc.canvas, sc.scrollTop = canvas, scrollTop
	sc.root.SetFloat("width", canvas.X).SetFloat("height", canvas.Y)
	sc.root.SetFloat("data-scroll-top", scrollTop)
}

func (sc *scene[D]) nextID(kind string) string {
	sc.seq++

	return fmt.Sprintf("%s-%s-%d", sc.id, kind, sc.seq)
}

func (sc *scene[D]) enterNode(n *Node[D], at svg.Point) *nodeShape[D] {
	group := sc.nodeLayer.AppendNew("g").Set("id", sc.nextID("node")).Set("data-key", n.ID)

	shape := &nodeShape[D]{
		node:   n,
		group:  group,
		circle: group.AppendNew("circle").Set("class", "node-circle"),
		label:  group.AppendNew("text").Set("class", "node-label").Set("dy", ".35em"),
	}

	shape.place(at, hiddenRadius)
	shape.style()
	sc.nodes[n.ID] = shape

	return shape
}

func (sc *scene[D]) enterLink(l Link[D], at svg.Point) *linkShape[D] {
	path := sc.linkLayer.AppendNew("path").
		Set("id", sc.nextID("link")).
		Set("class", "link").
		Set("data-key", l.Target.ID).
		Set("fill", "none")

	shape := &linkShape[D]{link: l, path: path}

	shape.place(at, at, 0)
	shape.style()
	sc.links[l.Target.ID] = shape

	return shape
}

func (sc *scene[D]) removeNode(id string, shape *nodeShape[D]) {
	if sc.nodes[id] != shape {
		return
	}

	shape.group.Detach()
	delete(sc.nodes, id)
}

func (sc *scene[D]) removeLink(id string, shape *linkShape[D]) {
	if sc.links[id] != shape {
		return
	}

	shape.path.Detach()
	delete(sc.links, id)
}
