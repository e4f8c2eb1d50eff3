package weightedtree

import (
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/Sumatoshi-tech/wtree/pkg/tidy"
)

const (
	minRadius = 1.5
	// canvasSlack is the share of the container width kept free to the right
	// of the deepest visible column.
	canvasSlack = 0.2
)

// frame is the container state a layout pass asks the renderer to reach.
type frame struct {
	width, height float64
	scrollTop     float64
}

// measure resolves margins, prepares dirty data and derives the spacing
// shared by every pass until the next Update.
func (v *Viz[D]) measure() error {
	v.size = ComputeSize(v.cfg.Margin, v.cfg.Width, v.cfg.Height)
	if v.size.Width <= 0 || v.size.Height <= 0 {
		return fmt.Errorf("%w: %w: plot area %vx%v after margins",
			ErrConfig, ErrInvalidSize, v.size.Width, v.size.Height)
	}

	if v.dataDirty || v.refresh || v.root == nil {
		if err := v.prepare(v.dataDirty || v.root == nil); err != nil {
			return err
		}

		v.dataDirty = false
		v.refresh = false
	}

	side := math.Min(v.size.Width, v.size.Height)

	switch first := len(v.root.children) + len(v.root.collapsed); {
	case v.cfg.BranchPadding > 0:
		v.levelSpacing = side * v.cfg.BranchPadding
	case first > 0:
		v.levelSpacing = side / float64(first)
	default:
		v.levelSpacing = side
	}

	v.radius.Range(minRadius, v.levelSpacing/2)

	if v.cfg.FixedSpan > 0 {
		v.depthSpan = v.cfg.FixedSpan
	} else {
		v.depthSpan = v.size.Width / float64(v.maxDepth+1)
	}

	v.emit(Event[D]{Name: EventMeasure})

	return nil
}

// layout positions the visible tree, recomputes the per-depth ranges and
// radii, and rebuilds the node and link lists.
func (v *Viz[D]) layout(opRoot *Node[D]) frame {
	placements := tidy.Layout(v.root, func(n *Node[D]) []*Node[D] { return n.children },
		tidy.Options[*Node[D]]{NodeSize: v.levelSpacing, LevelSize: v.depthSpan})

	visible := make([]*Node[D], len(placements))
	byDepth := make(map[int][]float64)

	minY, maxY := math.Inf(1), math.Inf(-1)
	maxX := 0.0

	for i, pl := range placements {
		n := pl.Node
		visible[i] = n

		n.X = pl.Level
		n.Y = pl.Breadth

		minY = math.Min(minY, n.Y)
		maxY = math.Max(maxY, n.Y)
		maxX = math.Max(maxX, n.X)

		if n.Depth > 0 {
			byDepth[n.Depth] = append(byDepth[n.Depth], n.Value)
		}
	}

	clear(v.ranges)

	for depth, values := range byDepth {
		v.ranges[depth] = Range{Min: floats.Min(values), Max: floats.Max(values)}
	}

	size := v.size
	height := math.Max(v.cfg.Height, maxY-minY+size.Top)
	width := math.Max(v.cfg.Width, maxX+v.cfg.Width*canvasSlack+size.Left)

	if size.Height/2+maxY > height {
		height = size.Height/2 + maxY + v.levelSpacing
	}

	offset := math.Max(0, -minY-size.Height/2) + v.levelSpacing/2

	links := make([]Link[D], 0, len(visible)-1)

	for _, n := range visible {
		n.Y += offset - v.levelSpacing
		n.Radius = v.nodeRadius(n)

		if n.Parent != nil {
			links = append(links, Link[D]{Source: n.Parent, Target: n})
		}
	}

	v.links = links

	slices.Reverse(visible)
	v.nodes = visible

	return frame{width: width, height: height, scrollTop: opRoot.Y}
}

func (v *Viz[D]) nodeRadius(n *Node[D]) float64 {
	_, hi := v.radius.RangeExtent()

	if n.Depth == 0 {
		return hi / 2
	}

	r, ok := v.ranges[n.Depth]
	if !ok {
		return hi
	}

	return v.radius.Domain(r.Min, r.Max).Map(n.Value)
}
