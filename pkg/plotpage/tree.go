package plotpage

import (
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/Sumatoshi-tech/wtree/pkg/weightedtree"
)

// Tree chart defaults.
const (
	treeSeriesName = "tree"
	treeSymbol     = "circle"
	// hiddenSymbolSize is used for collapsed descendants that were never laid out.
	hiddenSymbolSize = 3
	linkCurveness    = 0.5
	// linkWidthScale converts a target radius into a link width.
	linkWidthScale = 0.5
	minLinkWidth   = 1
)

// TreeStyle controls the size of a tree chart.
type TreeStyle struct {
	Width  string
	Height string
	Title  string
}

// DefaultTreeStyle returns full-width tree chart settings.
func DefaultTreeStyle() TreeStyle {
	return TreeStyle{Width: "100%", Height: "640px"}
}

// BuildTreeChart converts a laid-out hierarchy into an echarts tree. Visible
// nodes keep their radius as symbol size; collapsed branches are emitted
// collapsed so the chart can expand them on click. Each first-level branch
// takes one palette color.
func BuildTreeChart[D any](co *ChartOpts, style TreeStyle, root *weightedtree.Node[D]) *charts.Tree {
	if co == nil {
		co = DefaultChartOpts()
	}

	tree := charts.NewTree()
	tree.SetGlobalOptions(
		charts.WithInitializationOpts(co.Init(style.Width, style.Height)),
		charts.WithTooltipOpts(co.Tooltip("item")),
	)

	if style.Title != "" {
		tree.SetGlobalOptions(charts.WithTitleOpts(co.Title(style.Title, "")))
	}

	var data []opts.TreeData
	if root != nil {
		data = []opts.TreeData{*treeData(co, root, "", -1)}
	}

	tree.AddSeries(treeSeriesName, data,
		charts.WithTreeOpts(opts.TreeChart{
			Layout:            "orthogonal",
			Orient:            "LR",
			Roam:              opts.Bool(true),
			ExpandAndCollapse: opts.Bool(true),
			InitialTreeDepth:  -1,
			Label:             co.Label("left"),
			Leaves:            &opts.TreeLeaves{Label: co.Label("right")},
			Top:               "2%",
			Bottom:            "2%",
			Left:              "8%",
			Right:             "12%",
		}),
		charts.WithLineStyleOpts(opts.LineStyle{Color: co.LinkColor(), Curveness: linkCurveness}),
	)

	return tree
}

func treeData[D any](co *ChartOpts, n *weightedtree.Node[D], color string, branch int) *opts.TreeData {
	if n.Depth == 1 {
		color = co.Palette().Color(branch)
	}

	item := &opts.TreeData{
		Name:       n.Label,
		Value:      n.Value,
		Symbol:     treeSymbol,
		SymbolSize: symbolSize(n),
		ItemStyle: &opts.ItemStyle{
			Color:       co.NodeFill(n.IsCollapsed()),
			BorderColor: color,
		},
	}

	if color != "" {
		item.LineStyle = &opts.LineStyle{Color: color, Width: linkWidth(n)}
	}

	kids := n.Children()
	if n.IsCollapsed() {
		kids = n.CollapsedChildren()
		item.Collapsed = opts.Bool(true)
	}

	for i, kid := range kids {
		childBranch := branch
		if n.Depth == 0 {
			childBranch = i
		}

		item.Children = append(item.Children, treeData(co, kid, color, childBranch))
	}

	return item
}

func symbolSize[D any](n *weightedtree.Node[D]) float64 {
	if !n.LaidOut() || n.Radius <= 0 {
		return hiddenSymbolSize
	}

	return 2 * n.Radius
}

func linkWidth[D any](n *weightedtree.Node[D]) float32 {
	w := float32(n.Radius * linkWidthScale)
	if w < minLinkWidth {
		return minLinkWidth
	}

	return w
}
