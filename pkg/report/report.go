// Package report prints tabular views of a laid-out tree.
package report

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/Sumatoshi-tech/wtree/pkg/weightedtree"
)

// Format selects the table rendering.
type Format string

// Supported formats.
const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

// ErrUnknownFormat is returned for unsupported table formats.
var ErrUnknownFormat = errors.New("unknown table format")

const coordDigits = 2

// Options configures the tables.
type Options struct {
	Format Format
	// MaxRows truncates the layout table; zero prints every node.
	MaxRows int
}

// State names a node's expansion state.
func State[D any](n *weightedtree.Node[D]) string {
	switch {
	case n.IsCollapsed():
		return "collapsed"
	case n.IsExpanded():
		return "expanded"
	default:
		return "leaf"
	}
}

// Layout writes one row per visible node, ordered by depth then position.
func Layout[D any](w io.Writer, viz *weightedtree.Viz[D], o Options) error {
	nodes := slices.Clone(viz.Nodes())
	slices.SortFunc(nodes, func(a, b *weightedtree.Node[D]) int {
		return cmp.Or(cmp.Compare(a.Depth, b.Depth), cmp.Compare(a.Y, b.Y))
	})

	total := len(nodes)
	if o.MaxRows > 0 && len(nodes) > o.MaxRows {
		nodes = nodes[:o.MaxRows]
	}

	tbl := newTable()
	tbl.AppendHeader(table.Row{"ID", "Label", "Depth", "Value", "X", "Y", "Radius", "State"})

	for _, n := range nodes {
		tbl.AppendRow(table.Row{
			n.ID,
			n.Label,
			n.Depth,
			humanize.FtoaWithDigits(n.Value, coordDigits),
			humanize.FtoaWithDigits(n.X, coordDigits),
			humanize.FtoaWithDigits(n.Y, coordDigits),
			humanize.FtoaWithDigits(n.Radius, coordDigits),
			State(n),
		})
	}

	tbl.AppendFooter(table.Row{fmt.Sprintf("Total: %s nodes", humanize.Comma(int64(total)))})

	return render(w, tbl, o.Format)
}

// Ranges writes the per-depth value extents used to scale node radii.
func Ranges[D any](w io.Writer, viz *weightedtree.Viz[D], o Options) error {
	ranges := viz.Ranges()

	depths := make([]int, 0, len(ranges))
	for d := range ranges {
		depths = append(depths, d)
	}

	slices.Sort(depths)

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Depth", "Min", "Max"})

	for _, d := range depths {
		r := ranges[d]
		tbl.AppendRow(table.Row{
			d,
			humanize.FtoaWithDigits(r.Min, coordDigits),
			humanize.FtoaWithDigits(r.Max, coordDigits),
		})
	}

	return render(w, tbl, o.Format)
}

// Geometry writes the sizes derived by the latest measure step.
func Geometry[D any](w io.Writer, viz *weightedtree.Viz[D], o Options) error {
	size := viz.Size()
	stats := viz.Stats()

	tbl := newTable()
	tbl.AppendHeader(table.Row{"Property", "Value"})
	tbl.AppendRows([]table.Row{
		{"plot size", fmt.Sprintf("%s x %s",
			humanize.FtoaWithDigits(size.Width, coordDigits), humanize.FtoaWithDigits(size.Height, coordDigits))},
		{"level spacing", humanize.FtoaWithDigits(viz.LevelSpacing(), coordDigits)},
		{"depth span", humanize.FtoaWithDigits(viz.DepthSpan(), coordDigits)},
		{"max depth", strconv.Itoa(viz.MaxDepth())},
		{"canvas", fmt.Sprintf("%s x %s",
			humanize.FtoaWithDigits(stats.CanvasWidth, coordDigits), humanize.FtoaWithDigits(stats.CanvasHeight, coordDigits))},
		{"visible nodes", humanize.Comma(int64(stats.Visible))},
		{"layout time", stats.LayoutDuration.String()},
	})

	return render(w, tbl, o.Format)
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Options.DrawBorder = false

	return tbl
}

func render(w io.Writer, tbl table.Writer, format Format) error {
	var out string

	switch format {
	case FormatText, "":
		out = tbl.Render()
	case FormatMarkdown:
		out = tbl.RenderMarkdown()
	case FormatCSV:
		out = tbl.RenderCSV()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	_, err := fmt.Fprintln(w, out)
	if err != nil {
		return fmt.Errorf("write table: %w", err)
	}

	return nil
}
