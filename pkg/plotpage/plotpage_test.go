package plotpage_test

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/wtree/pkg/plotpage"
	"github.com/Sumatoshi-tech/wtree/pkg/transition"
	"github.com/Sumatoshi-tech/wtree/pkg/weightedtree"
)

type item struct {
	Name string
	Size float64
	Kids []*item
}

func sample() *item {
	return &item{Name: "root", Size: 10, Kids: []*item{
		{Name: "a", Size: 6, Kids: []*item{{Name: "a1", Size: 1}, {Name: "a2", Size: 2}}},
		{Name: "b", Size: 3, Kids: []*item{{Name: "b1", Size: 3}}},
		{Name: "c", Size: 1},
	}}
}

func laidOut(t *testing.T) *weightedtree.Viz[*item] {
	t.Helper()

	cfg := weightedtree.DefaultConfig[*item]()
	cfg.Data = sample()
	cfg.Children = func(d *item) []*item { return d.Kids }
	cfg.Value = func(d *item) float64 { return d.Size }
	cfg.Label = func(d *item) string { return d.Name }
	cfg.Key = func(d *item) string { return d.Name }
	cfg.Clock = transition.NewManualClock(time.Unix(0, 0))

	viz := weightedtree.New(cfg)
	require.NoError(t, viz.Update(false))

	return viz
}

func TestBuildTreeChart(t *testing.T) {
	t.Parallel()

	viz := laidOut(t)
	co := plotpage.NewChartOpts(plotpage.ThemeLight)

	chart := plotpage.BuildTreeChart(co, plotpage.DefaultTreeStyle(), viz.Root())
	require.Len(t, chart.MultiSeries, 1)

	data, ok := chart.MultiSeries[0].Data.([]opts.TreeData)
	require.True(t, ok)
	require.Len(t, data, 1)

	root := data[0]
	assert.Equal(t, "root", root.Name)
	assert.InDelta(t, 2*viz.Root().Radius, root.SymbolSize, 1e-9)
	require.Len(t, root.Children, 3)

	a := root.Children[0]
	require.NotNil(t, a.Collapsed)
	assert.True(t, *a.Collapsed)
	require.Len(t, a.Children, 2)
	assert.InDelta(t, 3.0, a.Children[0].SymbolSize, 1e-9)

	palette := co.Palette()
	assert.Equal(t, palette.Color(0), a.ItemStyle.BorderColor)
	assert.Equal(t, palette.Color(1), root.Children[1].ItemStyle.BorderColor)
	assert.Equal(t, palette.Color(0), a.Children[1].LineStyle.Color)

	c := root.Children[2]
	assert.Nil(t, c.Collapsed)
	assert.Empty(t, c.Children)
}

func TestBuildTreeChart_NilRoot(t *testing.T) {
	t.Parallel()

	chart := plotpage.BuildTreeChart[*item](nil, plotpage.DefaultTreeStyle(), nil)
	require.Len(t, chart.MultiSeries, 1)
	assert.Empty(t, chart.MultiSeries[0].Data)
}

func TestPageRender(t *testing.T) {
	t.Parallel()

	viz := laidOut(t)

	page := plotpage.NewPage("Budget", "Spending by department").WithTheme(plotpage.ThemeDark)
	page.Add(
		plotpage.Section{
			Title: "Hierarchy",
			Chart: plotpage.WrapChart(plotpage.BuildTreeChart(nil, plotpage.DefaultTreeStyle(), viz.Root())),
			Hint:  plotpage.Hint{Title: "Reading", Items: []string{"Radius encodes value"}},
		},
		plotpage.Section{Title: "Scene", Chart: plotpage.Fragment(`<svg id="live"></svg>`)},
	)

	var buf bytes.Buffer
	require.NoError(t, page.Render(&buf))

	html := buf.String()
	assert.Contains(t, html, `<html lang="en" class="dark">`)
	assert.Contains(t, html, "<title>Budget</title>")
	assert.Contains(t, html, "Hierarchy")
	assert.Contains(t, html, "Radius encodes value")
	assert.Contains(t, html, `class="echart-box"`)
	assert.Contains(t, html, "echarts.min.js")
	assert.Contains(t, html, `<svg id="live"></svg>`)
	assert.Contains(t, html, `id="theme-toggle"`)
	assert.NotContains(t, html, `class="container"`)
}

func TestHTMLRenderer_ExtraJS(t *testing.T) {
	t.Parallel()

	page := plotpage.NewPage("Viewer", "")

	var buf bytes.Buffer
	require.NoError(t, plotpage.HTMLRenderer{ExtraJS: `console.log("ready");`}.Render(&buf, page))
	assert.Contains(t, buf.String(), `console.log("ready");`)
}

type failing struct{}

func (failing) Render(io.Writer) error { return errors.New("boom") }

func TestPageRender_ChartError(t *testing.T) {
	t.Parallel()

	page := plotpage.NewPage("Broken", "")
	page.Add(plotpage.Section{Title: "bad", Chart: failing{}})

	err := page.Render(io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestWrapChart_Fragment(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, plotpage.WrapChart(plotpage.Fragment("<p>x</p>")).Render(&buf))
	assert.Equal(t, "<p>x</p>", buf.String())
}

func TestParseTheme(t *testing.T) {
	t.Parallel()

	theme, err := plotpage.ParseTheme("dark")
	require.NoError(t, err)
	assert.Equal(t, plotpage.ThemeDark, theme)

	theme, err = plotpage.ParseTheme("")
	require.NoError(t, err)
	assert.Equal(t, plotpage.ThemeLight, theme)

	_, err = plotpage.ParseTheme("neon")
	require.ErrorIs(t, err, plotpage.ErrUnknownTheme)
}

func TestChartPalette_Cycles(t *testing.T) {
	t.Parallel()

	palette := plotpage.GetChartPalette(plotpage.ThemeLight)
	assert.Equal(t, palette.Color(0), palette.Color(len(palette.Branches)))
	assert.Empty(t, plotpage.ChartPalette{}.Color(3))
}
