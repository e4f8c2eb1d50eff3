package svg_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/wtree/pkg/svg"
)

func TestElement_EncodeNested(t *testing.T) {
	t.Parallel()

	root := svg.Root(100, 50)
	g := root.AppendNew("g").Set("class", "plot")
	g.AppendNew("circle").SetFloat("r", 2.5)
	g.AppendNew("text").Text = `a < b & "c"`

	out := root.String()

	assert.Contains(t, out, `<svg xmlns="http://www.w3.org/2000/svg" width="100" height="50">`)
	assert.Contains(t, out, `<circle r="2.5"/>`)
	assert.Contains(t, out, `a &lt; b &amp; &#34;c&#34;`)
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
}

func TestElement_SetReplaces(t *testing.T) {
	t.Parallel()

	e := svg.New("rect").Set("width", "1").Set("width", "2")

	v, ok := e.Get("width")
	require.True(t, ok)
	assert.Equal(t, "2", v)
	assert.Len(t, e.Attrs(), 1)
}

func TestElement_DetachAndFind(t *testing.T) {
	t.Parallel()

	root := svg.New("g")
	a := root.AppendNew("g").Set("id", "a")
	b := root.AppendNew("g").Set("id", "b")

	assert.Same(t, b, root.Find("b"))

	a.Detach()
	assert.Nil(t, a.Parent())
	require.Len(t, root.Children, 1)
	assert.Same(t, b, root.Children[0])
	assert.Nil(t, root.Find("a"))
}

func TestElement_AppendMovesBetweenParents(t *testing.T) {
	t.Parallel()

	first, second := svg.New("g"), svg.New("g")
	child := first.AppendNew("circle")

	second.Append(child)

	assert.Empty(t, first.Children)
	assert.Same(t, second, child.Parent())
}

func TestNum(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0", svg.Num(0))
	assert.Equal(t, "0", svg.Num(-0.0001))
	assert.Equal(t, "1.5", svg.Num(1.5))
	assert.Equal(t, "-2", svg.Num(-2))
	assert.Equal(t, "3.142", svg.Num(3.14159))
}

func TestDiagonal(t *testing.T) {
	t.Parallel()

	got := svg.Diagonal(svg.Point{X: 0, Y: 10}, svg.Point{X: 100, Y: 30})
	assert.Equal(t, "M0,10C50,10 50,30 100,30", got)
	assert.Equal(t, "translate(1.5,-2)", svg.Translate(svg.Point{X: 1.5, Y: -2}))
}
