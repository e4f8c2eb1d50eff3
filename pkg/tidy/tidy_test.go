package tidy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/wtree/pkg/tidy"
)

type item struct {
	name string
	kids []*item
}

func kids(it *item) []*item { return it.kids }

func leaf(name string) *item { return &item{name: name} }

func branch(name string, children ...*item) *item {
	return &item{name: name, kids: children}
}

func byName(placements []tidy.Placement[*item]) map[string]tidy.Placement[*item] {
	out := make(map[string]tidy.Placement[*item], len(placements))
	for _, p := range placements {
		out[p.Node.name] = p
	}

	return out
}

func TestLayout_SingleNode(t *testing.T) {
	t.Parallel()

	got := tidy.Layout(leaf("root"), kids, tidy.Options[*item]{NodeSize: 10, LevelSize: 5})
	require.Len(t, got, 1)
	assert.InDelta(t, 0, got[0].Breadth, 1e-9)
	assert.Equal(t, -1, got[0].Parent)
	assert.Equal(t, 0, got[0].Depth)
}

func TestLayout_SiblingsAreCenteredUnderParent(t *testing.T) {
	t.Parallel()

	root := branch("root", leaf("a"), leaf("b"), leaf("c"))
	got := byName(tidy.Layout(root, kids, tidy.Options[*item]{NodeSize: 10}))

	assert.InDelta(t, 0, got["root"].Breadth, 1e-9)
	assert.InDelta(t, -10, got["a"].Breadth, 1e-9)
	assert.InDelta(t, 0, got["b"].Breadth, 1e-9)
	assert.InDelta(t, 10, got["c"].Breadth, 1e-9)
}

func TestLayout_TwoChildrenSymmetric(t *testing.T) {
	t.Parallel()

	root := branch("root", leaf("a"), leaf("b"))
	got := byName(tidy.Layout(root, kids, tidy.Options[*item]{NodeSize: 10}))

	assert.InDelta(t, -5, got["a"].Breadth, 1e-9)
	assert.InDelta(t, 5, got["b"].Breadth, 1e-9)
}

func TestLayout_CousinsUseWiderSeparation(t *testing.T) {
	t.Parallel()

	root := branch("root", branch("a", leaf("a1")), branch("b", leaf("b1")))
	got := byName(tidy.Layout(root, kids, tidy.Options[*item]{NodeSize: 1, LevelSize: 1}))

	assert.InDelta(t, 2, got["b1"].Breadth-got["a1"].Breadth, 1e-9)
	assert.InDelta(t, -1, got["a"].Breadth, 1e-9)
	assert.InDelta(t, 1, got["b"].Breadth, 1e-9)
	assert.InDelta(t, 0, got["root"].Breadth, 1e-9)
	assert.InDelta(t, 2, got["a1"].Level, 1e-9)
}

func TestLayout_PreOrderWithParentIndex(t *testing.T) {
	t.Parallel()

	root := branch("root", branch("a", leaf("a1"), leaf("a2")), leaf("b"))
	got := tidy.Layout(root, kids, tidy.Options[*item]{NodeSize: 1})

	names := make([]string, len(got))
	for i, p := range got {
		names[i] = p.Node.name
	}

	assert.Equal(t, []string{"root", "a", "a1", "a2", "b"}, names)
	assert.Equal(t, []int{-1, 0, 1, 1, 0}, []int{got[0].Parent, got[1].Parent, got[2].Parent, got[3].Parent, got[4].Parent})
	assert.Equal(t, []int{0, 1, 2, 2, 1}, []int{got[0].Depth, got[1].Depth, got[2].Depth, got[3].Depth, got[4].Depth})
}

func TestLayout_NoOverlapAtAnyDepth(t *testing.T) {
	t.Parallel()

	root := branch("root",
		branch("a", branch("a1", leaf("a11"), leaf("a12"), leaf("a13")), leaf("a2")),
		leaf("b"),
		branch("c", leaf("c1"), branch("c2", leaf("c21"), leaf("c22"))),
	)

	got := tidy.Layout(root, kids, tidy.Options[*item]{NodeSize: 1})

	byDepth := map[int][]float64{}
	for _, p := range got {
		byDepth[p.Depth] = append(byDepth[p.Depth], p.Breadth)
	}

	for depth, row := range byDepth {
		for i := 1; i < len(row); i++ {
			assert.GreaterOrEqual(t, row[i]-row[i-1], 1.0-1e-9, "depth %d overlaps", depth)
		}
	}
}

func TestLayout_CustomSeparation(t *testing.T) {
	t.Parallel()

	root := branch("root", leaf("a"), leaf("b"))
	opts := tidy.Options[*item]{
		NodeSize: 1,
		Separation: func(_, _ *item, _ bool) float64 {
			return 4
		},
	}

	got := byName(tidy.Layout(root, kids, opts))
	assert.InDelta(t, 4, got["b"].Breadth-got["a"].Breadth, 1e-9)
}
