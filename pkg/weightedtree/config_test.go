package weightedtree_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/wtree/pkg/transition"
	"github.com/Sumatoshi-tech/wtree/pkg/weightedtree"
)

func TestParseMeasure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want weightedtree.Measure
	}{
		{"12", weightedtree.Px(12)},
		{"12px", weightedtree.Px(12)},
		{" 5% ", weightedtree.Pct(5)},
		{"7.5%", weightedtree.Pct(7.5)},
	}

	for _, tt := range tests {
		got, err := weightedtree.ParseMeasure(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := weightedtree.ParseMeasure("wide")
	require.ErrorIs(t, err, weightedtree.ErrInvalidMeasure)
}

func TestMeasure_Resolve(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 30.0, weightedtree.Pct(5).Resolve(600), 1e-9)
	assert.InDelta(t, 600.0, weightedtree.Pct(250).Resolve(600), 1e-9)
	assert.InDelta(t, 33.0, weightedtree.Pct(5.5).Resolve(600), 1e-9)
	assert.InDelta(t, 12.0, weightedtree.Px(12).Resolve(600), 1e-9)
	assert.Equal(t, "5%", weightedtree.Pct(5).String())
	assert.Equal(t, "12", weightedtree.Px(12).String())
}

func TestComputeSize(t *testing.T) {
	t.Parallel()

	m := weightedtree.Margin{
		Top: weightedtree.Px(10), Bottom: weightedtree.Px(20),
		Left: weightedtree.Pct(10), Right: weightedtree.Px(0),
	}

	size := weightedtree.ComputeSize(m, 400, 300)

	assert.InDelta(t, 360.0, size.Width, 1e-9)
	assert.InDelta(t, 270.0, size.Height, 1e-9)
	assert.InDelta(t, 40.0, size.Left, 1e-9)
}

func TestConfig_DefaultsApplied(t *testing.T) {
	t.Parallel()

	viz := weightedtree.New(config(sample(), nil))
	cfg := viz.Config()

	assert.InDelta(t, weightedtree.DefaultWidth, cfg.Width, 1e-9)
	assert.InDelta(t, weightedtree.DefaultHeight, cfg.Height, 1e-9)
	assert.Equal(t, weightedtree.DefaultDuration, cfg.Duration)
	assert.Equal(t, weightedtree.DefaultMargin(), cfg.Margin)
	assert.InDelta(t, weightedtree.Auto, cfg.BranchPadding, 1e-9)
	assert.NotEmpty(t, viz.ID())
}

func TestConfig_ZeroMarginAndDurationHonored(t *testing.T) {
	t.Parallel()

	cfg := config(sample(), transition.NewManualClock(time.Unix(0, 0)))
	cfg.Margin = weightedtree.Margin{
		Top: weightedtree.Px(0), Bottom: weightedtree.Px(0),
		Left: weightedtree.Px(0), Right: weightedtree.Px(0),
	}
	cfg.Duration = 0

	viz := weightedtree.New(cfg)
	require.NoError(t, viz.Update(false))

	assert.Equal(t, weightedtree.Margin{}, viz.Config().Margin)
	assert.Zero(t, viz.Config().Duration)

	size := viz.Size()
	assert.InDelta(t, weightedtree.DefaultWidth, size.Width, 1e-9)
	assert.InDelta(t, weightedtree.DefaultHeight, size.Height, 1e-9)
	assert.Zero(t, size.Left)
	assert.Zero(t, size.Top)

	assert.True(t, viz.Busy())
	assert.False(t, viz.Tick(), "a zero duration settles on the first tick")
	assert.False(t, viz.Busy())
}
