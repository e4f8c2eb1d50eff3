package transition_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/wtree/pkg/transition"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestTimeline_RunsTweenToCompletion(t *testing.T) {
	t.Parallel()

	clock := transition.NewManualClock(epoch)
	tl := transition.NewTimeline(clock)
	tl.SetEase(transition.Linear)

	var seen []float64

	ended := 0

	tl.Start("a", 100*time.Millisecond, func(p float64) { seen = append(seen, p) }, func() { ended++ })

	clock.Advance(50 * time.Millisecond)
	assert.True(t, tl.Tick())

	clock.Advance(50 * time.Millisecond)
	assert.False(t, tl.Tick())

	require.Len(t, seen, 2)
	assert.InDelta(t, 0.5, seen[0], 1e-9)
	assert.InDelta(t, 1, seen[1], 1e-9)
	assert.Equal(t, 1, ended)
	assert.Equal(t, 0, tl.Len())
}

func TestTimeline_InterruptSuppressesEnd(t *testing.T) {
	t.Parallel()

	clock := transition.NewManualClock(epoch)
	tl := transition.NewTimeline(clock)

	firstEnded, secondEnded := 0, 0

	tl.Start("node", 100*time.Millisecond, nil, func() { firstEnded++ })
	clock.Advance(40 * time.Millisecond)
	tl.Tick()

	tl.Start("node", 100*time.Millisecond, nil, func() { secondEnded++ })
	clock.Advance(100 * time.Millisecond)
	tl.Tick()

	assert.Equal(t, 0, firstEnded)
	assert.Equal(t, 1, secondEnded)
}

func TestTimeline_ZeroDurationEndsOnFirstTick(t *testing.T) {
	t.Parallel()

	tl := transition.NewTimeline(transition.NewManualClock(epoch))

	var last float64

	tl.Start("x", 0, func(p float64) { last = p }, nil)
	assert.True(t, tl.Active("x"))
	assert.False(t, tl.Tick())
	assert.InDelta(t, 1, last, 1e-9)
	assert.False(t, tl.Active("x"))
}

func TestTimeline_EndCallbackMayStartTransitions(t *testing.T) {
	t.Parallel()

	clock := transition.NewManualClock(epoch)
	tl := transition.NewTimeline(clock)

	chained := false

	tl.Start("a", 10*time.Millisecond, nil, func() {
		tl.Start("b", 10*time.Millisecond, nil, func() { chained = true })
	})

	clock.Advance(10 * time.Millisecond)
	assert.True(t, tl.Tick())

	clock.Advance(10 * time.Millisecond)
	assert.False(t, tl.Tick())
	assert.True(t, chained)
}

func TestCubicInOut(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0, transition.CubicInOut(0), 1e-9)
	assert.InDelta(t, 0.5, transition.CubicInOut(0.5), 1e-9)
	assert.InDelta(t, 1, transition.CubicInOut(1), 1e-9)
	assert.Less(t, transition.CubicInOut(0.25), 0.25)
	assert.Greater(t, transition.CubicInOut(0.75), 0.75)
}

func TestLerp(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 15, transition.Lerp(10, 20, 0.5), 1e-9)
}

func TestGroup_FiresOnceWhenDrained(t *testing.T) {
	t.Parallel()

	fired := 0
	g := transition.NewGroup(func() { fired++ })

	g.Add(3)
	g.Arm()
	g.Done()
	g.Done()
	assert.Equal(t, 0, fired)

	g.Done()
	assert.Equal(t, 1, fired)
	assert.True(t, g.Settled())

	g.Add(1)
	g.Done()
	assert.Equal(t, 1, fired)
}

func TestGroup_ArmWithNothingPendingSettles(t *testing.T) {
	t.Parallel()

	fired := 0
	g := transition.NewGroup(func() { fired++ })

	g.Arm()
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, g.Pending())
}

func TestGroup_DoesNotFireBeforeArm(t *testing.T) {
	t.Parallel()

	fired := 0
	g := transition.NewGroup(func() { fired++ })

	g.Add(1)
	g.Done()
	assert.Equal(t, 0, fired)

	g.Arm()
	assert.Equal(t, 1, fired)
}
