package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Sumatoshi-tech/wtree/pkg/event"
)

func TestDispatcher_DeliversInOrder(t *testing.T) {
	t.Parallel()

	d := event.NewDispatcher[int]()

	var got []string

	d.On("tick", func(p int) { got = append(got, "a") })
	d.On("tick", func(p int) { got = append(got, "b") })
	d.Emit("tick", 1)

	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 2, d.Count("tick"))
}

func TestDispatcher_Unsubscribe(t *testing.T) {
	t.Parallel()

	d := event.NewDispatcher[string]()
	calls := 0

	off := d.On("x", func(string) { calls++ })
	d.Emit("x", "")
	off()
	d.Emit("x", "")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, d.Count("x"))
}

func TestDispatcher_StrictRejectsUnknown(t *testing.T) {
	t.Parallel()

	d := event.NewDispatcher[int]("known")

	assert.True(t, d.Has("known"))
	assert.False(t, d.Has("other"))
	assert.Panics(t, func() { d.On("other", func(int) {}) })
	assert.Panics(t, func() { d.Emit("other", 0) })

	d.Register("other")
	assert.NotPanics(t, func() { d.Emit("other", 0) })
}

func TestDispatcher_EmitWithoutSubscribers(t *testing.T) {
	t.Parallel()

	d := event.NewDispatcher[int]()
	assert.NotPanics(t, func() { d.Emit("nobody", 0) })
}

func TestNewID_Unique(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for range 100 {
		id := event.NewID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}
