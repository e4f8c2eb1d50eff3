package transition

import (
	"time"
)

// Tween receives eased progress in [0,1] on every tick.
type Tween func(progress float64)

// Transition is one scheduled interpolation.
type Transition struct {
	key      string
	start    time.Time
	duration time.Duration
	tween    Tween
	onEnd    func()

	stopped bool
}

// Key returns the element key the transition animates.
func (tr *Transition) Key() string { return tr.key }

// Timeline runs at most one transition per key. Starting a transition on a
// busy key interrupts the running one, which then never reports completion.
// A Timeline is not safe for concurrent use.
type Timeline struct {
	clock  Clock
	ease   EaseFunc
	active map[string]*Transition
	queue  []*Transition
}

// NewTimeline creates a timeline reading time from clock. A nil clock uses
// the wall clock.
func NewTimeline(clock Clock) *Timeline {
	if clock == nil {
		clock = SystemClock{}
	}

	return &Timeline{
		clock:  clock,
		ease:   CubicInOut,
		active: make(map[string]*Transition),
	}
}

// SetEase replaces the easing applied to every transition started afterwards.
func (tl *Timeline) SetEase(ease EaseFunc) {
	if ease == nil {
		ease = Linear
	}

	tl.ease = ease
}

// Start schedules tween on key for duration. onEnd, if set, runs once after
// the final tween call unless the transition is interrupted first.
func (tl *Timeline) Start(key string, duration time.Duration, tween Tween, onEnd func()) *Transition {
	tl.Interrupt(key)

	tr := &Transition{
		key:      key,
		start:    tl.clock.Now(),
		duration: duration,
		tween:    tween,
		onEnd:    onEnd,
	}

	tl.active[key] = tr
	tl.queue = append(tl.queue, tr)

	return tr
}

// Interrupt stops the transition running on key, if any.
func (tl *Timeline) Interrupt(key string) bool {
	tr, ok := tl.active[key]
	if !ok {
		return false
	}

	tr.stopped = true
	delete(tl.active, key)

	return true
}

// Active reports whether key has a running transition.
func (tl *Timeline) Active(key string) bool {
	_, ok := tl.active[key]

	return ok
}

// Len returns the number of running transitions.
func (tl *Timeline) Len() int { return len(tl.active) }

// Tick applies every running transition at the current clock time and
// completes the ones that reached their duration. It reports whether any
// transition is still running afterwards.
func (tl *Timeline) Tick() bool {
	now := tl.clock.Now()

	pending := tl.queue
	tl.queue = nil

	var ended []*Transition

	for _, tr := range pending {
		if tr.stopped {
			continue
		}

		progress := 1.0
		if tr.duration > 0 {
			progress = float64(now.Sub(tr.start)) / float64(tr.duration)
			progress = min(max(progress, 0), 1)
		}

		if tr.tween != nil {
			tr.tween(tl.ease(progress))
		}

		if progress >= 1 {
			tr.stopped = true
			delete(tl.active, tr.key)
			ended = append(ended, tr)

			continue
		}

		tl.queue = append(tl.queue, tr)
	}

	for _, tr := range ended {
		if tr.onEnd != nil {
			tr.onEnd()
		}
	}

	return len(tl.active) > 0
}
