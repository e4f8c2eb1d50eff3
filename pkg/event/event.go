// Package event provides a named-event dispatcher that components embed by
// composition.
package event

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"sync/atomic"
)

// Handler receives an event payload.
type Handler[P any] func(payload P)

type subscription[P any] struct {
	id      uint64
	handler Handler[P]
}

// Dispatcher routes payloads to the handlers subscribed to an event name.
// Handlers run synchronously in subscription order. Subscribing or
// unsubscribing from inside a handler affects the next Emit only.
type Dispatcher[P any] struct {
	mu     sync.RWMutex
	known  map[string]struct{}
	subs   map[string][]subscription[P]
	nextID uint64
	strict bool
}

// NewDispatcher creates a dispatcher. When names are given the dispatcher is
// strict: subscribing to or emitting any other name panics, which surfaces
// typos at wiring time.
func NewDispatcher[P any](names ...string) *Dispatcher[P] {
	d := &Dispatcher[P]{
		known: make(map[string]struct{}, len(names)),
		subs:  make(map[string][]subscription[P]),
	}

	for _, n := range names {
		d.known[n] = struct{}{}
	}

	d.strict = len(names) > 0

	return d
}

// Register adds event names to a strict dispatcher.
func (d *Dispatcher[P]) Register(names ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, n := range names {
		d.known[n] = struct{}{}
	}
}

// Has reports whether name is a known event.
func (d *Dispatcher[P]) Has(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	_, ok := d.known[name]

	return ok || !d.strict
}

// On subscribes handler to name and returns a function that unsubscribes it.
func (d *Dispatcher[P]) On(name string, handler Handler[P]) (unsubscribe func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.check(name)

	d.nextID++
	id := d.nextID
	d.subs[name] = append(d.subs[name], subscription[P]{id: id, handler: handler})

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()

		list := d.subs[name]
		for i, s := range list {
			if s.id == id {
				d.subs[name] = append(list[:i:i], list[i+1:]...)

				return
			}
		}
	}
}

// Emit delivers payload to every handler subscribed to name.
func (d *Dispatcher[P]) Emit(name string, payload P) {
	d.mu.RLock()
	_, known := d.known[name]
	list := d.subs[name]
	d.mu.RUnlock()

	if d.strict && !known {
		panic(fmt.Sprintf("event: unknown event %q", name))
	}

	for _, s := range list {
		s.handler(payload)
	}
}

// Count returns the number of handlers subscribed to name.
func (d *Dispatcher[P]) Count(name string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.subs[name])
}

func (d *Dispatcher[P]) check(name string) {
	if !d.strict {
		return
	}

	if _, ok := d.known[name]; !ok {
		panic(fmt.Sprintf("event: unknown event %q", name))
	}
}

var (
	idSeq    atomic.Uint64
	idPrefix = newPrefix()
)

func newPrefix() string {
	var b [4]byte

	_, err := rand.Read(b[:])
	if err != nil {
		return "vz"
	}

	return "vz" + hex.EncodeToString(b[:])
}

// NewID returns a process-unique identifier suitable for element ids.
func NewID() string {
	return fmt.Sprintf("%s%d", idPrefix, idSeq.Add(1))
}
