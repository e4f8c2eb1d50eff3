// Package weightedtree lays out, animates and renders a weighted hierarchy as
// a horizontal node-link tree. Node radius and branch thickness encode a
// numeric value scaled per depth; collapsing and expanding nodes animates the
// affected subtree in and out of view.
package weightedtree

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Sumatoshi-tech/wtree/pkg/event"
	"github.com/Sumatoshi-tech/wtree/pkg/scale"
	"github.com/Sumatoshi-tech/wtree/pkg/svg"
	"github.com/Sumatoshi-tech/wtree/pkg/transition"
)

// Lifecycle, property and pointer event names.
const (
	EventInitialize  = "initialize"
	EventValidate    = "validate"
	EventMeasure     = "measure"
	EventUpdate      = "update"
	EventDataPrepped = "data_prepped"
	EventNodeRefresh = "node_refresh"

	EventClick     = "click"
	EventDblClick  = "dblclick"
	EventMouseOver = "mouseover"
	EventMouseOut  = "mouseout"
)

// Property names used to build change events.
const (
	PropData          = "data"
	PropChildren      = "children"
	PropValue         = "value"
	PropLabel         = "label"
	PropKey           = "key"
	PropWidth         = "width"
	PropHeight        = "height"
	PropMargin        = "margin"
	PropDuration      = "duration"
	PropBranchPadding = "branch_padding"
	PropFixedSpan     = "fixed_span"
)

var properties = []string{
	PropData, PropChildren, PropValue, PropLabel, PropKey,
	PropWidth, PropHeight, PropMargin, PropDuration, PropBranchPadding, PropFixedSpan,
}

// PointerKinds lists the pointer events a host may forward through Pointer.
var PointerKinds = []string{EventClick, EventDblClick, EventMouseOver, EventMouseOut}

// ChangeEvent returns the event name emitted when prop is set.
func ChangeEvent(prop string) string { return prop + "_change" }

// Event is the payload passed to every handler. Pointer events carry the
// element and node or link under the pointer; change events carry the old and
// new property values when they are comparable.
type Event[D any] struct {
	Name    string
	Element *svg.Element
	Node    *Node[D]
	Link    *Link[D]
	Index   int
	Old     any
	New     any
}

// PassStats summarizes the latest layout pass.
type PassStats struct {
	Pass    int
	Visible int

	Entered, Updated, Exited                int
	LinksEntered, LinksUpdated, LinksExited int

	CanvasWidth  float64
	CanvasHeight float64
	ScrollTop    float64

	LayoutDuration time.Duration
}

// Option customizes a Viz at construction.
type Option[D any] func(*Viz[D])

// WithHandler subscribes h to name before the initialize event fires.
func WithHandler[D any](name string, h event.Handler[Event[D]]) Option[D] {
	return func(v *Viz[D]) { v.events.On(name, h) }
}

// WithEase replaces the cubic in-out easing.
func WithEase[D any](ease transition.EaseFunc) Option[D] {
	return func(v *Viz[D]) { v.timeline.SetEase(ease) }
}

// Viz is the weighted tree component. It is not safe for concurrent use;
// hosts serialize Update, toggles, pointer events and Tick.
type Viz[D any] struct {
	cfg Config[D]
	id  string
	log *slog.Logger

	events   *event.Dispatcher[Event[D]]
	timeline *transition.Timeline

	dataDirty bool
	refresh   bool

	root     *Node[D]
	registry map[string]*Node[D]
	nodes    []*Node[D]
	links    []Link[D]
	maxDepth int

	size         Size
	levelSpacing float64
	depthSpan    float64
	ranges       map[int]Range
	radius       *scale.Continuous

	scene *scene[D]
	stats PassStats
	pass  int
}

// New creates a component from cfg, filling unset optional properties with
// their defaults, and emits initialize. Configuration is validated by Update.
func New[D any](cfg Config[D], opts ...Option[D]) *Viz[D] {
	applyDefaults(&cfg)

	names := []string{
		EventInitialize, EventValidate, EventMeasure, EventUpdate, EventDataPrepped, EventNodeRefresh,
	}
	names = append(names, PointerKinds...)

	for _, p := range properties {
		names = append(names, ChangeEvent(p))
	}

	v := &Viz[D]{
		cfg:       cfg,
		id:        event.NewID(),
		log:       cfg.Logger,
		events:    event.NewDispatcher[Event[D]](names...),
		timeline:  transition.NewTimeline(cfg.Clock),
		dataDirty: true,
		registry:  make(map[string]*Node[D]),
		ranges:    make(map[int]Range),
		radius:    scale.Sqrt().OnDegenerate(scale.DegenerateMax),
	}

	for _, opt := range opts {
		opt(v)
	}

	v.scene = newScene[D](v.id, cfg.Width, cfg.Height)
	v.emit(Event[D]{Name: EventInitialize, Element: v.scene.root})

	return v
}

func applyDefaults[D any](cfg *Config[D]) {
	def := DefaultConfig[D]()

	if cfg.Width == 0 {
		cfg.Width = def.Width
	}

	if cfg.Height == 0 {
		cfg.Height = def.Height
	}

	if cfg.BranchPadding == 0 {
		cfg.BranchPadding = def.BranchPadding
	}

	if cfg.FixedSpan == 0 {
		cfg.FixedSpan = def.FixedSpan
	}

	if cfg.Label == nil {
		cfg.Label = func(d D) string { return fmt.Sprint(d) }
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
}

// ID returns the instance identifier used to prefix element ids.
func (v *Viz[D]) ID() string { return v.id }

// Config returns a copy of the current properties.
func (v *Viz[D]) Config() Config[D] { return v.cfg }

// On subscribes h to the named event and returns its unsubscribe function.
func (v *Viz[D]) On(name string, h event.Handler[Event[D]]) func() {
	return v.events.On(name, h)
}

func (v *Viz[D]) emit(e Event[D]) {
	v.events.Emit(e.Name, e)
}

// Update validates the configuration, re-measures, prepares the data when it
// changed (or always when refresh is set) and runs a layout pass rooted at
// the tree root.
func (v *Viz[D]) Update(refresh bool) error {
	if refresh {
		v.refresh = true
	}

	if err := v.validate(); err != nil {
		return err
	}

	if err := v.measure(); err != nil {
		return err
	}

	v.scene.resize(v.cfg.Width, v.cfg.Height, v.size)
	v.render(v.root)

	return nil
}

func (v *Viz[D]) validate() error {
	if err := v.cfg.Validate(); err != nil {
		return err
	}

	v.emit(Event[D]{Name: EventValidate})

	return nil
}

// Tick advances every running transition to the clock's current time. It
// reports whether any transition is still running.
func (v *Viz[D]) Tick() bool {
	return v.timeline.Tick()
}

// Run calls Tick every interval until ctx is done. Hosts that touch the
// component from other goroutines pass the lock guarding it; each tick runs
// with lock held. A nil lock ticks unguarded.
func (v *Viz[D]) Run(ctx context.Context, interval time.Duration, lock sync.Locker) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if lock != nil {
				lock.Lock()
			}

			v.Tick()

			if lock != nil {
				lock.Unlock()
			}
		}
	}
}

// Pointer forwards a pointer event from the host to the node or link with
// the given key. Link keys are the IDs of their target nodes; nodes win when
// both exist, so links are addressed with the "link:" prefix.
func (v *Viz[D]) Pointer(kind, id string) error {
	if !isPointerKind(kind) {
		return fmt.Errorf("%w: unknown pointer event %q", ErrConfig, kind)
	}

	if target, ok := strings.CutPrefix(id, linkKeyPrefix); ok {
		return v.pointerLink(kind, target)
	}

	shape, ok := v.scene.nodes[id]
	if !ok || shape.exiting {
		return fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}

	v.emit(Event[D]{Name: kind, Element: shape.group, Node: shape.node, Index: v.indexOf(shape.node)})

	return nil
}

func (v *Viz[D]) pointerLink(kind, id string) error {
	shape, ok := v.scene.links[id]
	if !ok || shape.exiting {
		return fmt.Errorf("%w: link %q", ErrUnknownNode, id)
	}

	link := shape.link

	v.emit(Event[D]{Name: kind, Element: shape.path, Node: link.Target, Link: &link, Index: v.linkIndex(link.Target)})

	return nil
}

// linkIndex returns the position in Links of the link ending at target.
func (v *Viz[D]) linkIndex(target *Node[D]) int {
	for i, l := range v.links {
		if l.Target == target {
			return i
		}
	}

	return -1
}

func (v *Viz[D]) indexOf(n *Node[D]) int {
	for i, m := range v.nodes {
		if m == n {
			return i
		}
	}

	return -1
}

func isPointerKind(kind string) bool {
	return slices.Contains(PointerKinds, kind)
}

// Root returns the root wrapper of the prepared tree, nil before the first Update.
func (v *Viz[D]) Root() *Node[D] { return v.root }

// Nodes returns the visible nodes of the latest pass, deepest first.
func (v *Viz[D]) Nodes() []*Node[D] { return v.nodes }

// Links returns the visible links of the latest pass.
func (v *Viz[D]) Links() []Link[D] { return v.links }

// Lookup returns the prepared node with the given ID.
func (v *Viz[D]) Lookup(id string) (*Node[D], bool) {
	n, ok := v.registry[id]

	return n, ok
}

// Ranges returns the per-depth value ranges of the latest pass.
func (v *Viz[D]) Ranges() map[int]Range {
	return maps.Clone(v.ranges)
}

// MaxDepth returns the deepest level of the prepared hierarchy.
func (v *Viz[D]) MaxDepth() int { return v.maxDepth }

// Size returns the plot area of the latest measure.
func (v *Viz[D]) Size() Size { return v.size }

// LevelSpacing returns the vertical node size used by the latest measure.
func (v *Viz[D]) LevelSpacing() float64 { return v.levelSpacing }

// DepthSpan returns the horizontal distance between depths.
func (v *Viz[D]) DepthSpan() float64 { return v.depthSpan }

// Stats returns the summary of the latest pass.
func (v *Viz[D]) Stats() PassStats { return v.stats }

// Busy reports whether any transition is running.
func (v *Viz[D]) Busy() bool { return v.timeline.Len() > 0 }

// Scene returns the retained SVG root element.
func (v *Viz[D]) Scene() *svg.Element { return v.scene.root }

// WriteSVG encodes the current frame.
func (v *Viz[D]) WriteSVG(w io.Writer) error {
	if err := v.scene.root.Encode(w); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}

	return nil
}
