package weightedtree

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/wtree/pkg/transition"
)

// Configuration errors. Every one of them is reported before any layout or
// rendering work starts.
var (
	ErrConfig          = errors.New("weightedtree: invalid configuration")
	ErrMissingAccessor = errors.New("accessor not set")
	ErrMissingData     = errors.New("data not set")
	ErrInvalidSize     = errors.New("width and height must be positive")
	ErrInvalidMeasure  = errors.New("invalid measure")
)

// Hierarchy errors.
var (
	ErrCycle        = errors.New("weightedtree: hierarchy contains a cycle")
	ErrDuplicateKey = errors.New("weightedtree: duplicate node key")
	ErrUnknownNode  = errors.New("weightedtree: node is not part of the current tree")
)

// Defaults.
const (
	DefaultWidth    = 600
	DefaultHeight   = 600
	DefaultDuration = 500 * time.Millisecond
	// Auto selects automatic spacing for BranchPadding and FixedSpan.
	Auto = -1.0

	percentMax = 100
)

// Measure is an absolute pixel length or a percentage of an extent.
type Measure struct {
	Value   float64
	Percent bool
}

// Px returns an absolute measure.
func Px(v float64) Measure { return Measure{Value: v} }

// Pct returns a percentage measure.
func Pct(v float64) Measure { return Measure{Value: v, Percent: true} }

// ParseMeasure accepts "12", "12px" or "5%".
func ParseMeasure(s string) (Measure, error) {
	raw := strings.TrimSpace(s)

	percent := strings.HasSuffix(raw, "%")
	raw = strings.TrimSuffix(strings.TrimSuffix(raw, "%"), "px")

	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return Measure{}, fmt.Errorf("%w %q: %w", ErrInvalidMeasure, s, err)
	}

	return Measure{Value: v, Percent: percent}, nil
}

// Resolve converts the measure against extent. Percentages are capped at
// 100 and rounded to whole pixels.
func (m Measure) Resolve(extent float64) float64 {
	if !m.Percent {
		return m.Value
	}

	return math.Round(extent * math.Min(m.Value, percentMax) / percentMax)
}

// String formats the measure the way ParseMeasure reads it.
func (m Measure) String() string {
	s := strconv.FormatFloat(m.Value, 'f', -1, 64)
	if m.Percent {
		return s + "%"
	}

	return s
}

// Margin is the space between the plot and the container border.
type Margin struct {
	Top, Bottom, Left, Right Measure
}

// DefaultMargin returns 5% top and bottom, 8% left and 7% right.
func DefaultMargin() Margin {
	return Margin{Top: Pct(5), Bottom: Pct(5), Left: Pct(8), Right: Pct(7)}
}

// Size is the plot area left after resolving margins.
type Size struct {
	Width, Height            float64
	Top, Bottom, Left, Right float64
}

// ComputeSize resolves margin against a width x height container.
func ComputeSize(margin Margin, width, height float64) Size {
	top := margin.Top.Resolve(height)
	bottom := margin.Bottom.Resolve(height)
	left := margin.Left.Resolve(width)
	right := margin.Right.Resolve(width)

	return Size{
		Width:  width - left - right,
		Height: height - top - bottom,
		Top:    top,
		Bottom: bottom,
		Left:   left,
		Right:  right,
	}
}

// Config holds the component properties. Children, Value and Key are
// required, as is Data. Margin and Duration are taken literally, so a zero
// margin or an instant transition is honored; start from DefaultConfig to
// get the stock values. A zero Width, Height, BranchPadding or FixedSpan
// falls back to its default.
type Config[D any] struct {
	// Data is the root datum.
	Data D
	// Children returns the ordered children of a datum; nil or empty for leaves.
	Children func(D) []D
	// Value returns the weight encoded by node radius and branch thickness.
	Value func(D) float64
	// Label returns the display text; defaults to fmt.Sprint of the datum.
	Label func(D) string
	// Key returns an identifier unique across the tree and stable across updates.
	Key func(D) string

	Width  float64
	Height float64
	Margin Margin
	// Duration is the length of every animated transition; zero applies
	// each pass on the next tick.
	Duration time.Duration
	// BranchPadding is the vertical node spacing as a fraction of the plot's
	// smaller side; Auto divides it by the number of first-level nodes.
	BranchPadding float64
	// FixedSpan is the horizontal distance between depths; Auto divides the
	// plot width by the number of levels.
	FixedSpan float64

	// Clock drives transitions; nil uses the wall clock.
	Clock transition.Clock
	// Logger receives debug output for every pass; nil discards it.
	Logger *slog.Logger
}

// DefaultConfig returns a configuration with every optional property set.
func DefaultConfig[D any]() Config[D] {
	return Config[D]{
		Width:         DefaultWidth,
		Height:        DefaultHeight,
		Margin:        DefaultMargin(),
		Duration:      DefaultDuration,
		BranchPadding: Auto,
		FixedSpan:     Auto,
	}
}

// Validate reports the first missing or invalid property.
func (c *Config[D]) Validate() error {
	var missing []string

	if c.Children == nil {
		missing = append(missing, "children")
	}

	if c.Value == nil {
		missing = append(missing, "value")
	}

	if c.Key == nil {
		missing = append(missing, "key")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %w: %s", ErrConfig, ErrMissingAccessor, strings.Join(missing, ", "))
	}

	if isNil(c.Data) {
		return fmt.Errorf("%w: %w", ErrConfig, ErrMissingData)
	}

	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: %w: %vx%v", ErrConfig, ErrInvalidSize, c.Width, c.Height)
	}

	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
