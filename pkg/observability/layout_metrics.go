package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/wtree/pkg/weightedtree"
)

const (
	metricPassesTotal  = "wtree.layout.passes.total"
	metricPassDuration = "wtree.layout.duration.seconds"
	metricNodesEntered = "wtree.layout.nodes.entered.total"
	metricNodesExited  = "wtree.layout.nodes.exited.total"
	metricVisibleNodes = "wtree.layout.nodes.visible"

	attrTrigger = "trigger"
)

// layoutBuckets spans 10µs to 100ms; passes over a few thousand visible
// nodes stay well under the top bucket.
var layoutBuckets = []float64{0.00001, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1}

// LayoutMetrics records one data point per layout pass.
type LayoutMetrics struct {
	passes   metric.Int64Counter
	duration metric.Float64Histogram
	entered  metric.Int64Counter
	exited   metric.Int64Counter
	visible  metric.Int64Gauge
}

// NewLayoutMetrics creates the layout instruments from mt.
func NewLayoutMetrics(mt metric.Meter) (*LayoutMetrics, error) {
	passes, err := mt.Int64Counter(metricPassesTotal,
		metric.WithDescription("Layout passes run"),
		metric.WithUnit("{pass}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricPassesTotal, err)
	}

	duration, err := mt.Float64Histogram(metricPassDuration,
		metric.WithDescription("Time spent laying out and scheduling one pass"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(layoutBuckets...))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricPassDuration, err)
	}

	entered, err := mt.Int64Counter(metricNodesEntered,
		metric.WithDescription("Nodes that entered the scene"),
		metric.WithUnit("{node}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricNodesEntered, err)
	}

	exited, err := mt.Int64Counter(metricNodesExited,
		metric.WithDescription("Nodes that left the scene"),
		metric.WithUnit("{node}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricNodesExited, err)
	}

	visible, err := mt.Int64Gauge(metricVisibleNodes,
		metric.WithDescription("Visible nodes after the latest pass"),
		metric.WithUnit("{node}"))
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricVisibleNodes, err)
	}

	return &LayoutMetrics{passes: passes, duration: duration, entered: entered, exited: exited, visible: visible}, nil
}

// RecordPass records stats under trigger ("update", "toggle", ...).
func (lm *LayoutMetrics) RecordPass(ctx context.Context, trigger string, stats weightedtree.PassStats) {
	attrs := metric.WithAttributes(attribute.String(attrTrigger, trigger))

	lm.passes.Add(ctx, 1, attrs)
	lm.duration.Record(ctx, stats.LayoutDuration.Seconds(), attrs)
	lm.entered.Add(ctx, int64(stats.Entered), attrs)
	lm.exited.Add(ctx, int64(stats.Exited), attrs)
	lm.visible.Record(ctx, int64(stats.Visible))
}
