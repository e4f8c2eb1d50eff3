// Package export writes laid-out trees as static SVG, self-contained HTML
// pages and animation frame sequences.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/Sumatoshi-tech/wtree/pkg/plotpage"
	"github.com/Sumatoshi-tech/wtree/pkg/transition"
	"github.com/Sumatoshi-tech/wtree/pkg/weightedtree"
)

// Sentinel errors.
var (
	ErrInvalidFPS = errors.New("fps must be positive")
	ErrUnsettled  = errors.New("transitions did not settle")
)

// settleSlack bounds the extra frames allowed past the configured duration.
const settleSlack = 2

// SVG writes the current scene of viz.
func SVG[D any](w io.Writer, viz *weightedtree.Viz[D]) error {
	err := viz.WriteSVG(w)
	if err != nil {
		return fmt.Errorf("export svg: %w", err)
	}

	return nil
}

// PageOptions configures HTML export.
type PageOptions struct {
	Title       string
	Description string
	Theme       plotpage.Theme
}

// HTML writes a page holding the scene and an interactive echarts view of
// the same hierarchy.
func HTML[D any](w io.Writer, viz *weightedtree.Viz[D], po PageOptions) error {
	var scene bytes.Buffer

	err := viz.WriteSVG(&scene)
	if err != nil {
		return fmt.Errorf("export html: %w", err)
	}

	page := plotpage.NewPage(po.Title, po.Description).WithTheme(po.Theme)
	page.Add(
		plotpage.Section{
			Title:    "Layout",
			Subtitle: Describe(viz.Stats()),
			Chart:    plotpage.Fragment(template.HTML(scene.String())), //nolint:gosec // the scene is escaped by the svg encoder
			Hint: plotpage.Hint{
				Title: "Reading the tree",
				Items: []string{
					"Node radius grows with the square root of the value, scaled per depth.",
					"Shaded nodes are collapsed and hide their children.",
				},
			},
		},
		plotpage.Section{
			Title: "Explorer",
			Chart: plotpage.WrapChart(plotpage.BuildTreeChart(
				plotpage.NewChartOpts(po.Theme), plotpage.DefaultTreeStyle(), viz.Root())),
		},
	)

	err = page.Render(w)
	if err != nil {
		return fmt.Errorf("export html: %w", err)
	}

	return nil
}

// Settle runs the pending transitions of viz to completion on clock.
func Settle[D any](viz *weightedtree.Viz[D], clock *transition.ManualClock) error {
	for range settleSlack + 1 {
		if !viz.Busy() {
			return nil
		}

		clock.Advance(viz.Config().Duration)
		viz.Tick()
	}

	if viz.Busy() {
		return ErrUnsettled
	}

	return nil
}

// Describe formats pass statistics as one line.
func Describe(s weightedtree.PassStats) string {
	return fmt.Sprintf("%d visible nodes, %d links, canvas %.0f x %.0f",
		s.Visible, max(s.Visible-1, 0), s.CanvasWidth, s.CanvasHeight)
}

// frameStep returns the clock step for fps.
func frameStep(fps int) (time.Duration, error) {
	if fps <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidFPS, fps)
	}

	return time.Second / time.Duration(fps), nil
}
