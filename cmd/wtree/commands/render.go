package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Sumatoshi-tech/wtree/pkg/config"
	"github.com/Sumatoshi-tech/wtree/pkg/dataset"
	"github.com/Sumatoshi-tech/wtree/pkg/export"
	"github.com/Sumatoshi-tech/wtree/pkg/observability"
	"github.com/Sumatoshi-tech/wtree/pkg/plotpage"
	"github.com/Sumatoshi-tech/wtree/pkg/transition"
	"github.com/Sumatoshi-tech/wtree/pkg/weightedtree"
)

const (
	renderDirPerm  = 0o750
	renderFilePerm = 0o600
	stdoutName     = "-"
)

// ErrFramesNeedDir is returned when uncompressed frames would go to stdout.
var ErrFramesNeedDir = errors.New("frames output needs a directory (use --output) or --lz4")

type renderFlags struct {
	format    string
	output    string
	theme     string
	title     string
	expand    []string
	expandAll bool
	lz4       bool
	fps       int
	width     float64
	height    float64
	duration  time.Duration
}

func newRenderCommand(g *globals) *cobra.Command {
	var rf renderFlags

	cmd := &cobra.Command{
		Use:   "render <data>",
		Short: "Write the laid-out tree as SVG, HTML or animation frames",
		Long: `Load a JSON, YAML or TOML dataset, lay it out and write the settled scene.

The first level is expanded, deeper levels start collapsed. --expand opens the
path to each listed node id; --expand-all opens everything.

Examples:
  wtree render budget.json -o budget.svg
  wtree render budget.yaml --format html --theme dark -o budget.html
  wtree render budget.json --expand eng,eng/platform --format frames --lz4 -o anim.wtf
  wtree render - < budget.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := g.open(observability.ModeCLI)
			if err != nil {
				return err
			}
			defer sess.close()

			err = rf.apply(cmd.Flags(), sess.cfg)
			if err != nil {
				return err
			}

			summary, err := runRender(cmd.Context(), sess, args[0], pageTitle(rf.title, args[0]), cmd.OutOrStdout())
			if err != nil {
				return err
			}

			if !g.quiet {
				fmt.Fprintln(cmd.ErrOrStderr(), summary.String())
			}

			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&rf.format, "format", "f", config.FormatSVG, "output format: svg, html or frames")
	flags.StringVarP(&rf.output, "output", "o", stdoutName, "output file, or directory for frames; - for stdout")
	flags.StringVar(&rf.theme, "theme", config.DefaultTheme, "html theme: light or dark")
	flags.StringVar(&rf.title, "title", "", "html page title (default: data file name)")
	flags.StringSliceVar(&rf.expand, "expand", nil, "node ids whose path to open")
	flags.BoolVar(&rf.expandAll, "expand-all", false, "open every node")
	flags.BoolVar(&rf.lz4, "lz4", false, "pack frames into one lz4 compressed stream")
	flags.IntVar(&rf.fps, "fps", config.DefaultFPS, "frames per second for --format frames")
	flags.Float64Var(&rf.width, "width", config.DefaultWidth, "container width in pixels")
	flags.Float64Var(&rf.height, "height", config.DefaultHeight, "container height in pixels")
	flags.DurationVar(&rf.duration, "duration", 0, "transition duration")

	return cmd
}

// apply copies explicitly set flags over the loaded configuration.
func (rf *renderFlags) apply(flags *pflag.FlagSet, cfg *config.Config) error {
	overrides := map[string]func(){
		"format":     func() { cfg.Render.Format = rf.format },
		"output":     func() { cfg.Render.Output = rf.output },
		"theme":      func() { cfg.Render.Theme = rf.theme },
		"expand":     func() { cfg.Render.Expand = rf.expand },
		"expand-all": func() { cfg.Render.ExpandAll = rf.expandAll },
		"lz4":        func() { cfg.Render.LZ4 = rf.lz4 },
		"fps":        func() { cfg.Render.FPS = rf.fps },
		"width":      func() { cfg.Tree.Width = rf.width },
		"height":     func() { cfg.Tree.Height = rf.height },
		"duration":   func() { cfg.Tree.Duration = rf.duration },
	}

	for name, set := range overrides {
		if flags.Changed(name) {
			set()
		}
	}

	err := cfg.Validate()
	if err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	return nil
}

func runRender(ctx context.Context, sess *session, path, title string, stdout io.Writer) (export.Summary, error) {
	cfg := sess.cfg

	ctx, span := sess.providers.Tracer.Start(ctx, "wtree.render")
	defer span.End()

	theme, err := plotpage.ParseTheme(cfg.Render.Theme)
	if err != nil {
		return export.Summary{}, err
	}

	rec, err := loadRecord(cfg, path)
	if err != nil {
		return export.Summary{}, err
	}

	clock := transition.NewManualClock(time.Unix(0, 0))

	viz, err := newViz(cfg, rec, clock, sess.providers.Logger)
	if err != nil {
		return export.Summary{}, err
	}

	err = viz.Update(false)
	if err != nil {
		return export.Summary{}, fmt.Errorf("layout: %w", err)
	}

	opened := len(cfg.Render.Expand) > 0 || cfg.Render.ExpandAll
	animateLoad := cfg.Render.Format == config.FormatFrames && !opened

	if !animateLoad {
		err = export.Settle(viz, clock)
		if err != nil {
			return export.Summary{}, err
		}

		err = expand(viz, cfg.Render.Expand, cfg.Render.ExpandAll)
		if err != nil {
			return export.Summary{}, err
		}
	}

	ctx = observability.ContextWithViz(ctx, viz.ID())

	metrics, err := observability.NewLayoutMetrics(sess.providers.Meter)
	if err != nil {
		return export.Summary{}, err
	}

	metrics.RecordPass(ctx, "render", viz.Stats())

	summary, err := writeRender(viz, clock, cfg, theme, title, stdout)
	if err != nil {
		return export.Summary{}, err
	}

	summary.Visible = viz.Stats().Visible

	span.SetAttributes(
		attribute.String("render.format", cfg.Render.Format),
		attribute.Int("tree.visible", summary.Visible),
		attribute.Int("tree.max_depth", viz.MaxDepth()),
	)

	sess.providers.Logger.DebugContext(ctx, "render complete",
		"format", cfg.Render.Format, "output", cfg.Render.Output, "visible", summary.Visible)

	return summary, nil
}

func writeRender(
	viz *weightedtree.Viz[dataset.Record], clock *transition.ManualClock,
	cfg *config.Config, theme plotpage.Theme, pageTitle string, stdout io.Writer,
) (export.Summary, error) {
	rc := cfg.Render

	if rc.Format == config.FormatFrames && !rc.LZ4 {
		return writeFrameDir(viz, clock, rc)
	}

	w, closeOut, err := createOutput(rc.Output, stdout)
	if err != nil {
		return export.Summary{}, err
	}

	cw := &export.CountingWriter{W: w}

	var summary export.Summary

	switch rc.Format {
	case config.FormatSVG:
		err = export.Settle(viz, clock)
		if err == nil {
			err = export.SVG(cw, viz)
		}

		summary = export.Summary{Format: rc.Format}
	case config.FormatHTML:
		err = export.Settle(viz, clock)
		if err == nil {
			err = export.HTML(cw, viz, export.PageOptions{
				Title:       pageTitle,
				Description: export.Describe(viz.Stats()),
				Theme:       theme,
			})
		}

		summary = export.Summary{Format: rc.Format}
	default:
		lw := export.NewLZ4FrameWriter(cw)
		_, err = export.Frames(viz, clock, rc.FPS, lw)
		summary = lw.Summary()
	}

	closeErr := closeOut()
	if err != nil {
		return export.Summary{}, err
	}

	if closeErr != nil {
		return export.Summary{}, fmt.Errorf("close output: %w", closeErr)
	}

	if summary.StoredBytes == 0 {
		summary.StoredBytes = cw.N
	}

	return summary, nil
}

func writeFrameDir(viz *weightedtree.Viz[dataset.Record], clock *transition.ManualClock, rc config.RenderConfig) (export.Summary, error) {
	if rc.Output == stdoutName || rc.Output == "" {
		return export.Summary{}, ErrFramesNeedDir
	}

	err := os.MkdirAll(rc.Output, renderDirPerm)
	if err != nil {
		return export.Summary{}, fmt.Errorf("create output dir: %w", err)
	}

	var stored int64

	sink := export.FrameSinkFunc(func(i int, frame []byte) error {
		stored += int64(len(frame))

		return export.DirSink{Dir: rc.Output}.WriteFrame(i, frame)
	})

	n, err := export.Frames(viz, clock, rc.FPS, sink)
	if err != nil {
		return export.Summary{}, err
	}

	return export.Summary{Format: "frames", Frames: n, StoredBytes: stored}, nil
}

func createOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == stdoutName || path == "" {
		return stdout, func() error { return nil }, nil
	}

	dir := filepath.Dir(path)

	err := os.MkdirAll(dir, renderDirPerm)
	if err != nil {
		return nil, nil, fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, renderFilePerm)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}

	return f, f.Close, nil
}

func pageTitle(flag, path string) string {
	if flag != "" {
		return flag
	}

	if path == stdoutName {
		return "wtree"
	}

	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}
