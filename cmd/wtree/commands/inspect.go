package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/wtree/pkg/export"
	"github.com/Sumatoshi-tech/wtree/pkg/observability"
	"github.com/Sumatoshi-tech/wtree/pkg/report"
	"github.com/Sumatoshi-tech/wtree/pkg/transition"
)

func newInspectCommand(g *globals) *cobra.Command {
	var (
		tableFormat string
		maxRows     int
		expandIDs   []string
		expandAll   bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <data>",
		Short: "Print layout, geometry and per-depth value ranges",
		Long: `Lay out a dataset and print the visible nodes, the derived geometry and
the value range of every depth as tables.

Examples:
  wtree inspect budget.json
  wtree inspect budget.yaml --expand-all --table-format markdown`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := g.open(observability.ModeCLI)
			if err != nil {
				return err
			}
			defer sess.close()

			if cmd.Flags().Changed("expand") {
				sess.cfg.Render.Expand = expandIDs
			}

			if cmd.Flags().Changed("expand-all") {
				sess.cfg.Render.ExpandAll = expandAll
			}

			opts := report.Options{Format: report.Format(tableFormat), MaxRows: maxRows}

			return runInspect(sess, args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&tableFormat, "table-format", string(report.FormatText), "table format: text, markdown or csv")
	cmd.Flags().IntVar(&maxRows, "max-rows", 0, "limit the layout table (0 prints every node)")
	cmd.Flags().StringSliceVar(&expandIDs, "expand", nil, "node ids whose path to open")
	cmd.Flags().BoolVar(&expandAll, "expand-all", false, "open every node")

	return cmd
}

func runInspect(sess *session, path string, opts report.Options, out io.Writer) error {
	cfg := sess.cfg

	rec, err := loadRecord(cfg, path)
	if err != nil {
		return err
	}

	clock := transition.NewManualClock(time.Unix(0, 0))

	viz, err := newViz(cfg, rec, clock, sess.providers.Logger)
	if err != nil {
		return err
	}

	err = viz.Update(false)
	if err != nil {
		return fmt.Errorf("layout: %w", err)
	}

	err = expand(viz, cfg.Render.Expand, cfg.Render.ExpandAll)
	if err != nil {
		return err
	}

	err = export.Settle(viz, clock)
	if err != nil {
		return err
	}

	for _, section := range []struct {
		title string
		print func(io.Writer) error
	}{
		{"Geometry", func(w io.Writer) error { return report.Geometry(w, viz, opts) }},
		{"Layout", func(w io.Writer) error { return report.Layout(w, viz, opts) }},
		{"Ranges", func(w io.Writer) error { return report.Ranges(w, viz, opts) }},
	} {
		if opts.Format != report.FormatCSV {
			fmt.Fprintf(out, "%s:\n", section.title)
		}

		err = section.print(out)
		if err != nil {
			return err
		}
	}

	return nil
}
