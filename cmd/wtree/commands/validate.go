package commands

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/wtree/pkg/dataset"
	"github.com/Sumatoshi-tech/wtree/pkg/observability"
)

const (
	// complianceMax is the maximum compliance percentage.
	complianceMax = 100
	// exitCodeValidationFailure is the exit code for unreadable or invalid datasets.
	exitCodeValidationFailure = 2
	// rootField is how gojsonschema names the document root.
	rootField = "(root)"
)

type palette struct {
	ok, warn, bad, hint *color.Color
}

func newPalette(colorize, nocolor bool) palette {
	p := palette{
		ok:   color.New(color.FgGreen),
		warn: color.New(color.FgYellow),
		bad:  color.New(color.FgRed),
		hint: color.New(color.FgCyan),
	}

	for _, c := range []*color.Color{p.ok, p.warn, p.bad, p.hint} {
		switch {
		case nocolor:
			c.DisableColor()
		case colorize:
			c.EnableColor()
		}
	}

	return p
}

func newValidateCommand(g *globals) *cobra.Command {
	var (
		schemaPath        string
		colorize, nocolor bool
	)

	cmd := &cobra.Command{
		Use:   "validate <data|->",
		Short: "Check a dataset against the node schema",
		Long: `Validate every node of a dataset: the value field must be numeric and
children must be a list of nodes. Field names come from data.fields.

Exits with status 2 when the dataset cannot be read or is invalid.

Examples:
  wtree validate budget.json
  wtree validate - < budget.json
  wtree validate --schema custom-schema.json budget.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := g.open(observability.ModeCLI)
			if err != nil {
				return err
			}
			defer sess.close()

			if schemaPath != "" {
				sess.cfg.Data.Schema = schemaPath
			}

			return runValidate(sess, args[0], cmd.OutOrStdout(), g.quiet, newPalette(colorize, nocolor))
		},
	}

	cmd.Flags().StringVar(&schemaPath, "schema", "", "JSON schema file (default: generated from data.fields)")
	cmd.Flags().BoolVar(&colorize, "color", false, "force colored output")
	cmd.Flags().BoolVar(&nocolor, "no-color", false, "disable colored output")

	return cmd
}

func runValidate(sess *session, path string, out io.Writer, quiet bool, pal palette) error {
	cfg := sess.cfg

	label := path
	if path == stdoutName {
		label = "stdin"
	}

	var format dataset.Format

	if cfg.Data.Format != "" {
		parsed, err := dataset.ParseFormat(cfg.Data.Format)
		if err != nil {
			return &ExitError{Code: exitCodeValidationFailure, Err: err}
		}

		format = parsed
	}

	rec, err := dataset.LoadAs(path, format)
	if err != nil {
		return &ExitError{Code: exitCodeValidationFailure, Err: fmt.Errorf("read %s: %w", label, err)}
	}

	violations, err := validateRecord(cfg, rec)
	if len(violations) == 0 && err != nil {
		return &ExitError{Code: exitCodeValidationFailure, Err: err}
	}

	total, depth := 0, 0

	cfg.Data.Fields.Walk(rec, func(_ dataset.Record, d int) {
		total++
		depth = max(depth, d)
	})

	if len(violations) == 0 {
		if !quiet {
			pal.ok.Fprintf(out, "Dataset is valid (%s)\n", label)
			pal.ok.Fprintf(out, "  Nodes: %d, depth: %d\n", total, depth)
		}

		return nil
	}

	pal.bad.Fprintf(out, "Dataset validation failed (%s)\n", label)
	pal.warn.Fprintf(out, "  Compliance: %d%%\n", compliance(total, violations))

	fmt.Fprintf(out, "\nErrors:\n")

	for _, v := range violations {
		pal.bad.Fprintf(out, "  - %s: %s\n", v.Field, v.Description)
	}

	recs := recommendations(violations, cfg.Data.Fields)
	if len(recs) > 0 {
		fmt.Fprintf(out, "\nRecommendations:\n")

		for _, r := range recs {
			pal.hint.Fprintf(out, "  - %s\n", r)
		}
	}

	return &ExitError{Code: exitCodeValidationFailure}
}

// compliance is the share of nodes without a violation.
func compliance(total int, violations []dataset.Violation) int {
	if total == 0 {
		return 0
	}

	failed := make(map[string]struct{})

	for _, v := range violations {
		failed[nodePath(v.Field)] = struct{}{}
	}

	ok := max(total-len(failed), 0)

	return ok * complianceMax / total
}

// nodePath strips the property name from a violation field such as
// "children.0.value", leaving the node it belongs to.
func nodePath(field string) string {
	parts := strings.Split(field, ".")
	if len(parts)%2 == 1 {
		parts = parts[:len(parts)-1]
	}

	if len(parts) == 0 {
		return rootField
	}

	return strings.Join(parts, ".")
}

func recommendations(violations []dataset.Violation, f dataset.Fields) []string {
	var out []string

	add := func(s string) {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}

	for _, v := range violations {
		switch {
		case strings.Contains(v.Description, "is required"):
			add(fmt.Sprintf("Every node needs a %q field", f.Value))
		case strings.HasSuffix(v.Field, f.Value):
			add(fmt.Sprintf("%q must be a number or a numeric string", f.Value))
		case strings.HasSuffix(v.Field, f.Children):
			add(fmt.Sprintf("%q must be a list of nodes", f.Children))
		}
	}

	return out
}
