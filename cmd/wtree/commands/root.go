// Package commands implements the wtree CLI subcommands.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	noopmetric "go.opentelemetry.io/otel/metric/noop"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/wtree/pkg/config"
	"github.com/Sumatoshi-tech/wtree/pkg/dataset"
	"github.com/Sumatoshi-tech/wtree/pkg/observability"
	"github.com/Sumatoshi-tech/wtree/pkg/suggest"
	"github.com/Sumatoshi-tech/wtree/pkg/transition"
	"github.com/Sumatoshi-tech/wtree/pkg/version"
	"github.com/Sumatoshi-tech/wtree/pkg/weightedtree"
)

// ExitError carries a process exit code through cobra.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}

	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

type observabilityInit func(observability.Config) (observability.Providers, error)

// globals holds the persistent flags and injected dependencies shared by all
// subcommands.
type globals struct {
	configPath string
	logLevel   string
	verbose    bool
	quiet      bool

	initObservability observabilityInit
}

// NewRootCommand builds the wtree command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommandWithDeps(observability.Init)
}

func newRootCommandWithDeps(initObs observabilityInit) *cobra.Command {
	g := &globals{initObservability: initObs}

	root := &cobra.Command{
		Use:   "wtree",
		Short: "Lay out, animate and render weighted trees",
		Long: `wtree draws hierarchical data as a horizontal node-link tree where node
radius encodes a numeric value scaled per depth.

Commands:
  render    Write the laid-out tree as SVG, HTML or animation frames
  inspect   Print layout, geometry and per-depth value ranges
  validate  Check a dataset against the node schema
  serve     Explore a dataset in the browser
  version   Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "config file (default: ./wtree.yaml, ./config/wtree.yaml, /etc/wtree/wtree.yaml)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().BoolVarP(&g.quiet, "quiet", "q", false, "suppress output")

	root.AddCommand(
		newRenderCommand(g),
		newInspectCommand(g),
		newValidateCommand(g),
		newServeCommand(g),
		newVersionCommand(),
	)

	return root
}

// session is the per-command runtime: configuration plus observability.
type session struct {
	cfg       *config.Config
	providers observability.Providers
	closeLog  func() error
}

func (g *globals) open(mode observability.AppMode) (*session, error) {
	cfg, err := config.LoadConfig(g.configPath)
	if err != nil {
		return nil, err
	}

	obsCfg, closeLog, err := g.observabilityConfig(cfg, mode)
	if err != nil {
		return nil, err
	}

	providers, err := g.initObservability(obsCfg)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("init observability: %w", err), closeLog())
	}

	fillNoop(&providers)

	return &session{cfg: cfg, providers: providers, closeLog: closeLog}, nil
}

// fillNoop replaces providers a stub init left unset.
func fillNoop(p *observability.Providers) {
	if p.Logger == nil {
		p.Logger = slog.New(slog.DiscardHandler)
	}

	if p.Tracer == nil {
		p.Tracer = nooptrace.NewTracerProvider().Tracer("wtree")
	}

	if p.Meter == nil {
		p.Meter = noopmetric.NewMeterProvider().Meter("wtree")
	}

	if p.Shutdown == nil {
		p.Shutdown = func(context.Context) error { return nil }
	}
}

func (g *globals) observabilityConfig(cfg *config.Config, mode observability.AppMode) (observability.Config, func() error, error) {
	levelName := cfg.Logging.Level
	if g.logLevel != "" {
		levelName = g.logLevel
	}

	level, err := observability.ParseLevel(levelName)
	if err != nil {
		return observability.Config{}, nil, err
	}

	if g.verbose {
		level = slog.LevelDebug
	}

	out, closeLog, err := observability.OpenOutput(cfg.Logging.Output)
	if err != nil {
		return observability.Config{}, nil, err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceName = cfg.Telemetry.ServiceName
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	obsCfg.OTLPInsecure = cfg.Telemetry.OTLPInsecure
	obsCfg.SampleRatio = cfg.Telemetry.SampleRatio
	obsCfg.Prometheus = cfg.Telemetry.Prometheus && mode == observability.ModeServe
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.Format == "json"
	obsCfg.LogOutput = out

	return obsCfg, closeLog, nil
}

func (s *session) close() {
	shutdownErr := s.providers.Shutdown(context.Background())
	if shutdownErr != nil {
		s.providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
	}

	closeErr := s.closeLog()
	if closeErr != nil {
		fmt.Fprintf(os.Stderr, "close log output: %v\n", closeErr)
	}
}

// loadRecord reads and schema-checks the dataset at path.
func loadRecord(cfg *config.Config, path string) (dataset.Record, error) {
	var format dataset.Format

	if cfg.Data.Format != "" {
		parsed, err := dataset.ParseFormat(cfg.Data.Format)
		if err != nil {
			return nil, err
		}

		format = parsed
	}

	rec, err := dataset.LoadAs(path, format)
	if err != nil {
		return nil, err
	}

	violations, err := validateRecord(cfg, rec)
	if len(violations) > 0 {
		return nil, fmt.Errorf("%w (first: %s: %s)", err, violations[0].Field, violations[0].Description)
	}

	if err != nil {
		return nil, err
	}

	return rec, nil
}

func validateRecord(cfg *config.Config, rec dataset.Record) ([]dataset.Violation, error) {
	if cfg.Data.Schema == "" {
		return dataset.Validate(rec, cfg.Data.Fields)
	}

	loader, err := dataset.SchemaFile(cfg.Data.Schema)
	if err != nil {
		return nil, err
	}

	return dataset.ValidateWith(rec, loader)
}

// newViz builds the component for rec from the tree settings.
func newViz(cfg *config.Config, rec dataset.Record, clock transition.Clock, logger *slog.Logger) (*weightedtree.Viz[dataset.Record], error) {
	margin, err := cfg.Tree.Margin()
	if err != nil {
		return nil, err
	}

	fields := cfg.Data.Fields

	ease := transition.CubicInOut
	if cfg.Tree.Ease == config.EaseLinear {
		ease = transition.Linear
	}

	return weightedtree.New(weightedtree.Config[dataset.Record]{
		Data:          rec,
		Children:      fields.Children,
		Value:         fields.Value,
		Label:         fields.Label,
		Key:           fields.Key,
		Width:         cfg.Tree.Width,
		Height:        cfg.Tree.Height,
		Margin:        margin,
		Duration:      cfg.Tree.Duration,
		BranchPadding: cfg.Tree.BranchPadding,
		FixedSpan:     cfg.Tree.FixedSpan,
		Clock:         clock,
		Logger:        logger,
	}, weightedtree.WithEase[dataset.Record](ease)), nil
}

// expand opens every collapsed ancestor of each id, then the node itself.
// With all set it opens every collapsed node, level by level.
func expand[D any](viz *weightedtree.Viz[D], ids []string, all bool) error {
	for _, id := range ids {
		n, ok := viz.Lookup(id)
		if !ok {
			return fmt.Errorf("expand: %w", unknownNode(viz, id))
		}

		var path []*weightedtree.Node[D]
		for p := n; p != nil; p = p.Parent {
			path = append(path, p)
		}

		for i := len(path) - 1; i >= 0; i-- {
			if path[i].IsCollapsed() {
				err := viz.ToggleNode(path[i])
				if err != nil {
					return fmt.Errorf("expand %q: %w", id, err)
				}
			}
		}
	}

	for all {
		var collapsed []*weightedtree.Node[D]

		for _, n := range viz.Nodes() {
			if n.IsCollapsed() {
				collapsed = append(collapsed, n)
			}
		}

		if len(collapsed) == 0 {
			return nil
		}

		for _, n := range collapsed {
			err := viz.ToggleNode(n)
			if err != nil {
				return fmt.Errorf("expand all: %w", err)
			}
		}
	}

	return nil
}

// maxSuggestions bounds the "did you mean" list of unknown node errors.
const maxSuggestions = 3

// unknownNode wraps ErrUnknownNode with the closest known node ids.
func unknownNode[D any](viz *weightedtree.Viz[D], id string) error {
	hints := suggest.Closest(id, nodeIDs(viz.Root()), maxSuggestions)
	if len(hints) == 0 {
		return fmt.Errorf("%w: %q", weightedtree.ErrUnknownNode, id)
	}

	return fmt.Errorf("%w: %q (did you mean %s?)", weightedtree.ErrUnknownNode, id, strings.Join(hints, ", "))
}

// nodeIDs lists every node id under root, visible or collapsed.
func nodeIDs[D any](root *weightedtree.Node[D]) []string {
	if root == nil {
		return nil
	}

	ids := []string{root.ID}

	for _, c := range root.Children() {
		ids = append(ids, nodeIDs(c)...)
	}

	for _, c := range root.CollapsedChildren() {
		ids = append(ids, nodeIDs(c)...)
	}

	return ids
}
