package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/wtree/pkg/config"
	"github.com/Sumatoshi-tech/wtree/pkg/observability"
	"github.com/Sumatoshi-tech/wtree/pkg/plotpage"
	"github.com/Sumatoshi-tech/wtree/pkg/transition"
)

// shutdownTimeout bounds the graceful HTTP shutdown.
const shutdownTimeout = 5 * time.Second

func newServeCommand(g *globals) *cobra.Command {
	var (
		host  string
		port  int
		theme string
		title string
	)

	cmd := &cobra.Command{
		Use:   "serve <data>",
		Short: "Explore a dataset in the browser",
		Long: `Start an HTTP viewer for a dataset. Clicking a node expands or collapses
it and the browser follows the animated transition.

Endpoints:
  GET  /                          viewer page
  GET  /api/scene.svg             current scene
  GET  /api/stats                 latest pass summary
  GET  /api/nodes                 visible nodes
  POST /api/toggle/{id}           expand or collapse a node
  POST /api/pointer/{kind}/{id}   forward click, dblclick, mouseover or mouseout
  GET  /healthz                   liveness
  GET  /metrics                   Prometheus metrics (telemetry.prometheus)

Examples:
  wtree serve budget.json
  wtree serve budget.yaml --port 9000 --theme dark`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := g.open(observability.ModeServe)
			if err != nil {
				return err
			}
			defer sess.close()

			flags := cmd.Flags()
			if flags.Changed("host") {
				sess.cfg.Server.Host = host
			}

			if flags.Changed("port") {
				sess.cfg.Server.Port = port
			}

			if flags.Changed("theme") {
				sess.cfg.Render.Theme = theme
			}

			err = sess.cfg.Validate()
			if err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, sess, args[0], pageTitle(title, args[0]))
		},
	}

	cmd.Flags().StringVar(&host, "host", config.DefaultHost, "address to bind")
	cmd.Flags().IntVarP(&port, "port", "p", config.DefaultPort, "port to listen on")
	cmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "page theme: light or dark")
	cmd.Flags().StringVar(&title, "title", "", "page title (default: data file name)")

	return cmd
}

// buildViewer loads the dataset and runs the first pass.
func buildViewer(sess *session, path, title string) (*viewer, error) {
	cfg := sess.cfg

	theme, err := plotpage.ParseTheme(cfg.Render.Theme)
	if err != nil {
		return nil, err
	}

	rec, err := loadRecord(cfg, path)
	if err != nil {
		return nil, err
	}

	viz, err := newViz(cfg, rec, transition.SystemClock{}, sess.providers.Logger)
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewLayoutMetrics(sess.providers.Meter)
	if err != nil {
		return nil, err
	}

	v := newViewer(viz, metrics, sess.providers.Logger, theme, title)

	err = viz.Update(false)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}

	err = expand(viz, cfg.Render.Expand, cfg.Render.ExpandAll)
	if err != nil {
		return nil, err
	}

	metrics.RecordPass(context.Background(), "update", viz.Stats())

	return v, nil
}

func runServe(ctx context.Context, sess *session, path, title string) error {
	cfg := sess.cfg
	logger := sess.providers.Logger

	v, err := buildViewer(sess, path, title)
	if err != nil {
		return err
	}

	red, err := observability.NewREDMetrics(sess.providers.Meter)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))

	server := &http.Server{
		Addr:         addr,
		Handler:      v.handler(sess.providers.Tracer, red, sess.providers.MetricsHandler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("viewer listening", "addr", "http://"+addr, "data", path)

		serveErr := server.ListenAndServe()
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", serveErr)
		}

		return nil
	})

	group.Go(func() error {
		return v.viz.Run(gctx, cfg.Server.TickInterval, &v.mu)
	})

	group.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()

		logger.Info("viewer shutting down")

		shutdownErr := server.Shutdown(shutdownCtx)
		if shutdownErr != nil {
			return fmt.Errorf("shutdown: %w", shutdownErr)
		}

		return nil
	})

	return group.Wait()
}
