package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"sync"

	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/wtree/pkg/dataset"
	"github.com/Sumatoshi-tech/wtree/pkg/export"
	"github.com/Sumatoshi-tech/wtree/pkg/observability"
	"github.com/Sumatoshi-tech/wtree/pkg/plotpage"
	"github.com/Sumatoshi-tech/wtree/pkg/report"
	"github.com/Sumatoshi-tech/wtree/pkg/weightedtree"
)

// viewerScript polls the scene while transitions run and forwards clicks on
// nodes as pointer events.
const viewerScript = `
(function () {
  var box = document.getElementById("scene");
  var pass = -1;

  function refresh() {
    fetch("api/stats").then(function (r) { return r.json(); }).then(function (s) {
      if (!s.busy && s.pass === pass) { return; }
      pass = s.pass;
      return fetch("api/scene.svg").then(function (r) { return r.text(); }).then(function (svg) {
        box.innerHTML = svg;
      });
    }).catch(function () {}).finally(function () { setTimeout(refresh, 40); });
  }

  box.addEventListener("click", function (ev) {
    var node = ev.target.closest(".node[data-key]");
    if (!node) { return; }
    fetch("api/pointer/click/" + encodeURIComponent(node.getAttribute("data-key")), {method: "POST"});
  });

  refresh();
})();
`

// viewer owns one component and serializes every access to it.
type viewer struct {
	mu      sync.Mutex
	viz     *weightedtree.Viz[dataset.Record]
	metrics *observability.LayoutMetrics
	logger  *slog.Logger
	theme   plotpage.Theme
	title   string
}

// sceneStats is the /api/stats payload.
type sceneStats struct {
	Pass         int     `json:"pass"`
	Visible      int     `json:"visible"`
	MaxDepth     int     `json:"maxDepth"`
	Busy         bool    `json:"busy"`
	Entered      int     `json:"entered"`
	Exited       int     `json:"exited"`
	CanvasWidth  float64 `json:"canvasWidth"`
	CanvasHeight float64 `json:"canvasHeight"`
	Summary      string  `json:"summary"`
}

// nodeView is one visible node in the /api/nodes payload.
type nodeView struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Depth  int     `json:"depth"`
	Value  float64 `json:"value"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
	State  string  `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func newViewer(
	viz *weightedtree.Viz[dataset.Record], metrics *observability.LayoutMetrics,
	logger *slog.Logger, theme plotpage.Theme, title string,
) *viewer {
	v := &viewer{viz: viz, metrics: metrics, logger: logger, theme: theme, title: title}

	// Handlers run inside Pointer, with mu already held.
	viz.On(weightedtree.EventClick, func(e weightedtree.Event[dataset.Record]) {
		if e.Node == nil {
			return
		}

		err := viz.ToggleNode(e.Node)
		if err != nil {
			logger.Warn("toggle on click failed", "node", e.Node.ID, "error", err)

			return
		}

		metrics.RecordPass(context.Background(), "click", viz.Stats())
	})

	viz.On(weightedtree.EventNodeRefresh, func(weightedtree.Event[dataset.Record]) {
		logger.Debug("transitions settled", "viz", viz.ID())
	})

	return v
}

// handler returns the viewer routes wrapped in RED metrics and tracing.
func (v *viewer) handler(tracer trace.Tracer, red *observability.REDMetrics, metricsHandler http.Handler) http.Handler {
	mux := http.NewServeMux()

	route := func(pattern, op string, h http.HandlerFunc) {
		mux.Handle(pattern, red.Middleware(op, h))
	}

	route("GET /{$}", "viewer.page", v.handlePage)
	route("GET /api/scene.svg", "viewer.scene", v.handleScene)
	route("GET /api/stats", "viewer.stats", v.handleStats)
	route("GET /api/nodes", "viewer.nodes", v.handleNodes)
	route("POST /api/toggle/{id...}", "viewer.toggle", v.handleToggle)
	route("POST /api/pointer/{kind}/{id...}", "viewer.pointer", v.handlePointer)

	mux.HandleFunc("GET /healthz", func(rw http.ResponseWriter, hr *http.Request) {
		writeJSON(hr.Context(), rw, http.StatusOK, map[string]string{"status": "ok"})
	})

	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	traced := observability.HTTPMiddleware(tracer, mux)

	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		traced.ServeHTTP(rw, hr.WithContext(observability.ContextWithViz(hr.Context(), v.viz.ID())))
	})
}

func (v *viewer) handlePage(rw http.ResponseWriter, hr *http.Request) {
	var scene bytes.Buffer

	v.mu.Lock()
	err := v.viz.WriteSVG(&scene)
	stats := v.viz.Stats()
	v.mu.Unlock()

	if err != nil {
		v.fail(hr.Context(), rw, http.StatusInternalServerError, err)

		return
	}

	page := plotpage.NewPage(v.title, export.Describe(stats)).WithTheme(v.theme)
	page.Add(plotpage.Section{
		Title: "Layout",
		Chart: plotpage.Fragment(template.HTML(`<div id="scene" class="scene">` + scene.String() + `</div>`)), //nolint:gosec // the scene is escaped by the svg encoder
		Hint: plotpage.Hint{
			Title: "Exploring",
			Items: []string{
				"Click a shaded node to expand it, click an open node to collapse it.",
				"Node radius grows with the square root of the value, scaled per depth.",
			},
		},
	})

	rw.Header().Set("Content-Type", "text/html; charset=utf-8")

	err = plotpage.HTMLRenderer{ExtraJS: viewerScript}.Render(rw, page)
	if err != nil {
		v.logger.ErrorContext(hr.Context(), "render page", "error", err)
	}
}

func (v *viewer) handleScene(rw http.ResponseWriter, hr *http.Request) {
	var scene bytes.Buffer

	v.mu.Lock()
	err := v.viz.WriteSVG(&scene)
	v.mu.Unlock()

	if err != nil {
		v.fail(hr.Context(), rw, http.StatusInternalServerError, err)

		return
	}

	rw.Header().Set("Content-Type", "image/svg+xml")
	rw.Header().Set("Cache-Control", "no-store")

	_, err = rw.Write(scene.Bytes())
	if err != nil {
		v.logger.DebugContext(hr.Context(), "write scene", "error", err)
	}
}

func (v *viewer) handleStats(rw http.ResponseWriter, hr *http.Request) {
	v.mu.Lock()
	s := v.viz.Stats()
	out := sceneStats{
		Pass:         s.Pass,
		Visible:      s.Visible,
		MaxDepth:     v.viz.MaxDepth(),
		Busy:         v.viz.Busy(),
		Entered:      s.Entered,
		Exited:       s.Exited,
		CanvasWidth:  s.CanvasWidth,
		CanvasHeight: s.CanvasHeight,
		Summary:      export.Describe(s),
	}
	v.mu.Unlock()

	writeJSON(hr.Context(), rw, http.StatusOK, out)
}

func (v *viewer) handleNodes(rw http.ResponseWriter, hr *http.Request) {
	v.mu.Lock()
	nodes := v.viz.Nodes()
	out := make([]nodeView, 0, len(nodes))

	for _, n := range nodes {
		out = append(out, nodeView{
			ID: n.ID, Label: n.Label, Depth: n.Depth, Value: n.Value,
			X: n.X, Y: n.Y, Radius: n.Radius, State: report.State(n),
		})
	}
	v.mu.Unlock()

	writeJSON(hr.Context(), rw, http.StatusOK, out)
}

func (v *viewer) handleToggle(rw http.ResponseWriter, hr *http.Request) {
	id := hr.PathValue("id")

	v.mu.Lock()
	err := v.viz.ToggleKey(id)
	if errors.Is(err, weightedtree.ErrUnknownNode) {
		err = unknownNode(v.viz, id)
	}
	stats := v.viz.Stats()
	v.mu.Unlock()

	if err != nil {
		v.fail(hr.Context(), rw, statusFor(err), err)

		return
	}

	v.metrics.RecordPass(hr.Context(), "toggle", stats)

	writeJSON(hr.Context(), rw, http.StatusOK, map[string]any{"id": id, "visible": stats.Visible})
}

func (v *viewer) handlePointer(rw http.ResponseWriter, hr *http.Request) {
	kind, id := hr.PathValue("kind"), hr.PathValue("id")

	v.mu.Lock()
	err := v.viz.Pointer(kind, id)
	v.mu.Unlock()

	if err != nil {
		v.fail(hr.Context(), rw, statusFor(err), err)

		return
	}

	rw.WriteHeader(http.StatusNoContent)
}

func (v *viewer) fail(ctx context.Context, rw http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		v.logger.ErrorContext(ctx, "viewer request failed", "error", err)
	}

	writeJSON(ctx, rw, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, weightedtree.ErrUnknownNode):
		return http.StatusNotFound
	case errors.Is(err, weightedtree.ErrConfig):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeJSON encodes value as the response body.
func writeJSON(ctx context.Context, rw http.ResponseWriter, status int, value any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)

	encodeErr := json.NewEncoder(rw).Encode(value)
	if encodeErr != nil {
		slog.Default().ErrorContext(ctx, "failed to encode JSON response", "error", encodeErr)
	}
}
