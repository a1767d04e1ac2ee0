package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vango-dev/reconcile/internal/config"
	"github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/internal/scenario"
	"github.com/vango-dev/reconcile/pkg/loop"
	"github.com/vango-dev/reconcile/pkg/memdom"
	"github.com/vango-dev/reconcile/pkg/metrics"
	"github.com/vango-dev/reconcile/pkg/remote"
	"github.com/vango-dev/reconcile/pkg/vdom"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port     int
		host     string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve [scenario.yaml]",
		Short: "Serve a live mirror of a scenario over websocket",
		Long: `Render a scenario into an in-memory document and mirror it to
websocket clients.

Clients receive a snapshot on connect and a mutation frame after every
pass. Event frames sent by clients fire the listeners declared with
"on"; any fired listener advances the scenario by one step.

Endpoints:
  /ws        websocket mirror (msgpack frames)
  /snapshot  current document HTML
  /step      POST to advance one step
  /metrics   Prometheus metrics
  /healthz   liveness

Examples:
  vdom serve scenarios/todo.yaml
  vdom serve --port=8080 --interval=2s`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			// Apply command-line overrides
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if interval > 0 {
				cfg.Server.Interval = interval.String()
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			path := cfg.ScenarioPath()
			if len(args) > 0 {
				path = args[0]
			}
			if path == "" {
				return errors.Newf(errors.CategoryCLI, "no scenario given").
					WithSuggestion("Pass a scenario file or set scenario in vdom.yaml")
			}
			sc, err := scenario.Load(path)
			if err != nil {
				return err
			}
			return runServe(cfg, sc)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from vdom.yaml)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from vdom.yaml)")
	cmd.Flags().DurationVarP(&interval, "interval", "i", 0, "Advance one step per interval")

	return cmd
}

func runServe(cfg *config.Config, sc *scenario.Scenario) error {
	logger := cfg.NewLogger(os.Stderr)

	m, err := newMirror(cfg, sc, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           m.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	success("Serving %s (%d steps) on %s", sc.Name, len(sc.Steps), cfg.URL())
	info("websocket: %s/ws", cfg.URL())
	if cfg.MetricsEnabled() {
		info("metrics:   %s%s", cfg.URL(), cfg.Metrics.Path)
	}

	err = m.serve(ctx, srv)
	fmt.Println("\n  Stopped.")
	return err
}

// serve runs srv and the loop until ctx is done or either of them fails.
// It returns once the server is shut down and the tree is unmounted.
func (m *mirror) serve(ctx context.Context, srv *http.Server) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()
	runDone := make(chan error, 1)
	go func() { runDone <- m.run(ctx) }()

	var err error
	select {
	case <-ctx.Done():
	case err = <-serveErr:
	case err = <-runDone:
		runDone = nil
	}
	cancel()

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	m.hub.Close()
	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil && err == nil {
		err = shutdownErr
	}
	if runDone != nil {
		if runErr := <-runDone; runErr != nil && err == nil {
			err = runErr
		}
	}
	if err != nil {
		return errors.FromError(err, "E400")
	}
	return nil
}

// mirror renders a scenario on a loop goroutine and exposes it over HTTP.
type mirror struct {
	cfg      *config.Config
	scenario *scenario.Scenario
	logger   *slog.Logger

	doc      *memdom.Document
	engine   *vdom.Engine
	loop     *loop.Loop
	hub      *remote.Hub
	registry *prometheus.Registry
	router   chi.Router
	builder  *scenario.Builder

	// step is owned by the loop goroutine once run starts.
	step int
}

func newMirror(cfg *config.Config, sc *scenario.Scenario, logger *slog.Logger) (*mirror, error) {
	m := &mirror{
		cfg:      cfg,
		scenario: sc,
		logger:   logger,
		doc:      memdom.New(cfg.Root),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.New(
		metrics.WithRegistry(m.registry),
		metrics.WithNamespace(cfg.Metrics.Namespace),
	)

	m.loop = loop.New(loop.Config{QueueSize: cfg.Loop.QueueSize, Logger: logger})
	m.hub = remote.NewHub(m.doc, remote.Config{
		Dispatcher: m.loop,
		Logger:     logger,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || cfg.CheckOrigin(origin)
		},
	})
	m.engine = vdom.New(collector.Instrument(m.doc), m.doc.Root(),
		vdom.WithScheduler(m.loop),
		vdom.WithLogger(logger.With("component", "vdom")),
		vdom.WithObserver(collector),
		vdom.WithObserver(m.hub),
	)
	m.builder = &scenario.Builder{
		Logger: logger,
		OnEvent: func(n *scenario.Node, ev vdom.Event) {
			logger.Info("event", "type", ev.Type, "tag", n.Tag, "key", n.Key)
			m.advance(context.Background())
		},
	}

	// The first step is rendered before the loop starts.
	if err := m.engine.Render(context.Background(), m.builder.Step(sc.Steps[0])); err != nil {
		return nil, err
	}

	m.router = m.routes()
	return m, nil
}

func (m *mirror) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":  "ok",
			"clients": m.hub.ClientCount(),
			"passes":  m.loop.Passes(),
		})
	})

	r.Get("/snapshot", func(w http.ResponseWriter, r *http.Request) {
		html, seq := m.doc.Snapshot()
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("X-Vdom-Seq", fmt.Sprint(seq))
		fmt.Fprint(w, html)
	})

	r.Post("/step", func(w http.ResponseWriter, r *http.Request) {
		if err := m.loop.Dispatch(func() { m.advance(context.Background()) }); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})

	r.Handle("/ws", m.hub)

	if m.cfg.MetricsEnabled() {
		r.Handle(m.cfg.Metrics.Path, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	}
	return r
}

// run drives the loop until ctx is done, then unmounts the tree.
func (m *mirror) run(ctx context.Context) error {
	if d, err := time.ParseDuration(m.cfg.Server.Interval); err == nil && d > 0 {
		go m.tick(ctx, d)
	}

	if err := m.loop.Run(ctx, m.engine); err != nil {
		return err
	}
	return m.engine.Unmount(context.Background())
}

func (m *mirror) tick(ctx context.Context, d time.Duration) {
	ticker := time.NewTicker(d)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.loop.Dispatch(func() { m.advance(ctx) }); err != nil {
				return
			}
		}
	}
}

// advance renders the next step, wrapping around after the last one. It
// runs on the loop goroutine.
func (m *mirror) advance(ctx context.Context) {
	m.step = (m.step + 1) % len(m.scenario.Steps)
	step := m.scenario.Steps[m.step]
	if err := m.engine.Render(ctx, m.builder.Step(step)); err != nil {
		e := errors.FromError(err, "E101")
		m.logger.Error("step failed", "step", step.Name, "error", e.FormatCompact(), "cause", e.Wrapped)
		return
	}
	m.logger.Info("step rendered", "step", step.Name, "index", m.step+1)
}
