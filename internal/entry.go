// Package internal wires configuration, the link pipeline and the command
// surfaces together.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/xref/internal/api"
	"github.com/starford/xref/internal/corpus"
	"github.com/starford/xref/internal/index"
	"github.com/starford/xref/internal/linkservice"
	"github.com/starford/xref/internal/mcpserver"
	"github.com/starford/xref/internal/report"
	"github.com/starford/xref/internal/sse"
	"github.com/starford/xref/internal/watch"
)

// ErrDanglingLinks is returned by Check when the report lists at least one
// dangling link.
var ErrDanglingLinks = errors.New("dangling links found")

// NewLogger builds the slog logger described by cfg writing to w.
func NewLogger(w io.Writer, cfg ApplicationConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.logger == nil {
		app.logger = NewLogger(os.Stderr, app.config.App)
	}
	if app.version == "" {
		app.version = "dev"
	}
	slog.SetDefault(app.logger)
	return app, nil
}

func (a *application) buildOptions() linkservice.BuildOptions {
	c := a.config.Corpus
	return linkservice.BuildOptions{
		Extensions:  c.Extensions,
		Workers:     c.Workers,
		SkipCode:    c.SkipCode,
		EntryPoints: c.EntryPoints,
		Logger:      a.logger,
	}
}

// runOnce loads, checks and prints the report once.
func (a *application) runOnce(ctx context.Context) (*linkservice.Snapshot, error) {
	store, err := corpus.Open(a.config.Corpus.Root)
	if err != nil {
		return nil, err
	}
	snap, err := linkservice.Build(ctx, store, a.buildOptions())
	if err != nil {
		return nil, err
	}
	if err := report.Write(a.stdout, snap.Report, a.config.Report.Format); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	return snap, nil
}

// Check runs the pipeline once, writes the report to stdout and, when
// index.path is set, exports the snapshot to that SQLite file. It returns
// ErrDanglingLinks together with the snapshot when dangling links exist.
func Check(ctx context.Context, opts ...Option) (*linkservice.Snapshot, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}
	cfg := app.config

	app.logger.Debug("Configuration loaded",
		slog.String("root", cfg.Corpus.Root),
		slog.Any("entry_points", cfg.Corpus.EntryPoints),
		slog.String("format", cfg.Report.Format),
		slog.String("log_level", cfg.App.LogLevel.String()))

	snap, err := app.runOnce(ctx)
	if err != nil {
		return nil, err
	}

	if cfg.Index.Path != "" {
		if err := export(cfg.Index.Path, snap); err != nil {
			return snap, err
		}
		app.logger.Info("graph exported", slog.String("path", cfg.Index.Path))
	}

	if snap.Report.HasDangling() {
		return snap, ErrDanglingLinks
	}
	return snap, nil
}

func export(path string, snap *linkservice.Snapshot) error {
	db, err := index.Open(path)
	if err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	defer db.Close()
	if err := db.Replace(snap.Corpus, snap.Graph, snap.Report); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	return nil
}

// Watch prints a report, then prints a new one after every debounced batch
// of file changes until SIGINT, SIGTERM or ctx cancellation.
func Watch(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if _, err := app.runOnce(ctx); err != nil {
		return err
	}

	return watch.Run(ctx, cfg.Corpus.Root, cfg.Corpus.Extensions, cfg.Watch.Debounce, app.logger,
		func(paths []string) {
			app.logger.Info("change detected", slog.Int("paths", len(paths)))
			if _, err := app.runOnce(ctx); err != nil {
				app.logger.Error("recheck failed", slog.String("error", err.Error()))
			}
		})
}

func (a *application) openService() (*linkservice.Service, *index.DB, error) {
	store, err := corpus.Open(a.config.Corpus.Root)
	if err != nil {
		return nil, nil, err
	}
	dsn := a.config.Index.Path
	if dsn == "" {
		dsn = index.MemoryDSN
	}
	db, err := index.Open(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("init index: %w", err)
	}
	return linkservice.NewService(store, db, a.buildOptions()), db, nil
}

// refreshOnChange rebuilds svc after each batch of changes and notifies
// broker when it is non-nil.
func (a *application) refreshOnChange(ctx context.Context, svc *linkservice.Service, broker *sse.Broker) error {
	cfg := a.config
	return watch.Run(ctx, cfg.Corpus.Root, cfg.Corpus.Extensions, cfg.Watch.Debounce, a.logger,
		func(paths []string) {
			snap, err := svc.Refresh(ctx)
			if err != nil {
				a.logger.Error("refresh failed", slog.String("error", err.Error()))
				return
			}
			if broker == nil {
				return
			}
			broker.PublishChanged(paths)
			broker.PublishReport(summary(snap))
		})
}

func summary(snap *linkservice.Snapshot) sse.ReportSummary {
	return sse.ReportSummary{
		Revision:  snap.Revision,
		Documents: snap.Report.Documents,
		Links:     snap.Report.Links,
		Dangling:  len(snap.Report.Dangling),
		Orphans:   len(snap.Report.Orphans),
	}
}

// Serve runs the HTTP API with live SSE updates.
func Serve(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.HTTP.Address()),
		slog.String("root", cfg.Corpus.Root),
		slog.String("index_path", cfg.Index.Path),
		slog.String("auth_mode", cfg.Auth.Mode),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, db, err := app.openService()
	if err != nil {
		return err
	}
	defer db.Close()

	snap, err := svc.Refresh(ctx)
	if err != nil {
		return err
	}

	broker := sse.NewBroker(cfg.Watch.GraphThrottle)
	defer broker.Close()
	broker.PublishReport(summary(snap))

	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.RequestLogger(logger))
	r.Use(middleware.Recoverer)

	// Health endpoints are unauthenticated.
	r.Get("/health/live", api.Health)
	r.Get("/health/ready", api.Ready(func() bool { return svc.Snapshot() != nil }))

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.refreshOnChange(gCtx, svc, broker)
	})

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// Close SSE streams first so Shutdown does not wait on them.
		broker.Close()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// ServeMCP runs the MCP stdio server. The snapshot is kept current by a
// background watcher.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	svc, db, err := app.openService()
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := svc.Refresh(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		if err := app.refreshOnChange(ctx, svc, nil); err != nil {
			app.logger.Warn("watcher stopped", slog.String("error", err.Error()))
		}
	}()

	app.logger.Info("Starting MCP server on stdio", slog.String("root", app.config.Corpus.Root))
	return mcpserver.New(svc, app.version).ServeStdio()
}
