package collatzcard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/jpalmerr/collatzcard/dashboard"
	"github.com/jpalmerr/collatzcard/internal/card"
	"github.com/jpalmerr/collatzcard/internal/page"
	"github.com/jpalmerr/collatzcard/internal/poller"
	"github.com/jpalmerr/collatzcard/internal/server"
	"github.com/jpalmerr/collatzcard/internal/store"
)

const (
	// DefaultStateURL is where the statistics document is fetched from.
	DefaultStateURL = "http://localhost:8000/collatz_state.json"

	// DefaultContainer is the selector of the element the card mounts under.
	DefaultContainer = card.DefaultContainer

	defaultRefreshInterval = 15 * time.Second
	defaultTimeout         = 10 * time.Second
	defaultPort            = 8080
)

// Widget fetches the Collatz statistics document and renders it as a card
// inside a host page.
//
// Widget is created using [New] with functional options. Each refresh cycle
// is a fetch followed by a render; [Widget.Schedule] runs cycles on an
// interval and [Widget.Start] additionally serves the page over HTTP.
//
// The typical lifecycle is:
//
//	w, err := collatzcard.New(collatzcard.WithStateURL(url))
//	if err != nil {
//	    slog.Error("failed to create widget", "error", err)
//	    os.Exit(1)
//	}
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	w.Start(ctx) // blocks until context cancelled
//
// All methods are safe for concurrent use. Card writes are serialized on the
// page lock, so with overlapping cycles the last render to finish wins.
type Widget struct {
	stateURL        string
	refreshInterval time.Duration
	timeout         time.Duration
	container       string
	port            int
	inFlightGuard   bool
	headers         map[string]string
	logger          *slog.Logger
	renderCallbacks []func(CardSnapshot)

	page   *page.Page
	client *poller.Client
	store  *store.MemoryStore
}

// New creates a new [Widget] with the given options.
//
// Defaults:
//   - State URL: http://localhost:8000/collatz_state.json
//   - Refresh interval: 15 seconds
//   - Fetch timeout: 10 seconds
//   - Container: .hero-right
//   - Host page: the embedded dashboard page
//   - Port: 8080
//
// Returns an error if any option is invalid.
func New(opts ...Option) (*Widget, error) {
	cfg := &widgetConfig{
		stateURL:        DefaultStateURL,
		refreshInterval: defaultRefreshInterval,
		timeout:         defaultTimeout,
		container:       DefaultContainer,
		port:            defaultPort,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.page == nil {
		html, err := dashboard.Render(cfg.title)
		if err != nil {
			return nil, err
		}
		p, err := page.ParseString(html)
		if err != nil {
			return nil, err
		}
		cfg.page = p
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Widget{
		stateURL:        cfg.stateURL,
		refreshInterval: cfg.refreshInterval,
		timeout:         cfg.timeout,
		container:       cfg.container,
		port:            cfg.port,
		inFlightGuard:   cfg.inFlightGuard,
		headers:         cfg.headers,
		logger:          logger,
		renderCallbacks: cfg.renderCallbacks,
		page:            cfg.page,
		client:          poller.NewClient(cfg.stateURL, cfg.timeout, cfg.headers),
		store:           store.NewMemoryStore(),
	}, nil
}

// FetchStatistics requests the statistics document, bypassing HTTP caches.
//
// It never returns an error: transport failures, non-2xx responses and
// malformed payloads are logged and reported as nil ("no data"). A body of
// JSON null is also nil, without a log line.
func (w *Widget) FetchStatistics(ctx context.Context) *StatisticsDocument {
	doc, _ := w.fetch(ctx, "")
	return doc
}

func (w *Widget) fetch(ctx context.Context, cycleID string) (*StatisticsDocument, time.Duration) {
	resp := w.client.Fetch(ctx)

	attrs := []any{
		"url", w.stateURL,
		"status_code", resp.StatusCode,
		"latency_ms", resp.Latency.Milliseconds(),
	}
	if cycleID != "" {
		attrs = append(attrs, "cycle_id", cycleID)
	}

	if resp.Error != nil {
		if errors.Is(resp.Error, context.Canceled) {
			w.logger.Debug("statistics fetch cancelled", attrs...)
			return nil, resp.Latency
		}
		w.logger.Error("failed to fetch statistics", append(attrs, "error", resp.Error.Error())...)
		return nil, resp.Latency
	}
	if !resp.OK() {
		w.logger.Error("failed to fetch statistics",
			append(attrs, "error", fmt.Sprintf("unexpected status %d", resp.StatusCode))...)
		return nil, resp.Latency
	}

	doc, err := decodeStatistics(resp.Body)
	if err != nil {
		w.logger.Error("failed to fetch statistics", append(attrs, "error", err.Error())...)
		return nil, resp.Latency
	}
	return doc, resp.Latency
}

// RenderCard writes doc into the card under the container.
//
// A nil doc is a no-op, leaving whatever the card showed before. A page
// without the container is also a silent no-op. Otherwise the card is created
// if needed and its metrics and sequences are fully overwritten. Returns true
// when the card was written.
func (w *Widget) RenderCard(doc *StatisticsDocument) bool {
	return w.render(doc, uuid.NewString(), 0)
}

func (w *Widget) render(doc *StatisticsDocument, cycleID string, latency time.Duration) bool {
	if doc == nil {
		return false
	}

	view := Project(doc)

	var (
		snap    CardSnapshot
		written bool
	)
	// The snapshot is published before the page lock is released, so with
	// overlapping cycles the store and the page agree on the last writer.
	w.page.Mutate(func(d *goquery.Document) {
		if !card.Render(d, w.container, view) {
			return
		}
		shown, outer, _ := card.Read(d, w.container)

		entries := make([]string, len(shown.Entries))
		for i, e := range shown.Entries {
			entries[i] = e.String()
		}
		snap = CardSnapshot{
			CycleID:           cycleID,
			Entries:           entries,
			EfficientSequence: shown.EfficientSequence,
			HighValueSequence: shown.HighValueSequence,
			HTML:              outer,
			FetchLatency:      latency,
			RenderedAt:        time.Now(),
		}
		w.store.Update(snap.toStore())
		written = true
	})
	if !written {
		return false
	}

	// callbacks run outside the lock so they may read the page
	for _, cb := range w.renderCallbacks {
		invokeCallbackSafe(cb, snap, w.logger)
	}
	return true
}

// Refresh runs one cycle: fetch, then render. Failures leave the card as it
// was.
func (w *Widget) Refresh(ctx context.Context) {
	w.refresh(ctx, uuid.NewString())
}

func (w *Widget) refresh(ctx context.Context, cycleID string) {
	doc, latency := w.fetch(ctx, cycleID)
	if doc == nil {
		return
	}
	if w.render(doc, cycleID, latency) {
		w.logger.Debug("card rendered",
			"cycle_id", cycleID,
			"url", w.stateURL,
			"latency_ms", latency.Milliseconds(),
		)
	}
}

// Handle controls a running refresh schedule.
type Handle struct {
	scheduler *poller.Scheduler
}

// Stop cancels the schedule and waits for in-flight cycles to return.
// Stop is idempotent.
func (h *Handle) Stop() {
	h.scheduler.Stop()
}

// Done is closed once the schedule has fully stopped, either through
// [Handle.Stop] or cancellation of the context passed to [Widget.Schedule].
func (h *Handle) Done() <-chan struct{} {
	return h.scheduler.Done()
}

// Cycles returns how many refresh cycles have been started.
func (h *Handle) Cycles() uint64 {
	return h.scheduler.Launched()
}

// Skipped returns how many ticks the in-flight guard dropped.
func (h *Handle) Skipped() uint64 {
	return h.scheduler.Skipped()
}

// Schedule runs [Widget.Refresh] once immediately and then every refresh
// interval, in the background, until the returned [Handle] is stopped or ctx
// is cancelled.
func (w *Widget) Schedule(ctx context.Context) *Handle {
	s := poller.NewScheduler(w.refresh, w.refreshInterval, w.inFlightGuard, w.logger)
	s.Start(ctx)
	return &Handle{scheduler: s}
}

// Start schedules refreshes and serves the page on the configured port.
//
// Start blocks until ctx is cancelled. The server exposes:
//
//   - GET /: the host page with the card rendered into it
//   - GET /api/card: the latest [CardSnapshot] as JSON
//   - GET /api/sse: a stream of snapshots, one per render
//
// Returns nil on graceful shutdown, or an error if the server cannot bind.
func (w *Widget) Start(ctx context.Context) error {
	w.logger.Info("collatz card starting", "state_url", w.stateURL)
	w.logger.Info("refresh configured",
		"interval", w.refreshInterval.String(),
		"in_flight_guard", w.inFlightGuard,
	)
	w.logger.Info("page available", "url", fmt.Sprintf("http://localhost:%d", w.port))

	// check if context already cancelled
	if ctx.Err() != nil {
		return nil
	}

	handle := w.Schedule(ctx)

	httpServer := server.NewServer(w.store, w.page, w.port, w.logger)
	if err := httpServer.Start(ctx); err != nil {
		handle.Stop()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-ctx.Done()
	handle.Stop()
	w.client.Close()
	w.logger.Info("collatz card stopped")
	return nil
}

// Handler returns the HTTP handler [Widget.Start] serves, for mounting the
// page and API into an existing server. Refreshes must be driven separately
// with [Widget.Schedule] or [Widget.Refresh].
func (w *Widget) Handler() http.Handler {
	return server.NewServer(w.store, w.page, w.port, w.logger).Handler()
}

// PageHTML serializes the host page including the card.
func (w *Widget) PageHTML() (string, error) {
	return w.page.HTML()
}

// CardCount returns the number of card elements currently in the page.
func (w *Widget) CardCount() int {
	return w.page.Count(card.Selector)
}

// Renders returns how many times the card has been written since New.
func (w *Widget) Renders() uint64 {
	return w.store.Revision()
}

// Latest returns the snapshot of the most recent render. ok is false before
// the first successful render.
func (w *Widget) Latest() (snapshot CardSnapshot, ok bool) {
	s, ok := w.store.Latest()
	if !ok {
		return CardSnapshot{}, false
	}
	return CardSnapshot{
		CycleID:           s.CycleID,
		Entries:           copyStrings(s.Entries),
		EfficientSequence: s.EfficientSequence,
		HighValueSequence: s.HighValueSequence,
		HTML:              s.HTML,
		FetchLatency:      time.Duration(s.FetchTimeMs) * time.Millisecond,
		RenderedAt:        s.RenderedAt,
	}, true
}

// StateURL returns the configured statistics document URL.
func (w *Widget) StateURL() string {
	return w.stateURL
}

// RefreshInterval returns the configured interval between refresh cycles.
func (w *Widget) RefreshInterval() time.Duration {
	return w.refreshInterval
}

// Port returns the configured HTTP port.
func (w *Widget) Port() int {
	return w.port
}

// Container returns the selector the card mounts under.
func (w *Widget) Container() string {
	return w.container
}

// invokeCallbackSafe calls a render callback with panic recovery.
// Panics are logged but do not propagate.
func invokeCallbackSafe(cb func(CardSnapshot), snap CardSnapshot, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("render callback panicked",
				"panic", r,
				"cycle_id", snap.CycleID,
			)
		}
	}()
	cb(snap)
}

