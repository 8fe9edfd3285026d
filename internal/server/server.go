package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jpalmerr/collatzcard/internal/store"
)

const shutdownTimeout = 5 * time.Second

// PageSource renders the current host page.
type PageSource interface {
	HTML() (string, error)
}

// Server handles HTTP requests for the card page and API.
//
// Server provides three endpoints:
//   - GET /: The host page with the card mounted in it
//   - GET /api/card: The latest card snapshot as JSON
//   - GET /api/sse: Server-Sent Events stream of card snapshots
type Server struct {
	store      store.Store
	page       PageSource
	port       int
	httpServer *http.Server
	logger     *slog.Logger
	keepAlive  time.Duration
}

// NewServer creates a new HTTP [Server].
//
// page may be nil, in which case "/" responds with 500. The server is not
// started until [Server.Start] is called.
func NewServer(st store.Store, page PageSource, port int, logger *slog.Logger) *Server {
	return &Server{
		store:     st,
		page:      page,
		port:      port,
		logger:    logger,
		keepAlive: defaultKeepAlive,
	}
}

// Handler returns the request multiplexer used by [Server.Start].
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/card", s.handleCard)
	mux.HandleFunc("/api/sse", s.handleSSE)
	mux.HandleFunc("/", s.handlePage)
	return mux
}

// Start begins serving HTTP requests in a background goroutine.
//
// Start is non-blocking and returns immediately after confirming the server
// is listening. When ctx is cancelled the server shuts down gracefully with
// a 5-second timeout.
//
// Returns an error if the server fails to bind to the configured port.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to bind to port %d: %w", s.port, err)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// request contexts derive from ctx so SSE handlers exit on shutdown
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("http server shutdown error", "error", err)
		}
	}()

	return nil
}

// handlePage serves the host page.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if s.page == nil {
		http.Error(w, "Page not found", http.StatusInternalServerError)
		return
	}

	content, err := s.page.HTML()
	if err != nil {
		s.logger.Error("failed to render page", "error", err)
		http.Error(w, "Page not available", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err = w.Write([]byte(content)); err != nil {
		s.logger.Error("failed to write page response", "error", err)
	}
}

// handleCard returns the latest snapshot as JSON, or 404 before the first render.
func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")

	snap, ok := s.store.Latest()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "card not rendered yet"})
		return
	}

	if err := json.NewEncoder(w).Encode(snap); err != nil {
		s.logger.Error("failed to encode card response", "error", err)
	}
}

// handleSSE streams card snapshots to the browser. The latest snapshot, if
// any, is sent on connect; after that one event per render.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	if _, ok := w.(http.Flusher); !ok {
		http.Error(w, "SSE not supported", http.StatusInternalServerError)
		return
	}

	stream := newSSEStream(w, s.logger)

	updates := s.store.Subscribe()
	defer s.store.Unsubscribe(updates)

	if err := stream.retry(); err != nil {
		return
	}
	if snap, ok := s.store.Latest(); ok {
		if err := stream.snapshot(snap); err != nil {
			return
		}
	}

	keepAlive := time.NewTicker(s.keepAlive)
	defer keepAlive.Stop()

	for {
		var err error
		select {
		case snap, open := <-updates:
			if !open {
				return
			}
			err = stream.snapshot(snap)
		case <-keepAlive.C:
			err = stream.keepAlive()
		case <-r.Context().Done():
			// client gone, or server shutting down via BaseContext
			return
		}
		if err != nil {
			s.logger.Debug("sse client dropped", "error", err)
			return
		}
	}
}
