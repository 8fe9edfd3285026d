package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jpalmerr/collatzcard/internal/store"
)

const (
	// sseWriteTimeout bounds a single event write. Keep it at or below
	// shutdownTimeout so a stuck client cannot hold up shutdown.
	sseWriteTimeout = 5 * time.Second

	// sseRetry is the reconnect delay suggested to browsers, in milliseconds.
	sseRetry = 5000

	defaultKeepAlive = 20 * time.Second
)

// sseStream writes Server-Sent Events to one client.
type sseStream struct {
	w         http.ResponseWriter
	rc        *http.ResponseController
	logger    *slog.Logger
	deadlines bool
}

func newSSEStream(w http.ResponseWriter, logger *slog.Logger) *sseStream {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("Access-Control-Allow-Origin", "*")

	return &sseStream{
		w:         w,
		rc:        http.NewResponseController(w),
		logger:    logger,
		deadlines: true,
	}
}

// snapshot sends snap as an unnamed event keyed by its cycle id.
func (s *sseStream) snapshot(snap store.CardSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Warn("dropping unencodable snapshot", "cycle_id", snap.CycleID, "error", err)
		return nil
	}
	if snap.CycleID != "" {
		return s.write("id: %s\ndata: %s\n\n", snap.CycleID, data)
	}
	return s.write("data: %s\n\n", data)
}

func (s *sseStream) retry() error {
	return s.write("retry: %d\n\n", sseRetry)
}

// keepAlive sends a comment line, which clients ignore, so idle proxies do
// not close the connection between refresh cycles.
func (s *sseStream) keepAlive() error {
	return s.write(": keepalive\n\n")
}

func (s *sseStream) write(format string, args ...any) error {
	if s.deadlines {
		if err := s.rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil {
			s.logger.Warn("sse write deadlines not supported", "error", err)
			s.deadlines = false
		}
	}
	if _, err := fmt.Fprintf(s.w, format, args...); err != nil {
		return err
	}
	return s.rc.Flush()
}
