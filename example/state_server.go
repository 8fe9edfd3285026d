package main

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jpalmerr/collatzcard/internal/collatz"
)

// StartStateServer runs a collatz_state.json endpoint whose statistics grow
// over time: every request extends the prime search a little further.
//
// To make the card's behaviour visible it also misbehaves now and then:
// roughly one request in eight fails with 503 (the card keeps its last
// values) and some responses use "->" separators (the card normalizes them).
// Call this in a goroutine before creating the widget.
func StartStateServer(addr string) {
	var (
		mu    sync.Mutex
		limit uint64 = 50
	)

	mux := http.NewServeMux()
	mux.HandleFunc("/collatz_state.json", func(w http.ResponseWriter, r *http.Request) {
		// simulate small latency variance
		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)

		if rand.Intn(8) == 0 {
			slog.Info("state server failing request on purpose")
			http.Error(w, `{"error":"temporarily unavailable"}`, http.StatusServiceUnavailable)
			return
		}

		mu.Lock()
		limit += uint64(10 + rand.Intn(40))
		if limit > collatz.MaxPrimeLimit {
			limit = 100
		}
		current := limit
		mu.Unlock()

		primes, err := collatz.Primes(current)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		st, err := collatz.BuildState(primes, time.Now())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if rand.Intn(3) == 0 {
			st.Metrics.MostEfficient.Sequence = strings.ReplaceAll(st.Metrics.MostEfficient.Sequence, collatz.Arrow, "->")
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		if err := json.NewEncoder(w).Encode(st); err != nil {
			slog.Error("failed to write response", "error", err)
		}
	})

	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("state server error", "error", err)
	}
}
