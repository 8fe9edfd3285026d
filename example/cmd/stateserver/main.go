// Standalone state server for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/stateserver -limit 500
//	go run ./example/cmd/stateserver -state ./collatz_state.json
//
// Then in another terminal:
//
//	go run ./cmd/collatzcard serve -c example/config.yaml
//
// With -state the file is re-read on every request, so a tracker that
// rewrites it is picked up without a restart. Otherwise the document is
// computed from the primes up to -limit.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/jpalmerr/collatzcard/internal/collatz"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	limit := flag.Uint64("limit", 500, "largest number to consider")
	statePath := flag.String("state", "", "serve this state file instead of computing one")
	flag.Parse()

	var handler http.HandlerFunc
	if *statePath != "" {
		handler = fileHandler(*statePath)
		fmt.Printf("State server starting on %s (state: %s)\n", *addr, *statePath)
	} else {
		primes, err := collatz.Primes(*limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -limit: %v\n", err)
			os.Exit(1)
		}
		if len(primes) == 0 {
			fmt.Fprintf(os.Stderr, "no primes up to %d\n", *limit)
			os.Exit(1)
		}
		handler = computedHandler(primes)
		fmt.Printf("State server starting on %s\n", *addr)
		fmt.Printf("Serving statistics for %d primes up to %d\n", len(primes), *limit)
	}
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	for _, path := range []string{"/collatz_state.json", "/state.json", "/stats", "/stats.json"} {
		http.HandleFunc(path, handler)
	}

	if err := http.ListenAndServe(*addr, nil); err != nil {
		slog.Error("state server error", "error", err)
		os.Exit(1)
	}
}

func computedHandler(primes []uint64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := collatz.BuildState(primes, time.Now())
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}

// fileHandler serves the state file: 404 when it is missing, 500 when it
// does not hold valid JSON.
func fileHandler(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "state file not found"})
			return
		}
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		var doc json.RawMessage
		if err := json.Unmarshal(data, &doc); err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "invalid JSON: " + err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, doc)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
