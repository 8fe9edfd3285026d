package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/collatzcard"
)

func main() {
	go StartStateServer(":8000")
	time.Sleep(100 * time.Millisecond) // let the listener come up before the first cycle

	w, err := collatzcard.New(
		collatzcard.WithStateURL("http://localhost:8000/collatz_state.json"),
		collatzcard.WithRefreshInterval(5*time.Second),
		collatzcard.WithPort(8080),
		collatzcard.WithTitle("Collatz Tracker Demo"),
		collatzcard.WithRenderCallback(func(s collatzcard.CardSnapshot) {
			if len(s.Entries) > 0 {
				slog.Info("card updated", "cycle_id", s.CycleID, "first", s.Entries[0])
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create widget", "error", err)
		os.Exit(1)
	}

	slog.Info("collatz card demo",
		"page", "http://localhost:8080",
		"state", "http://localhost:8000/collatz_state.json",
		"note", "statistics grow on every request and roughly one in eight fails",
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := w.Start(ctx); err != nil {
		slog.Error("collatz card error", "error", err)
		os.Exit(1)
	}
}
