package collatzcard

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"testing"
)

func TestWithRenderCallback_InvokedAfterRender(t *testing.T) {
	ts := jsonServer(t, http.StatusOK, workedExample)

	var got []CardSnapshot
	w := newTestWidget(t, ts.URL, WithRenderCallback(func(s CardSnapshot) {
		got = append(got, s)
	}))

	w.Refresh(context.Background())

	if len(got) != 1 {
		t.Fatalf("callback invoked %d times, want 1", len(got))
	}
	snap := got[0]
	if len(snap.Entries) != 5 || snap.Entries[0] != "Largest Prime: 97" {
		t.Errorf("Entries = %v", snap.Entries)
	}
	if !strings.Contains(snap.HTML, `class="collatz-card"`) {
		t.Errorf("HTML should be the card's outer HTML, got %q", snap.HTML)
	}
	if snap.RenderedAt.IsZero() {
		t.Error("RenderedAt should be set")
	}

	// the store is updated before callbacks run
	latest, ok := w.Latest()
	if !ok || latest.CycleID != snap.CycleID {
		t.Errorf("Latest() = %+v, want cycle %q", latest, snap.CycleID)
	}
}

func TestWithRenderCallback_NotInvokedOnFailure(t *testing.T) {
	ts := jsonServer(t, http.StatusServiceUnavailable, ``)

	calls := 0
	w := newTestWidget(t, ts.URL, WithRenderCallback(func(CardSnapshot) { calls++ }))

	w.Refresh(context.Background())

	if calls != 0 {
		t.Errorf("callback invoked %d times after failed fetch", calls)
	}
}

func TestWithRenderCallback_NotInvokedWithoutContainer(t *testing.T) {
	ts := jsonServer(t, http.StatusOK, workedExample)

	calls := 0
	w := newTestWidget(t, ts.URL,
		WithPageHTML(`<html><body></body></html>`),
		WithRenderCallback(func(CardSnapshot) { calls++ }),
	)

	w.Refresh(context.Background())

	if calls != 0 {
		t.Errorf("callback invoked %d times without a container", calls)
	}
}

func TestWithRenderCallback_PanicRecovery(t *testing.T) {
	ts := jsonServer(t, http.StatusOK, workedExample)

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	secondCalled := false
	w := newTestWidget(t, ts.URL,
		WithLogger(logger),
		WithRenderCallback(func(CardSnapshot) { panic("callback exploded") }),
		WithRenderCallback(func(CardSnapshot) { secondCalled = true }),
	)

	w.Refresh(context.Background())

	if !secondCalled {
		t.Error("callbacks after a panicking one should still run")
	}
	if !strings.Contains(buf.String(), "render callback panicked") {
		t.Errorf("panic should be logged, got: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "callback exploded") {
		t.Errorf("panic value should be logged, got: %s", buf.String())
	}
}

func TestWithRenderCallback_ExecutionOrder(t *testing.T) {
	ts := jsonServer(t, http.StatusOK, workedExample)

	var order []int
	w := newTestWidget(t, ts.URL,
		WithRenderCallback(func(CardSnapshot) { order = append(order, 1) }),
		WithRenderCallback(func(CardSnapshot) { order = append(order, 2) }),
		WithRenderCallback(func(CardSnapshot) { order = append(order, 3) }),
	)

	w.Refresh(context.Background())

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("order = %v, want [1 2 3]", order)
	}
}

func TestWithRenderCallback_NoSharedReferences(t *testing.T) {
	ts := jsonServer(t, http.StatusOK, workedExample)

	w := newTestWidget(t, ts.URL, WithRenderCallback(func(s CardSnapshot) {
		s.Entries[0] = "mutated"
	}))

	w.Refresh(context.Background())

	latest, _ := w.Latest()
	if latest.Entries[0] != "Largest Prime: 97" {
		t.Errorf("callback mutation leaked into the store: %q", latest.Entries[0])
	}
}
