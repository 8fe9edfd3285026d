package collatzcard

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestNew_Defaults(t *testing.T) {
	w, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if w.StateURL() != DefaultStateURL {
		t.Errorf("StateURL() = %q, want %q", w.StateURL(), DefaultStateURL)
	}
	if w.RefreshInterval() != 15*time.Second {
		t.Errorf("RefreshInterval() = %v, want 15s", w.RefreshInterval())
	}
	if w.timeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", w.timeout)
	}
	if w.Port() != 8080 {
		t.Errorf("Port() = %d, want 8080", w.Port())
	}
	if w.Container() != ".hero-right" {
		t.Errorf("Container() = %q, want .hero-right", w.Container())
	}
	if w.inFlightGuard {
		t.Error("in-flight guard should be off by default")
	}
	if w.logger != slog.Default() {
		t.Error("logger should default to slog.Default()")
	}
}

func TestNew_DefaultPageHasContainer(t *testing.T) {
	w, err := New(WithTitle("Prime Lab"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if n := w.page.Count(DefaultContainer); n != 1 {
		t.Errorf("embedded page has %d containers, want 1", n)
	}
	html, err := w.PageHTML()
	if err != nil {
		t.Fatalf("PageHTML() error = %v", err)
	}
	if !strings.Contains(html, "<title>Prime Lab</title>") {
		t.Error("title not applied to embedded page")
	}
}

func TestWithStateURL(t *testing.T) {
	w, err := New(WithStateURL("https://primes.example.com/collatz_state.json"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if w.StateURL() != "https://primes.example.com/collatz_state.json" {
		t.Errorf("StateURL() = %q", w.StateURL())
	}
}

func TestWithStateURL_Invalid(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"no scheme", "example.com/collatz_state.json"},
		{"ftp scheme", "ftp://example.com/collatz_state.json"},
		{"no host", "http:///collatz_state.json"},
		{"bad escape", "http://example.com/%zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(WithStateURL(tt.url)); err == nil {
				t.Errorf("New(WithStateURL(%q)) expected error", tt.url)
			}
		})
	}
}

func TestWithRefreshInterval(t *testing.T) {
	w, err := New(WithRefreshInterval(30 * time.Second))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if w.RefreshInterval() != 30*time.Second {
		t.Errorf("RefreshInterval() = %v, want 30s", w.RefreshInterval())
	}
}

func TestWithRefreshInterval_Invalid(t *testing.T) {
	for _, d := range []time.Duration{0, -time.Second} {
		if _, err := New(WithRefreshInterval(d)); err == nil {
			t.Errorf("WithRefreshInterval(%v) expected error", d)
		}
	}
}

func TestWithTimeout(t *testing.T) {
	w, err := New(WithTimeout(3 * time.Second))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if w.timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", w.timeout)
	}

	if _, err := New(WithTimeout(0)); err == nil {
		t.Error("WithTimeout(0) expected error")
	}
}

func TestWithContainer(t *testing.T) {
	w, err := New(WithContainer("#stats"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if w.Container() != "#stats" {
		t.Errorf("Container() = %q", w.Container())
	}

	for _, bad := range []string{"div[", ".hero-right >", "#", "::"} {
		_, err := New(WithContainer(bad))
		if err == nil || !strings.Contains(err.Error(), "invalid container selector") {
			t.Errorf("WithContainer(%q) error = %v, want invalid selector", bad, err)
		}
	}
	if _, err := New(WithContainer("  ")); err == nil {
		t.Error("WithContainer(blank) expected error")
	}
}

func TestWithPage_Nil(t *testing.T) {
	if _, err := New(WithPage(nil)); err == nil {
		t.Error("WithPage(nil) expected error")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk gone") }

func TestWithPage_ReadError(t *testing.T) {
	_, err := New(WithPage(failingReader{}))
	if err == nil {
		t.Fatal("expected error from failing reader")
	}
	if !strings.Contains(err.Error(), "failed to parse page") {
		t.Errorf("error = %v, want wrapped parse error", err)
	}
}

func TestWithPageHTML_OverridesTitle(t *testing.T) {
	w, err := New(WithTitle("ignored"), WithPageHTML(hostPage))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	html, _ := w.PageHTML()
	if strings.Contains(html, "ignored") {
		t.Error("title should not be applied to a custom page")
	}
}

func TestWithPort_Invalid(t *testing.T) {
	for _, port := range []int{0, -1, 65536} {
		if _, err := New(WithPort(port)); err == nil {
			t.Errorf("WithPort(%d) expected error", port)
		}
	}
}

func TestWithPort_ValidEdgeCases(t *testing.T) {
	for _, port := range []int{1, 65535} {
		w, err := New(WithPort(port))
		if err != nil {
			t.Errorf("WithPort(%d) error = %v", port, err)
			continue
		}
		if w.Port() != port {
			t.Errorf("Port() = %d, want %d", w.Port(), port)
		}
	}
}

func TestWithInFlightGuard(t *testing.T) {
	w, err := New(WithInFlightGuard(true))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !w.inFlightGuard {
		t.Error("in-flight guard should be enabled")
	}
}

func TestWithHeaders(t *testing.T) {
	w, err := New(
		WithHeaders("Authorization", "Bearer token"),
		WithHeaders("X-Custom", "value"),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if w.headers["Authorization"] != "Bearer token" || w.headers["X-Custom"] != "value" {
		t.Errorf("headers = %v", w.headers)
	}

	if _, err := New(WithHeaders("Authorization")); err == nil {
		t.Error("odd header arguments expected error")
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	w, err := New(WithLogger(logger), WithStateURL("http://127.0.0.1:1/collatz_state.json"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if w.logger != logger {
		t.Error("custom logger not set")
	}
}

func TestWithLogger_Nil(t *testing.T) {
	_, err := New(WithLogger(nil))
	if err == nil {
		t.Fatal("WithLogger(nil) expected error")
	}
	if !strings.Contains(err.Error(), "logger cannot be nil") {
		t.Errorf("error = %v", err)
	}
}

func TestWithRenderCallback_NilIgnored(t *testing.T) {
	w, err := New(WithRenderCallback(nil))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if len(w.renderCallbacks) != 0 {
		t.Errorf("len(renderCallbacks) = %d, want 0", len(w.renderCallbacks))
	}
}
