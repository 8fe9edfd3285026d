package poller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/http/httptrace"
	"strings"
	"testing"
	"time"
)

func TestClient_ReusesConnections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"generated_at":"now"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, nil)
	defer c.Close()

	reused := 0
	ctx := httptrace.WithClientTrace(context.Background(), &httptrace.ClientTrace{
		GotConn: func(info httptrace.GotConnInfo) {
			if info.Reused {
				reused++
			}
		},
	})

	const cycles = 5
	for i := 0; i < cycles; i++ {
		if resp := c.Fetch(ctx); resp.Error != nil {
			t.Fatalf("cycle %d: %v", i, resp.Error)
		}
	}

	// the first request always dials; allow one more for scheduling noise
	if reused < cycles-2 {
		t.Errorf("reused = %d of %d, want at least %d", reused, cycles, cycles-2)
	}
}

func TestClient_RequestHeaders(t *testing.T) {
	tests := []struct {
		name  string
		extra map[string]string
		want  map[string]string
	}{
		{
			name: "cache bypass defaults",
			want: map[string]string{
				"Cache-Control": "no-cache, no-store, max-age=0",
				"Pragma":        "no-cache",
				"Accept":        "application/json",
			},
		},
		{
			name:  "extra header added",
			extra: map[string]string{"X-Card": "collatz"},
			want:  map[string]string{"X-Card": "collatz", "Pragma": "no-cache"},
		},
		{
			name:  "extra header replaces default",
			extra: map[string]string{"Accept": "text/plain"},
			want:  map[string]string{"Accept": "text/plain"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got http.Header
			var method string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Header.Clone()
				method = r.Method
			}))
			defer srv.Close()

			if resp := NewClient(srv.URL, time.Second, tt.extra).Fetch(context.Background()); resp.Error != nil {
				t.Fatalf("Fetch() error = %v", resp.Error)
			}
			if method != http.MethodGet {
				t.Errorf("method = %s, want GET", method)
			}
			for k, v := range tt.want {
				if got.Get(k) != v {
					t.Errorf("%s = %q, want %q", k, got.Get(k), v)
				}
			}
		})
	}
}

func TestClient_HeadersNotSharedBetweenRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, nil)
	c.Fetch(context.Background())

	if len(c.header.Values("Pragma")) != 1 {
		t.Errorf("template header mutated: %v", c.header)
	}
}

func TestClient_StatusIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	resp := NewClient(srv.URL, time.Second, nil).Fetch(context.Background())

	if resp.Error != nil {
		t.Fatalf("Error = %v, want nil", resp.Error)
	}
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("StatusCode = %d, want 503", resp.StatusCode)
	}
	if resp.OK() {
		t.Error("OK() = true, want false")
	}
}

func TestClient_TimeoutBoundsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	started := time.Now()
	resp := NewClient(srv.URL, 50*time.Millisecond, nil).Fetch(context.Background())

	if resp.Error == nil {
		t.Fatal("Error = nil, want deadline error")
	}
	if resp.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0", resp.StatusCode)
	}
	if elapsed := time.Since(started); elapsed > time.Second {
		t.Errorf("Fetch took %v, timeout not applied", elapsed)
	}
}

func TestClient_CallerCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if resp := NewClient(srv.URL, 0, nil).Fetch(ctx); resp.Error == nil {
		t.Fatal("Error = nil, want context error")
	}
}

func TestClient_BadTarget(t *testing.T) {
	resp := NewClient("://bad", time.Second, nil).Fetch(context.Background())
	if resp.Error == nil || !strings.Contains(resp.Error.Error(), "failed to create request") {
		t.Fatalf("Error = %v, want request construction failure", resp.Error)
	}
}

func TestClient_BodySizeLimit(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"under limit", 512, false},
		{"exactly at limit", maxResponseBodySize, false},
		{"one byte over", maxResponseBodySize + 1, true},
		{"well over", maxResponseBodySize + 512, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(strings.Repeat("7", tt.size)))
			}))
			defer srv.Close()

			resp := NewClient(srv.URL, 5*time.Second, nil).Fetch(context.Background())
			if tt.wantErr {
				if !errors.Is(resp.Error, ErrBodyTooLarge) {
					t.Fatalf("Error = %v, want ErrBodyTooLarge", resp.Error)
				}
				if resp.Body != nil {
					t.Errorf("Body kept %d bytes of an oversized response", len(resp.Body))
				}
				if resp.StatusCode != http.StatusOK {
					t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
				}
				return
			}
			if resp.Error != nil {
				t.Fatalf("Error = %v", resp.Error)
			}
			if len(resp.Body) != tt.size {
				t.Errorf("len(Body) = %d, want %d", len(resp.Body), tt.size)
			}
		})
	}
}

func TestClient_Target(t *testing.T) {
	const u = "http://localhost:8000/collatz_state.json"
	if got := NewClient(u, time.Second, nil).Target(); got != u {
		t.Errorf("Target() = %q, want %q", got, u)
	}
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	c := NewClient("http://localhost", time.Second, nil)
	c.Close()
	c.Close()

	var nilClient *Client
	nilClient.Close()
}
