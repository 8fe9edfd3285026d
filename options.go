package collatzcard

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"

	"github.com/jpalmerr/collatzcard/internal/page"
)

// widgetConfig holds mutable state during Widget construction.
type widgetConfig struct {
	title           string
	stateURL        string
	refreshInterval time.Duration
	timeout         time.Duration
	container       string
	page            *page.Page
	port            int
	inFlightGuard   bool
	headers         map[string]string
	logger          *slog.Logger
	renderCallbacks []func(CardSnapshot)
}

// Option is a function that configures a [Widget] during construction.
//
// Option implements the functional options pattern. Options return an error
// if validation fails, and [New] returns that error unchanged.
type Option func(*widgetConfig) error

// WithStateURL sets the URL of the statistics document.
//
// Defaults to http://localhost:8000/collatz_state.json. Only http and https
// URLs are accepted.
//
// Example:
//
//	w, err := collatzcard.New(
//	    collatzcard.WithStateURL("https://primes.example.com/collatz_state.json"),
//	)
func WithStateURL(rawURL string) Option {
	return func(cfg *widgetConfig) error {
		u, err := url.Parse(rawURL)
		if err != nil {
			return fmt.Errorf("invalid state URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("state URL must use http or https scheme, got %q", u.Scheme)
		}
		if u.Host == "" {
			return errors.New("state URL must have a host")
		}
		cfg.stateURL = rawURL
		return nil
	}
}

// WithRefreshInterval sets the time between refresh cycles.
//
// The first cycle runs immediately when the schedule starts. Defaults to
// 15 seconds. Returns an error if the duration is zero or negative.
func WithRefreshInterval(d time.Duration) Option {
	return func(cfg *widgetConfig) error {
		if d <= 0 {
			return errors.New("refresh interval must be positive")
		}
		cfg.refreshInterval = d
		return nil
	}
}

// WithTimeout sets the per-fetch timeout. Defaults to 10 seconds.
func WithTimeout(d time.Duration) Option {
	return func(cfg *widgetConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithContainer sets the CSS selector of the element the card mounts under.
//
// Defaults to ".hero-right". The widget never creates the container; if the
// host page lacks it, renders are silent no-ops.
func WithContainer(selector string) Option {
	return func(cfg *widgetConfig) error {
		if strings.TrimSpace(selector) == "" {
			return errors.New("container selector cannot be empty")
		}
		if _, err := cascadia.Compile(selector); err != nil {
			return fmt.Errorf("invalid container selector %q: %w", selector, err)
		}
		cfg.container = selector
		return nil
	}
}

// WithPage parses r as the host page the card is rendered into.
//
// Defaults to the embedded page from the dashboard package.
func WithPage(r io.Reader) Option {
	return func(cfg *widgetConfig) error {
		if r == nil {
			return errors.New("page reader cannot be nil")
		}
		p, err := page.Parse(r)
		if err != nil {
			return err
		}
		cfg.page = p
		return nil
	}
}

// WithPageHTML is [WithPage] for a page held in a string.
func WithPageHTML(html string) Option {
	return WithPage(strings.NewReader(html))
}

// WithTitle sets the title substituted into the embedded host page.
//
// Ignored when a custom page is supplied with [WithPage]. Defaults to
// "Collatz Tracker".
func WithTitle(title string) Option {
	return func(cfg *widgetConfig) error {
		cfg.title = title
		return nil
	}
}

// WithPort sets the HTTP port used by [Widget.Start].
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *widgetConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithInFlightGuard controls what happens when a tick arrives while a
// previous cycle is still fetching.
//
// Disabled by default: every tick starts a new cycle and the last render to
// complete wins. When enabled, such ticks are skipped.
func WithInFlightGuard(enabled bool) Option {
	return func(cfg *widgetConfig) error {
		cfg.inFlightGuard = enabled
		return nil
	}
}

// WithHeaders adds HTTP headers to every fetch as key-value pairs.
//
// Headers are applied after the no-cache headers and may override them.
//
// Example:
//
//	collatzcard.WithHeaders("Authorization", "Bearer token")
//
// Returns an error if an odd number of arguments is provided.
func WithHeaders(keyValues ...string) Option {
	return func(cfg *widgetConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("headers must be provided as key-value pairs")
		}
		if cfg.headers == nil {
			cfg.headers = make(map[string]string, len(keyValues)/2)
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.headers[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}

// WithLogger sets a custom [slog.Logger]. If not specified, [slog.Default]
// is used.
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *widgetConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithRenderCallback registers a function called after every successful
// render with a [CardSnapshot] of the card.
//
// Multiple callbacks run in registration order. Callbacks run on the refresh
// cycle's goroutine and must not block. Panics are recovered and logged.
//
// Example:
//
//	collatzcard.WithRenderCallback(func(s collatzcard.CardSnapshot) {
//	    log.Printf("card updated: %s", s.Entries[0])
//	})
//
// Nil callbacks are silently ignored.
func WithRenderCallback(cb func(CardSnapshot)) Option {
	return func(cfg *widgetConfig) error {
		if cb == nil {
			return nil
		}
		cfg.renderCallbacks = append(cfg.renderCallbacks, cb)
		return nil
	}
}
