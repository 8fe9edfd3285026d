// Package config loads the YAML file that drives the collatzcard binary.
//
// A file is the alternative to wiring the SDK by hand. Every key is optional:
//
//	title: Collatz Tracker
//	port: 8080
//	state_url: ${STATE_URL:-http://localhost:8000/collatz_state.json}
//	refresh_interval: 15s
//	timeout: 10s
//	container: .hero-right
//	page: ./site/index.html
//	in_flight_guard: false
//	headers:
//	  Authorization: Bearer ${STATE_TOKEN}
//
// state_url, page and header values may reference environment variables as
// ${NAME} or ${NAME:-fallback}. Unknown keys are rejected.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort            = 8080
	defaultStateURL        = "http://localhost:8000/collatz_state.json"
	defaultRefreshInterval = 15 * time.Second
	defaultTimeout         = 10 * time.Second
	defaultContainer       = ".hero-right"

	// floor for both the refresh interval and the fetch timeout
	minInterval = time.Second
)

// Config mirrors the YAML file. Obtain one from [Load] or [Parse], which
// fill in defaults and validate.
type Config struct {
	// Title of the embedded host page. Ignored when Page is set.
	Title string `yaml:"title"`

	Port int `yaml:"port"`

	// StateURL is the statistics document to poll.
	StateURL string `yaml:"state_url"`

	RefreshInterval Duration `yaml:"refresh_interval"`
	Timeout         Duration `yaml:"timeout"`

	// Container is the CSS selector the card mounts under.
	Container string `yaml:"container"`

	// Page optionally replaces the embedded host page with a file.
	Page string `yaml:"page"`

	// InFlightGuard skips ticks while a previous cycle is still running.
	InFlightGuard bool `yaml:"in_flight_guard"`

	// Headers are added to every fetch.
	Headers map[string]string `yaml:"headers"`
}

// Duration is a time.Duration that reads from YAML either as a Go duration
// string ("15s", "1m30s") or as a bare integer number of seconds.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!int" {
		var secs int64
		if err := node.Decode(&secs); err != nil {
			return err
		}
		*d = Duration(time.Duration(secs) * time.Second)
		return nil
	}

	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns d as a time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads the file at path and passes it to [Parse].
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults, expands environment references and
// validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{
		Port:            defaultPort,
		StateURL:        defaultStateURL,
		RefreshInterval: Duration(defaultRefreshInterval),
		Timeout:         Duration(defaultTimeout),
		Container:       defaultContainer,
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if strings.TrimSpace(cfg.Container) == "" {
		cfg.Container = defaultContainer
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := cfg.expand(); err != nil {
		return nil, err
	}
	if err := checkStateURL(cfg.StateURL); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.RefreshInterval.Duration() < minInterval {
		return fmt.Errorf("refresh_interval must be at least %s, got %s",
			minInterval, c.RefreshInterval.Duration())
	}
	if c.Timeout.Duration() < minInterval {
		return fmt.Errorf("timeout must be at least %s, got %s", minInterval, c.Timeout.Duration())
	}
	return nil
}

func (c *Config) expand() error {
	var err error
	if c.StateURL, err = expandEnvVars(c.StateURL); err != nil {
		return fmt.Errorf("state_url: %w", err)
	}
	if c.Page, err = expandEnvVars(c.Page); err != nil {
		return fmt.Errorf("page: %w", err)
	}
	for k, v := range c.Headers {
		if c.Headers[k], err = expandEnvVars(v); err != nil {
			return fmt.Errorf("headers[%s]: %w", k, err)
		}
	}
	return nil
}

func checkStateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid state_url: %w", err)
	}
	switch u.Scheme {
	case "http", "https":
		return nil
	case "":
		return errors.New("state_url must have a scheme (http:// or https://)")
	default:
		return fmt.Errorf("state_url scheme must be http or https, got %q", u.Scheme)
	}
}
