package config

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/jpalmerr/collatzcard"
)

// BuildOptions converts parsed configuration into SDK options.
//
// The custom page, when set, is read here so that a missing file is
// reported before the widget starts.
func BuildOptions(cfg *Config) ([]collatzcard.Option, error) {
	opts := []collatzcard.Option{
		collatzcard.WithPort(cfg.Port),
		collatzcard.WithStateURL(cfg.StateURL),
		collatzcard.WithRefreshInterval(cfg.RefreshInterval.Duration()),
		collatzcard.WithTimeout(cfg.Timeout.Duration()),
		collatzcard.WithContainer(cfg.Container),
		collatzcard.WithInFlightGuard(cfg.InFlightGuard),
	}

	if cfg.Title != "" {
		opts = append(opts, collatzcard.WithTitle(cfg.Title))
	}

	if len(cfg.Headers) > 0 {
		opts = append(opts, collatzcard.WithHeaders(headerPairs(cfg.Headers)...))
	}

	if cfg.Page != "" {
		data, err := os.ReadFile(cfg.Page)
		if err != nil {
			return nil, fmt.Errorf("failed to read page %q: %w", cfg.Page, err)
		}
		opts = append(opts, collatzcard.WithPageHTML(string(data)))
	}

	return opts, nil
}

// headerPairs flattens m into key, value, key, value order with keys sorted,
// so option construction is deterministic.
func headerPairs(m map[string]string) []string {
	pairs := make([]string, 0, len(m)*2)
	for _, k := range slices.Sorted(maps.Keys(m)) {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}
