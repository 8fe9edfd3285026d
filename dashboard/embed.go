// Package dashboard provides the default host page the Collatz card is
// mounted into.
//
// The page is embedded at compile time so the CLI runs as a single binary.
// It contains the .hero-right container and a small script that reloads the
// card from the server's SSE stream; the card itself is always rendered
// server-side.
package dashboard

import (
	"embed"
	"fmt"
	"html"
	"strings"
)

const (
	// DefaultTitle is used when no custom title is configured.
	DefaultTitle = "Collatz Tracker"

	// titlePlaceholder is the marker in HTML that gets replaced with the actual title.
	titlePlaceholder = "{{.Title}}"

	indexPath = "assets/index.html"
)

// Assets is an embedded filesystem containing the host page.
//
// The filesystem structure is:
//
//	assets/
//	  index.html    - Host page with inline CSS and JavaScript
//
//go:embed assets/*
var Assets embed.FS

// Render returns the host page with title substituted. The title is HTML
// escaped; an empty title falls back to [DefaultTitle].
func Render(title string) (string, error) {
	content, err := Assets.ReadFile(indexPath)
	if err != nil {
		return "", fmt.Errorf("failed to read embedded page: %w", err)
	}

	if title == "" {
		title = DefaultTitle
	}
	return strings.ReplaceAll(string(content), titlePlaceholder, html.EscapeString(title)), nil
}
