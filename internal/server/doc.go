// Package server provides the HTTP server for the collatz statistics card.
//
// This package is internal to collatzcard and handles all HTTP concerns:
//
//   - Page serving: The host page, card included, at "/"
//   - REST API: JSON endpoint at "/api/card" for the latest card snapshot
//   - Server-Sent Events: Live card updates at "/api/sse"
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
package server
