// Package poller provides the fetch and scheduling primitives behind the
// collatz statistics card.
//
// This package is internal to collatzcard and handles the periodic retrieval
// of the statistics document. It performs cache-bypassing HTTP requests and
// drives refresh cycles on a fixed interval.
//
// The main components are:
//
//   - [Client]: HTTP client wrapper with timeout, size limits and no-cache headers
//   - [Scheduler]: Runs a [Job] immediately and then on every tick until stopped
//   - [Response]: Result of a single fetch
//
// Users of the collatzcard library should not need to interact with this
// package directly. Configuration is done through the main collatzcard package.
package poller
