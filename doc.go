// Package collatzcard renders a live "Collatz Tracker" statistics card into
// an HTML page.
//
// A [Widget] periodically fetches a JSON statistics document (by default
// http://localhost:8000/collatz_state.json) and writes it into a card element
// mounted under a container in a host page. The page is held server-side as
// a DOM tree and can be served over HTTP, together with a JSON snapshot API
// and a Server-Sent Events stream of card updates.
//
// # Quick Start
//
//	w, _ := collatzcard.New(
//	    collatzcard.WithStateURL("http://localhost:8000/collatz_state.json"),
//	)
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	w.Start(ctx) // blocks until context is cancelled
//
// # Refresh Cycles
//
// Each refresh cycle fetches the document and renders it:
//
//   - The fetch bypasses HTTP caches. Failures are logged and yield no data.
//   - No data leaves the card as it was, so the last good statistics stay
//     visible across failed refreshes.
//   - Otherwise the card's five metric lines and two sequence blocks are fully
//     rewritten. Missing fields show [Placeholder].
//
// [Widget.Schedule] runs one cycle immediately and then one per interval
// (15 seconds by default) and returns a [Handle] to stop it. Cycles may
// overlap when a fetch outlasts the interval; the last render to finish wins
// unless [WithInFlightGuard] is set.
//
// # Host Page
//
// The card is mounted under the first element matching the container
// selector (".hero-right" by default). The widget never creates the
// container: if the page has none, renders do nothing. Without [WithPage]
// the embedded page from the dashboard package is used.
//
// # Architecture
//
// The widget is built from internal packages:
//
//   - internal/poller: cache-bypassing fetch client and interval scheduler
//   - internal/page: the host page DOM behind a read/write lock
//   - internal/card: card construction and read-back
//   - internal/store: latest snapshot with pub/sub for live updates
//   - internal/server: HTTP server with page, REST API and Server-Sent Events
//   - internal/collatz: the Collatz computations that produce the document
//   - dashboard: the embedded default host page
//
// The internal packages are not part of the public API and may change
// without notice.
package collatzcard
