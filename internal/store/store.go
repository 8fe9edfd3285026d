package store

import "time"

// CardSnapshot is the text and markup of the card after one successful render.
//
// CardSnapshot is optimized for JSON serialization (used by the REST API and
// SSE). It is read back from the page rather than built from the fetched
// document, so it always matches what the page shows.
type CardSnapshot struct {
	// CycleID identifies the refresh cycle that produced this render.
	CycleID string `json:"cycle_id"`

	// Entries are the metrics list lines, e.g. "Largest Prime: 97".
	Entries []string `json:"entries"`

	// EfficientSequence is the most-efficient-prime sequence block.
	EfficientSequence string `json:"efficient_sequence"`

	// HighValueSequence is the highest-value sequence block.
	HighValueSequence string `json:"high_value_sequence"`

	// HTML is the card's outer HTML.
	HTML string `json:"html"`

	// FetchTimeMs is the latency of the fetch that fed this render.
	FetchTimeMs int64 `json:"fetch_time_ms"`

	// RenderedAt is when the card was written.
	RenderedAt time.Time `json:"rendered_at"`
}

// Store defines the interface for storing and subscribing to card updates.
//
// Store implementations must be safe for concurrent access.
type Store interface {
	// Update replaces the latest snapshot and notifies all subscribers.
	Update(snapshot CardSnapshot)

	// Latest returns the most recent snapshot. ok is false before the first render.
	Latest() (snapshot CardSnapshot, ok bool)

	// Subscribe returns a channel that receives snapshot updates.
	// The returned channel has a buffer; slow consumers may miss updates.
	// Caller must call Unsubscribe when done to prevent resource leaks.
	Subscribe() <-chan CardSnapshot

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan CardSnapshot)
}
