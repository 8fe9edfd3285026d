package collatzcard

import (
	"time"

	"github.com/jpalmerr/collatzcard/internal/store"
)

// CardSnapshot is what the card showed after one successful render.
//
// CardSnapshot is read back from the page after the write, so it always
// matches what a browser loading the page would see. It is passed by value
// to render callbacks; its slices are copies owned by the receiver.
type CardSnapshot struct {
	// CycleID identifies the refresh cycle that produced this render.
	CycleID string

	// Entries are the five metric lines, e.g. "Largest Prime: 97".
	Entries []string

	// EfficientSequence is the text of the most-efficient sequence block.
	EfficientSequence string

	// HighValueSequence is the text of the highest-value sequence block.
	HighValueSequence string

	// HTML is the outer HTML of the card element.
	HTML string

	// FetchLatency is how long the fetch feeding this render took. Zero when
	// the render was not preceded by a fetch.
	FetchLatency time.Duration

	// RenderedAt is when the card was written.
	RenderedAt time.Time
}

func (s CardSnapshot) toStore() store.CardSnapshot {
	return store.CardSnapshot{
		CycleID:           s.CycleID,
		Entries:           copyStrings(s.Entries),
		EfficientSequence: s.EfficientSequence,
		HighValueSequence: s.HighValueSequence,
		HTML:              s.HTML,
		FetchTimeMs:       s.FetchLatency.Milliseconds(),
		RenderedAt:        s.RenderedAt,
	}
}

// copyStrings returns a copy of the slice, or nil if input is nil.
func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
