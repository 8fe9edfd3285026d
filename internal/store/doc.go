// Package store keeps the most recently rendered card and fans updates out
// to live subscribers.
//
// This package is internal to collatzcard. The widget publishes a
// [CardSnapshot] after every successful render; the HTTP server reads the
// latest snapshot for its JSON API and subscribes for Server-Sent Events.
//
// The main components are:
//
//   - [Store]: Interface defining storage and subscription operations
//   - [MemoryStore]: In-memory implementation of Store with pub/sub
//   - [CardSnapshot]: What the card displayed after one render
//
// Publishing never blocks the refresh cycle. A subscriber that falls behind
// loses its oldest buffered snapshots and keeps the newest.
package store
