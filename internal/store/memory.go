package store

import "sync"

const subscriberBuffer = 16

// MemoryStore keeps the latest card snapshot in memory and fans updates out
// to subscribers.
//
// Delivery never blocks Update. When a subscriber's buffer is full its oldest
// pending snapshot is discarded to make room, so a lagging reader always ends
// up on the newest card rather than a stale one.
type MemoryStore struct {
	mu       sync.Mutex
	latest   CardSnapshot
	revision uint64
	subs     map[<-chan CardSnapshot]chan CardSnapshot
	dropped  uint64
}

// NewMemoryStore returns an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: make(map[<-chan CardSnapshot]chan CardSnapshot)}
}

func (m *MemoryStore) Update(snapshot CardSnapshot) {
	snapshot.Entries = cloneEntries(snapshot.Entries)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.latest = snapshot
	m.revision++
	for _, ch := range m.subs {
		m.deliver(ch, snapshot)
	}
}

// deliver must be called with mu held. Holding the lock keeps the drain and
// resend atomic with respect to other Updates and to Unsubscribe closing ch.
func (m *MemoryStore) deliver(ch chan CardSnapshot, snapshot CardSnapshot) {
	for {
		select {
		case ch <- snapshot:
			return
		default:
		}
		select {
		case <-ch:
			m.dropped++
		default:
		}
	}
}

func (m *MemoryStore) Latest() (CardSnapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.latest
	snap.Entries = cloneEntries(snap.Entries)
	return snap, m.revision > 0
}

// Revision counts the updates applied so far. Zero means nothing has been
// rendered yet.
func (m *MemoryStore) Revision() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revision
}

// Dropped counts snapshots discarded from full subscriber buffers.
func (m *MemoryStore) Dropped() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// Subscribe registers a new subscriber. Callers must release it with
// [MemoryStore.Unsubscribe].
func (m *MemoryStore) Subscribe() <-chan CardSnapshot {
	ch := make(chan CardSnapshot, subscriberBuffer)

	m.mu.Lock()
	m.subs[ch] = ch
	m.mu.Unlock()

	return ch
}

// Unsubscribe closes ch. Unknown or already released channels are ignored.
func (m *MemoryStore) Unsubscribe(ch <-chan CardSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sub, ok := m.subs[ch]; ok {
		delete(m.subs, ch)
		close(sub)
	}
}

func cloneEntries(entries []string) []string {
	if entries == nil {
		return nil
	}
	return append([]string(nil), entries...)
}
