package ledger

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory Store used for unit tests and for local
// development without a running graph database. It preserves append order
// and the same hash-chaining behaviour as the durable implementation.
type MemoryStore struct {
	mu        sync.Mutex
	entries   []Entry
	appendErr error
	connErr   error
}

// NewMemoryStore creates an empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// FailAppends makes subsequent Append calls return err; passing nil restores
// normal behaviour. Used to exercise retry paths in tests.
func (m *MemoryStore) FailAppends(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendErr = err
}

// WithConnectivityError forces VerifyConnectivity to return the supplied error.
func (m *MemoryStore) WithConnectivityError(err error) *MemoryStore {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connErr = err
	return m
}

func (m *MemoryStore) Append(_ context.Context, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.appendErr != nil {
		return m.appendErr
	}
	for _, existing := range m.entries {
		if existing.ID == entry.ID {
			// Repeated append of the same entry is a no-op.
			entry.PreviousHash = existing.PreviousHash
			entry.CurrentHash = existing.CurrentHash
			return nil
		}
	}

	previous := ""
	if len(m.entries) > 0 {
		previous = m.entries[len(m.entries)-1].CurrentHash
	}
	chain(previous, entry)
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *MemoryStore) EntriesForTrade(_ context.Context, tradeID string) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var entries []Entry
	for _, entry := range m.entries {
		if entry.TradeID == tradeID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (m *MemoryStore) LastHash(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) == 0 {
		return "", nil
	}
	return m.entries[len(m.entries)-1].CurrentHash, nil
}

func (m *MemoryStore) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connErr
}

func (m *MemoryStore) Close(context.Context) error {
	return nil
}

// All returns a snapshot of every entry in append order.
func (m *MemoryStore) All() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Entry(nil), m.entries...)
}
