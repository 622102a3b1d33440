package ledger

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func testEntry(id, tradeID, eventType string) Entry {
	return Entry{
		ID:        id,
		TradeID:   tradeID,
		EventType: eventType,
		ActorID:   "ORG-SELLER",
		ActorRole: "CORPORATE",
		CreatedAt: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestAppendChainsHashes(t *testing.T) {
	store := NewMemoryStore()

	first := testEntry("LE-1", "TRD-1", "SELLER_CONFIRMED")
	if err := store.Append(context.Background(), &first); err != nil {
		t.Fatalf("expected append to succeed, got %v", err)
	}
	if first.PreviousHash != "" {
		t.Errorf("expected empty previous hash on the first entry, got %q", first.PreviousHash)
	}
	if first.CurrentHash == "" {
		t.Fatalf("expected a content hash on the first entry")
	}

	second := testEntry("LE-2", "TRD-1", "DOCUMENTS_UPLOADED")
	if err := store.Append(context.Background(), &second); err != nil {
		t.Fatalf("expected append to succeed, got %v", err)
	}
	if second.PreviousHash != first.CurrentHash {
		t.Fatalf("expected second entry to chain to %q, got %q", first.CurrentHash, second.PreviousHash)
	}
	if second.CurrentHash == first.CurrentHash {
		t.Fatalf("expected distinct content hashes")
	}

	last, err := store.LastHash(context.Background())
	if err != nil {
		t.Fatalf("expected LastHash to succeed, got %v", err)
	}
	if last != second.CurrentHash {
		t.Fatalf("expected last hash %q, got %q", second.CurrentHash, last)
	}
}

func TestAppendIsIdempotentPerEntryID(t *testing.T) {
	store := NewMemoryStore()

	entry := testEntry("LE-1", "TRD-1", "SELLER_CONFIRMED")
	if err := store.Append(context.Background(), &entry); err != nil {
		t.Fatalf("expected append to succeed, got %v", err)
	}
	firstHash := entry.CurrentHash

	repeat := testEntry("LE-1", "TRD-1", "SELLER_CONFIRMED")
	if err := store.Append(context.Background(), &repeat); err != nil {
		t.Fatalf("expected repeated append to succeed, got %v", err)
	}
	if repeat.CurrentHash != firstHash {
		t.Errorf("expected repeated append to surface the original hash")
	}
	if len(store.All()) != 1 {
		t.Fatalf("expected 1 entry after repeated append, got %d", len(store.All()))
	}
}

func TestConcurrentAppendsKeepSingleChain(t *testing.T) {
	store := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			entry := testEntry(fmt.Sprintf("LE-%d", i), "TRD-1", "SELLER_CONFIRMED")
			if err := store.Append(context.Background(), &entry); err != nil {
				t.Errorf("expected append to succeed, got %v", err)
			}
		}(i)
	}
	wg.Wait()

	entries := store.All()
	if len(entries) != 20 {
		t.Fatalf("expected 20 entries, got %d", len(entries))
	}

	// Every entry must chain to its immediate predecessor; no two entries
	// may share a previous hash.
	previous := ""
	for _, entry := range entries {
		if entry.PreviousHash != previous {
			t.Fatalf("chain forked at %s: previous hash %q, want %q", entry.ID, entry.PreviousHash, previous)
		}
		previous = entry.CurrentHash
	}
}

func TestEntriesForTradeFilters(t *testing.T) {
	store := NewMemoryStore()

	for _, e := range []Entry{
		testEntry("LE-1", "TRD-1", "SELLER_CONFIRMED"),
		testEntry("LE-2", "TRD-2", "SELLER_CONFIRMED"),
		testEntry("LE-3", "TRD-1", "DOCUMENTS_UPLOADED"),
	} {
		entry := e
		if err := store.Append(context.Background(), &entry); err != nil {
			t.Fatalf("expected append to succeed, got %v", err)
		}
	}

	entries, err := store.EntriesForTrade(context.Background(), "TRD-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries for TRD-1, got %d", len(entries))
	}
	if entries[0].ID != "LE-1" || entries[1].ID != "LE-3" {
		t.Fatalf("expected append order preserved, got %s then %s", entries[0].ID, entries[1].ID)
	}

	empty, err := store.EntriesForTrade(context.Background(), "TRD-none")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected no entries for unknown trade, got %d", len(empty))
	}
}
