package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// Store is the durable, append-only ledger collaborator. Entries are chained
// by hash: each appended entry records the hash of the previous entry and its
// own content hash, making retroactive edits detectable.
type Store interface {
	// Append persists the entry, filling in PreviousHash and CurrentHash.
	// Idempotency of repeated appends is the store's responsibility.
	Append(ctx context.Context, entry *Entry) error
	// EntriesForTrade returns all entries recorded for the trade in append order.
	EntriesForTrade(ctx context.Context, tradeID string) ([]Entry, error)
	// LastHash returns the content hash of the most recent entry, or "" when
	// the ledger is empty.
	LastHash(ctx context.Context) (string, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Entry is one immutable ledger record: a trade transition, a document
// event, or an integrity failure.
type Entry struct {
	ID           string
	TradeID      string
	DocumentID   string
	EventType    string
	ActorID      string
	ActorRole    string
	Remarks      string
	PreviousHash string
	CurrentHash  string
	CreatedAt    time.Time
}

// EventTypeIntegrityFailed marks entries produced by document integrity sweeps.
const EventTypeIntegrityFailed = "INTEGRITY_FAILED"

// Options configures a ledger store implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

// ErrMissingURI indicates the ledger URI is not provided.
var ErrMissingURI = errors.New("ledger URI is required")

// chain computes the entry's content hash over its fields and the previous
// entry's hash, and stamps both onto the entry.
func chain(previousHash string, entry *Entry) {
	entry.PreviousHash = previousHash
	payload := fmt.Sprintf("%s|%s|%s|%s|%s|%s|%s|%d",
		entry.ID,
		entry.TradeID,
		entry.DocumentID,
		entry.EventType,
		entry.ActorID,
		entry.ActorRole,
		previousHash,
		entry.CreatedAt.UTC().UnixNano(),
	)
	sum := sha256.Sum256([]byte(payload))
	entry.CurrentHash = hex.EncodeToString(sum[:])
}
