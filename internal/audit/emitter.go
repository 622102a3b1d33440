package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chaindocs/tradecore/internal/domain"
	"github.com/chaindocs/tradecore/internal/ledger"
)

const defaultRetryInterval = 5 * time.Second

// Emitter forwards transition records to the durable ledger collaborator.
// Recording never blocks the caller: entries are queued and written by a
// background loop, and a failed write stays queued for retry. Local trade
// state and the remote ledger may therefore diverge transiently;
// reconciliation belongs to the ledger collaborator, not to this core.
type Emitter struct {
	store         ledger.Store
	logger        *slog.Logger
	retryInterval time.Duration

	mu      sync.Mutex
	pending []ledger.Entry
	wake    chan struct{}

	// Held for the duration of a Flush. The drain loop and the shutdown
	// path may flush at the same time; without this, both could append
	// the head entry and then both remove one, dropping a queued entry
	// or slicing an already-empty queue.
	flushMu sync.Mutex
}

// NewEmitter builds an Emitter writing to the given ledger store.
func NewEmitter(store ledger.Store, logger *slog.Logger) *Emitter {
	return &Emitter{
		store:         store,
		logger:        logger.With("component", "audit"),
		retryInterval: defaultRetryInterval,
		wake:          make(chan struct{}, 1),
	}
}

// WithRetryInterval overrides the delay between retry rounds (used in tests).
func (e *Emitter) WithRetryInterval(interval time.Duration) *Emitter {
	if interval > 0 {
		e.retryInterval = interval
	}
	return e
}

// Record enqueues a transition record for the ledger. It returns immediately;
// durability is handled by the Run loop.
func (e *Emitter) Record(rec domain.TransitionRecord) {
	entry := ledger.Entry{
		ID:        uuid.NewString(),
		TradeID:   rec.TradeID,
		EventType: string(rec.ToStatus),
		ActorID:   rec.ActorID,
		ActorRole: string(rec.ActorRole),
		Remarks:   rec.Remarks,
		CreatedAt: rec.CreatedAt,
	}

	e.mu.Lock()
	e.pending = append(e.pending, entry)
	e.mu.Unlock()

	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Run drains the queue until the context is cancelled, retrying failed
// writes after the configured interval.
func (e *Emitter) Run(ctx context.Context) {
	for {
		if err := e.Flush(ctx); err != nil {
			e.logger.Warn("ledger append failed, entries queued for retry", "error", err, "queued", e.queueLen())
			select {
			case <-ctx.Done():
				return
			case <-time.After(e.retryInterval):
			}
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-e.wake:
		}
	}
}

// Flush writes every queued entry to the ledger, stopping at the first
// failure. Written entries are removed from the queue even when a later one
// fails, so retries never duplicate earlier appends. Concurrent callers are
// serialized; each queued entry is appended and removed exactly once.
func (e *Emitter) Flush(ctx context.Context) error {
	e.flushMu.Lock()
	defer e.flushMu.Unlock()

	for {
		e.mu.Lock()
		if len(e.pending) == 0 {
			e.mu.Unlock()
			return nil
		}
		entry := e.pending[0]
		e.mu.Unlock()

		if err := e.store.Append(ctx, &entry); err != nil {
			return err
		}

		e.mu.Lock()
		e.pending = e.pending[1:]
		e.mu.Unlock()
	}
}

func (e *Emitter) queueLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}
