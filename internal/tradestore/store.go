package tradestore

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/chaindocs/tradecore/internal/domain"
	"github.com/chaindocs/tradecore/internal/lifecycle"
)

// ErrNotFound indicates the backend knows no trade with the requested id.
var ErrNotFound = errors.New("trade not found")

const defaultRequestTimeout = 15 * time.Second

// TradeAPI is the remote collaborator owning trade state. The backend is the
// sole authority for transitions; the store applies a change locally only
// after the backend acknowledges it.
type TradeAPI interface {
	FetchTrade(ctx context.Context, tradeID string) (domain.Trade, error)
	SubmitTransition(ctx context.Context, tradeID string, to domain.TradeStatus, remarks string) (domain.Trade, error)
	AssignBank(ctx context.Context, tradeID, bankRef string) (domain.Trade, error)
}

// Recorder receives every successful transition for the audit trail.
type Recorder interface {
	Record(rec domain.TransitionRecord)
}

// Subscriber is invoked with a trade snapshot after every successful state
// change.
type Subscriber func(domain.Trade)

type entry struct {
	trade       domain.Trade
	pending     bool
	subscribers map[int]Subscriber
	nextSubID   int
}

// Store owns the authoritative local representation of trades, serializing
// all mutating operations per trade. At most one transition per trade is in
// flight at a time; a second concurrent request for the same id is rejected
// immediately with TransitionInProgress rather than queued, so two racing
// approvals can never both succeed against stale local state. Trades with
// different ids proceed fully independently.
type Store struct {
	api       TradeAPI
	validator *lifecycle.Validator
	audit     Recorder
	logger    *slog.Logger
	timeout   time.Duration
	nowFn     func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// New builds a Store. The audit recorder may be nil when no ledger
// forwarding is wanted (tests).
func New(api TradeAPI, validator *lifecycle.Validator, audit Recorder, logger *slog.Logger) *Store {
	return &Store{
		api:       api,
		validator: validator,
		audit:     audit,
		logger:    logger.With("component", "tradestore"),
		timeout:   defaultRequestTimeout,
		nowFn:     time.Now,
	}
}

// WithTimeout overrides the bound on a single remote transition request.
// A request exceeding it is treated as failed and the pending flag is
// cleared, allowing a user-initiated retry.
func (s *Store) WithTimeout(timeout time.Duration) *Store {
	if timeout > 0 {
		s.timeout = timeout
	}
	return s
}

// WithClock overrides the time provider (used primarily in tests).
func (s *Store) WithClock(nowFn func() time.Time) *Store {
	if nowFn != nil {
		s.nowFn = nowFn
	}
	return s
}

// Load returns the trade snapshot, fetching from the backend when it is not
// cached yet.
func (s *Store) Load(ctx context.Context, tradeID string) (domain.Trade, error) {
	s.mu.Lock()
	if e, ok := s.entries[tradeID]; ok && e.trade.ID != "" {
		trade := e.trade.Clone()
		s.mu.Unlock()
		return trade, nil
	}
	s.mu.Unlock()

	trade, err := s.api.FetchTrade(ctx, tradeID)
	if err != nil {
		return domain.Trade{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.ensureEntry(tradeID)
	// A concurrent transition may have refreshed the entry while the fetch
	// was running; the acknowledged state wins over this read.
	if !e.pending && e.trade.ID == "" {
		e.trade = trade
	}
	return e.trade.Clone(), nil
}

// Refresh discards the cached snapshot and re-fetches the trade.
func (s *Store) Refresh(ctx context.Context, tradeID string) (domain.Trade, error) {
	trade, err := s.api.FetchTrade(ctx, tradeID)
	if err != nil {
		return domain.Trade{}, err
	}

	s.mu.Lock()
	e := s.ensureEntry(tradeID)
	e.trade = trade
	snapshot := e.trade.Clone()
	subs := collectSubscribers(e)
	s.mu.Unlock()

	notify(subs, snapshot)
	return snapshot, nil
}

// Pending reports whether a transition for the trade is currently in flight.
func (s *Store) Pending(tradeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[tradeID]
	return ok && e.pending
}

// Subscribe registers a callback invoked on every successful state change of
// the trade. The returned function removes the subscription.
func (s *Store) Subscribe(tradeID string, sub Subscriber) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.ensureEntry(tradeID)
	id := e.nextSubID
	e.nextSubID++
	if e.subscribers == nil {
		e.subscribers = make(map[int]Subscriber)
	}
	e.subscribers[id] = sub

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if e, ok := s.entries[tradeID]; ok {
			delete(e.subscribers, id)
		}
	}
}

// RequestTransition validates and, if permitted, submits a status change for
// the trade. Local state is updated and the audit trail appended only after
// the backend acknowledges; on any failure the local snapshot is left
// exactly as it was.
func (s *Store) RequestTransition(ctx context.Context, tradeID string, to domain.TradeStatus, actor domain.Actor, remarks string) (domain.Trade, error) {
	return s.mutate(ctx, tradeID, to, actor, remarks, func(ctx context.Context) (domain.Trade, error) {
		return s.api.SubmitTransition(ctx, tradeID, to, remarks)
	})
}

// RequestBankAssignment validates the BANK_ASSIGNED transition and submits
// the bank designation to the backend in one step.
func (s *Store) RequestBankAssignment(ctx context.Context, tradeID, bankRef string, actor domain.Actor, remarks string) (domain.Trade, error) {
	return s.mutate(ctx, tradeID, domain.StatusBankAssigned, actor, remarks, func(ctx context.Context) (domain.Trade, error) {
		return s.api.AssignBank(ctx, tradeID, bankRef)
	})
}

func (s *Store) mutate(ctx context.Context, tradeID string, to domain.TradeStatus, actor domain.Actor, remarks string, submit func(context.Context) (domain.Trade, error)) (domain.Trade, error) {
	snapshot, err := s.Load(ctx, tradeID)
	if err != nil {
		return domain.Trade{}, err
	}

	s.mu.Lock()
	e := s.ensureEntry(tradeID)
	if e.pending {
		s.mu.Unlock()
		return domain.Trade{}, lifecycle.Deny(lifecycle.ReasonTransitionInProgress, "a transition for trade %s is already in flight", tradeID)
	}
	e.pending = true
	snapshot = e.trade.Clone()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		e.pending = false
		s.mu.Unlock()
	}()

	if err := s.validator.Validate(ctx, snapshot, to, actor); err != nil {
		return domain.Trade{}, err
	}

	submitCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	updated, err := submit(submitCtx)
	if err != nil {
		switch {
		case ctx.Err() != nil:
			// The caller's own context ended; that is a cancellation, not a
			// request timeout.
			return domain.Trade{}, ctx.Err()
		case submitCtx.Err() != nil && !lifecycle.IsReason(err, lifecycle.ReasonRemoteRejected):
			return domain.Trade{}, lifecycle.Deny(lifecycle.ReasonRemoteUnreachable, "transition request for trade %s timed out", tradeID)
		}
		return domain.Trade{}, err
	}

	rec := domain.TransitionRecord{
		TradeID:    tradeID,
		FromStatus: snapshot.Status,
		ToStatus:   to,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		Remarks:    remarks,
		CreatedAt:  s.nowFn(),
	}

	s.mu.Lock()
	if updated.ID != "" {
		e.trade = updated
	} else {
		e.trade.Status = to
	}
	if !historyEndsWith(e.trade.StatusHistory, rec) {
		e.trade.StatusHistory = append(e.trade.StatusHistory, rec)
	}
	e.trade.UpdatedAt = rec.CreatedAt
	result := e.trade.Clone()
	subs := collectSubscribers(e)
	s.mu.Unlock()

	if s.audit != nil {
		s.audit.Record(rec)
	}
	notify(subs, result)

	s.logger.Info("trade transition applied",
		"tradeId", tradeID,
		"from", rec.FromStatus,
		"to", rec.ToStatus,
		"actorId", actor.ID,
		"actorRole", actor.Role,
	)
	return result, nil
}

// historyEndsWith guards against double-appending when the backend already
// returned the new record as part of the refreshed aggregate.
func historyEndsWith(history []domain.TransitionRecord, rec domain.TransitionRecord) bool {
	if len(history) == 0 {
		return false
	}
	last := history[len(history)-1]
	return last.ToStatus == rec.ToStatus && last.ActorID == rec.ActorID && last.FromStatus == rec.FromStatus
}

func (s *Store) ensureEntry(tradeID string) *entry {
	if s.entries == nil {
		s.entries = make(map[string]*entry)
	}
	e, ok := s.entries[tradeID]
	if !ok {
		e = &entry{}
		s.entries[tradeID] = e
	}
	return e
}

func collectSubscribers(e *entry) []Subscriber {
	if len(e.subscribers) == 0 {
		return nil
	}
	subs := make([]Subscriber, 0, len(e.subscribers))
	for _, sub := range e.subscribers {
		subs = append(subs, sub)
	}
	return subs
}

func notify(subs []Subscriber, snapshot domain.Trade) {
	for _, sub := range subs {
		sub(snapshot.Clone())
	}
}
