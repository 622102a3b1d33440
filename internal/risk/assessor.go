package risk

import (
	"context"
	"fmt"
	"time"

	"github.com/chaindocs/tradecore/internal/domain"
	"github.com/chaindocs/tradecore/internal/ledger"
)

// DocumentLister supplies the documents attached to a trade.
type DocumentLister interface {
	DocumentsByTrade(ctx context.Context, tradeID string) ([]domain.Document, error)
}

// Assessor gathers collaborator data and scores a trade.
type Assessor struct {
	docs   DocumentLister
	ledger ledger.Store
	nowFn  func() time.Time
}

// NewAssessor builds an Assessor over the document and ledger collaborators.
func NewAssessor(docs DocumentLister, store ledger.Store) *Assessor {
	return &Assessor{
		docs:   docs,
		ledger: store,
		nowFn:  time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (a *Assessor) WithClock(nowFn func() time.Time) *Assessor {
	if nowFn != nil {
		a.nowFn = nowFn
	}
	return a
}

// Assess scores the given trade snapshot using live collaborator data.
func (a *Assessor) Assess(ctx context.Context, trade domain.Trade) (domain.RiskAssessment, error) {
	docs, err := a.docs.DocumentsByTrade(ctx, trade.ID)
	if err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("list documents for trade %s: %w", trade.ID, err)
	}

	entries, err := a.ledger.EntriesForTrade(ctx, trade.ID)
	if err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("list ledger entries for trade %s: %w", trade.ID, err)
	}

	return Score(Input{
		Trade:       trade,
		Documents:   docs,
		LedgerCount: len(entries),
	}, a.nowFn()), nil
}
