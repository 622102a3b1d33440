package risk

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chaindocs/tradecore/internal/domain"
	"github.com/chaindocs/tradecore/internal/ledger"
)

func docs(n int) []domain.Document {
	out := make([]domain.Document, n)
	for i := range out {
		out[i] = domain.Document{ID: "DOC", TradeID: "TRD-1"}
	}
	return out
}

func TestScoreWorstCase(t *testing.T) {
	in := Input{
		Trade: domain.Trade{ID: "TRD-1", Status: domain.StatusInitiated},
	}
	assessment := Score(in, time.Now())

	// 10 (not completed) + 30 (no docs) + 20 (no ledger) + 10 (no amount).
	if assessment.Score != 70 {
		t.Fatalf("expected score 70, got %d", assessment.Score)
	}
	if assessment.Level != domain.RiskHigh {
		t.Fatalf("expected HIGH, got %s", assessment.Level)
	}
	if len(assessment.Reasons) != 4 {
		t.Fatalf("expected 4 reasons, got %d: %v", len(assessment.Reasons), assessment.Reasons)
	}
}

func TestScoreCompletedWellDocumentedTrade(t *testing.T) {
	in := Input{
		Trade: domain.Trade{
			ID:     "TRD-1",
			Status: domain.StatusCompleted,
			Amount: decimal.NewFromInt(50_000),
		},
		Documents:   docs(10),
		LedgerCount: 8,
	}
	assessment := Score(in, time.Now())

	if assessment.Score != 0 {
		t.Fatalf("expected score 0, got %d (%v)", assessment.Score, assessment.Reasons)
	}
	if assessment.Level != domain.RiskLow {
		t.Fatalf("expected LOW, got %s", assessment.Level)
	}
}

func TestScoreFewDocumentsAddsRemainder(t *testing.T) {
	in := Input{
		Trade: domain.Trade{
			ID:     "TRD-1",
			Status: domain.StatusCompleted,
			Amount: decimal.NewFromInt(50_000),
		},
		Documents:   docs(3),
		LedgerCount: 5,
	}
	assessment := Score(in, time.Now())

	if assessment.Score != 7 {
		t.Fatalf("expected score 7 for 3 documents, got %d", assessment.Score)
	}
}

func TestScoreAmountBands(t *testing.T) {
	base := Input{
		Trade: domain.Trade{
			ID:     "TRD-1",
			Status: domain.StatusCompleted,
		},
		Documents:   docs(10),
		LedgerCount: 5,
	}

	cases := []struct {
		amount int64
		want   int
	}{
		{50_000, 0},
		{100_001, 10},
		{1_000_001, 25},
	}
	for _, tc := range cases {
		in := base
		in.Trade.Amount = decimal.NewFromInt(tc.amount)
		if got := Score(in, time.Now()).Score; got != tc.want {
			t.Errorf("amount %d: expected score %d, got %d", tc.amount, tc.want, got)
		}
	}
}

func TestScoreLevels(t *testing.T) {
	cases := []struct {
		score int
		want  domain.RiskLevel
	}{
		{0, domain.RiskLow},
		{33, domain.RiskLow},
		{34, domain.RiskMedium},
		{66, domain.RiskMedium},
		{67, domain.RiskHigh},
	}
	for _, tc := range cases {
		if got := levelFor(tc.score); got != tc.want {
			t.Errorf("score %d: expected level %s, got %s", tc.score, tc.want, got)
		}
	}
}

type stubDocumentLister struct {
	docs []domain.Document
	err  error
}

func (s *stubDocumentLister) DocumentsByTrade(ctx context.Context, tradeID string) ([]domain.Document, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.docs, nil
}

func TestAssessorGathersCollaboratorData(t *testing.T) {
	store := ledger.NewMemoryStore()
	entry := ledger.Entry{ID: "LE-1", TradeID: "TRD-1", EventType: "SELLER_CONFIRMED", CreatedAt: time.Now()}
	if err := store.Append(context.Background(), &entry); err != nil {
		t.Fatalf("expected append to succeed, got %v", err)
	}

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	assessor := NewAssessor(&stubDocumentLister{docs: docs(2)}, store).WithClock(func() time.Time { return now })

	trade := domain.Trade{ID: "TRD-1", Status: domain.StatusSellerConfirmed, Amount: decimal.NewFromInt(5_000)}
	assessment, err := assessor.Assess(context.Background(), trade)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// 10 (not completed) + 8 (2 documents), ledger and amount are clean.
	if assessment.Score != 18 {
		t.Fatalf("expected score 18, got %d (%v)", assessment.Score, assessment.Reasons)
	}
	if !assessment.CalculatedAt.Equal(now) {
		t.Errorf("expected CalculatedAt %v, got %v", now, assessment.CalculatedAt)
	}
}
