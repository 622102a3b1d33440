package generator

import (
	"context"
	"crypto/sha256"
	"strings"
	"testing"

	"github.com/chaindocs/tradecore/internal/domain"
)

func TestGenerateProducesConsistentHistories(t *testing.T) {
	gen := New(Config{NumCorporates: 10, NumBanks: 3, NumTrades: 50, MaxDocsPerTrade: 3, Seed: 7})

	dataset, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(dataset.Trades) != 50 {
		t.Fatalf("expected 50 trades, got %d", len(dataset.Trades))
	}

	for _, trade := range dataset.Trades {
		if !trade.Status.Valid() {
			t.Errorf("trade %s has unknown status %q", trade.ID, trade.Status)
		}
		if !strings.HasPrefix(trade.Number, "TRD-") {
			t.Errorf("trade %s has malformed number %q", trade.ID, trade.Number)
		}
		if trade.BuyerID == trade.SellerID {
			t.Errorf("trade %s has identical buyer and seller %s", trade.ID, trade.BuyerID)
		}

		// History must walk to the current status without gaps.
		previous := domain.StatusInitiated
		for _, rec := range trade.StatusHistory {
			if rec.FromStatus != previous {
				t.Errorf("trade %s: record %s -> %s does not follow %s", trade.ID, rec.FromStatus, rec.ToStatus, previous)
				break
			}
			previous = rec.ToStatus
		}
		if len(trade.StatusHistory) > 0 && previous != trade.Status {
			t.Errorf("trade %s: history ends at %s but status is %s", trade.ID, previous, trade.Status)
		}

		// Bank assignment and status must agree.
		assigned := false
		for _, rec := range trade.StatusHistory {
			if rec.ToStatus == domain.StatusBankAssigned {
				assigned = true
			}
		}
		if assigned && trade.BankID == "" {
			t.Errorf("trade %s reached BANK_ASSIGNED without a bank id", trade.ID)
		}
	}
}

func TestGenerateDocumentsCarryValidHashes(t *testing.T) {
	gen := New(Config{NumCorporates: 10, NumBanks: 3, NumTrades: 40, MaxDocsPerTrade: 3, Seed: 11})

	dataset, err := gen.Generate(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	tradeIDs := make(map[string]struct{}, len(dataset.Trades))
	for _, trade := range dataset.Trades {
		tradeIDs[trade.ID] = struct{}{}
	}

	for _, doc := range dataset.Documents {
		if _, ok := tradeIDs[doc.TradeID]; !ok {
			t.Errorf("document %s references unknown trade %s", doc.ID, doc.TradeID)
		}
		if len(doc.Hash) != sha256.Size*2 {
			t.Errorf("document %s has malformed hash %q", doc.ID, doc.Hash)
		}
	}
}

func TestGenerateIsDeterministicForSeed(t *testing.T) {
	cfg := Config{NumCorporates: 6, NumBanks: 2, NumTrades: 20, MaxDocsPerTrade: 2, Seed: 42}

	first, err := New(cfg).Generate(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := New(cfg).Generate(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(first.Trades) != len(second.Trades) {
		t.Fatalf("expected equal trade counts, got %d and %d", len(first.Trades), len(second.Trades))
	}
	for i := range first.Trades {
		if first.Trades[i].Number != second.Trades[i].Number {
			t.Fatalf("trade %d differs between runs: %s vs %s", i, first.Trades[i].Number, second.Trades[i].Number)
		}
		if first.Trades[i].Status != second.Trades[i].Status {
			t.Fatalf("trade %d status differs between runs", i)
		}
	}
}

func TestGenerateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(Config{Seed: 1}).Generate(ctx); err == nil {
		t.Fatalf("expected an error for a cancelled context")
	}
}
