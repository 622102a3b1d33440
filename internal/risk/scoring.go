package risk

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chaindocs/tradecore/internal/domain"
)

// Amount bands used for value-based risk. High-value trades attract extra
// scrutiny regardless of lifecycle position.
var (
	highValueThreshold   = decimal.NewFromInt(1_000_000)
	mediumValueThreshold = decimal.NewFromInt(100_000)
)

const maxScore = 100

// Input bundles everything the scorer consumes for one trade.
type Input struct {
	Trade       domain.Trade
	Documents   []domain.Document
	LedgerCount int
}

// Score computes a 0..100 risk score with a reason breakdown. The function
// is pure; callers supply the collaborator data.
func Score(in Input, now time.Time) domain.RiskAssessment {
	score := 0
	var reasons []string

	if in.Trade.Status != domain.StatusCompleted {
		score += 10
		reasons = append(reasons, "trade not completed")
	}

	switch docs := len(in.Documents); {
	case docs == 0:
		score += 30
		reasons = append(reasons, "no documents uploaded")
	default:
		if docs < 10 {
			score += 10 - docs
		}
		reasons = append(reasons, fmt.Sprintf("%d documents uploaded", docs))
	}

	if in.LedgerCount == 0 {
		score += 20
		reasons = append(reasons, "no ledger activity found")
	} else {
		reasons = append(reasons, fmt.Sprintf("%d ledger entries found", in.LedgerCount))
	}

	switch {
	case in.Trade.Amount.IsZero():
		score += 10
		reasons = append(reasons, "trade amount missing")
	case in.Trade.Amount.GreaterThan(highValueThreshold):
		score += 25
		reasons = append(reasons, "high value trade")
	case in.Trade.Amount.GreaterThan(mediumValueThreshold):
		score += 10
		reasons = append(reasons, "medium value trade")
	}

	if score > maxScore {
		score = maxScore
	}

	return domain.RiskAssessment{
		TradeID:      in.Trade.ID,
		Score:        score,
		Level:        levelFor(score),
		Reasons:      reasons,
		CalculatedAt: now,
	}
}

func levelFor(score int) domain.RiskLevel {
	switch {
	case score <= 33:
		return domain.RiskLow
	case score <= 66:
		return domain.RiskMedium
	}
	return domain.RiskHigh
}
