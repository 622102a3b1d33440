package domain

import "time"

// RiskLevel buckets a numeric risk score for display.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// RiskAssessment is the outcome of scoring a single trade.
type RiskAssessment struct {
	TradeID      string
	Score        int // 0..100
	Level        RiskLevel
	Reasons      []string
	CalculatedAt time.Time
}
