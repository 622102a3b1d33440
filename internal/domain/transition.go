package domain

import "time"

// TransitionRecord captures one validated status change of a trade. Records
// are immutable once appended and owned by the trade aggregate that produced
// them; the last record's ToStatus always equals the trade's current status.
type TransitionRecord struct {
	TradeID    string
	FromStatus TradeStatus
	ToStatus   TradeStatus
	ActorID    string
	ActorRole  Role
	Remarks    string
	CreatedAt  time.Time
}
