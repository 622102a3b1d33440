package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradeStatus enumerates the lifecycle states of a trade.
type TradeStatus string

const (
	StatusInitiated         TradeStatus = "INITIATED"
	StatusSellerConfirmed   TradeStatus = "SELLER_CONFIRMED"
	StatusDocumentsUploaded TradeStatus = "DOCUMENTS_UPLOADED"
	StatusBankAssigned      TradeStatus = "BANK_ASSIGNED"
	StatusShipped           TradeStatus = "SHIPPED"
	StatusBankReviewing     TradeStatus = "BANK_REVIEWING"
	StatusBankApproved      TradeStatus = "BANK_APPROVED"
	StatusPaymentReleased   TradeStatus = "PAYMENT_RELEASED"
	StatusCompleted         TradeStatus = "COMPLETED"
	StatusCancelled         TradeStatus = "CANCELLED"
	StatusDisputed          TradeStatus = "DISPUTED"
	StatusRejected          TradeStatus = "REJECTED"
)

// AllStatuses lists every valid trade status in lifecycle order.
var AllStatuses = []TradeStatus{
	StatusInitiated,
	StatusSellerConfirmed,
	StatusDocumentsUploaded,
	StatusBankAssigned,
	StatusShipped,
	StatusBankReviewing,
	StatusBankApproved,
	StatusPaymentReleased,
	StatusCompleted,
	StatusCancelled,
	StatusDisputed,
	StatusRejected,
}

// Terminal reports whether no further transition is permitted from the status.
func (s TradeStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusRejected:
		return true
	}
	return false
}

// Valid reports whether the status is one of the canonical lifecycle states.
func (s TradeStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Trade is the aggregate root for a buyer-seller-bank transaction.
// It is mutated only through validated transitions and never hard-deleted;
// finished trades are moved to a terminal status instead.
type Trade struct {
	ID            string
	Number        string
	BuyerID       string
	SellerID      string
	BankID        string // empty until a bank is assigned
	Amount        decimal.Decimal
	Currency      string
	Description   string
	Status        TradeStatus
	StatusHistory []TransitionRecord
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RelationshipOf derives the actor's relationship to the trade by comparing
// identities. Roles without a participant identity (admin, auditor) always
// derive RelationshipNone.
func (t Trade) RelationshipOf(actor Actor) Relationship {
	switch {
	case actor.Role == RoleCorporate && actor.ID == t.BuyerID:
		return RelationshipBuyer
	case actor.Role == RoleCorporate && actor.ID == t.SellerID:
		return RelationshipSeller
	case actor.Role == RoleBank && t.BankID != "" && actor.ID == t.BankID:
		return RelationshipAssignedBank
	}
	return RelationshipNone
}

// Clone returns a deep copy of the trade so callers can hold snapshots
// without observing later mutations.
func (t Trade) Clone() Trade {
	copied := t
	if t.StatusHistory != nil {
		copied.StatusHistory = append([]TransitionRecord(nil), t.StatusHistory...)
	}
	return copied
}
