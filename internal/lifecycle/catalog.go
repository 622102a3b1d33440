package lifecycle

import "github.com/chaindocs/tradecore/internal/domain"

// TransitionRule describes one permitted transition out of a status: who may
// request it and which relationship to the trade they must hold. A rule with
// RequiresDocuments additionally demands at least one document linked to the
// trade at validation time.
type TransitionRule struct {
	To                domain.TradeStatus
	Role              domain.Role
	Relationship      domain.Relationship
	RequiresDocuments bool
}

// catalog is the single authoritative transition table. Any (status, target)
// pair not listed here is denied unconditionally, including everything out of
// a terminal status. Admin and auditor roles are read-only observers and are
// enforced as such by their omission from the table.
var catalog = map[domain.TradeStatus][]TransitionRule{
	domain.StatusInitiated: {
		{To: domain.StatusSellerConfirmed, Role: domain.RoleCorporate, Relationship: domain.RelationshipSeller},
		{To: domain.StatusRejected, Role: domain.RoleCorporate, Relationship: domain.RelationshipSeller},
		{To: domain.StatusCancelled, Role: domain.RoleCorporate, Relationship: domain.RelationshipBuyer},
		{To: domain.StatusCancelled, Role: domain.RoleCorporate, Relationship: domain.RelationshipSeller},
	},
	domain.StatusSellerConfirmed: {
		{To: domain.StatusDocumentsUploaded, Role: domain.RoleCorporate, Relationship: domain.RelationshipSeller, RequiresDocuments: true},
		{To: domain.StatusCancelled, Role: domain.RoleCorporate, Relationship: domain.RelationshipBuyer},
		{To: domain.StatusCancelled, Role: domain.RoleCorporate, Relationship: domain.RelationshipSeller},
	},
	domain.StatusDocumentsUploaded: {
		{To: domain.StatusBankAssigned, Role: domain.RoleCorporate, Relationship: domain.RelationshipBuyer},
		{To: domain.StatusCancelled, Role: domain.RoleCorporate, Relationship: domain.RelationshipBuyer},
		{To: domain.StatusCancelled, Role: domain.RoleCorporate, Relationship: domain.RelationshipSeller},
	},
	domain.StatusBankAssigned: {
		{To: domain.StatusShipped, Role: domain.RoleCorporate, Relationship: domain.RelationshipSeller},
		{To: domain.StatusBankReviewing, Role: domain.RoleBank, Relationship: domain.RelationshipAssignedBank},
	},
	domain.StatusShipped: {
		{To: domain.StatusBankReviewing, Role: domain.RoleBank, Relationship: domain.RelationshipAssignedBank},
		{To: domain.StatusDisputed, Role: domain.RoleBank, Relationship: domain.RelationshipAssignedBank},
	},
	domain.StatusBankReviewing: {
		{To: domain.StatusBankApproved, Role: domain.RoleBank, Relationship: domain.RelationshipAssignedBank},
		{To: domain.StatusDisputed, Role: domain.RoleBank, Relationship: domain.RelationshipAssignedBank},
	},
	domain.StatusBankApproved: {
		{To: domain.StatusPaymentReleased, Role: domain.RoleBank, Relationship: domain.RelationshipAssignedBank},
	},
	domain.StatusPaymentReleased: {
		{To: domain.StatusCompleted, Role: domain.RoleCorporate, Relationship: domain.RelationshipBuyer},
		{To: domain.StatusCompleted, Role: domain.RoleCorporate, Relationship: domain.RelationshipSeller},
	},
	domain.StatusDisputed: {
		{To: domain.StatusCancelled, Role: domain.RoleBank, Relationship: domain.RelationshipAssignedBank},
		{To: domain.StatusCancelled, Role: domain.RoleCorporate, Relationship: domain.RelationshipBuyer},
	},
}

// AllowedTransitions returns the ordered transition rules out of the given
// status. The returned slice is a copy; callers may not mutate the catalog.
func AllowedTransitions(status domain.TradeStatus) []TransitionRule {
	rules, ok := catalog[status]
	if !ok {
		return nil
	}
	return append([]TransitionRule(nil), rules...)
}

// RulesTo returns the rules out of status that target the requested status,
// preserving catalog order.
func RulesTo(status, target domain.TradeStatus) []TransitionRule {
	var matched []TransitionRule
	for _, rule := range catalog[status] {
		if rule.To == target {
			matched = append(matched, rule)
		}
	}
	return matched
}
