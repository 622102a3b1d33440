package lifecycle

import "github.com/chaindocs/tradecore/internal/domain"

// Action is a legal next step for an actor on a trade, rendered by UI
// surfaces as an affordance. The set is advisory only; the authoritative
// gate is the Validator inside the trade store.
type Action struct {
	Label  string
	Target domain.TradeStatus
}

// actionLabels maps a target status to the button text shown for it.
var actionLabels = map[domain.TradeStatus]string{
	domain.StatusSellerConfirmed:   "Confirm trade",
	domain.StatusDocumentsUploaded: "Mark documents uploaded",
	domain.StatusBankAssigned:      "Assign bank",
	domain.StatusShipped:           "Mark shipped",
	domain.StatusBankReviewing:     "Start review",
	domain.StatusBankApproved:      "Approve",
	domain.StatusPaymentReleased:   "Release payment",
	domain.StatusCompleted:         "Complete trade",
	domain.StatusCancelled:         "Cancel trade",
	domain.StatusDisputed:          "Raise dispute",
	domain.StatusRejected:          "Reject trade",
}

// AvailableActions returns the ordered legal next actions for the actor on
// the trade snapshot. The result is a pure function of its inputs: calling
// it twice with the same unmutated trade and actor yields identical output.
// Document preconditions are not evaluated here; an action may still be
// denied by the validator when requested.
func AvailableActions(trade domain.Trade, actor domain.Actor) []Action {
	if trade.Status.Terminal() {
		return nil
	}

	relationship := trade.RelationshipOf(actor)
	seen := make(map[domain.TradeStatus]struct{})
	var actions []Action
	for _, rule := range AllowedTransitions(trade.Status) {
		if rule.Role != actor.Role {
			continue
		}
		if rule.Relationship != domain.RelationshipAny && rule.Relationship != relationship {
			continue
		}
		if _, dup := seen[rule.To]; dup {
			continue
		}
		seen[rule.To] = struct{}{}
		actions = append(actions, Action{
			Label:  labelFor(rule.To),
			Target: rule.To,
		})
	}
	return actions
}

func labelFor(status domain.TradeStatus) string {
	if label, ok := actionLabels[status]; ok {
		return label
	}
	return string(status)
}
