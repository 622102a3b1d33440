package lifecycle

import (
	"context"
	"fmt"

	"github.com/chaindocs/tradecore/internal/domain"
)

// DocumentSource reports how many documents are linked to a trade. It is the
// only external collaborator the validator consults, and only for rules that
// carry a document precondition.
type DocumentSource interface {
	CountDocumentsByTrade(ctx context.Context, tradeID string) (int, error)
}

// Validator decides whether a requested transition is permitted. It is
// deterministic given its inputs and performs no mutation; it exists as an
// optimistic pre-check and UX gate, while the remote backend stays the final
// authority on every transition.
type Validator struct {
	docs DocumentSource
}

// NewValidator builds a Validator. The document source may be nil, in which
// case document preconditions fail closed.
func NewValidator(docs DocumentSource) *Validator {
	return &Validator{docs: docs}
}

// Validate runs the transition checks in order, failing fast on the first
// violation: terminal state, table membership, role, relationship, and
// finally any document precondition.
func (v *Validator) Validate(ctx context.Context, trade domain.Trade, requested domain.TradeStatus, actor domain.Actor) error {
	if trade.Status.Terminal() {
		return Deny(ReasonAlreadyTerminal, "trade %s is %s", trade.ID, trade.Status)
	}

	rules := RulesTo(trade.Status, requested)
	if len(rules) == 0 {
		return Deny(ReasonIllegalTransition, "no transition from %s to %s", trade.Status, requested)
	}

	roleRules := rules[:0:0]
	for _, rule := range rules {
		if rule.Role == actor.Role {
			roleRules = append(roleRules, rule)
		}
	}
	if len(roleRules) == 0 {
		return Deny(ReasonRoleMismatch, "role %s may not move %s to %s", actor.Role, trade.Status, requested)
	}

	relationship := trade.RelationshipOf(actor)
	var matched *TransitionRule
	for i, rule := range roleRules {
		if rule.Relationship == domain.RelationshipAny || rule.Relationship == relationship {
			matched = &roleRules[i]
			break
		}
	}
	if matched == nil {
		return Deny(ReasonRelationshipMismatch, "actor %s is not %s on trade %s", actor.ID, describeRelationships(roleRules), trade.ID)
	}

	if matched.RequiresDocuments {
		if err := v.checkDocuments(ctx, trade.ID); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) checkDocuments(ctx context.Context, tradeID string) error {
	if v.docs == nil {
		return Deny(ReasonPreconditionFailed, "no document source configured")
	}
	count, err := v.docs.CountDocumentsByTrade(ctx, tradeID)
	if err != nil {
		if _, ok := DenialOf(err); ok {
			return err
		}
		return &Denial{Reason: ReasonRemoteUnreachable, Detail: fmt.Sprintf("count documents for trade %s: %v", tradeID, err)}
	}
	if count < 1 {
		return Deny(ReasonPreconditionFailed, "trade %s has no documents attached", tradeID)
	}
	return nil
}

func describeRelationships(rules []TransitionRule) string {
	switch len(rules) {
	case 0:
		return ""
	case 1:
		return string(rules[0].Relationship)
	}
	out := string(rules[0].Relationship)
	for _, rule := range rules[1:] {
		out += " or " + string(rule.Relationship)
	}
	return out
}
