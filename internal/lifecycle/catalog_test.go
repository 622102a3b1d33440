package lifecycle

import (
	"testing"

	"github.com/chaindocs/tradecore/internal/domain"
)

func TestCatalogCoversOnlyKnownStatuses(t *testing.T) {
	for _, status := range domain.AllStatuses {
		for _, rule := range AllowedTransitions(status) {
			if !rule.To.Valid() {
				t.Errorf("transition from %s targets unknown status %q", status, rule.To)
			}
			if !rule.Role.Valid() {
				t.Errorf("transition %s -> %s carries unknown role %q", status, rule.To, rule.Role)
			}
		}
	}
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	for _, status := range domain.AllStatuses {
		if !status.Terminal() {
			continue
		}
		if rules := AllowedTransitions(status); len(rules) != 0 {
			t.Errorf("terminal status %s has %d transitions, want none", status, len(rules))
		}
	}
}

func TestEveryNonTerminalStatusHasAnExit(t *testing.T) {
	for _, status := range domain.AllStatuses {
		if status.Terminal() {
			continue
		}
		if len(AllowedTransitions(status)) == 0 {
			t.Errorf("non-terminal status %s has no way out", status)
		}
	}
}

func TestAllowedTransitionsReturnsCopy(t *testing.T) {
	rules := AllowedTransitions(domain.StatusInitiated)
	if len(rules) == 0 {
		t.Fatalf("expected transitions out of %s", domain.StatusInitiated)
	}
	rules[0].To = domain.StatusCompleted

	fresh := AllowedTransitions(domain.StatusInitiated)
	if fresh[0].To == domain.StatusCompleted {
		t.Fatalf("mutating the returned slice leaked into the catalog")
	}
}

func TestRulesToFiltersByTarget(t *testing.T) {
	rules := RulesTo(domain.StatusInitiated, domain.StatusCancelled)
	if len(rules) != 2 {
		t.Fatalf("expected 2 cancel rules out of %s, got %d", domain.StatusInitiated, len(rules))
	}
	for _, rule := range rules {
		if rule.To != domain.StatusCancelled {
			t.Errorf("expected target %s, got %s", domain.StatusCancelled, rule.To)
		}
	}

	if rules := RulesTo(domain.StatusInitiated, domain.StatusCompleted); len(rules) != 0 {
		t.Fatalf("expected no rules from %s to %s, got %d", domain.StatusInitiated, domain.StatusCompleted, len(rules))
	}
}

func TestDocumentPreconditionOnlyOnUploadTransition(t *testing.T) {
	for _, status := range domain.AllStatuses {
		for _, rule := range AllowedTransitions(status) {
			wantDocs := status == domain.StatusSellerConfirmed && rule.To == domain.StatusDocumentsUploaded
			if rule.RequiresDocuments != wantDocs {
				t.Errorf("transition %s -> %s: RequiresDocuments = %v, want %v", status, rule.To, rule.RequiresDocuments, wantDocs)
			}
		}
	}
}
