package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chaindocs/tradecore/internal/domain"
	"github.com/chaindocs/tradecore/internal/lifecycle"
	"github.com/chaindocs/tradecore/internal/tradestore"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(Config{BaseURL: server.URL, Timeout: 2 * time.Second})
	return client, server
}

func TestFetchTrade(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/trades/TRD-1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":           "TRD-1",
			"trade_number": "TRD-a1b2c3d4",
			"buyer_id":     "ORG-BUYER",
			"seller_id":    "ORG-SELLER",
			"amount":       "25000",
			"currency":     "USD",
			"status":       "INITIATED",
			"created_at":   "2025-06-01T09:00:00Z",
			"status_history": []map[string]any{
				{
					"trade_id":    "TRD-1",
					"from_status": "",
					"to_status":   "INITIATED",
					"actor_id":    "ORG-BUYER",
					"actor_role":  "CORPORATE",
					"created_at":  "2025-06-01T09:00:00Z",
				},
			},
		})
	})
	defer server.Close()

	trade, err := client.FetchTrade(context.Background(), "TRD-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if trade.ID != "TRD-1" || trade.Status != domain.StatusInitiated {
		t.Fatalf("unexpected trade %+v", trade)
	}
	if trade.Amount.String() != "25000" {
		t.Errorf("expected amount 25000, got %s", trade.Amount.String())
	}
	if len(trade.StatusHistory) != 1 {
		t.Fatalf("expected 1 history record, got %d", len(trade.StatusHistory))
	}
	if trade.CreatedAt.IsZero() {
		t.Errorf("expected parsed creation time")
	}
}

func TestFetchTradeNotFound(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer server.Close()

	_, err := client.FetchTrade(context.Background(), "TRD-missing")
	if err != tradestore.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSubmitTransition(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/trades/TRD-1/status" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Status  string `json:"status"`
			Remarks string `json:"remarks"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		if body.Status != "SELLER_CONFIRMED" {
			t.Errorf("expected status SELLER_CONFIRMED, got %s", body.Status)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     "TRD-1",
			"status": "SELLER_CONFIRMED",
			"amount": "25000",
		})
	})
	defer server.Close()

	trade, err := client.SubmitTransition(context.Background(), "TRD-1", domain.StatusSellerConfirmed, "ok")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if trade.Status != domain.StatusSellerConfirmed {
		t.Fatalf("expected status %s, got %s", domain.StatusSellerConfirmed, trade.Status)
	}
}

func TestSubmitTransitionBackendDenial(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"detail": "trade already confirmed"})
	})
	defer server.Close()

	_, err := client.SubmitTransition(context.Background(), "TRD-1", domain.StatusSellerConfirmed, "")
	denial, ok := lifecycle.DenialOf(err)
	if !ok {
		t.Fatalf("expected Denial, got %v", err)
	}
	if denial.Reason != lifecycle.ReasonRemoteRejected {
		t.Fatalf("expected REMOTE_REJECTED, got %s", denial.Reason)
	}
	if denial.Detail != "trade already confirmed" {
		t.Errorf("expected the backend detail surfaced, got %q", denial.Detail)
	}
}

func TestSubmitTransitionServerError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer server.Close()

	_, err := client.SubmitTransition(context.Background(), "TRD-1", domain.StatusSellerConfirmed, "")
	if !lifecycle.IsReason(err, lifecycle.ReasonRemoteUnreachable) {
		t.Fatalf("expected REMOTE_UNREACHABLE for a 5xx, got %v", err)
	}
}

func TestSubmitTransitionTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := NewClient(Config{BaseURL: server.URL, Timeout: time.Second})
	server.Close()

	_, err := client.SubmitTransition(context.Background(), "TRD-1", domain.StatusSellerConfirmed, "")
	if !lifecycle.IsReason(err, lifecycle.ReasonRemoteUnreachable) {
		t.Fatalf("expected REMOTE_UNREACHABLE for a transport failure, got %v", err)
	}
}

func TestAssignBank(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/trades/TRD-1/assign-bank" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "TRD-1",
			"bank_id": "BANK-9",
			"status":  "BANK_ASSIGNED",
			"amount":  "25000",
		})
	})
	defer server.Close()

	trade, err := client.AssignBank(context.Background(), "TRD-1", "BANK-9")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if trade.BankID != "BANK-9" || trade.Status != domain.StatusBankAssigned {
		t.Fatalf("unexpected trade %+v", trade)
	}
}

func TestCountDocumentsByTrade(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/documents" || r.URL.Query().Get("trade_id") != "TRD-1" {
			t.Errorf("unexpected request %s %s", r.URL.Path, r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": "DOC-1", "trade_id": "TRD-1"},
			{"id": "DOC-2", "trade_id": "TRD-1"},
		})
	})
	defer server.Close()

	count, err := client.CountDocumentsByTrade(context.Background(), "TRD-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 documents, got %d", count)
	}
}
