package remote

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chaindocs/tradecore/internal/domain"
	"github.com/chaindocs/tradecore/internal/tradestore"
)

type tradePayload struct {
	ID          string              `json:"id"`
	TradeNumber string              `json:"trade_number"`
	BuyerID     string              `json:"buyer_id"`
	SellerID    string              `json:"seller_id"`
	BankID      string              `json:"bank_id,omitempty"`
	Amount      decimal.Decimal     `json:"amount"`
	Currency    string              `json:"currency"`
	Description string              `json:"description,omitempty"`
	Status      string              `json:"status"`
	History     []transitionPayload `json:"status_history,omitempty"`
	CreatedAt   string              `json:"created_at,omitempty"`
	UpdatedAt   string              `json:"updated_at,omitempty"`
}

type transitionPayload struct {
	TradeID    string `json:"trade_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	ActorID    string `json:"actor_id"`
	ActorRole  string `json:"actor_role"`
	Remarks    string `json:"remarks,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type transitionRequest struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks,omitempty"`
}

type assignBankRequest struct {
	Bank string `json:"bank"`
}

// FetchTrade retrieves the trade aggregate from the backend.
func (c *Client) FetchTrade(ctx context.Context, tradeID string) (domain.Trade, error) {
	var payload tradePayload
	resp, err := c.newRequest(ctx).
		SetResult(&payload).
		Get(fmt.Sprintf("/trades/%s", tradeID))
	if err == nil && resp.StatusCode() == http.StatusNotFound {
		return domain.Trade{}, tradestore.ErrNotFound
	}
	if cerr := classify(resp, err, "fetch trade"); cerr != nil {
		return domain.Trade{}, cerr
	}
	return payload.toDomain(), nil
}

// SubmitTransition asks the backend to move the trade to the requested
// status. The backend is the final authority; the updated aggregate it
// returns replaces the local snapshot on success.
func (c *Client) SubmitTransition(ctx context.Context, tradeID string, to domain.TradeStatus, remarks string) (domain.Trade, error) {
	var payload tradePayload
	resp, err := c.newRequest(ctx).
		SetBody(transitionRequest{Status: string(to), Remarks: remarks}).
		SetResult(&payload).
		Patch(fmt.Sprintf("/trades/%s/status", tradeID))
	if cerr := classify(resp, err, "submit transition"); cerr != nil {
		return domain.Trade{}, cerr
	}
	return payload.toDomain(), nil
}

// AssignBank designates the trade's bank by id or email and returns the
// updated aggregate.
func (c *Client) AssignBank(ctx context.Context, tradeID, bankRef string) (domain.Trade, error) {
	var payload tradePayload
	resp, err := c.newRequest(ctx).
		SetBody(assignBankRequest{Bank: bankRef}).
		SetResult(&payload).
		Post(fmt.Sprintf("/trades/%s/assign-bank", tradeID))
	if cerr := classify(resp, err, "assign bank"); cerr != nil {
		return domain.Trade{}, cerr
	}
	return payload.toDomain(), nil
}

func (p tradePayload) toDomain() domain.Trade {
	trade := domain.Trade{
		ID:          p.ID,
		Number:      p.TradeNumber,
		BuyerID:     p.BuyerID,
		SellerID:    p.SellerID,
		BankID:      p.BankID,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Description: p.Description,
		Status:      domain.TradeStatus(p.Status),
		CreatedAt:   parseTime(p.CreatedAt),
		UpdatedAt:   parseTime(p.UpdatedAt),
	}
	for _, rec := range p.History {
		trade.StatusHistory = append(trade.StatusHistory, domain.TransitionRecord{
			TradeID:    rec.TradeID,
			FromStatus: domain.TradeStatus(rec.FromStatus),
			ToStatus:   domain.TradeStatus(rec.ToStatus),
			ActorID:    rec.ActorID,
			ActorRole:  domain.Role(rec.ActorRole),
			Remarks:    rec.Remarks,
			CreatedAt:  parseTime(rec.CreatedAt),
		})
	}
	return trade
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts
	}
	return time.Time{}
}
