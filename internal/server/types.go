package server

import "github.com/chaindocs/tradecore/internal/domain"

type transitionRequest struct {
	Status  string `json:"status"`
	Remarks string `json:"remarks,omitempty"`
}

type assignBankRequest struct {
	Bank    string `json:"bank"`
	Remarks string `json:"remarks,omitempty"`
}

type tradeResponse struct {
	ID          string           `json:"id"`
	Number      string           `json:"trade_number"`
	BuyerID     string           `json:"buyer_id"`
	SellerID    string           `json:"seller_id"`
	BankID      string           `json:"bank_id,omitempty"`
	Amount      string           `json:"amount"`
	Currency    string           `json:"currency"`
	Description string           `json:"description,omitempty"`
	Status      string           `json:"status"`
	Pending     bool             `json:"pending"`
	History     []historyRecord  `json:"status_history"`
	CreatedAt   string           `json:"created_at,omitempty"`
	UpdatedAt   string           `json:"updated_at,omitempty"`
}

type historyRecord struct {
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	ActorID    string `json:"actor_id"`
	ActorRole  string `json:"actor_role"`
	Remarks    string `json:"remarks,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type actionsResponse struct {
	TradeID string       `json:"trade_id"`
	Actions []actionItem `json:"actions"`
}

type actionItem struct {
	Label  string `json:"label"`
	Target string `json:"target_status"`
}

type timelineResponse struct {
	TradeID string          `json:"trade_id"`
	Entries []timelineEntry `json:"entries"`
}

type timelineEntry struct {
	EventType    string `json:"event_type"`
	ActorID      string `json:"actor_id,omitempty"`
	ActorRole    string `json:"actor_role,omitempty"`
	Remarks      string `json:"remarks,omitempty"`
	PreviousHash string `json:"previous_hash,omitempty"`
	CurrentHash  string `json:"current_hash,omitempty"`
	CreatedAt    string `json:"created_at"`
}

type riskResponse struct {
	TradeID      string   `json:"trade_id"`
	Score        int      `json:"score"`
	Level        string   `json:"level"`
	Reasons      []string `json:"reasons"`
	CalculatedAt string   `json:"calculated_at"`
}

type denialResponse struct {
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

func toTradeResponse(trade domain.Trade, pending bool) tradeResponse {
	response := tradeResponse{
		ID:          trade.ID,
		Number:      trade.Number,
		BuyerID:     trade.BuyerID,
		SellerID:    trade.SellerID,
		BankID:      trade.BankID,
		Amount:      trade.Amount.String(),
		Currency:    trade.Currency,
		Description: trade.Description,
		Status:      string(trade.Status),
		Pending:     pending,
		History:     []historyRecord{},
		CreatedAt:   formatTime(trade.CreatedAt),
		UpdatedAt:   formatTime(trade.UpdatedAt),
	}
	for _, rec := range trade.StatusHistory {
		response.History = append(response.History, historyRecord{
			FromStatus: string(rec.FromStatus),
			ToStatus:   string(rec.ToStatus),
			ActorID:    rec.ActorID,
			ActorRole:  string(rec.ActorRole),
			Remarks:    rec.Remarks,
			CreatedAt:  formatTime(rec.CreatedAt),
		})
	}
	return response
}
