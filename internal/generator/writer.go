package generator

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/chaindocs/tradecore/internal/domain"
)

// tradeSeed is the wire shape of a generated trade, matching the backend's
// snake_case conventions.
type tradeSeed struct {
	ID          string           `json:"id"`
	TradeNumber string           `json:"trade_number"`
	BuyerID     string           `json:"buyer_id"`
	SellerID    string           `json:"seller_id"`
	BankID      string           `json:"bank_id,omitempty"`
	Amount      string           `json:"amount"`
	Currency    string           `json:"currency"`
	Description string           `json:"description"`
	Status      string           `json:"status"`
	History     []transitionSeed `json:"status_history"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
}

type transitionSeed struct {
	TradeID    string `json:"trade_id"`
	FromStatus string `json:"from_status"`
	ToStatus   string `json:"to_status"`
	ActorID    string `json:"actor_id"`
	ActorRole  string `json:"actor_role"`
	CreatedAt  string `json:"created_at"`
}

type documentSeed struct {
	ID         string `json:"id"`
	TradeID    string `json:"trade_id"`
	DocType    string `json:"doc_type"`
	DocNumber  string `json:"doc_number"`
	FileName   string `json:"file_name"`
	Hash       string `json:"hash"`
	OrgName    string `json:"org_name"`
	UploadedBy string `json:"uploaded_by"`
	IssuedAt   string `json:"issued_at"`
	CreatedAt  string `json:"created_at"`
}

type datasetSeed struct {
	Parties   []Party        `json:"parties"`
	Trades    []tradeSeed    `json:"trades"`
	Documents []documentSeed `json:"documents"`
}

// WriteDataset serializes the dataset into parties.json, trades.json, and
// documents.json under the provided directory.
func WriteDataset(dataset Dataset, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	seed := toDatasetSeed(dataset)
	files := []struct {
		name string
		data any
	}{
		{"parties.json", seed.Parties},
		{"trades.json", seed.Trades},
		{"documents.json", seed.Documents},
	}
	for _, f := range files {
		if err := writeJSON(filepath.Join(dir, f.name), f.data); err != nil {
			return err
		}
	}
	return nil
}

// EncodeDataset writes the full dataset as one JSON document.
func EncodeDataset(w io.Writer, dataset Dataset) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(toDatasetSeed(dataset))
}

func toDatasetSeed(dataset Dataset) datasetSeed {
	seed := datasetSeed{
		Parties:   dataset.Parties,
		Trades:    make([]tradeSeed, 0, len(dataset.Trades)),
		Documents: make([]documentSeed, 0, len(dataset.Documents)),
	}
	for _, trade := range dataset.Trades {
		seed.Trades = append(seed.Trades, toTradeSeed(trade))
	}
	for _, doc := range dataset.Documents {
		seed.Documents = append(seed.Documents, toDocumentSeed(doc))
	}
	return seed
}

func toTradeSeed(trade domain.Trade) tradeSeed {
	seed := tradeSeed{
		ID:          trade.ID,
		TradeNumber: trade.Number,
		BuyerID:     trade.BuyerID,
		SellerID:    trade.SellerID,
		BankID:      trade.BankID,
		Amount:      trade.Amount.String(),
		Currency:    trade.Currency,
		Description: trade.Description,
		Status:      string(trade.Status),
		History:     []transitionSeed{},
		CreatedAt:   formatSeedTime(trade.CreatedAt),
		UpdatedAt:   formatSeedTime(trade.UpdatedAt),
	}
	for _, rec := range trade.StatusHistory {
		seed.History = append(seed.History, transitionSeed{
			TradeID:    rec.TradeID,
			FromStatus: string(rec.FromStatus),
			ToStatus:   string(rec.ToStatus),
			ActorID:    rec.ActorID,
			ActorRole:  string(rec.ActorRole),
			CreatedAt:  formatSeedTime(rec.CreatedAt),
		})
	}
	return seed
}

func toDocumentSeed(doc domain.Document) documentSeed {
	return documentSeed{
		ID:         doc.ID,
		TradeID:    doc.TradeID,
		DocType:    doc.DocType,
		DocNumber:  doc.DocNumber,
		FileName:   doc.FileName,
		Hash:       doc.Hash,
		OrgName:    doc.OrgName,
		UploadedBy: doc.UploadedBy,
		IssuedAt:   formatSeedTime(doc.IssuedAt),
		CreatedAt:  formatSeedTime(doc.CreatedAt),
	}
}

func formatSeedTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func writeJSON(path string, data any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("encode json for %s: %w", path, err)
	}
	return nil
}
