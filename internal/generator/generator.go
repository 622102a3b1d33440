package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chaindocs/tradecore/internal/domain"
)

// Party is a seed participant: a corporate or a bank.
type Party struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role"`
	OrgName string `json:"org_name"`
}

// Dataset contains the generated parties, trades, and documents.
type Dataset struct {
	Parties   []Party
	Trades    []domain.Trade
	Documents []domain.Document
}

// Generator produces synthetic trades spread across the whole lifecycle,
// with internally consistent status histories, bank assignments, and
// document hashes.
type Generator struct {
	cfg  Config
	rand *rand.Rand
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	defaults := DefaultConfig()
	if cfg.NumCorporates < 2 {
		cfg.NumCorporates = defaults.NumCorporates
	}
	if cfg.NumBanks <= 0 {
		cfg.NumBanks = defaults.NumBanks
	}
	if cfg.NumTrades <= 0 {
		cfg.NumTrades = defaults.NumTrades
	}
	if cfg.MaxDocsPerTrade <= 0 {
		cfg.MaxDocsPerTrade = defaults.MaxDocsPerTrade
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		cfg:  cfg,
		rand: rand.New(rand.NewSource(cfg.Seed)),
	}
}

var (
	orgPrefixes = []string{"Apex", "Blue Harbor", "Crestline", "Delta Ridge", "Eastgate", "Fairport", "Granite", "Harborview", "Ironwood", "Juniper"}
	orgSuffixes = []string{"Trading", "Exports", "Logistics", "Commodities", "Industries", "Textiles", "Agro", "Metals"}
	bankNames   = []string{"Meridian Bank", "First Continental", "Atlas Trust", "Northbridge Bank", "Sterling Union", "Pacific Charter"}
	docTypes    = []string{"INVOICE", "BILL_OF_LADING", "PACKING_LIST", "CERTIFICATE_OF_ORIGIN", "INSPECTION_CERTIFICATE"}
	currencies  = []string{"USD", "EUR", "GBP", "INR", "SGD"}
)

// stages lists the lifecycle positions a generated trade may occupy,
// weighted roughly as a live book would be.
var stages = []domain.TradeStatus{
	domain.StatusInitiated,
	domain.StatusSellerConfirmed,
	domain.StatusDocumentsUploaded,
	domain.StatusBankAssigned,
	domain.StatusShipped,
	domain.StatusBankReviewing,
	domain.StatusBankApproved,
	domain.StatusPaymentReleased,
	domain.StatusCompleted,
}

// Generate synthesises the dataset. It respects context cancellation.
func (g *Generator) Generate(ctx context.Context) (Dataset, error) {
	corporates := make([]Party, g.cfg.NumCorporates)
	for i := range corporates {
		org := g.pick(orgPrefixes) + " " + g.pick(orgSuffixes)
		corporates[i] = Party{
			ID:      fmt.Sprintf("CORP-%04d", i+1),
			Name:    org,
			Email:   strings.ToLower(strings.ReplaceAll(org, " ", ".")) + fmt.Sprintf("%d@example.com", i+1),
			Role:    string(domain.RoleCorporate),
			OrgName: org,
		}
	}

	banks := make([]Party, g.cfg.NumBanks)
	for i := range banks {
		name := bankNames[i%len(bankNames)]
		banks[i] = Party{
			ID:      fmt.Sprintf("BANK-%03d", i+1),
			Name:    name,
			Email:   strings.ToLower(strings.ReplaceAll(name, " ", ".")) + fmt.Sprintf("%d@example.com", i+1),
			Role:    string(domain.RoleBank),
			OrgName: name,
		}
	}

	dataset := Dataset{Parties: append(append([]Party(nil), corporates...), banks...)}

	for i := 0; i < g.cfg.NumTrades; i++ {
		if err := ctx.Err(); err != nil {
			return Dataset{}, err
		}

		buyer := corporates[g.rand.Intn(len(corporates))]
		seller := corporates[g.rand.Intn(len(corporates))]
		for seller.ID == buyer.ID {
			seller = corporates[g.rand.Intn(len(corporates))]
		}
		bank := banks[g.rand.Intn(len(banks))]

		trade, docs := g.buildTrade(i+1, buyer, seller, bank)
		dataset.Trades = append(dataset.Trades, trade)
		dataset.Documents = append(dataset.Documents, docs...)
	}

	return dataset, nil
}

func (g *Generator) buildTrade(seq int, buyer, seller, bank Party) (domain.Trade, []domain.Document) {
	createdAt := time.Now().UTC().Add(-time.Duration(g.rand.Intn(180*24)) * time.Hour)

	trade := domain.Trade{
		ID:          fmt.Sprintf("%d", seq),
		Number:      fmt.Sprintf("TRD-%08X", g.rand.Uint32()),
		BuyerID:     buyer.ID,
		SellerID:    seller.ID,
		Amount:      decimal.NewFromInt(int64(1_000 + g.rand.Intn(5_000_000))),
		Currency:    g.pick(currencies),
		Description: fmt.Sprintf("%s shipment from %s to %s", g.pick(docTypes), seller.OrgName, buyer.OrgName),
		Status:      domain.StatusInitiated,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	target := stages[g.rand.Intn(len(stages))]
	if g.rand.Float64() < g.cfg.DisputeChance {
		target = domain.StatusDisputed
	} else if g.rand.Float64() < g.cfg.CancelChance {
		target = domain.StatusCancelled
	}

	docs := g.advance(&trade, target, buyer, seller, bank)
	return trade, docs
}

// advance walks the trade along the canonical path towards the target
// status, appending consistent history records and creating documents at
// the DOCUMENTS_UPLOADED step.
func (g *Generator) advance(trade *domain.Trade, target domain.TradeStatus, buyer, seller, bank Party) []domain.Document {
	type step struct {
		to    domain.TradeStatus
		actor Party
		role  domain.Role
	}

	path := []step{
		{domain.StatusSellerConfirmed, seller, domain.RoleCorporate},
		{domain.StatusDocumentsUploaded, seller, domain.RoleCorporate},
		{domain.StatusBankAssigned, buyer, domain.RoleCorporate},
		{domain.StatusShipped, seller, domain.RoleCorporate},
		{domain.StatusBankReviewing, bank, domain.RoleBank},
		{domain.StatusBankApproved, bank, domain.RoleBank},
		{domain.StatusPaymentReleased, bank, domain.RoleBank},
		{domain.StatusCompleted, buyer, domain.RoleCorporate},
	}

	var docs []domain.Document
	at := trade.CreatedAt

	applies := func(s step) {
		at = at.Add(time.Duration(1+g.rand.Intn(72)) * time.Hour)
		trade.StatusHistory = append(trade.StatusHistory, domain.TransitionRecord{
			TradeID:    trade.ID,
			FromStatus: trade.Status,
			ToStatus:   s.to,
			ActorID:    s.actor.ID,
			ActorRole:  s.role,
			CreatedAt:  at,
		})
		trade.Status = s.to
		trade.UpdatedAt = at
		if s.to == domain.StatusBankAssigned {
			trade.BankID = bank.ID
		}
		if s.to == domain.StatusDocumentsUploaded {
			docs = g.documentsFor(trade, seller, at)
		}
	}

	switch target {
	case domain.StatusDisputed:
		// Disputes are raised by the assigned bank out of SHIPPED.
		for _, s := range path[:4] {
			applies(s)
		}
		applies(step{domain.StatusDisputed, bank, domain.RoleBank})
	case domain.StatusCancelled:
		// Cancel early: either straight away or after seller confirmation.
		if g.rand.Intn(2) == 0 {
			applies(path[0])
		}
		canceller := buyer
		if g.rand.Intn(2) == 0 {
			canceller = seller
		}
		applies(step{domain.StatusCancelled, canceller, domain.RoleCorporate})
	default:
		for _, s := range path {
			applies(s)
			if trade.Status == target {
				break
			}
		}
	}

	return docs
}

func (g *Generator) documentsFor(trade *domain.Trade, seller Party, at time.Time) []domain.Document {
	count := 1 + g.rand.Intn(g.cfg.MaxDocsPerTrade)
	docs := make([]domain.Document, 0, count)
	for i := 0; i < count; i++ {
		docType := g.pick(docTypes)
		content := fmt.Sprintf("%s %s #%d for %s", docType, trade.Number, i+1, trade.ID)
		sum := sha256.Sum256([]byte(content))
		docs = append(docs, domain.Document{
			ID:         uuid.NewString(),
			TradeID:    trade.ID,
			DocType:    docType,
			DocNumber:  fmt.Sprintf("%s-%04d", trade.Number, i+1),
			FileName:   strings.ToLower(docType) + ".pdf",
			Hash:       hex.EncodeToString(sum[:]),
			OrgName:    seller.OrgName,
			UploadedBy: seller.ID,
			IssuedAt:   at,
			CreatedAt:  at,
		})
	}
	return docs
}

func (g *Generator) pick(values []string) string {
	return values[g.rand.Intn(len(values))]
}
