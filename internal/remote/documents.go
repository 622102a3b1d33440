package remote

import (
	"context"
	"fmt"

	"github.com/chaindocs/tradecore/internal/domain"
)

type documentPayload struct {
	ID         string `json:"id"`
	TradeID    string `json:"trade_id,omitempty"`
	DocType    string `json:"doc_type"`
	DocNumber  string `json:"doc_number"`
	FileName   string `json:"file_name"`
	Hash       string `json:"hash"`
	OrgName    string `json:"org_name,omitempty"`
	UploadedBy string `json:"uploaded_by,omitempty"`
	IssuedAt   string `json:"issued_at,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// CountDocumentsByTrade reports the number of documents linked to a trade.
// Used solely as the DOCUMENTS_UPLOADED precondition.
func (c *Client) CountDocumentsByTrade(ctx context.Context, tradeID string) (int, error) {
	docs, err := c.documentsByTrade(ctx, tradeID)
	if err != nil {
		return 0, err
	}
	return len(docs), nil
}

// DocumentsByTrade lists the documents attached to the given trade.
func (c *Client) DocumentsByTrade(ctx context.Context, tradeID string) ([]domain.Document, error) {
	return c.documentsByTrade(ctx, tradeID)
}

func (c *Client) documentsByTrade(ctx context.Context, tradeID string) ([]domain.Document, error) {
	var payloads []documentPayload
	resp, err := c.newRequest(ctx).
		SetQueryParam("trade_id", tradeID).
		SetResult(&payloads).
		Get("/documents")
	if cerr := classify(resp, err, "list documents"); cerr != nil {
		return nil, cerr
	}
	return toDomainDocuments(payloads), nil
}

// ListDocuments returns every document known to the backend, for integrity
// sweeps.
func (c *Client) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	var payloads []documentPayload
	resp, err := c.newRequest(ctx).
		SetResult(&payloads).
		Get("/documents")
	if cerr := classify(resp, err, "list documents"); cerr != nil {
		return nil, cerr
	}
	return toDomainDocuments(payloads), nil
}

// FetchDocumentContent downloads the stored payload of a document so its
// hash can be re-verified.
func (c *Client) FetchDocumentContent(ctx context.Context, documentID string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetError(&apiError{}).
		Get(fmt.Sprintf("/documents/%s/content", documentID))
	if cerr := classify(resp, err, "fetch document content"); cerr != nil {
		return nil, cerr
	}
	return resp.Body(), nil
}

func toDomainDocuments(payloads []documentPayload) []domain.Document {
	docs := make([]domain.Document, 0, len(payloads))
	for _, p := range payloads {
		docs = append(docs, domain.Document{
			ID:         p.ID,
			TradeID:    p.TradeID,
			DocType:    p.DocType,
			DocNumber:  p.DocNumber,
			FileName:   p.FileName,
			Hash:       p.Hash,
			OrgName:    p.OrgName,
			UploadedBy: p.UploadedBy,
			IssuedAt:   parseTime(p.IssuedAt),
			CreatedAt:  parseTime(p.CreatedAt),
		})
	}
	return docs
}
