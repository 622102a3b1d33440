package domain

import "time"

// Document references an uploaded trade document. The lifecycle core never
// inspects document content; it only consumes document presence as a
// precondition and the stored hash for integrity sweeps.
type Document struct {
	ID         string
	TradeID    string // empty for standalone documents
	DocType    string
	DocNumber  string
	FileName   string
	Hash       string // hex-encoded SHA-256 of the stored payload
	OrgName    string
	UploadedBy string
	IssuedAt   time.Time
	CreatedAt  time.Time
}
