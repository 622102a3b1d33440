package integrity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chaindocs/tradecore/internal/domain"
	"github.com/chaindocs/tradecore/internal/ledger"
)

// DocumentSource provides the documents to verify and their stored payloads.
type DocumentSource interface {
	ListDocuments(ctx context.Context) ([]domain.Document, error)
	FetchDocumentContent(ctx context.Context, documentID string) ([]byte, error)
}

// Failure reasons recorded on the ledger for a failed document check.
const (
	FailureContentMissing = "CONTENT_MISSING"
	FailureHashMismatch   = "HASH_MISMATCH"
)

// Failure describes one document that did not pass verification.
type Failure struct {
	DocumentID string
	TradeID    string
	Reason     string
	Expected   string
	Actual     string
}

// Report summarizes an integrity sweep.
type Report struct {
	Checked  int
	Failures []Failure
}

// Checker re-hashes stored document payloads and compares them against the
// recorded hashes. Every failure is appended to the ledger as an
// INTEGRITY_FAILED entry so auditors can see tampering or data loss.
type Checker struct {
	docs    DocumentSource
	ledger  ledger.Store
	logger  *slog.Logger
	workers int
	nowFn   func() time.Time
}

// NewChecker builds a Checker running with the given concurrency.
func NewChecker(docs DocumentSource, store ledger.Store, logger *slog.Logger, workers int) *Checker {
	if workers <= 0 {
		workers = 4
	}
	return &Checker{
		docs:    docs,
		ledger:  store,
		logger:  logger.With("component", "integrity"),
		workers: workers,
		nowFn:   time.Now,
	}
}

// WithClock overrides the time provider (used primarily in tests).
func (c *Checker) WithClock(nowFn func() time.Time) *Checker {
	if nowFn != nil {
		c.nowFn = nowFn
	}
	return c
}

// Sweep verifies every known document concurrently and records failures on
// the ledger. Verification errors on individual documents do not abort the
// sweep.
func (c *Checker) Sweep(ctx context.Context) (Report, error) {
	docs, err := c.docs.ListDocuments(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list documents: %w", err)
	}

	failureCh := make(chan Failure, len(docs))
	indexCh := make(chan int)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if failure, failed := c.verify(ctx, docs[idx]); failed {
				select {
				case failureCh <- failure:
				case <-ctx.Done():
					return
				}
			}
		}
	}

	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := range docs {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(failureCh)

	report := Report{Checked: len(docs)}
	for failure := range failureCh {
		report.Failures = append(report.Failures, failure)
		c.recordFailure(ctx, failure)
	}

	c.logger.Info("integrity sweep finished", "checked", report.Checked, "failures", len(report.Failures))
	return report, ctx.Err()
}

// RunPeriodic sweeps at the given interval until the context is cancelled.
func (c *Checker) RunPeriodic(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := c.Sweep(ctx); err != nil && ctx.Err() == nil {
				c.logger.Warn("integrity sweep failed", "error", err)
			}
		}
	}
}

func (c *Checker) verify(ctx context.Context, doc domain.Document) (Failure, bool) {
	content, err := c.docs.FetchDocumentContent(ctx, doc.ID)
	if err != nil {
		return Failure{
			DocumentID: doc.ID,
			TradeID:    doc.TradeID,
			Reason:     FailureContentMissing,
			Expected:   doc.Hash,
		}, true
	}

	sum := sha256.Sum256(content)
	actual := hex.EncodeToString(sum[:])
	if actual != doc.Hash {
		return Failure{
			DocumentID: doc.ID,
			TradeID:    doc.TradeID,
			Reason:     FailureHashMismatch,
			Expected:   doc.Hash,
			Actual:     actual,
		}, true
	}
	return Failure{}, false
}

func (c *Checker) recordFailure(ctx context.Context, failure Failure) {
	entry := ledger.Entry{
		ID:         uuid.NewString(),
		TradeID:    failure.TradeID,
		DocumentID: failure.DocumentID,
		EventType:  ledger.EventTypeIntegrityFailed,
		Remarks:    failureRemarks(failure),
		CreatedAt:  c.nowFn(),
	}
	if err := c.ledger.Append(ctx, &entry); err != nil {
		c.logger.Warn("failed to record integrity failure", "error", err, "documentId", failure.DocumentID)
	}
}

func failureRemarks(failure Failure) string {
	if failure.Reason == FailureHashMismatch {
		return fmt.Sprintf("%s: expected %s, got %s", failure.Reason, failure.Expected, failure.Actual)
	}
	return failure.Reason
}
