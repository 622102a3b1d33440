package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// NewNeo4jStore opens a Bolt connection using the official Neo4j driver.
// Each ledger entry becomes a node linked to its predecessor with a CHAIN
// relationship, so the full ledger is walkable as a single path.
func NewNeo4jStore(ctx context.Context, opts Options) (Store, error) {
	if opts.URI == "" {
		return nil, ErrMissingURI
	}

	auth := neo4j.NoAuth()
	if opts.Username != "" {
		auth = neo4j.BasicAuth(opts.Username, opts.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(opts.URI, auth, func(c *neo4j.Config) {
		if opts.MaxConnections > 0 {
			c.MaxConnectionPoolSize = opts.MaxConnections
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify ledger connectivity: %w", err)
	}

	return &neo4jStore{
		driver:   driver,
		database: opts.Database,
	}, nil
}

type neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string

	// Serializes appends from this process (the audit drain loop and the
	// integrity sweep) so two entries can never chain to the same
	// predecessor.
	appendMu sync.Mutex
}

const appendEntryCypher = `
MERGE (e:LedgerEntry {id: $id})
ON CREATE SET e += $props
WITH e
OPTIONAL MATCH (prev:LedgerEntry {currentHash: $previousHash})
FOREACH (_ IN CASE WHEN prev IS NULL THEN [] ELSE [1] END |
    MERGE (prev)-[:CHAIN]->(e))
RETURN e.id AS id
`

const entriesForTradeCypher = `
MATCH (e:LedgerEntry {tradeId: $tradeId})
RETURN e.id AS id, e.tradeId AS tradeId, e.documentId AS documentId,
       e.eventType AS eventType, e.actorId AS actorId, e.actorRole AS actorRole,
       e.remarks AS remarks, e.previousHash AS previousHash,
       e.currentHash AS currentHash, e.createdAt AS createdAt
ORDER BY e.createdAt ASC
`

const lastHashCypher = `
MATCH (e:LedgerEntry)
RETURN e.currentHash AS currentHash
ORDER BY e.createdAt DESC
LIMIT 1
`

func (s *neo4jStore) Append(ctx context.Context, entry *Entry) error {
	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   neo4j.AccessModeWrite,
	})
	defer session.Close(ctx)

	// The previous hash is resolved inside the same write transaction as
	// the append, so the chain cannot fork between the read and the write.
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, lastHashCypher, nil)
		if err != nil {
			return nil, err
		}
		previous := ""
		if res.Next(ctx) {
			previous = stringValue(res.Record(), "currentHash")
		}
		if err := res.Err(); err != nil {
			return nil, err
		}

		chain(previous, entry)

		params := map[string]any{
			"id":           entry.ID,
			"previousHash": entry.PreviousHash,
			"props": map[string]any{
				"tradeId":      entry.TradeID,
				"documentId":   entry.DocumentID,
				"eventType":    entry.EventType,
				"actorId":      entry.ActorID,
				"actorRole":    entry.ActorRole,
				"remarks":      entry.Remarks,
				"previousHash": entry.PreviousHash,
				"currentHash":  entry.CurrentHash,
				"createdAt":    entry.CreatedAt.UTC().Format(time.RFC3339Nano),
			},
		}
		_, err = tx.Run(ctx, appendEntryCypher, params)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("append ledger entry %s: %w", entry.ID, err)
	}
	return nil
}

func (s *neo4jStore) EntriesForTrade(ctx context.Context, tradeID string) ([]Entry, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	res, err := session.Run(ctx, entriesForTradeCypher, map[string]any{"tradeId": tradeID})
	if err != nil {
		return nil, fmt.Errorf("list ledger entries for trade %s: %w", tradeID, err)
	}

	var entries []Entry
	for res.Next(ctx) {
		rec := res.Record()
		entry := Entry{
			ID:           stringValue(rec, "id"),
			TradeID:      stringValue(rec, "tradeId"),
			DocumentID:   stringValue(rec, "documentId"),
			EventType:    stringValue(rec, "eventType"),
			ActorID:      stringValue(rec, "actorId"),
			ActorRole:    stringValue(rec, "actorRole"),
			Remarks:      stringValue(rec, "remarks"),
			PreviousHash: stringValue(rec, "previousHash"),
			CurrentHash:  stringValue(rec, "currentHash"),
		}
		if ts, err := time.Parse(time.RFC3339Nano, stringValue(rec, "createdAt")); err == nil {
			entry.CreatedAt = ts
		}
		entries = append(entries, entry)
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *neo4jStore) LastHash(ctx context.Context) (string, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   neo4j.AccessModeRead,
	})
	defer session.Close(ctx)

	res, err := session.Run(ctx, lastHashCypher, nil)
	if err != nil {
		return "", err
	}
	if res.Next(ctx) {
		return stringValue(res.Record(), "currentHash"), nil
	}
	return "", res.Err()
}

func (s *neo4jStore) VerifyConnectivity(ctx context.Context) error {
	return s.driver.VerifyConnectivity(ctx)
}

func (s *neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func stringValue(rec *neo4j.Record, key string) string {
	value, ok := rec.Get(key)
	if !ok || value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}
