// Package store maintains the per-owner collection of persisted job-offer
// records: create, delete, batch-delete, and a live wholesale-snapshot
// subscription.
//
// Writes go to PostgreSQL; every successful write publishes a change
// notification on the owner's Redis channel, which the subscription turns
// into a fresh snapshot of the entire partition. There is no update-in-place
// operation — edits after persistence are delete + recreate.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Malek720-420/InternExtract/internal/schema"
)

// ─── Errors ──────────────────────────────────────────────────────────────────

// ErrUnauthenticated is returned by every operation of a store whose session
// never established an owner identity.
var ErrUnauthenticated = errors.New("unauthenticated: no owner session")

// ErrWriteFailed and ErrReadFailed classify store failures for the caller's
// user-facing messaging. The store never retries — failures surface
// immediately.
var (
	ErrWriteFailed = errors.New("store write failed")
	ErrReadFailed  = errors.New("store read failed")
)

// ─── Types ───────────────────────────────────────────────────────────────────

// StoredRecord is a persisted record plus its store-assigned identity.
// DocumentID is immutable and unique within the owner partition; CreatedAt
// is display-only and carries no ordering guarantee.
type StoredRecord struct {
	DocumentID string                `json:"documentId"`
	CreatedAt  time.Time             `json:"createdAt"`
	Record     schema.JobOfferRecord `json:"record"`
}

// Snapshot is the client's current view of the whole owner partition. It is
// rebuilt wholesale on every change notification, never diffed incrementally.
type Snapshot struct {
	OwnerID string         `json:"ownerId"`
	Records []StoredRecord `json:"records"`
}

// Store scopes all operations to the single ownerID fixed at construction.
type Store struct {
	pool    *pgxpool.Pool
	rdb     *redis.Client
	ownerID string

	// ResyncSpec is the cron spec for forced snapshot refreshes that cover
	// lost change notifications.
	ResyncSpec string

	sub *subscription
}

// New returns a Store bound to ownerID. An empty ownerID produces a store
// whose every operation fails with ErrUnauthenticated — extraction and
// comparison stay usable in that degraded session, persistence does not.
func New(pool *pgxpool.Pool, rdb *redis.Client, ownerID string) *Store {
	return &Store{
		pool:       pool,
		rdb:        rdb,
		ownerID:    ownerID,
		ResyncSpec: "@every 5m",
	}
}

// channel is the Redis pub/sub channel carrying change notifications for
// this owner's partition.
func (s *Store) channel() string {
	return "EVENT_RECORDS_CHANGED:" + s.ownerID
}

// ─── Schema ──────────────────────────────────────────────────────────────────

// EnsureSchema creates the records table if it does not exist yet.
// The id and created_at columns are server-assigned on insert.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS job_records (
			id         UUID        PRIMARY KEY DEFAULT gen_random_uuid(),
			owner_id   TEXT        NOT NULL,
			record     JSONB       NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS job_records_owner_idx ON job_records (owner_id);`,
	)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// ─── Operations ──────────────────────────────────────────────────────────────

// Create persists a new record and returns its server-assigned document id.
// It does not return until the insert is acknowledged; visibility in the
// snapshot arrives with the next subscription callback, never synchronously.
// On failure the caller's in-memory record is untouched and can be retried
// without re-extracting.
func (s *Store) Create(ctx context.Context, record schema.JobOfferRecord) (string, error) {
	if s.ownerID == "" {
		return "", ErrUnauthenticated
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal record: %v: %w", err, ErrWriteFailed)
	}

	var documentID string
	err = s.pool.QueryRow(ctx,
		`INSERT INTO job_records (owner_id, record)
		 VALUES ($1, $2::jsonb)
		 RETURNING id`,
		s.ownerID, string(payload),
	).Scan(&documentID)
	if err != nil {
		return "", fmt.Errorf("create: %v: %w", err, ErrWriteFailed)
	}

	s.publishChange(ctx, "create")
	return documentID, nil
}

// Delete removes one record from the owner partition. Deleting an id that is
// already absent is success: the next snapshot reflects its absence either
// way, so callers need no retry logic around it.
func (s *Store) Delete(ctx context.Context, documentID string) error {
	if s.ownerID == "" {
		return ErrUnauthenticated
	}

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM job_records WHERE id = $1 AND owner_id = $2`,
		documentID, s.ownerID,
	)
	if err != nil {
		return fmt.Errorf("delete %s: %v: %w", documentID, err, ErrWriteFailed)
	}

	if tag.RowsAffected() == 0 {
		log.Printf("[store] delete: document %s already absent", documentID)
		return nil
	}

	s.publishChange(ctx, "delete")
	return nil
}

// ResetAll removes every record in the owner partition. A single DELETE
// statement keeps it all-or-nothing: no partial deletion is ever observable.
// The surrounding flow must gate this behind an explicit confirmation step —
// it is destructive and irreversible.
func (s *Store) ResetAll(ctx context.Context) error {
	if s.ownerID == "" {
		return ErrUnauthenticated
	}

	tag, err := s.pool.Exec(ctx,
		`DELETE FROM job_records WHERE owner_id = $1`,
		s.ownerID,
	)
	if err != nil {
		return fmt.Errorf("resetAll: %v: %w", err, ErrWriteFailed)
	}

	log.Printf("[store] resetAll: removed %d record(s)", tag.RowsAffected())
	s.publishChange(ctx, "resetAll")
	return nil
}

// loadSnapshot re-reads the entire partition. Called by the subscription on
// every change notification and on forced resyncs.
func (s *Store) loadSnapshot(ctx context.Context) (Snapshot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, record, created_at FROM job_records WHERE owner_id = $1`,
		s.ownerID,
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot query: %v: %w", err, ErrReadFailed)
	}
	defer rows.Close()

	snap := Snapshot{OwnerID: s.ownerID, Records: make([]StoredRecord, 0)}
	for rows.Next() {
		var (
			rec     StoredRecord
			payload []byte
		)
		if err := rows.Scan(&rec.DocumentID, &payload, &rec.CreatedAt); err != nil {
			return Snapshot{}, fmt.Errorf("snapshot scan: %v: %w", err, ErrReadFailed)
		}
		if err := json.Unmarshal(payload, &rec.Record); err != nil {
			return Snapshot{}, fmt.Errorf("snapshot decode %s: %v: %w", rec.DocumentID, err, ErrReadFailed)
		}
		snap.Records = append(snap.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot rows: %v: %w", err, ErrReadFailed)
	}

	return snap, nil
}

// publishChange notifies every subscriber (this session included) that the
// partition changed. Non-fatal: a lost notification is covered by the
// periodic resync.
func (s *Store) publishChange(ctx context.Context, op string) {
	event, _ := json.Marshal(map[string]string{
		"type":    "EVENT_RECORDS_CHANGED",
		"ownerId": s.ownerID,
		"op":      op,
	})
	if err := s.rdb.Publish(ctx, s.channel(), event).Err(); err != nil {
		slog.Warn("publish EVENT_RECORDS_CHANGED failed", "op", op, "err", err)
	}
}
