// Package auth establishes the session identity that partitions all stored
// records. Sign-in happens once, before any store operation; a session that
// fails to establish leaves persistence unauthenticated while extraction and
// comparison remain usable.
package auth

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Session is the established identity. OwnerID is assigned at session start
// and never chosen by a record.
type Session struct {
	OwnerID string
}

// Establish performs the anonymous sign-in: it mints a fresh owner id (or
// reuses pinnedOwnerID when set, for a stable identity across restarts) and
// registers it. Returns an error when the identity cannot be registered —
// callers must then treat every store operation as Unauthenticated.
func Establish(ctx context.Context, pool *pgxpool.Pool, pinnedOwnerID string) (*Session, error) {
	if _, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS owners (
			id         TEXT        PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	); err != nil {
		return nil, fmt.Errorf("ensure owners table: %w", err)
	}

	ownerID := pinnedOwnerID
	if ownerID == "" {
		ownerID = uuid.NewString()
	}

	if _, err := pool.Exec(ctx,
		`INSERT INTO owners (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`,
		ownerID,
	); err != nil {
		return nil, fmt.Errorf("register owner: %w", err)
	}

	log.Printf("[auth] session established, owner %s", ownerID)
	return &Session{OwnerID: ownerID}, nil
}
