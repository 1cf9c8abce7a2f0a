// Package session persists per-(tenant, conversant) conversation state in
// Postgres, plus the append-only lead snapshots.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leadbothq/leadbot/internal/lead"
)

// DBStore is the pgx-backed lead.Store. Writes are last-writer-wins except
// confirmation, which is a single conditional statement.
type DBStore struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewDBStore creates a store over the given pool.
func NewDBStore(log *slog.Logger, pool *pgxpool.Pool) *DBStore {
	if log == nil {
		log = slog.Default()
	}
	return &DBStore{
		pool:   pool,
		logger: log.With(slog.String("service", "session")),
	}
}

// Get loads the lead state for a conversation key. Absence is not an error:
// it returns the zero state.
func (s *DBStore) Get(ctx context.Context, tenantID, conversantID string) (lead.State, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx,
		`select lead from sessions where tenant_id = $1 and conversant_id = $2`,
		tenantID, conversantID,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return lead.State{}, nil
	}
	if err != nil {
		return lead.State{}, fmt.Errorf("get session: %w", err)
	}

	var state lead.State
	if err := json.Unmarshal(doc, &state); err != nil {
		return lead.State{}, fmt.Errorf("decode session document: %w", err)
	}
	return state, nil
}

// Upsert overwrites the lead state for a conversation key wholesale.
func (s *DBStore) Upsert(ctx context.Context, tenantID, conversantID string, state lead.State) error {
	doc, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session document: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		insert into sessions (tenant_id, conversant_id, lead, updated_at)
		values ($1, $2, $3, now())
		on conflict (tenant_id, conversant_id)
		do update set lead = excluded.lead, updated_at = now()`,
		tenantID, conversantID, doc,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// Delete removes the conversation key's state. Deleting an absent key is a
// no-op.
func (s *DBStore) Delete(ctx context.Context, tenantID, conversantID string) error {
	_, err := s.pool.Exec(ctx,
		`delete from sessions where tenant_id = $1 and conversant_id = $2`,
		tenantID, conversantID,
	)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Confirm marks the state confirmed and inserts the lead snapshot in one
// conditional statement. Concurrent callers race on the update's _confirmed
// guard; exactly one observes won == true and exactly one snapshot row is
// written.
func (s *DBStore) Confirm(ctx context.Context, tenantID, conversantID string) (lead.State, bool, error) {
	var name, email, need *string
	err := s.pool.QueryRow(ctx, `
		with confirmed as (
			update sessions
			   set lead = lead || '{"_confirmed": true}'::jsonb,
			       updated_at = now()
			 where tenant_id = $1 and conversant_id = $2
			   and not coalesce((lead->>'_confirmed')::boolean, false)
			returning lead
		)
		insert into leads (id, tenant_id, conversant_id, name, email, need)
		select $3, $1, $2, lead->>'name', lead->>'email', lead->>'need'
		  from confirmed
		returning name, email, need`,
		tenantID, conversantID, uuid.New(),
	).Scan(&name, &email, &need)
	if errors.Is(err, pgx.ErrNoRows) {
		return lead.State{}, false, nil
	}
	if err != nil {
		return lead.State{}, false, fmt.Errorf("confirm session: %w", err)
	}

	state := lead.State{Confirmed: true}
	if name != nil {
		state.Name = *name
	}
	if email != nil {
		state.Email = *email
	}
	if need != nil {
		state.Need = *need
	}
	return state, true, nil
}

// DeleteIdleUnconfirmed removes unconfirmed sessions not touched since the
// cutoff. Confirmed sessions are kept so completed conversations stay
// terminal.
func (s *DBStore) DeleteIdleUnconfirmed(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		delete from sessions
		 where updated_at < $1
		   and not coalesce((lead->>'_confirmed')::boolean, false)`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("prune sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
