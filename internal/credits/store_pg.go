package credits

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"resumepro/internal/shared/storage/db"
)

const selectBalanceForUpdate = `
SELECT plan, credits, updated_at FROM credit_balances WHERE user_id = $1 FOR UPDATE`

// PGStore keeps balances in credit_balances. Every read and deduction locks
// the user's row for the length of its transaction.
type PGStore struct {
	DB       *sql.DB
	starting int
}

// NewPGStore constructs a Postgres-backed credit store.
func NewPGStore(database *sql.DB, starting int) *PGStore {
	return &PGStore{DB: database, starting: starting}
}

func (s *PGStore) Get(ctx context.Context, userID string) (Balance, error) {
	var b Balance
	err := db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		var err error
		b, err = s.lockAndEnsure(ctx, tx, userID)
		return err
	})
	return b, err
}

func (s *PGStore) Deduct(ctx context.Context, userID string, n int) (Balance, error) {
	var b Balance
	err := db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		var err error
		b, err = s.lockAndEnsure(ctx, tx, userID)
		if err != nil || n <= 0 {
			return err
		}
		if b.Credits < n {
			return ErrInsufficientCredits
		}
		b.Credits -= n
		b.UpdatedAt = time.Now().UTC()
		_, err = tx.ExecContext(ctx, `UPDATE credit_balances SET credits = $1, updated_at = $2 WHERE user_id = $3`,
			b.Credits, b.UpdatedAt, userID)
		return err
	})
	return b, err
}

func (s *PGStore) Reset(ctx context.Context, userID string) (Balance, error) {
	now := time.Now().UTC()
	plan, credits := grant(userID, s.starting)
	const query = `
INSERT INTO credit_balances (user_id, plan, credits, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO UPDATE SET credits = EXCLUDED.credits, updated_at = EXCLUDED.updated_at
RETURNING plan`
	b := Balance{UserID: userID, Credits: credits, UpdatedAt: now}
	if err := s.DB.QueryRowContext(ctx, query, userID, plan, credits, now).Scan(&b.Plan); err != nil {
		return Balance{}, err
	}
	return b, nil
}

// lockAndEnsure locks the user's row, creating it with the starting grant on
// first use. Concurrent first requests race on the insert; the loser's insert
// is a no-op and both then lock the same row.
func (s *PGStore) lockAndEnsure(ctx context.Context, tx *sql.Tx, userID string) (Balance, error) {
	b, err := scanBalance(tx.QueryRowContext(ctx, selectBalanceForUpdate, userID), userID)
	if !errors.Is(err, sql.ErrNoRows) {
		return b, err
	}

	plan, credits := grant(userID, s.starting)
	if _, err := tx.ExecContext(ctx, `
INSERT INTO credit_balances (user_id, plan, credits, updated_at) VALUES ($1, $2, $3, $4)
ON CONFLICT (user_id) DO NOTHING`,
		userID, plan, credits, time.Now().UTC()); err != nil {
		return Balance{}, err
	}
	return scanBalance(tx.QueryRowContext(ctx, selectBalanceForUpdate, userID), userID)
}

func scanBalance(row *sql.Row, userID string) (Balance, error) {
	b := Balance{UserID: userID}
	if err := row.Scan(&b.Plan, &b.Credits, &b.UpdatedAt); err != nil {
		return Balance{}, err
	}
	return b, nil
}
