package drafts

import (
	"context"
	"database/sql"
	"errors"

	"resumepro/internal/shared/storage/db"
)

// PGStore implements Store using the drafts table.
type PGStore struct {
	DB *sql.DB
}

func (s *PGStore) Get(ctx context.Context, userID, key string) (string, error) {
	const query = `SELECT value FROM drafts WHERE user_id = $1 AND key = $2`
	var value string
	err := s.DB.QueryRowContext(ctx, query, userID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

func (s *PGStore) Put(ctx context.Context, userID, key, value string) error {
	const query = `
INSERT INTO drafts (user_id, key, value, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (user_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	_, err := s.DB.ExecContext(ctx, query, userID, key, value)
	return err
}

func (s *PGStore) Delete(ctx context.Context, userID, key string) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM drafts WHERE user_id = $1 AND key = $2`, userID, key)
	return err
}

func (s *PGStore) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	var moved int64
	err := db.WithTx(ctx, s.DB, func(tx *sql.Tx) error {
		return ClaimGuestTx(ctx, tx, guestUserID, authedUserID, &moved)
	})
	return int(moved), err
}

// ClaimGuestTx moves a guest's drafts inside an existing transaction.
func ClaimGuestTx(ctx context.Context, tx *sql.Tx, guestUserID, authedUserID string, moved *int64) error {
	const upsert = `
INSERT INTO drafts (user_id, key, value, updated_at)
SELECT $1, key, value, now() FROM drafts WHERE user_id = $2
ON CONFLICT (user_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	res, err := tx.ExecContext(ctx, upsert, authedUserID, guestUserID)
	if err != nil {
		return err
	}
	if moved != nil {
		*moved, _ = res.RowsAffected()
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM drafts WHERE user_id = $1`, guestUserID)
	return err
}

var _ Store = (*PGStore)(nil)
