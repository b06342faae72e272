package records

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using the records table.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Insert(ctx context.Context, rec Record) error {
	const query = `
INSERT INTO records (id, table_name, user_id, payload, created_at)
VALUES ($1, $2, $3, $4, $5)`
	_, err := r.DB.ExecContext(ctx, query, rec.ID, rec.Table, rec.UserID, []byte(rec.Payload), rec.CreatedAt)
	return err
}

func (r *PGRepo) List(ctx context.Context, table, userID string, limit, offset int) ([]Record, error) {
	if offset < 0 {
		offset = 0
	}
	var limitArg any
	if limit > 0 {
		limitArg = limit
	}
	const query = `
SELECT id, table_name, user_id, payload, created_at
FROM records
WHERE table_name = $1 AND user_id = $2
ORDER BY created_at DESC
LIMIT $3 OFFSET $4`

	rows, err := r.DB.QueryContext(ctx, query, table, userID, limitArg, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PGRepo) Get(ctx context.Context, table, userID, id string) (Record, error) {
	const query = `
SELECT id, table_name, user_id, payload, created_at
FROM records
WHERE table_name = $1 AND user_id = $2 AND id = $3`
	rec, err := scanRecord(r.DB.QueryRowContext(ctx, query, table, userID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return rec, err
}

func (r *PGRepo) Delete(ctx context.Context, table, userID string, filter Filter) (int, error) {
	var (
		res sql.Result
		err error
	)
	if filter.ID == "" {
		res, err = r.DB.ExecContext(ctx, `DELETE FROM records WHERE table_name = $1 AND user_id = $2`, table, userID)
	} else {
		res, err = r.DB.ExecContext(ctx, `DELETE FROM records WHERE table_name = $1 AND user_id = $2 AND id = $3`, table, userID, filter.ID)
	}
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

const claimGuestQuery = `UPDATE records SET user_id = $1 WHERE user_id = $2`

// ClaimGuest reassigns rows owned by a guest user to an authenticated user.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	res, err := r.DB.ExecContext(ctx, claimGuestQuery, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// ClaimGuestTx reassigns a guest's rows inside an existing transaction.
func ClaimGuestTx(ctx context.Context, tx *sql.Tx, guestUserID, authedUserID string) (int, error) {
	res, err := tx.ExecContext(ctx, claimGuestQuery, authedUserID, guestUserID)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (Record, error) {
	var rec Record
	var payload []byte
	if err := s.Scan(&rec.ID, &rec.Table, &rec.UserID, &payload, &rec.CreatedAt); err != nil {
		return Record{}, err
	}
	rec.Payload = payload
	return rec, nil
}

var _ Repo = (*PGRepo)(nil)
