package users

import (
	"context"
	"database/sql"
	"errors"

	"resumepro/internal/shared/storage/db"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, name, picture_url, password_hash, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		nullableString(user.Email),
		nullableString(user.Name),
		nullableString(user.PictureURL),
		nullableString(user.PasswordHash),
	)
	return mapError(err)
}

// Upsert keeps an existing password hash.
func (r *PGRepo) Upsert(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, email, name, picture_url, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  name = EXCLUDED.name,
  picture_url = EXCLUDED.picture_url,
  updated_at = now()`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		nullableString(user.Email),
		nullableString(user.Name),
		nullableString(user.PictureURL),
	)
	return mapError(err)
}

const selectUser = `
SELECT id, email, name, picture_url, password_hash, created_at, updated_at
FROM users
`

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, selectUser+"WHERE id = $1 LIMIT 1", userID))
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, selectUser+"WHERE lower(email) = lower($1) LIMIT 1", email))
}

func scanUser(row *sql.Row) (User, error) {
	var user User
	var email, name, pictureURL, passwordHash sql.NullString
	err := row.Scan(
		&user.ID,
		&email,
		&name,
		&pictureURL,
		&passwordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.Email = email.String
	user.Name = name.String
	user.PictureURL = pictureURL.String
	user.PasswordHash = passwordHash.String
	return user, nil
}

func mapError(err error) error {
	if db.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
