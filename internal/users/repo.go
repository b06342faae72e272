package users

import "context"

// Repo persists users. Emails match case-insensitively.
type Repo interface {
	// Create inserts a new user and fails with ErrEmailTaken on a duplicate email.
	Create(ctx context.Context, user User) error
	// Upsert inserts or refreshes the profile of an externally authenticated user.
	Upsert(ctx context.Context, user User) error
	GetByID(ctx context.Context, userID string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
}
