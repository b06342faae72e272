package records

import "context"

// Repo persists records scoped by table and owner.
type Repo interface {
	Insert(ctx context.Context, rec Record) error
	// List returns rows newest first. limit <= 0 means no limit.
	List(ctx context.Context, table, userID string, limit, offset int) ([]Record, error)
	Get(ctx context.Context, table, userID, id string) (Record, error)
	Delete(ctx context.Context, table, userID string, filter Filter) (int, error)
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}
