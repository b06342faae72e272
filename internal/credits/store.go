package credits

import "context"

type store interface {
	// Get returns the balance, creating it with the starting grant when absent.
	Get(ctx context.Context, userID string) (Balance, error)
	// Deduct removes n credits or fails with ErrInsufficientCredits.
	Deduct(ctx context.Context, userID string, n int) (Balance, error)
	// Reset sets the balance back to the starting grant.
	Reset(ctx context.Context, userID string) (Balance, error)
}
