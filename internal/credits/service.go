package credits

import "context"

// Service manages credit balances via an underlying store.
type Service struct {
	store store
}

// NewService constructs a Service with an in-memory store granting starting credits.
func NewService(starting int) *Service {
	return &Service{store: newMemoryStore(starting)}
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore store) *Service {
	return &Service{store: pgStore}
}

// Balance returns the user's balance, initializing it on first access.
func (s *Service) Balance(ctx context.Context, userID string) (Balance, error) {
	return s.store.Get(ctx, userID)
}

// Deduct removes n credits atomically.
func (s *Service) Deduct(ctx context.Context, userID string, n int) (Balance, error) {
	return s.store.Deduct(ctx, userID, n)
}

// Reset restores the starting grant.
func (s *Service) Reset(ctx context.Context, userID string) (Balance, error) {
	return s.store.Reset(ctx, userID)
}
