package credits

import (
	"context"
	"sync"
	"time"
)

type memoryStore struct {
	mu       sync.Mutex
	data     map[string]Balance
	starting int
}

func newMemoryStore(starting int) *memoryStore {
	return &memoryStore{data: make(map[string]Balance), starting: starting}
}

func (s *memoryStore) Get(ctx context.Context, userID string) (Balance, error) {
	if err := ctx.Err(); err != nil {
		return Balance{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureLocked(userID), nil
}

func (s *memoryStore) Deduct(ctx context.Context, userID string, n int) (Balance, error) {
	if err := ctx.Err(); err != nil {
		return Balance{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.ensureLocked(userID)
	if n <= 0 {
		return b, nil
	}
	if b.Credits < n {
		return b, ErrInsufficientCredits
	}
	b.Credits -= n
	b.UpdatedAt = time.Now().UTC()
	s.data[userID] = b
	return b, nil
}

func (s *memoryStore) Reset(ctx context.Context, userID string) (Balance, error) {
	if err := ctx.Err(); err != nil {
		return Balance{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.ensureLocked(userID)
	b.Plan, b.Credits = grant(userID, s.starting)
	b.UpdatedAt = time.Now().UTC()
	s.data[userID] = b
	return b, nil
}

func (s *memoryStore) ensureLocked(userID string) Balance {
	b, ok := s.data[userID]
	if !ok {
		b = Balance{UserID: userID, UpdatedAt: time.Now().UTC()}
		b.Plan, b.Credits = grant(userID, s.starting)
		s.data[userID] = b
	}
	return b
}
