package records

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	rows []Record
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

func (r *MemoryRepo) Insert(ctx context.Context, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rec.Payload = append([]byte(nil), rec.Payload...)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = append(r.rows, rec)
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, table, userID string, limit, offset int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	out := []Record{}
	for i := len(r.rows) - 1; i >= 0; i-- {
		if r.rows[i].Table == table && r.rows[i].UserID == userID {
			out = append(out, r.rows[i])
		}
	}
	r.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return []Record{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

func (r *MemoryRepo) Get(ctx context.Context, table, userID, id string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.rows {
		if rec.Table == table && rec.UserID == userID && rec.ID == id {
			return rec, nil
		}
	}
	return Record{}, ErrNotFound
}

func (r *MemoryRepo) Delete(ctx context.Context, table, userID string, filter Filter) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.rows[:0]
	removed := 0
	for _, rec := range r.rows {
		if rec.Table == table && rec.UserID == userID && (filter.ID == "" || rec.ID == filter.ID) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	r.rows = kept
	return removed, nil
}

func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	moved := 0
	for i := range r.rows {
		if r.rows[i].UserID == guestUserID {
			r.rows[i].UserID = authedUserID
			moved++
		}
	}
	return moved, nil
}

var _ Repo = (*MemoryRepo)(nil)
