package auth

import (
	"sync"
	"time"
)

// RevocationList remembers signed-out token ids until they would have expired anyway.
type RevocationList struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	now     func() time.Time
}

// NewRevocationList returns an empty list. A nil clock uses time.Now.
func NewRevocationList(now func() time.Time) *RevocationList {
	if now == nil {
		now = time.Now
	}
	return &RevocationList{revoked: make(map[string]time.Time), now: now}
}

// Revoke marks the token id as signed out until expiresAt.
func (r *RevocationList) Revoke(id string, expiresAt time.Time) {
	if r == nil || id == "" {
		return
	}
	if expiresAt.IsZero() {
		expiresAt = r.now().Add(SessionTTL)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	r.revoked[id] = expiresAt
}

// IsRevoked reports whether the token id was signed out.
func (r *RevocationList) IsRevoked(id string) bool {
	if r == nil || id == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	until, ok := r.revoked[id]
	if !ok {
		return false
	}
	if r.now().After(until) {
		delete(r.revoked, id)
		return false
	}
	return true
}

func (r *RevocationList) pruneLocked() {
	now := r.now()
	for id, until := range r.revoked {
		if now.After(until) {
			delete(r.revoked, id)
		}
	}
}
