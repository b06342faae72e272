package drafts

import (
	"context"
	"errors"
)

// Fixed keys for the durable per-user values the wizard keeps.
const (
	KeyResumeDraft      = "resumepro.resumeDraft"
	KeySelectedTemplate = "resumepro.selectedTemplate"
)

// ErrNotFound is returned when no value is stored under a key.
var ErrNotFound = errors.New("draft not found")

// Store is a per-user key/value store. Writes replace the whole value.
type Store interface {
	Get(ctx context.Context, userID, key string) (string, error)
	Put(ctx context.Context, userID, key, value string) error
	Delete(ctx context.Context, userID, key string) error
	// ClaimGuest moves a guest's values to another user, overwriting collisions.
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}
