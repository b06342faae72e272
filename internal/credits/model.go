package credits

import (
	"errors"
	"strings"
	"time"

	"resumepro/internal/shared/server/middleware"
)

const (
	// DefaultPlan is assigned to every new account balance.
	DefaultPlan = "free"
	// GuestPlan holds guest identities, which never receive credits.
	GuestPlan = "guest"
)

// ErrInsufficientCredits is returned when a deduction would take the balance below zero.
var ErrInsufficientCredits = errors.New("insufficient credits")

// Balance is a user's remaining credit count.
type Balance struct {
	UserID    string    `json:"-"`
	Plan      string    `json:"plan"`
	Credits   int       `json:"credits"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// grant returns the plan and starting credits for a balance created for userID.
// Guest ids are minted by clients at will, so they start empty.
func grant(userID string, starting int) (string, int) {
	if strings.HasPrefix(userID, middleware.GuestPrefix) {
		return GuestPlan, 0
	}
	return DefaultPlan, starting
}
