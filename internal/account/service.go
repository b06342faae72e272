package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"resumepro/internal/drafts"
	"resumepro/internal/records"
	"resumepro/internal/shared/storage/db"
	"resumepro/internal/shared/telemetry"
)

// SessionReleaser flushes and forgets a user's live wizard session.
type SessionReleaser interface {
	Release(ctx context.Context, userID string) error
}

type Service struct {
	Drafts   drafts.Store
	Records  records.Repo
	Sessions SessionReleaser
}

type ClaimResult struct {
	MigratedDrafts  int `json:"migratedDrafts"`
	MigratedRecords int `json:"migratedRecords"`
}

func NewService(draftStore drafts.Store, recordRepo records.Repo, sessions SessionReleaser) *Service {
	return &Service{Drafts: draftStore, Records: recordRepo, Sessions: sessions}
}

// ClaimGuest moves a guest's drafts and saved rows to the signed-in user.
// Credits stay with the guest identity.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}

	// Both live sessions are flushed and dropped before drafts move: the
	// guest's pending autosave must land, and the signed-in user's session
	// must reload the claimed draft instead of overwriting it later.
	if s.Sessions != nil {
		for _, id := range []string{authedUserID, guestUserID} {
			if err := s.Sessions.Release(ctx, id); err != nil {
				telemetry.Warn("account.release_failed", map[string]any{"user_id": id, "error": err})
			}
		}
	}

	var (
		result ClaimResult
		err    error
	)
	if database := s.sharedDB(); database != nil {
		result, err = claimWithTx(ctx, database, guestUserID, authedUserID)
	} else {
		result, err = s.claimSeparately(ctx, guestUserID, authedUserID)
	}
	if err != nil {
		return ClaimResult{}, err
	}
	telemetry.Info("account.guest_claimed", map[string]any{
		"user_id":          authedUserID,
		"migrated_drafts":  result.MigratedDrafts,
		"migrated_records": result.MigratedRecords,
	})
	return result, nil
}

// sharedDB returns the database both stores live in, or nil.
func (s *Service) sharedDB() *sql.DB {
	draftPG, ok := s.Drafts.(*drafts.PGStore)
	if !ok || draftPG == nil || draftPG.DB == nil {
		return nil
	}
	if recordPG, ok := s.Records.(*records.PGRepo); !ok || recordPG == nil || recordPG.DB == nil {
		return nil
	}
	return draftPG.DB
}

func (s *Service) claimSeparately(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	draftCount, err := s.Drafts.ClaimGuest(ctx, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	recordCount, err := s.Records.ClaimGuest(ctx, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{MigratedDrafts: draftCount, MigratedRecords: recordCount}, nil
}

func claimWithTx(ctx context.Context, database *sql.DB, guestUserID, authedUserID string) (ClaimResult, error) {
	var result ClaimResult
	err := db.WithTx(ctx, database, func(tx *sql.Tx) error {
		var moved int64
		if err := drafts.ClaimGuestTx(ctx, tx, guestUserID, authedUserID, &moved); err != nil {
			return err
		}
		n, err := records.ClaimGuestTx(ctx, tx, guestUserID, authedUserID)
		if err != nil {
			return err
		}
		result = ClaimResult{MigratedDrafts: int(moved), MigratedRecords: n}
		return nil
	})
	return result, err
}
