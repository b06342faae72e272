package users

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func newTestService() *Service {
	s := NewService(NewMemoryRepo())
	s.cost = bcrypt.MinCost
	return s
}

func TestRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	u, err := s.Register(ctx, " Jane@Example.com ", "correct horse", "Jane")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "jane@example.com" || u.PasswordHash == "" || u.PasswordHash == "correct horse" {
		t.Fatalf("unexpected user %+v", u)
	}

	got, err := s.Authenticate(ctx, "JANE@example.com", "correct horse")
	if err != nil || got.ID != u.ID {
		t.Fatalf("Authenticate: %+v %v", got, err)
	}
	if _, err := s.Authenticate(ctx, "jane@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := s.Authenticate(ctx, "nobody@example.com", "correct horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	if _, err := s.Register(ctx, "not-an-email", "long enough", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for email, got %v", err)
	}
	if _, err := s.Register(ctx, "a@b.co", "short", ""); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for password, got %v", err)
	}
	if _, err := s.Register(ctx, "a@b.co", "long enough", ""); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := s.Register(ctx, "A@B.co", "long enough", ""); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestGoogleAccountCannotUsePassword(t *testing.T) {
	ctx := context.Background()
	s := newTestService()
	if err := s.UpsertFromAuth(ctx, User{ID: "google:1", Email: "g@example.com", Name: "G"}); err != nil {
		t.Fatalf("UpsertFromAuth: %v", err)
	}
	if _, err := s.Authenticate(ctx, "g@example.com", "anything at all"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := s.UpsertFromAuth(ctx, User{ID: "google:1", Email: "g@example.com", Name: "Renamed"}); err != nil {
		t.Fatalf("UpsertFromAuth: %v", err)
	}
	u, _ := s.GetByID(ctx, "google:1")
	if u.Name != "Renamed" || u.CreatedAt.IsZero() {
		t.Fatalf("unexpected profile %+v", u)
	}
}
