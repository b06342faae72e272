package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"resumepro/internal/credits"
	"resumepro/internal/records"
	"resumepro/internal/shared/auth"
	"resumepro/internal/shared/storage/object/local"
)

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	return New(Options{
		Records: records.NewMemoryRepo(),
		Objects: local.New(t.TempDir()),
		Credits: credits.NewService(2),
	})
}

func TestSessionAndSignOut(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	token, err := auth.SignJWT(auth.Claims{Sub: "user-1", Email: "a@b.co"})
	if err != nil {
		t.Fatalf("SignJWT: %v", err)
	}

	s, err := g.GetSession(ctx, token)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if s.UserID != "user-1" || s.Email != "a@b.co" || s.ExpiresAt.IsZero() {
		t.Fatalf("unexpected session %+v", s)
	}

	if err := g.SignOut(ctx, token); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	_, err = g.GetSession(ctx, token)
	if !errors.Is(err, auth.ErrRevokedToken) {
		t.Fatalf("expected revoked token, got %v", err)
	}
	var gerr *Error
	if !errors.As(err, &gerr) || gerr.Message == "" {
		t.Fatalf("expected *Error with message, got %T", err)
	}
}

func TestGetSessionRejectsGarbage(t *testing.T) {
	g := newTestGateway(t)
	if _, err := g.GetSession(context.Background(), "nope"); !errors.Is(err, auth.ErrInvalidToken) {
		t.Fatalf("expected invalid token, got %v", err)
	}
	if _, err := g.GetSession(context.Background(), ""); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestRowsRoundTrip(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	rec, err := g.InsertRow(ctx, records.TableFlowcharts, "u1", map[string]any{"nodes": []any{}})
	if err != nil {
		t.Fatalf("InsertRow: %v", err)
	}
	if rec.ID == "" || rec.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", rec)
	}
	if _, err := g.InsertRow(ctx, records.TableFlowcharts, "u1", json.RawMessage(`{"nodes":[1]}`)); err != nil {
		t.Fatalf("InsertRow raw: %v", err)
	}

	rows, err := g.SelectRows(ctx, records.TableFlowcharts, "u1", 0, 0)
	if err != nil || len(rows) != 2 {
		t.Fatalf("SelectRows = %d rows, err %v", len(rows), err)
	}
	other, _ := g.SelectRows(ctx, records.TableFlowcharts, "u2", 0, 0)
	if len(other) != 0 {
		t.Fatalf("rows leaked across users")
	}

	got, err := g.GetRow(ctx, records.TableFlowcharts, "u1", rec.ID)
	if err != nil || got.ID != rec.ID {
		t.Fatalf("GetRow: %+v %v", got, err)
	}

	n, err := g.DeleteRow(ctx, records.TableFlowcharts, "u1", records.Filter{ID: rec.ID})
	if err != nil || n != 1 {
		t.Fatalf("DeleteRow = %d, %v", n, err)
	}
	if _, err := g.DeleteRow(ctx, records.TableFlowcharts, "u1", records.Filter{ID: rec.ID}); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
	if _, err := g.GetRow(ctx, records.TableFlowcharts, "u1", rec.ID); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUnknownTableRejected(t *testing.T) {
	g := newTestGateway(t)
	_, err := g.InsertRow(context.Background(), "users", "u1", map[string]any{})
	if !errors.Is(err, ErrUnknownTable) {
		t.Fatalf("expected ErrUnknownTable, got %v", err)
	}
	if msg := Message(err, "fallback"); !strings.Contains(msg, "users") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestInsertRowRejectsInvalidRawJSON(t *testing.T) {
	g := newTestGateway(t)
	_, err := g.InsertRow(context.Background(), records.TableResumes, "u1", json.RawMessage(`{`))
	var gerr *Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *Error, got %v", err)
	}
}

func TestFilesRoundTrip(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	n, err := g.UploadFile(ctx, BucketResumes, "abc/cv.txt", "text/plain", strings.NewReader("hello"))
	if err != nil || n != 5 {
		t.Fatalf("UploadFile = %d, %v", n, err)
	}
	data, err := g.DownloadFile(ctx, BucketResumes, "abc/cv.txt")
	if err != nil || string(data) != "hello" {
		t.Fatalf("DownloadFile = %q, %v", data, err)
	}
	if _, err := g.DownloadFile(ctx, BucketResumes, "abc/missing.txt"); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := g.UploadFile(ctx, "avatars", "x", "", strings.NewReader("x")); !errors.Is(err, ErrUnknownBucket) {
		t.Fatalf("expected ErrUnknownBucket, got %v", err)
	}
	if _, err := g.UploadFile(ctx, BucketResumes, "../x", "", strings.NewReader("x")); !errors.Is(err, ErrInvalidPath) {
		t.Fatalf("expected ErrInvalidPath, got %v", err)
	}
}

func TestInvokeFunction(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	if _, err := g.InvokeFunction(ctx, FunctionChatAssistant, map[string]string{}); !errors.Is(err, ErrUnknownFunction) {
		t.Fatalf("expected unregistered function error, got %v", err)
	}
	if err := g.RegisterFunction("shell", func(context.Context, json.RawMessage) (json.RawMessage, error) { return nil, nil }); !errors.Is(err, ErrUnknownFunction) {
		t.Fatalf("expected register rejection, got %v", err)
	}

	boom := errors.New("validation failed")
	err := g.RegisterFunction(FunctionChatAssistant, func(_ context.Context, payload json.RawMessage) (json.RawMessage, error) {
		var in struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(payload, &in); err != nil {
			return nil, err
		}
		if in.Message == "" {
			return nil, boom
		}
		return json.Marshal(map[string]string{"reply": "echo " + in.Message})
	})
	if err != nil {
		t.Fatalf("RegisterFunction: %v", err)
	}

	out, err := g.InvokeFunction(ctx, FunctionChatAssistant, map[string]string{"message": "hi"})
	if err != nil {
		t.Fatalf("InvokeFunction: %v", err)
	}
	if string(out) != `{"reply":"echo hi"}` {
		t.Fatalf("unexpected output %s", out)
	}

	_, err = g.InvokeFunction(ctx, FunctionChatAssistant, map[string]string{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped function error, got %v", err)
	}
	if Message(err, "") != "validation failed" {
		t.Fatalf("unexpected message %q", Message(err, ""))
	}
}

func TestCredits(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()
	b, err := g.CreditBalance(ctx, "u1")
	if err != nil || b.Credits != 2 {
		t.Fatalf("CreditBalance = %+v, %v", b, err)
	}
	if _, err := g.DeductCredits(ctx, "u1", 2); err != nil {
		t.Fatalf("DeductCredits: %v", err)
	}
	if _, err := g.DeductCredits(ctx, "u1", 1); !errors.Is(err, credits.ErrInsufficientCredits) {
		t.Fatalf("expected insufficient credits, got %v", err)
	}
	b, err = g.ResetCredits(ctx, "u1")
	if err != nil || b.Credits != 2 {
		t.Fatalf("ResetCredits = %+v, %v", b, err)
	}
}

func TestRevocationHonorsClock(t *testing.T) {
	now := time.Now()
	g := New(Options{
		Records: records.NewMemoryRepo(),
		Credits: credits.NewService(1),
		Now:     func() time.Time { return now },
	})
	token, _ := auth.SignJWT(auth.Claims{Sub: "u"})
	if err := g.SignOut(context.Background(), token); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	now = now.Add(auth.SessionTTL + time.Minute)
	// token expiry uses the wall clock; only the revocation entry lapses
	if _, err := g.GetSession(context.Background(), token); err != nil {
		t.Fatalf("expected revocation to lapse after expiry, got %v", err)
	}
}
