package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"resumepro/internal/credits"
	"resumepro/internal/records"
	"resumepro/internal/shared/auth"
	"resumepro/internal/shared/metrics"
	"resumepro/internal/shared/storage/object"
	"resumepro/internal/shared/telemetry"
)

// BucketResumes holds uploaded resume files.
const BucketResumes = "resumes"

// Function names callable through InvokeFunction.
const (
	FunctionAnalyzeResume = "analyze-resume"
	FunctionChatAssistant = "chat-assistant"
)

var (
	knownTables = map[string]bool{
		records.TableResumes:      true,
		records.TableFlowcharts:   true,
		records.TableChatHistory:  true,
		records.TableResumeScores: true,
	}
	knownBuckets   = map[string]bool{BucketResumes: true}
	knownFunctions = map[string]bool{
		FunctionAnalyzeResume: true,
		FunctionChatAssistant: true,
	}
)

// Function is a server-side function reachable through InvokeFunction.
type Function func(ctx context.Context, payload json.RawMessage) (json.RawMessage, error)

// CreditStore is the balance surface the gateway fronts.
type CreditStore interface {
	Balance(ctx context.Context, userID string) (credits.Balance, error)
	Deduct(ctx context.Context, userID string, n int) (credits.Balance, error)
	Reset(ctx context.Context, userID string) (credits.Balance, error)
}

// Session is the identity behind a session token.
type Session struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	Picture   string    `json:"picture,omitempty"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Gateway is the only path from features to sessions, tables, buckets, functions and credits.
// It does not retry or cache.
type Gateway struct {
	records   records.Repo
	objects   object.ObjectStore
	credits   CreditStore
	revoked   *auth.RevocationList
	functions map[string]Function
	now       func() time.Time
}

// Options wires a Gateway.
type Options struct {
	Records     records.Repo
	Objects     object.ObjectStore
	Credits     CreditStore
	Revocations *auth.RevocationList
	Now         func() time.Time
}

// New constructs a Gateway. Functions are attached with RegisterFunction.
func New(opts Options) *Gateway {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	revoked := opts.Revocations
	if revoked == nil {
		revoked = auth.NewRevocationList(now)
	}
	return &Gateway{
		records:   opts.Records,
		objects:   opts.Objects,
		credits:   opts.Credits,
		revoked:   revoked,
		functions: make(map[string]Function),
		now:       now,
	}
}

// RegisterFunction attaches the implementation of a known function.
func (g *Gateway) RegisterFunction(name string, fn Function) error {
	if !knownFunctions[name] {
		return fail("register_function", fmt.Sprintf("Function %q is not available", name), ErrUnknownFunction)
	}
	if fn == nil {
		return fail("register_function", "Function implementation is missing", errors.New("nil function"))
	}
	g.functions[name] = fn
	return nil
}

// GetSession resolves a session token, rejecting signed-out tokens.
func (g *Gateway) GetSession(ctx context.Context, token string) (Session, error) {
	claims, err := g.VerifyToken(ctx, token)
	if err != nil {
		return Session{}, err
	}
	return Session{
		UserID:    claims.Sub,
		Email:     claims.Email,
		Name:      claims.Name,
		Picture:   claims.Picture,
		ExpiresAt: claims.ExpiresAt(),
	}, nil
}

// VerifyToken checks signature, expiry and revocation of a session token.
func (g *Gateway) VerifyToken(ctx context.Context, token string) (auth.Claims, error) {
	if err := ctx.Err(); err != nil {
		return auth.Claims{}, fail("get_session", "Request canceled", err)
	}
	if strings.TrimSpace(token) == "" {
		return auth.Claims{}, fail("get_session", "Not signed in", ErrUnauthenticated)
	}
	claims, err := auth.VerifyJWT(token)
	if err != nil {
		return auth.Claims{}, fail("get_session", "Session is invalid or expired", err)
	}
	if g.revoked.IsRevoked(claims.ID) {
		return auth.Claims{}, fail("get_session", "Session has been signed out", auth.ErrRevokedToken)
	}
	return claims, nil
}

// SignOut revokes the session token until it would have expired.
func (g *Gateway) SignOut(ctx context.Context, token string) error {
	claims, err := g.VerifyToken(ctx, token)
	if err != nil {
		return err
	}
	g.revoked.Revoke(claims.ID, claims.ExpiresAt())
	telemetry.Info("auth.signout", map[string]any{"user_id": claims.Sub})
	return nil
}

// InsertRow stores payload as a new row owned by userID.
func (g *Gateway) InsertRow(ctx context.Context, table, userID string, payload any) (records.Record, error) {
	const op = "insert_row"
	if err := checkTable(op, table, userID); err != nil {
		return records.Record{}, err
	}
	raw, err := toJSON(payload)
	if err != nil {
		return records.Record{}, fail(op, "Could not encode the row", err)
	}
	rec := records.Record{
		ID:        uuid.NewString(),
		Table:     table,
		UserID:    userID,
		Payload:   raw,
		CreatedAt: g.now().UTC(),
	}
	if err := g.records.Insert(ctx, rec); err != nil {
		return records.Record{}, fail(op, "Could not save to "+table, err)
	}
	return rec, nil
}

// SelectRows lists the user's rows newest first.
func (g *Gateway) SelectRows(ctx context.Context, table, userID string, limit, offset int) ([]records.Record, error) {
	const op = "select_rows"
	if err := checkTable(op, table, userID); err != nil {
		return nil, err
	}
	rows, err := g.records.List(ctx, table, userID, limit, offset)
	if err != nil {
		return nil, fail(op, "Could not load "+table, err)
	}
	return rows, nil
}

// GetRow fetches one of the user's rows.
func (g *Gateway) GetRow(ctx context.Context, table, userID, id string) (records.Record, error) {
	const op = "get_row"
	if err := checkTable(op, table, userID); err != nil {
		return records.Record{}, err
	}
	rec, err := g.records.Get(ctx, table, userID, id)
	if err != nil {
		if errors.Is(err, records.ErrNotFound) {
			return records.Record{}, fail(op, "Item not found", err)
		}
		return records.Record{}, fail(op, "Could not load "+table, err)
	}
	return rec, nil
}

// DeleteRow deletes the user's rows matching filter and returns how many went away.
func (g *Gateway) DeleteRow(ctx context.Context, table, userID string, filter records.Filter) (int, error) {
	const op = "delete_row"
	if err := checkTable(op, table, userID); err != nil {
		return 0, err
	}
	n, err := g.records.Delete(ctx, table, userID, filter)
	if err != nil {
		return 0, fail(op, "Could not delete from "+table, err)
	}
	if filter.ID != "" && n == 0 {
		return 0, fail(op, "Item not found", records.ErrNotFound)
	}
	return n, nil
}

// UploadFile writes r to bucket/path.
func (g *Gateway) UploadFile(ctx context.Context, bucket, objectPath, contentType string, r io.Reader) (int64, error) {
	const op = "upload_file"
	key, err := objectKey(op, bucket, objectPath)
	if err != nil {
		return 0, err
	}
	n, err := g.objects.Put(ctx, key, contentType, r)
	if err != nil {
		return 0, fail(op, "Upload failed", err)
	}
	return n, nil
}

// DownloadFile reads bucket/path fully.
func (g *Gateway) DownloadFile(ctx context.Context, bucket, objectPath string) ([]byte, error) {
	const op = "download_file"
	key, err := objectKey(op, bucket, objectPath)
	if err != nil {
		return nil, err
	}
	body, err := g.objects.Open(ctx, key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, fail(op, "File not found", err)
		}
		return nil, fail(op, "Download failed", err)
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fail(op, "Download failed", err)
	}
	return data, nil
}

// InvokeFunction runs a registered server-side function with a JSON payload.
func (g *Gateway) InvokeFunction(ctx context.Context, name string, payload any) (json.RawMessage, error) {
	const op = "invoke_function"
	fn, ok := g.functions[name]
	if !knownFunctions[name] || !ok {
		return nil, fail(op, fmt.Sprintf("Function %q is not available", name), ErrUnknownFunction)
	}
	raw, err := toJSON(payload)
	if err != nil {
		return nil, fail(op, "Could not encode the request", err)
	}
	start := time.Now()
	out, err := fn(ctx, raw)
	metrics.ObserveFunction(name, start, err)
	if err != nil {
		var gerr *Error
		if errors.As(err, &gerr) {
			return nil, err
		}
		return nil, fail(op, err.Error(), err)
	}
	return out, nil
}

// CreditBalance returns the user's balance.
func (g *Gateway) CreditBalance(ctx context.Context, userID string) (credits.Balance, error) {
	b, err := g.credits.Balance(ctx, userID)
	if err != nil {
		return credits.Balance{}, fail("credit_balance", "Could not load credits", err)
	}
	return b, nil
}

// DeductCredits removes n credits.
func (g *Gateway) DeductCredits(ctx context.Context, userID string, n int) (credits.Balance, error) {
	b, err := g.credits.Deduct(ctx, userID, n)
	if err != nil {
		if errors.Is(err, credits.ErrInsufficientCredits) {
			return credits.Balance{}, fail("deduct_credits", "Not enough credits", err)
		}
		return credits.Balance{}, fail("deduct_credits", "Could not update credits", err)
	}
	return b, nil
}

// ResetCredits restores the starting grant.
func (g *Gateway) ResetCredits(ctx context.Context, userID string) (credits.Balance, error) {
	b, err := g.credits.Reset(ctx, userID)
	if err != nil {
		return credits.Balance{}, fail("reset_credits", "Could not reset credits", err)
	}
	return b, nil
}

func checkTable(op, table, userID string) error {
	if !knownTables[table] {
		return fail(op, fmt.Sprintf("Table %q is not available", table), ErrUnknownTable)
	}
	if strings.TrimSpace(userID) == "" {
		return fail(op, "Not signed in", ErrUnauthenticated)
	}
	return nil
}

func objectKey(op, bucket, objectPath string) (string, error) {
	if !knownBuckets[bucket] {
		return "", fail(op, fmt.Sprintf("Bucket %q is not available", bucket), ErrUnknownBucket)
	}
	clean := path.Clean("/" + strings.TrimSpace(objectPath))
	if objectPath == "" || clean == "/" || strings.Contains(objectPath, "..") || strings.HasPrefix(objectPath, "/") {
		return "", fail(op, "Invalid file path", ErrInvalidPath)
	}
	return bucket + clean, nil
}

func toJSON(payload any) (json.RawMessage, error) {
	switch v := payload.(type) {
	case json.RawMessage:
		if !json.Valid(v) {
			return nil, errors.New("payload is not valid JSON")
		}
		return v, nil
	case []byte:
		if !json.Valid(v) {
			return nil, errors.New("payload is not valid JSON")
		}
		return json.RawMessage(bytes.Clone(v)), nil
	default:
		return json.Marshal(v)
	}
}
