package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resumepro/internal/shared/config"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)
	app, err := Build(config.Config{
		Env:             "dev",
		LocalStoreDir:   t.TempDir(),
		LLMProvider:     "none",
		CORSAllowOrigin: []string{"http://localhost:5173"},
		AutosaveDelay:   time.Hour,
		DefaultCredits:  1,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { _ = app.Close(context.Background()) })
	return app
}

type call struct {
	method  string
	path    string
	body    string
	token   string
	guestID string
}

func (a *App) do(c call) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if c.body != "" {
		body = bytes.NewBufferString(c.body)
	} else {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(c.method, c.path, body)
	if c.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.guestID != "" {
		req.Header.Set("X-Guest-Id", c.guestID)
	}
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func signup(t *testing.T, app *App, email string) string {
	t.Helper()
	rec := app.do(call{method: http.MethodPost, path: "/api/v1/auth/signup",
		body: `{"email":"` + email + `","password":"correct-horse","name":"Jane Doe"}`})
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil || out.Token == "" {
		t.Fatalf("signup: missing token in %s", rec.Body.String())
	}
	return out.Token
}

func TestPublicRoutes(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(call{method: http.MethodGet, path: "/api/v1/health"})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"storage":"memory"`) {
		t.Fatalf("health: %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}

	rec = app.do(call{method: http.MethodGet, path: "/api/v1/templates"})
	if rec.Code != http.StatusOK {
		t.Fatalf("templates: expected 200, got %d", rec.Code)
	}

	rec = app.do(call{method: http.MethodGet, path: "/metrics"})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "# TYPE") {
		t.Fatalf("metrics: %d %s", rec.Code, rec.Body.String())
	}
}

func TestProtectedRoutesRequireIdentity(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/v1/wizard", "/api/v1/credits", "/api/v1/auth/session"} {
		rec := app.do(call{method: http.MethodGet, path: path})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestGuestCannotReachSavedItems(t *testing.T) {
	app := newTestApp(t)
	guest := uuid.NewString()

	rec := app.do(call{method: http.MethodGet, path: "/api/v1/wizard", guestID: guest})
	if rec.Code != http.StatusOK {
		t.Fatalf("guest wizard: expected 200, got %d", rec.Code)
	}
	for _, path := range []string{"/api/v1/resumes", "/api/v1/diagrams", "/api/v1/chat/history", "/api/v1/me"} {
		rec := app.do(call{method: http.MethodGet, path: path, guestID: guest})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("%s: expected 403 for guest, got %d", path, rec.Code)
		}
	}
}

func TestGuestsCannotFinalizeOrCollectCredits(t *testing.T) {
	app := newTestApp(t)

	for i := 0; i < 3; i++ {
		guest := uuid.NewString()
		rec := app.do(call{method: http.MethodGet, path: "/api/v1/credits", guestID: guest})
		if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"credits":0`) {
			t.Fatalf("guest credits: %d %s", rec.Code, rec.Body.String())
		}
		rec = app.do(call{method: http.MethodPost, path: "/api/v1/wizard/finalize", guestID: guest})
		if rec.Code != http.StatusForbidden || !strings.Contains(rec.Body.String(), "login_required") {
			t.Fatalf("guest finalize: expected 403, got %d %s", rec.Code, rec.Body.String())
		}
	}
}

func TestWizardFinalizeLandsInLibrary(t *testing.T) {
	app := newTestApp(t)
	token := signup(t, app, "jane@example.com")

	rec := app.do(call{method: http.MethodPut, path: "/api/v1/wizard/steps/personal", token: token,
		body: `{"fullName":"Jane Doe","email":"jane@example.com"}`})
	if rec.Code != http.StatusOK {
		t.Fatalf("update step: %d %s", rec.Code, rec.Body.String())
	}

	rec = app.do(call{method: http.MethodPost, path: "/api/v1/wizard/finalize", token: token})
	if rec.Code != http.StatusOK {
		t.Fatalf("finalize: %d %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "jane-doe-resume.json") {
		t.Fatalf("unexpected disposition %q", rec.Header().Get("Content-Disposition"))
	}

	rec = app.do(call{method: http.MethodPost, path: "/api/v1/wizard/finalize", token: token})
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("second finalize: expected 402, got %d", rec.Code)
	}

	rec = app.do(call{method: http.MethodGet, path: "/api/v1/resumes", token: token})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Jane Doe") {
		t.Fatalf("resumes: %d %s", rec.Code, rec.Body.String())
	}
}

func TestGuestWorkIsClaimedAfterSignup(t *testing.T) {
	app := newTestApp(t)
	guest := uuid.NewString()

	rec := app.do(call{method: http.MethodPut, path: "/api/v1/wizard/steps/summary", guestID: guest,
		body: `{"summary":"Backend engineer"}`})
	if rec.Code != http.StatusOK {
		t.Fatalf("guest step: %d %s", rec.Code, rec.Body.String())
	}

	token := signup(t, app, "sam@example.com")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/claim-guest", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Guest-Id", guest)
	claim := httptest.NewRecorder()
	app.Router.ServeHTTP(claim, req)
	if claim.Code != http.StatusOK {
		t.Fatalf("claim: %d %s", claim.Code, claim.Body.String())
	}
	if !strings.Contains(claim.Body.String(), `"migratedDrafts":1`) {
		t.Fatalf("expected one migrated draft, got %s", claim.Body.String())
	}

	rec = app.do(call{method: http.MethodGet, path: "/api/v1/wizard", token: token})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Backend engineer") {
		t.Fatalf("claimed wizard: %d %s", rec.Code, rec.Body.String())
	}
}

func TestFunctionsRouteUsesPlaceholderFallback(t *testing.T) {
	app := newTestApp(t)
	token := signup(t, app, "ana@example.com")

	rec := app.do(call{method: http.MethodPost, path: "/api/v1/functions/analyze-resume", token: token,
		body: `{"resumeText":"Go engineer","fileName":"cv.txt"}`})
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"overallScore":65`) {
		t.Fatalf("analyze: %d %s", rec.Code, rec.Body.String())
	}
}
