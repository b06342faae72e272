package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resumepro/internal/shared/auth"
)

type stubVerifier struct {
	claims auth.Claims
	err    error
}

func (s stubVerifier) VerifyToken(context.Context, string) (auth.Claims, error) {
	return s.claims, s.err
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(nil))
	router.OPTIONS("/api/v1/wizard", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/wizard", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthGuestHeaderSetsPrefixedID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(nil))
	router.GET("/who", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": UserIDFromContext(c), "guest": IsGuest(c)})
	})

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("X-Guest-Id", "abc")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != `{"guest":true,"id":"guest:abc"}` {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestAuthRejectsMissingIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(nil))
	router.GET("/who", func(c *gin.Context) { c.Status(http.StatusOK) })

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/who", nil))
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthUsesVerifier(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		verifier stubVerifier
		want     int
	}{
		{name: "valid", verifier: stubVerifier{claims: auth.Claims{Sub: "user-1"}}, want: http.StatusOK},
		{name: "revoked", verifier: stubVerifier{err: errors.New("revoked")}, want: http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.Use(Auth(tc.verifier))
			router.GET("/who", func(c *gin.Context) {
				if TokenFromContext(c) != "tok" {
					t.Errorf("expected token in context")
				}
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/who", nil)
			req.Header.Set("Authorization", "Bearer tok")
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.Code)
			}
		})
	}
}

func TestRequireLoginRejectsGuests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(stubVerifier{claims: auth.Claims{Sub: "user-1"}}), RequireLogin())
	router.GET("/resumes", func(c *gin.Context) { c.Status(http.StatusOK) })

	guest := httptest.NewRequest(http.MethodGet, "/resumes", nil)
	guest.Header.Set("X-Guest-Id", "abc")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, guest)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for guest, got %d", resp.Code)
	}

	user := httptest.NewRequest(http.MethodGet, "/resumes", nil)
	user.Header.Set("Authorization", "Bearer tok")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, user)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for user, got %d", resp.Code)
	}
}

func TestAuthReadsQueryOnlyForWebSocketUpgrade(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(nil))
	router.GET("/ws", func(c *gin.Context) {
		c.String(http.StatusOK, UserIDFromContext(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/ws?guestId=abc", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("plain request: expected 401, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/ws?guestId=abc", nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || resp.Body.String() != "guest:abc" {
		t.Fatalf("upgrade request: got %d %q", resp.Code, resp.Body.String())
	}
}

func TestAuthRejectsMalformedCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Auth(stubVerifier{claims: auth.Claims{Sub: "u1"}}))
	router.GET("/who", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := map[string][2]string{
		"basic scheme":     {"Authorization", "Basic abc"},
		"empty bearer":     {"Authorization", "Bearer "},
		"guest with slash": {"X-Guest-Id", "../etc"},
		"long guest":       {"X-Guest-Id", strings.Repeat("a", 65)},
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/who", nil)
			req.Header.Set(header[0], header[1])
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)
			if resp.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", resp.Code)
			}
		})
	}
}
