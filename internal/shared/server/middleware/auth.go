package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resumepro/internal/shared/auth"
	"resumepro/internal/shared/server/respond"
)

const (
	userIDKey      = "userId"
	userEmailKey   = "userEmail"
	userNameKey    = "userName"
	userPictureKey = "userPicture"
	isGuestKey     = "isGuest"
	tokenKey       = "sessionToken"

	maxGuestIDLength = 64
)

// GuestPrefix marks user ids derived from the X-Guest-Id header.
const GuestPrefix = "guest:"

// TokenVerifier resolves a bearer token into session claims.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (auth.Claims, error)
}

type jwtVerifier struct{}

func (jwtVerifier) VerifyToken(_ context.Context, token string) (auth.Claims, error) {
	return auth.VerifyJWT(token)
}

// Auth resolves the caller from a bearer token or the X-Guest-Id header and
// stores the identity in context. A nil verifier checks signatures only.
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	if verifier == nil {
		verifier = jwtVerifier{}
	}
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		cred, ok := credentials(c.Request)
		switch {
		case !ok:
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		case cred.token != "":
			claims, err := verifier.VerifyToken(c.Request.Context(), cred.token)
			if err != nil {
				respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
				return
			}
			setUser(c, claims, cred.token)
			c.Next()
		case cred.guestID != "":
			c.Set(userIDKey, GuestPrefix+cred.guestID)
			c.Set(isGuestKey, true)
			c.Next()
		default:
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		}
	}
}

type credential struct {
	token   string
	guestID string
}

// credentials extracts the caller's credential. ok is false when a credential
// is present but malformed. Browsers cannot set headers on a websocket
// handshake, so upgrades may carry token and guestId as query parameters.
func credentials(r *http.Request) (credential, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	guestID := strings.TrimSpace(r.Header.Get("X-Guest-Id"))
	if header == "" && guestID == "" && isWebSocketUpgrade(r) {
		q := r.URL.Query()
		if token := strings.TrimSpace(q.Get("token")); token != "" {
			header = "Bearer " + token
		}
		guestID = strings.TrimSpace(q.Get("guestId"))
	}

	if header != "" {
		token, found := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		return credential{token: token}, found && token != ""
	}
	if guestID != "" && !validGuestID(guestID) {
		return credential{}, false
	}
	return credential{guestID: guestID}, true
}

func validGuestID(id string) bool {
	if len(id) > maxGuestIDLength {
		return false
	}
	for _, r := range id {
		if !(r == '-' || r == '_' || (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return true
}

func setUser(c *gin.Context, claims auth.Claims, token string) {
	c.Set(userIDKey, claims.Sub)
	c.Set(tokenKey, token)
	c.Set(isGuestKey, false)
	optional := map[string]string{
		userEmailKey:   claims.Email,
		userNameKey:    claims.Name,
		userPictureKey: claims.Picture,
	}
	for key, val := range optional {
		if val != "" {
			c.Set(key, val)
		}
	}
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

// RequireLogin rejects guest identities.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsGuest(c) || UserIDFromContext(c) == "" {
			respond.Error(c, http.StatusForbidden, "login_required", "Sign in to access saved items", nil)
			return
		}
		c.Next()
	}
}

// IsGuest reports whether the request was authenticated with a guest header.
func IsGuest(c *gin.Context) bool {
	if c == nil {
		return false
	}
	val, ok := c.Get(isGuestKey)
	if !ok {
		return false
	}
	guest, _ := val.(bool)
	return guest
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	return stringFromContext(c, userIDKey)
}

// TokenFromContext fetches the bearer token the request authenticated with.
func TokenFromContext(c *gin.Context) string {
	return stringFromContext(c, tokenKey)
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	return stringFromContext(c, userEmailKey)
}

// UserNameFromContext fetches the user name set by the auth middleware.
func UserNameFromContext(c *gin.Context) string {
	return stringFromContext(c, userNameKey)
}

// UserPictureFromContext fetches the user picture set by the auth middleware.
func UserPictureFromContext(c *gin.Context) string {
	return stringFromContext(c, userPictureKey)
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(key)
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}
