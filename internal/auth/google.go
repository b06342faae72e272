package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"resumepro/internal/shared/server/respond"
	"resumepro/internal/shared/telemetry"
	"resumepro/internal/users"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	googleIDPrefix    = "google:"
	loginStateTTL     = 5 * time.Minute
)

// GoogleService runs the Google sign-in redirect flow and records the profile.
// A guest id passed to start comes back on the UI redirect so the client can
// claim its guest work once signed in.
type GoogleService struct {
	oauthConfig *oauth2.Config
	uiRedirect  string
	pending     *pendingLogins
	users       *users.Service
	userInfoURL string
}

func NewGoogleService(clientID, clientSecret, redirectURL, uiRedirect string, userSvc *users.Service) *GoogleService {
	return &GoogleService{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		uiRedirect:  uiRedirect,
		pending:     newPendingLogins(time.Now),
		users:       userSvc,
		userInfoURL: googleUserInfoURL,
	}
}

func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", s.start)
	rg.GET("/auth/google/callback", s.callback)
}

func (s *GoogleService) configured() bool {
	return s.oauthConfig.ClientID != "" && s.oauthConfig.ClientSecret != "" &&
		s.oauthConfig.RedirectURL != "" && s.uiRedirect != ""
}

func (s *GoogleService) start(c *gin.Context) {
	if !s.configured() {
		respond.Error(c, http.StatusServiceUnavailable, "auth_not_configured", "Google sign-in is not configured", nil)
		return
	}
	guestID := strings.TrimSpace(c.Query("guestId"))
	if guestID != "" {
		if _, err := uuid.Parse(guestID); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "guestId must be a UUID", nil)
			return
		}
	}
	state := s.pending.begin(guestID, loginStateTTL)
	c.Redirect(http.StatusFound, s.oauthConfig.AuthCodeURL(state))
}

func (s *GoogleService) callback(c *gin.Context) {
	state, code := c.Query("state"), c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}
	login, ok := s.pending.finish(state)
	if !ok {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	ctx := c.Request.Context()
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to exchange code", nil)
		return
	}
	info, err := s.fetchUserInfo(ctx, token)
	if err != nil {
		telemetry.Error("auth.google_userinfo_failed", map[string]any{"error": err})
		respond.Error(c, http.StatusBadGateway, "auth_failed", "failed to fetch user profile", nil)
		return
	}

	profile := users.User{
		ID:         googleIDPrefix + info.Sub,
		Email:      info.Email,
		Name:       info.Name,
		PictureURL: info.Picture,
	}
	if s.users != nil && profile.Email != "" {
		if err := s.users.UpsertFromAuth(ctx, profile); err != nil {
			telemetry.Error("auth.google_profile_failed", map[string]any{"user_id": profile.ID, "error": err})
		}
	}

	jwt, err := issueToken(profile)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}
	target, err := uiRedirectURL(s.uiRedirect, jwt, login.guestID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to redirect", nil)
		return
	}

	telemetry.Info("auth.login", map[string]any{"user_id": profile.ID, "method": "google", "has_guest": login.guestID != ""})
	c.Redirect(http.StatusFound, target)
}

type googleUserInfo struct {
	Sub     string `json:"sub"`
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (s *GoogleService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (googleUserInfo, error) {
	resp, err := s.oauthConfig.Client(ctx, token).Get(s.userInfoURL)
	if err != nil {
		return googleUserInfo{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return googleUserInfo{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return googleUserInfo{}, err
	}
	// The v2 endpoint reports the subject as "id".
	if info.Sub == "" {
		info.Sub = info.ID
	}
	if info.Sub == "" {
		return googleUserInfo{}, errors.New("userinfo has no subject")
	}
	return info, nil
}

type pendingLogin struct {
	guestID string
	expires time.Time
}

// pendingLogins holds single-use OAuth states until they expire.
type pendingLogins struct {
	mu    sync.Mutex
	items map[string]pendingLogin
	now   func() time.Time
}

func newPendingLogins(now func() time.Time) *pendingLogins {
	return &pendingLogins{items: make(map[string]pendingLogin), now: now}
}

func (p *pendingLogins) begin(guestID string, ttl time.Duration) string {
	state := uuid.NewString()
	now := p.now()
	p.mu.Lock()
	defer p.mu.Unlock()
	for k, v := range p.items {
		if now.After(v.expires) {
			delete(p.items, k)
		}
	}
	p.items[state] = pendingLogin{guestID: guestID, expires: now.Add(ttl)}
	return state
}

func (p *pendingLogins) finish(state string) (pendingLogin, bool) {
	p.mu.Lock()
	login, ok := p.items[state]
	delete(p.items, state)
	p.mu.Unlock()
	if !ok || p.now().After(login.expires) {
		return pendingLogin{}, false
	}
	return login, true
}

func uiRedirectURL(rawURL, token, guestID string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	if guestID != "" {
		q.Set("guestId", guestID)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
