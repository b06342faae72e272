package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resumepro/internal/gateway"
	sharedauth "resumepro/internal/shared/auth"
	"resumepro/internal/shared/server/middleware"
	"resumepro/internal/shared/server/respond"
	"resumepro/internal/shared/telemetry"
	"resumepro/internal/users"
)

// Sessions resolves and revokes session tokens.
type Sessions interface {
	GetSession(ctx context.Context, token string) (gateway.Session, error)
	SignOut(ctx context.Context, token string) error
}

// Handler serves email sign-up, login and session endpoints.
type Handler struct {
	Users    *users.Service
	Sessions Sessions
}

func NewHandler(userSvc *users.Service, sessions Sessions) *Handler {
	return &Handler{Users: userSvc, Sessions: sessions}
}

// RegisterPublicRoutes attaches sign-up and login.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/signup", h.signup)
	rg.POST("/auth/login", h.login)
}

// RegisterRoutes attaches session routes to an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/session", h.session)
	rg.POST("/auth/signout", h.signout)
}

type signupRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Token string     `json:"token"`
	User  users.User `json:"user"`
}

func (h *Handler) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "email and password are required", nil)
		return
	}
	user, err := h.Users.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		var inputErr *users.InputError
		switch {
		case errors.As(err, &inputErr):
			respond.Error(c, http.StatusBadRequest, "validation_error", inputErr.Message, nil)
		case errors.Is(err, users.ErrEmailTaken):
			respond.Error(c, http.StatusConflict, "email_taken", "An account with this email already exists", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create account", nil)
		}
		return
	}
	h.writeToken(c, http.StatusCreated, user)
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "email and password are required", nil)
		return
	}
	user, err := h.Users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to sign in", nil)
		return
	}
	h.writeToken(c, http.StatusOK, user)
}

func (h *Handler) writeToken(c *gin.Context, status int, user users.User) {
	token, err := issueToken(user)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}
	telemetry.Info("auth.login", map[string]any{"user_id": user.ID, "method": "password"})
	respond.JSON(c, status, tokenResponse{Token: token, User: user})
}

// session reports the current identity. Guests get a session without expiry.
func (h *Handler) session(c *gin.Context) {
	if middleware.IsGuest(c) {
		respond.OK(c, gin.H{"guest": true, "session": gateway.Session{UserID: middleware.UserIDFromContext(c)}})
		return
	}
	s, err := h.Sessions.GetSession(c.Request.Context(), middleware.TokenFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", gateway.Message(err, "session expired"), nil)
		return
	}
	respond.OK(c, gin.H{"guest": false, "session": s})
}

func (h *Handler) signout(c *gin.Context) {
	if middleware.IsGuest(c) {
		c.Status(http.StatusNoContent)
		return
	}
	if err := h.Sessions.SignOut(c.Request.Context(), middleware.TokenFromContext(c)); err != nil {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", gateway.Message(err, "session expired"), nil)
		return
	}
	c.Status(http.StatusNoContent)
}

func issueToken(user users.User) (string, error) {
	return sharedauth.SignJWT(sharedauth.Claims{
		Sub:     user.ID,
		Email:   user.Email,
		Name:    user.Name,
		Picture: user.PictureURL,
	})
}
