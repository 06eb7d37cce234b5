package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"link-pago.backend/internal/domain/entities"
	domainerrors "link-pago.backend/internal/domain/errors"
	"link-pago.backend/internal/interfaces/http/middleware"
	"link-pago.backend/internal/interfaces/http/response"
	"link-pago.backend/internal/usecases"
	"link-pago.backend/pkg/crypto"
	"link-pago.backend/pkg/jwt"
)

type AuthService interface {
	Register(ctx context.Context, input usecases.RegisterInput) (*entities.User, *jwt.TokenPair, error)
	Login(ctx context.Context, email, password string) (*entities.User, *jwt.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error)
	GoogleLoginURL(state, redirectURI string) string
	HandleGoogleCallback(ctx context.Context, code, redirectURI string) (string, error)
	Logout(ctx context.Context, sessionID string) error
	GetMe(ctx context.Context, userID string) (*entities.User, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authUsecase AuthService
	appURL      string
	sessionTTL  int // seconds, for the session cookie Max-Age
}

func NewAuthHandler(authUsecase AuthService, appURL string, sessionTTLSeconds int) *AuthHandler {
	return &AuthHandler{
		authUsecase: authUsecase,
		appURL:      appURL,
		sessionTTL:  sessionTTLSeconds,
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

// Register creates a merchant account
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	user, tokens, err := h.authUsecase.Register(c.Request.Context(), usecases.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"user":   user,
		"tokens": tokens,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges credentials for a token pair
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	user, tokens, err := h.authUsecase.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"user":   user,
		"tokens": tokens,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// Refresh rotates a token pair
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	tokens, err := h.authUsecase.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"tokens": tokens})
}

// GoogleLogin redirects to the Google consent screen
// GET /api/v1/auth/google
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	state, err := crypto.GenerateRandomToken(16)
	if err != nil {
		response.Error(c, domainerrors.InternalError(err))
		return
	}

	// Short-lived CSRF state cookie, verified on callback
	c.SetCookie("oauth_state", state, 600, "/", "", false, true)

	url := h.authUsecase.GoogleLoginURL(state, h.appURL+"/api/v1/auth/google/callback")
	c.Redirect(http.StatusTemporaryRedirect, url)
}

// GoogleCallback completes the OAuth flow and opens a session
// GET /api/v1/auth/google/callback
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	state := c.Query("state")
	cookieState, err := c.Cookie("oauth_state")
	if err != nil || state == "" || state != cookieState {
		response.Error(c, domainerrors.BadRequest("invalid oauth state"))
		return
	}
	c.SetCookie("oauth_state", "", -1, "/", "", false, true)

	code := c.Query("code")
	if code == "" {
		response.Error(c, domainerrors.BadRequest("missing authorization code"))
		return
	}

	sessionID, err := h.authUsecase.HandleGoogleCallback(c.Request.Context(), code, h.appURL+"/api/v1/auth/google/callback")
	if err != nil {
		response.Error(c, err)
		return
	}

	c.SetCookie(middleware.SessionCookieName, sessionID, h.sessionTTL, "/", "", false, true)
	c.Redirect(http.StatusFound, "/dashboard")
}

// Logout tears down the session
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, _ := c.Cookie(middleware.SessionCookieName)
	if err := h.authUsecase.Logout(c.Request.Context(), sessionID); err != nil {
		response.Error(c, err)
		return
	}

	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	response.Success(c, http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated user
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.CurrentUserID(c)
	if userID == "" {
		response.Error(c, domainerrors.Unauthorized("user not authenticated"))
		return
	}

	user, err := h.authUsecase.GetMe(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"user": user})
}
