package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/symone-ai/symone-admin/internal/auth"
	"github.com/symone-ai/symone-admin/internal/store"
	"github.com/symone-ai/symone-admin/pkg/types"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	store *store.Store
	auth  *auth.Auth
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(st *store.Store, authService *auth.Auth) *AuthHandler {
	return &AuthHandler{
		store: st,
		auth:  authService,
	}
}

// Login handles admin login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c echo.Context) error {
	var req types.LoginRequest
	if err := c.Bind(&req); err != nil {
		return ErrorBadRequest(c, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return ErrorBadRequest(c, err.Error())
	}

	admin, err := h.store.Admins.GetByEmail(c.Request().Context(), req.Email)
	if err != nil {
		if err == store.ErrNotFound {
			return ErrorUnauthorized(c, "invalid email or password")
		}
		return ErrorInternal(c, "failed to authenticate")
	}

	if !admin.Active {
		return ErrorForbidden(c, "account is disabled")
	}

	if !auth.CheckPassword(req.Password, admin.PasswordHash) {
		return ErrorUnauthorized(c, "invalid email or password")
	}

	accessToken, err := h.auth.GenerateAccessToken(admin)
	if err != nil {
		return ErrorInternal(c, "failed to generate access token")
	}

	refreshToken, err := h.auth.GenerateRefreshToken()
	if err != nil {
		return ErrorInternal(c, "failed to generate refresh token")
	}

	record := &types.RefreshToken{
		ID:        types.GenerateID(),
		AdminID:   admin.ID,
		TokenHash: auth.HashRefreshToken(refreshToken),
		ExpiresAt: time.Now().Add(h.auth.RefreshTTL()),
		CreatedAt: time.Now(),
	}

	if err := h.store.RefreshTokens.Create(c.Request().Context(), record); err != nil {
		return ErrorInternal(c, "failed to create session")
	}

	c.SetCookie(h.refreshCookie(c, refreshToken, int(h.auth.RefreshTTL().Seconds())))

	return c.JSON(http.StatusOK, &types.LoginResponse{
		Admin:       admin.ToResponse(),
		AccessToken: accessToken,
		ExpiresIn:   int(h.auth.AccessTTL().Seconds()),
	})
}

// Logout handles admin logout
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c echo.Context) error {
	cookie, err := c.Cookie("refresh_token")
	if err == nil && cookie.Value != "" {
		_ = h.store.RefreshTokens.Revoke(c.Request().Context(), auth.HashRefreshToken(cookie.Value))
	}

	// Clear cookie
	c.SetCookie(h.refreshCookie(c, "", -1))

	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// Refresh handles access token refresh
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie("refresh_token")
	if err != nil {
		return ErrorUnauthorized(c, "refresh token not found")
	}

	record, err := h.store.RefreshTokens.GetByTokenHash(c.Request().Context(), auth.HashRefreshToken(cookie.Value))
	if err != nil {
		return ErrorUnauthorized(c, "invalid or expired refresh token")
	}

	admin, err := h.store.Admins.GetByID(c.Request().Context(), record.AdminID)
	if err != nil {
		return ErrorUnauthorized(c, "admin not found")
	}

	if !admin.Active {
		return ErrorForbidden(c, "account is disabled")
	}

	accessToken, err := h.auth.GenerateAccessToken(admin)
	if err != nil {
		return ErrorInternal(c, "failed to generate access token")
	}

	return c.JSON(http.StatusOK, &types.LoginResponse{
		Admin:       admin.ToResponse(),
		AccessToken: accessToken,
		ExpiresIn:   int(h.auth.AccessTTL().Seconds()),
	})
}

// GetMe returns the authenticated admin's profile
// GET /api/v1/auth/me
func (h *AuthHandler) GetMe(c echo.Context) error {
	claims := auth.ClaimsFrom(c)
	if claims == nil {
		return ErrorUnauthorized(c, "authentication required")
	}

	admin, err := h.store.Admins.GetByID(c.Request().Context(), claims.AdminID)
	if err != nil {
		if err == store.ErrNotFound {
			return ErrorNotFound(c, "admin not found")
		}
		return ErrorInternal(c, "failed to get admin")
	}

	return c.JSON(http.StatusOK, admin.ToResponse())
}

func (h *AuthHandler) refreshCookie(c echo.Context, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     "refresh_token",
		Value:    value,
		Path:     "/api/v1/auth",
		HttpOnly: true,
		Secure:   c.Request().TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   maxAge,
	}
}
