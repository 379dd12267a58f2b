package api

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/symone-ai/symone-admin/internal/auth"
	"github.com/symone-ai/symone-admin/internal/store"
	"github.com/symone-ai/symone-admin/pkg/types"
)

// AdminHandler handles admin account management endpoints
type AdminHandler struct {
	store *store.Store
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(st *store.Store) *AdminHandler {
	return &AdminHandler{store: st}
}

// List returns all admin accounts
// GET /api/v1/admins
func (h *AdminHandler) List(c echo.Context) error {
	admins, err := h.store.Admins.List(c.Request().Context())
	if err != nil {
		return ErrorInternal(c, "failed to list admins")
	}

	responses := make([]*types.AdminResponse, len(admins))
	for i := range admins {
		responses[i] = admins[i].ToResponse()
	}

	return SuccessOK(c, responses)
}

// Create creates a new admin account
// POST /api/v1/admins
func (h *AdminHandler) Create(c echo.Context) error {
	var req types.CreateAdminRequest
	if err := c.Bind(&req); err != nil {
		return ErrorBadRequest(c, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return ErrorBadRequest(c, err.Error())
	}

	if !req.Role.IsValid() {
		return ErrorBadRequest(c, "invalid role")
	}

	if err := auth.ValidateEmail(req.Email); err != nil {
		return ErrorBadRequest(c, err.Error())
	}

	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		return ErrorBadRequest(c, err.Error())
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return ErrorInternal(c, "failed to hash password")
	}

	now := time.Now().UTC()
	admin := &types.AdminUser{
		ID:           types.GenerateAdminID(),
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         req.Role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.store.Admins.Create(c.Request().Context(), admin); err != nil {
		if err == store.ErrConflict {
			return ErrorConflict(c, "an admin with this email already exists")
		}
		return ErrorInternal(c, "failed to create admin")
	}

	return SuccessCreated(c, admin.ToResponse())
}

// UpdateRole changes an admin account's role
// PATCH /api/v1/admins/:id/role
func (h *AdminHandler) UpdateRole(c echo.Context) error {
	id := c.Param("id")

	var req types.UpdateAdminRoleRequest
	if err := c.Bind(&req); err != nil {
		return ErrorBadRequest(c, "invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return ErrorBadRequest(c, err.Error())
	}

	if !req.Role.IsValid() {
		return ErrorBadRequest(c, "invalid role")
	}

	admin, err := h.store.Admins.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == store.ErrNotFound {
			return ErrorNotFound(c, "admin not found")
		}
		return ErrorInternal(c, "failed to get admin")
	}

	// Demoting the last super admin would lock everyone out of account management
	if admin.Role == types.RoleSuperAdmin && req.Role != types.RoleSuperAdmin {
		count, err := h.store.Admins.CountActiveByRole(c.Request().Context(), types.RoleSuperAdmin)
		if err != nil {
			return ErrorInternal(c, "failed to count super admins")
		}
		if count <= 1 {
			return ErrorConflict(c, "cannot demote the last super admin")
		}
	}

	admin.Role = req.Role
	admin.UpdatedAt = time.Now().UTC()

	if err := h.store.Admins.Update(c.Request().Context(), admin); err != nil {
		return ErrorInternal(c, "failed to update admin")
	}

	return SuccessOK(c, admin.ToResponse())
}

// Delete deactivates and removes an admin account
// DELETE /api/v1/admins/:id
func (h *AdminHandler) Delete(c echo.Context) error {
	id := c.Param("id")

	claims := auth.ClaimsFrom(c)
	if claims != nil && claims.AdminID == id {
		return ErrorBadRequest(c, "cannot delete your own account")
	}

	admin, err := h.store.Admins.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == store.ErrNotFound {
			return ErrorNotFound(c, "admin not found")
		}
		return ErrorInternal(c, "failed to get admin")
	}

	if admin.Role == types.RoleSuperAdmin {
		count, err := h.store.Admins.CountActiveByRole(c.Request().Context(), types.RoleSuperAdmin)
		if err != nil {
			return ErrorInternal(c, "failed to count super admins")
		}
		if count <= 1 {
			return ErrorConflict(c, "cannot delete the last super admin")
		}
	}

	if err := h.store.RefreshTokens.RevokeAllForAdmin(c.Request().Context(), id); err != nil {
		return ErrorInternal(c, "failed to revoke sessions")
	}

	if err := h.store.Admins.Delete(c.Request().Context(), id); err != nil {
		return ErrorInternal(c, "failed to delete admin")
	}

	return SuccessNoContent(c)
}
