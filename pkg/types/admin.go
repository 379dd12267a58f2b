package types

import "time"

// AdminRole represents a dashboard operator's role
type AdminRole string

const (
	RoleSuperAdmin AdminRole = "super_admin"
	RoleAdmin      AdminRole = "admin"
	RoleSupport    AdminRole = "support"
	RoleAnalyst    AdminRole = "analyst"
)

// IsValid checks if the role is one of the known roles
func (r AdminRole) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleSupport, RoleAnalyst:
		return true
	default:
		return false
	}
}

// CanManageAdmins reports whether the role may create, demote, or deactivate
// other admin accounts
func (r AdminRole) CanManageAdmins() bool {
	switch r {
	case RoleSuperAdmin:
		return true
	case RoleAdmin, RoleSupport, RoleAnalyst:
		return false
	default:
		return false
	}
}

// AdminUser represents a dashboard operator account
type AdminUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	Role         AdminRole `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AdminResponse is the public admin representation (safe for API responses)
type AdminResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      AdminRole `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToResponse converts an AdminUser to an AdminResponse
func (a *AdminUser) ToResponse() *AdminResponse {
	return &AdminResponse{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Role:      a.Role,
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// CreateAdminRequest represents a request to create a new admin account
type CreateAdminRequest struct {
	Email    string    `json:"email" validate:"required,email"`
	Name     string    `json:"name" validate:"required,min=2,max=100"`
	Password string    `json:"password" validate:"required,min=8"`
	Role     AdminRole `json:"role" validate:"required"`
}

// UpdateAdminRoleRequest represents a role change request
type UpdateAdminRoleRequest struct {
	Role AdminRole `json:"role" validate:"required"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Admin       *AdminResponse `json:"admin"`
	AccessToken string         `json:"access_token"`
	ExpiresIn   int            `json:"expires_in"` // seconds
}

// RefreshToken represents a refresh token in the database
type RefreshToken struct {
	ID        string     `json:"id"`
	AdminID   string     `json:"admin_id"`
	TokenHash string     `json:"-"` // Never expose
	ExpiresAt time.Time  `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	RevokedAt *time.Time `json:"revoked_at,omitempty"`
}
