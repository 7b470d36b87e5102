package models

import "time"

type UserRole string

const (
	RoleUser       UserRole = "user"
	RoleAdmin      UserRole = "admin"
	RoleSuperAdmin UserRole = "super_admin"
)

// IsAdmin reports whether the role may use the admin console.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

type UserAccount struct {
	ID         string     `json:"id,omitempty"`
	AuthUserID string     `json:"auth_user_id"`
	Name       string     `json:"name"`
	Nickname   string     `json:"nickname"`
	Email      string     `json:"email"`
	Level      int        `json:"level"`
	Experience int        `json:"experience"`
	Points     int64      `json:"points"`
	CashPoints int64      `json:"cash_points"`
	Role       UserRole   `json:"role"`
	IsApproved bool       `json:"is_approved"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

type UserFilter struct {
	Role     UserRole `form:"role" validate:"omitempty,oneof=user admin super_admin"`
	Approved *bool    `form:"approved"`
	Search   string   `form:"search" validate:"max=100"`
}
