package domain

import (
	"time"
)

// User is an account that can authenticate against the API.
type User struct {
	ID         string `json:"id"`
	FacilityID string `json:"facilityId"`

	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	PasswordHash string `json:"-"`
	Role         string `json:"role"` // "admin", "warden", "guard", "clerk"

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// User role constants.
const (
	RoleAdmin  = "admin"
	RoleWarden = "warden"
	RoleGuard  = "guard"
	RoleClerk  = "clerk"
)

// ValidRole reports whether role is a recognized account role.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleWarden, RoleGuard, RoleClerk:
		return true
	}
	return false
}
