package domain

import (
	"time"
)

// StaffMember is an employee profile within a facility.
type StaffMember struct {
	ID         string `json:"id"`
	FacilityID string `json:"facilityId"`

	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	BadgeNumber string `json:"badgeNumber"`
	Role        string `json:"role"` // "warden", "guard", "medical", "clerk"
	Department  string `json:"department,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`

	Active   bool      `json:"active"`
	HireDate time.Time `json:"hireDate"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Visitor is a registered visitor profile tied to a prisoner.
type Visitor struct {
	ID         string `json:"id"`
	FacilityID string `json:"facilityId"`
	PrisonerID string `json:"prisonerId"`

	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Relationship string `json:"relationship,omitempty"`
	GovernmentID string `json:"governmentId,omitempty"`
	Phone        string `json:"phone,omitempty"`

	Approved bool `json:"approved"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
