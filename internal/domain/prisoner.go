// Package domain defines the core interfaces and types for Warden.
package domain

import (
	"time"
)

// Prisoner represents an inmate record held by a facility.
type Prisoner struct {
	// Core identifiers
	ID         string `json:"id"`
	FacilityID string `json:"facilityId"`

	// InmateNumber is the facility-assigned booking number.
	InmateNumber string `json:"inmateNumber"`

	// Identity
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	DateOfBirth  time.Time `json:"dateOfBirth"`
	Gender       Gender    `json:"gender"`
	GovernmentID string    `json:"governmentId,omitempty"`
	Address      string    `json:"address,omitempty"`

	// Custody details
	CellBlock     string     `json:"cellBlock,omitempty"`
	Status        string     `json:"status"` // "active", "released", "transferred"
	AdmissionDate time.Time  `json:"admissionDate"`
	ReleaseDate   *time.Time `json:"releaseDate,omitempty"`

	// Temporal
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Optional metadata
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Prisoner status constants.
const (
	PrisonerStatusActive      = "active"
	PrisonerStatusReleased    = "released"
	PrisonerStatusTransferred = "transferred"
)

// PrisonerRequest is the API request payload for creating a prisoner record.
type PrisonerRequest struct {
	InmateNumber  string                 `json:"inmateNumber"`
	FirstName     string                 `json:"firstName"`
	LastName      string                 `json:"lastName"`
	DateOfBirth   time.Time              `json:"dateOfBirth"`
	Gender        Gender                 `json:"gender"`
	GovernmentID  string                 `json:"governmentId,omitempty"`
	Address       string                 `json:"address,omitempty"`
	CellBlock     string                 `json:"cellBlock,omitempty"`
	AdmissionDate time.Time              `json:"admissionDate"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// ToPrisoner converts a request to a Prisoner domain object.
func (r *PrisonerRequest) ToPrisoner() *Prisoner {
	now := time.Now().UTC()
	admission := r.AdmissionDate
	if admission.IsZero() {
		admission = now
	}
	return &Prisoner{
		InmateNumber:  r.InmateNumber,
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		DateOfBirth:   r.DateOfBirth,
		Gender:        r.Gender,
		GovernmentID:  r.GovernmentID,
		Address:       r.Address,
		CellBlock:     r.CellBlock,
		Status:        PrisonerStatusActive,
		AdmissionDate: admission,
		CreatedAt:     now,
		UpdatedAt:     now,
		Metadata:      r.Metadata,
	}
}

// FullName returns the prisoner's display name.
func (p *Prisoner) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	return p.FirstName + " " + p.LastName
}
