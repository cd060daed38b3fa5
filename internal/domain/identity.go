package domain

import (
	"time"
)

// Gender values accepted for identity records.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// ValidGender reports whether g is a recognized gender value.
func ValidGender(g Gender) bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// IdentityRecord is the identity data compared during government verification.
// Two instances are compared field by field: the record submitted by the
// facility and the reference record held by the external registry.
type IdentityRecord struct {
	Name        string    `json:"name"`
	DateOfBirth time.Time `json:"dateOfBirth"`
	Gender      Gender    `json:"gender"`
	Address     string    `json:"address,omitempty"`
}

// DiscrepancySeverity grades a field-level mismatch.
type DiscrepancySeverity string

const (
	DiscrepancyMinor    DiscrepancySeverity = "minor"
	DiscrepancyMajor    DiscrepancySeverity = "major"
	DiscrepancyCritical DiscrepancySeverity = "critical"
)

// Discrepancy is a field-level mismatch between a submitted identity record
// and the government reference record.
type Discrepancy struct {
	Field           string              `json:"field"`
	ProvidedValue   string              `json:"providedValue"`
	GovernmentValue string              `json:"governmentValue"`
	Severity        DiscrepancySeverity `json:"severity"`
	Notes           string              `json:"notes,omitempty"`
}

// ValidationStatus is the outcome class of a verification attempt.
// Callers branch on the status, never on errors from the engine.
type ValidationStatus string

const (
	ValidationVerified      ValidationStatus = "verified"
	ValidationDiscrepancies ValidationStatus = "discrepancies_found"
	ValidationNotFound      ValidationStatus = "not_found"
	ValidationError         ValidationStatus = "error"
)

// ValidationResult is the complete outcome of one identity verification.
type ValidationResult struct {
	ID            string           `json:"id"`
	FacilityID    string           `json:"facilityId"`
	PrisonerID    string           `json:"prisonerId,omitempty"`
	GovernmentID  string           `json:"governmentId"`
	Status        ValidationStatus `json:"validationStatus"`
	Discrepancies []Discrepancy    `json:"discrepancies"`
	CheckedAt     time.Time        `json:"checkedAt"`
}
