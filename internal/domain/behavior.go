package domain

import (
	"time"
)

// BehaviorType classifies an incident as positive, negative, or neutral.
type BehaviorType string

const (
	BehaviorPositive BehaviorType = "positive"
	BehaviorNegative BehaviorType = "negative"
	BehaviorNeutral  BehaviorType = "neutral"
)

// Severity grades how serious an incident was.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// BehaviorIncident is a single recorded behavior event for a prisoner.
type BehaviorIncident struct {
	ID         string `json:"id"`
	FacilityID string `json:"facilityId"`
	PrisonerID string `json:"prisonerId"`

	Type     BehaviorType `json:"behaviorType"`
	Severity Severity     `json:"severity"`

	Description string `json:"description,omitempty"`
	ReportedBy  string `json:"reportedBy,omitempty"`

	// OccurredAt is used only for ordering incidents, never for arithmetic.
	OccurredAt time.Time `json:"occurredAt"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ValidBehaviorType reports whether t is a recognized behavior type.
func ValidBehaviorType(t BehaviorType) bool {
	switch t {
	case BehaviorPositive, BehaviorNegative, BehaviorNeutral:
		return true
	}
	return false
}

// ValidSeverity reports whether s is a recognized severity.
func ValidSeverity(s Severity) bool {
	switch s {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
		return true
	}
	return false
}

// BehaviorSummary is the computed behavior standing for a prisoner.
type BehaviorSummary struct {
	PrisonerID     string    `json:"prisonerId"`
	Score          int       `json:"score"` // bounded [0,100]
	Label          string    `json:"label"`
	TotalIncidents int       `json:"totalIncidents"`
	PositiveCount  int       `json:"positiveCount"`
	NegativeCount  int       `json:"negativeCount"`
	NeutralCount   int       `json:"neutralCount"`
	ComputedAt     time.Time `json:"computedAt"`
}

// Behavior score labels, from best to worst standing.
const (
	LabelExemplary = "exemplary"
	LabelGood      = "good"
	LabelFair      = "fair"
	LabelPoor      = "poor"
	LabelCritical  = "critical"
)

// ScoreLabel maps a behavior score to its categorical label.
// Display concerns (colors, icons) belong to clients; this is the only
// score-to-category mapping the backend owns.
func ScoreLabel(score int) string {
	switch {
	case score >= 80:
		return LabelExemplary
	case score >= 65:
		return LabelGood
	case score >= 45:
		return LabelFair
	case score >= 25:
		return LabelPoor
	default:
		return LabelCritical
	}
}
