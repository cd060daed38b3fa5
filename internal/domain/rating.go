package domain

import (
	"time"
)

// RatingRecord is one periodic multi-category rating event for a prisoner.
// Category scores are integers in [1,5]; OverallRating is the mean of the
// four categories rounded to 2 decimal places, computed at the boundary
// before the record is accepted.
type RatingRecord struct {
	ID         string `json:"id"`
	FacilityID string `json:"facilityId"`
	PrisonerID string `json:"prisonerId"`

	Cooperation int `json:"cooperation"`
	Discipline  int `json:"discipline"`
	Respect     int `json:"respect"`
	WorkEthic   int `json:"workEthic"`

	OverallRating float64 `json:"overallRating"`

	RatedBy    string    `json:"ratedBy,omitempty"`
	RatingDate time.Time `json:"ratingDate"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Trend classifies the direction of a prisoner's recent ratings.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendNeutral   Trend = "neutral"
)

// CategoryAverages holds the per-category means over a rating window.
type CategoryAverages struct {
	Cooperation float64 `json:"cooperation"`
	Discipline  float64 `json:"discipline"`
	Respect     float64 `json:"respect"`
	WorkEthic   float64 `json:"workEthic"`
}

// RatingSummary is the computed rating standing for a prisoner over a window.
type RatingSummary struct {
	PrisonerID       string           `json:"prisonerId"`
	AverageOverall   float64          `json:"averageOverall"`
	CategoryAverages CategoryAverages `json:"categoryAverages"`
	Trend            Trend            `json:"trend"`
	TrendPercentage  float64          `json:"trendPercentage"`
	Highest          float64          `json:"highest"`
	Lowest           float64          `json:"lowest"`
	RatingCount      int              `json:"ratingCount"`
	ComputedAt       time.Time        `json:"computedAt"`
}

// ValidCategoryScore reports whether a category score is in the accepted range.
func ValidCategoryScore(score int) bool {
	return score >= 1 && score <= 5
}
