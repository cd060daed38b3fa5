// Package scoring computes a prisoner's behavior score from recorded incidents.
package scoring

import (
	"math"
	"time"

	"github.com/opencorrections/warden/internal/domain"
)

// Score bounds. BaseScore is the neutral midpoint returned for an empty
// incident history.
const (
	BaseScore = 50
	MinScore  = 0
	MaxScore  = 100
)

// incidentWeights maps (behaviorType, severity) to a signed contribution.
// Neutral incidents carry no weight at any severity.
var incidentWeights = map[domain.BehaviorType]map[domain.Severity]float64{
	domain.BehaviorPositive: {
		domain.SeverityLow:      2,
		domain.SeverityMedium:   4,
		domain.SeverityHigh:     6,
		domain.SeverityCritical: 8,
	},
	domain.BehaviorNegative: {
		domain.SeverityLow:      -2,
		domain.SeverityMedium:   -4,
		domain.SeverityHigh:     -6,
		domain.SeverityCritical: -8,
	},
	domain.BehaviorNeutral: {
		domain.SeverityLow:      0,
		domain.SeverityMedium:   0,
		domain.SeverityHigh:     0,
		domain.SeverityCritical: 0,
	},
}

// IncidentWeight returns the signed contribution for a single incident.
// Unknown (type, severity) combinations contribute 0 rather than erroring.
func IncidentWeight(t domain.BehaviorType, s domain.Severity) float64 {
	bySeverity, ok := incidentWeights[t]
	if !ok {
		return 0
	}
	return bySeverity[s]
}

// ComputeScore converts a newest-first sequence of incidents into a bounded
// behavior score. Each incident's weight is scaled by a recency factor of
// 1 - (i/n)*0.5 for zero-based position i of n, so the newest incident
// counts at full weight and the oldest approaches half weight. The result
// depends only on relative order within the slice, not on incident dates.
func ComputeScore(incidents []*domain.BehaviorIncident) int {
	if len(incidents) == 0 {
		return BaseScore
	}

	n := float64(len(incidents))
	total := 0.0
	for i, incident := range incidents {
		recency := 1 - (float64(i)/n)*0.5
		total += IncidentWeight(incident.Type, incident.Severity) * recency
	}

	score := int(math.Round(BaseScore + total))
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// Summarize computes the full behavior summary for a prisoner from a
// newest-first incident window. Callers are responsible for limiting the
// window (most recent 50 incidents by convention).
func Summarize(prisonerID string, incidents []*domain.BehaviorIncident) *domain.BehaviorSummary {
	summary := &domain.BehaviorSummary{
		PrisonerID:     prisonerID,
		Score:          ComputeScore(incidents),
		TotalIncidents: len(incidents),
		ComputedAt:     time.Now().UTC(),
	}
	summary.Label = domain.ScoreLabel(summary.Score)

	for _, incident := range incidents {
		switch incident.Type {
		case domain.BehaviorPositive:
			summary.PositiveCount++
		case domain.BehaviorNegative:
			summary.NegativeCount++
		case domain.BehaviorNeutral:
			summary.NeutralCount++
		}
	}
	return summary
}
