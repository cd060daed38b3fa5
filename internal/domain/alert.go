package domain

import "time"

// AlertRule defines a configurable flagging rule evaluated against a
// prisoner's computed behavior and rating summaries.
type AlertRule struct {
	ID          string `json:"id"`
	FacilityID  string `json:"facilityId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Version     string `json:"version"`

	// CEL expression over summary variables; must evaluate to bool.
	// Available variables: score, label, trend, trend_percentage,
	// average_overall, incident_count, negative_count, recent_incidents.
	Expression string `json:"expression"`

	// Severity attached to alerts produced by this rule.
	Severity Severity `json:"severity"`

	// Whether rule is active
	Enabled bool `json:"enabled"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// AlertResult is the output of evaluating one alert rule.
type AlertResult struct {
	RuleID    string   `json:"ruleId"`
	RuleName  string   `json:"ruleName"`
	Severity  Severity `json:"severity"`
	Flagged   bool     `json:"flagged"`
	Reason    string   `json:"reason,omitempty"`
	ProcessMs int64    `json:"processMs,omitempty"`
}

// Alert is the event payload published when a rule flags a prisoner.
type Alert struct {
	ID         string    `json:"id"`
	FacilityID string    `json:"facilityId"`
	PrisonerID string    `json:"prisonerId"`
	RuleID     string    `json:"ruleId"`
	RuleName   string    `json:"ruleName"`
	Severity   Severity  `json:"severity"`
	Score      int       `json:"score"`
	Trend      Trend     `json:"trend"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
