// Package alert provides the CEL-based alert rule evaluation engine.
// Alert rules flag prisoners whose computed behavior and rating summaries
// cross facility-configured thresholds.
package alert

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/opencorrections/warden/internal/domain"
)

// Engine is the CEL-based alert rule evaluation engine.
type Engine struct {
	mu             sync.RWMutex
	env            *cel.Env
	compiledRules  map[string]*CompiledRule
	activityGetter ActivityGetter
	maxWorkers     int
}

// CompiledRule holds a pre-compiled CEL program.
type CompiledRule struct {
	Config  *domain.AlertRule
	Program cel.Program
}

// ActivityGetter returns the number of incidents recorded for a prisoner
// within a time window, for rate-style rules.
type ActivityGetter func(ctx context.Context, facilityID, prisonerID string, windowSecs int) (int64, error)

// NewEngine creates a new alert rule evaluation engine.
func NewEngine(activityGetter ActivityGetter, maxWorkers int) (*Engine, error) {
	if maxWorkers <= 0 {
		maxWorkers = 10
	}

	// CEL environment with prisoner summary variables
	env, err := cel.NewEnv(
		cel.Variable("score", cel.IntType),
		cel.Variable("label", cel.StringType),
		cel.Variable("trend", cel.StringType),
		cel.Variable("trend_percentage", cel.DoubleType),
		cel.Variable("average_overall", cel.DoubleType),
		cel.Variable("incident_count", cel.IntType),
		cel.Variable("negative_count", cel.IntType),
		cel.Variable("recent_incidents", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Engine{
		env:            env,
		compiledRules:  make(map[string]*CompiledRule),
		activityGetter: activityGetter,
		maxWorkers:     maxWorkers,
	}, nil
}

// ValidateRule compiles and validates a rule without mutating loaded engine rules.
func (e *Engine) ValidateRule(cfg *domain.AlertRule) error {
	if cfg == nil {
		return fmt.Errorf("alert rule config is required")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	_, err := e.compileRule(cfg)
	return err
}

// LoadRule compiles and loads a rule into the engine.
func (e *Engine) LoadRule(cfg *domain.AlertRule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	compiled, err := e.compileRule(cfg)
	if err != nil {
		return err
	}

	e.compiledRules[cfg.ID] = compiled

	return nil
}

// LoadRules compiles and loads multiple rules.
func (e *Engine) LoadRules(configs []*domain.AlertRule) error {
	for _, cfg := range configs {
		if cfg.Enabled {
			if err := e.LoadRule(cfg); err != nil {
				return err
			}
		}
	}
	return nil
}

// EvaluateInput holds the prisoner summary data for alert rule evaluation.
type EvaluateInput struct {
	FacilityID     string
	PrisonerID     string
	Behavior       *domain.BehaviorSummary
	Rating         *domain.RatingSummary
	ActivityWindow int // seconds; 0 skips the recent_incidents lookup
}

// EvaluateAll evaluates all loaded rules in parallel against a summary.
func (e *Engine) EvaluateAll(ctx context.Context, input *EvaluateInput) ([]domain.AlertResult, error) {
	e.mu.RLock()
	rules := make([]*CompiledRule, 0, len(e.compiledRules))
	for _, rule := range e.compiledRules {
		rules = append(rules, rule)
	}
	e.mu.RUnlock()

	if len(rules) == 0 {
		return nil, nil
	}

	// Fetch recent incident activity if a getter is available
	var recentIncidents int64
	if e.activityGetter != nil && input.ActivityWindow > 0 {
		count, err := e.activityGetter(ctx, input.FacilityID, input.PrisonerID, input.ActivityWindow)
		if err == nil {
			recentIncidents = count
		}
	}

	activation := map[string]any{
		"score":            0,
		"label":            "",
		"trend":            string(domain.TrendNeutral),
		"trend_percentage": 0.0,
		"average_overall":  0.0,
		"incident_count":   0,
		"negative_count":   0,
		"recent_incidents": recentIncidents,
	}
	if input.Behavior != nil {
		activation["score"] = input.Behavior.Score
		activation["label"] = input.Behavior.Label
		activation["incident_count"] = input.Behavior.TotalIncidents
		activation["negative_count"] = input.Behavior.NegativeCount
	}
	if input.Rating != nil {
		activation["trend"] = string(input.Rating.Trend)
		activation["trend_percentage"] = input.Rating.TrendPercentage
		activation["average_overall"] = input.Rating.AverageOverall
	}

	// Parallel evaluation using worker pool pattern
	results := make([]domain.AlertResult, len(rules))
	var wg sync.WaitGroup

	// Limit concurrency with semaphore
	sem := make(chan struct{}, e.maxWorkers)

	for i, rule := range rules {
		wg.Add(1)
		go func(idx int, r *CompiledRule) {
			defer wg.Done()

			sem <- struct{}{}        // Acquire
			defer func() { <-sem }() // Release

			results[idx] = e.evaluateRule(r, activation)
		}(i, rule)
	}

	wg.Wait()

	return results, nil
}

// evaluateRule evaluates a single rule and returns the result.
func (e *Engine) evaluateRule(rule *CompiledRule, activation map[string]any) domain.AlertResult {
	start := time.Now()

	result := domain.AlertResult{
		RuleID:   rule.Config.ID,
		RuleName: rule.Config.Name,
		Severity: rule.Config.Severity,
	}

	out, _, err := rule.Program.Eval(activation)
	if err != nil {
		result.Reason = fmt.Sprintf("evaluation error: %v", err)
		result.ProcessMs = time.Since(start).Milliseconds()
		return result
	}

	result.Flagged = toBool(out)
	if result.Flagged {
		result.Reason = rule.Config.Description
		if result.Reason == "" {
			result.Reason = rule.Config.Name
		}
	}
	result.ProcessMs = time.Since(start).Milliseconds()

	return result
}

// toBool converts a CEL value to a flagged decision.
func toBool(val ref.Val) bool {
	if b, ok := val.(types.Bool); ok {
		return bool(b)
	}
	return false
}

// RulesCount returns the number of loaded rules.
func (e *Engine) RulesCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.compiledRules)
}

// ReloadRules clears all existing rules and loads new ones.
// This enables hot-reloading of rules from the database.
func (e *Engine) ReloadRules(configs []*domain.AlertRule) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	newRules := make(map[string]*CompiledRule)

	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}

		compiled, err := e.compileRule(cfg)
		if err != nil {
			return err
		}
		newRules[cfg.ID] = compiled
	}

	e.compiledRules = newRules

	return nil
}

// GetLoadedRules returns the currently loaded rule configurations.
func (e *Engine) GetLoadedRules() []*domain.AlertRule {
	e.mu.RLock()
	defer e.mu.RUnlock()

	rules := make([]*domain.AlertRule, 0, len(e.compiledRules))
	for _, compiled := range e.compiledRules {
		rules = append(rules, compiled.Config)
	}
	return rules
}

// Close cleans up the engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compiledRules = make(map[string]*CompiledRule)
	return nil
}

func (e *Engine) compileRule(cfg *domain.AlertRule) (*CompiledRule, error) {
	ast, issues := e.env.Compile(cfg.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile alert rule %s: %w", cfg.ID, issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("alert rule %s: expression must return bool, got %s", cfg.ID, ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for alert rule %s: %w", cfg.ID, err)
	}

	return &CompiledRule{
		Config:  cfg,
		Program: program,
	}, nil
}
