// Package worker provides async summary recomputation for the Pro tier.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/opencorrections/warden/internal/alert"
	"github.com/opencorrections/warden/internal/domain"
	"github.com/opencorrections/warden/internal/rating"
	"github.com/opencorrections/warden/internal/scoring"
)

// Worker recomputes prisoner summaries asynchronously from the EventBus.
// Each recorded incident or rating triggers a recompute of the affected
// prisoner's behavior score and rating trend, followed by alert rule
// evaluation.
type Worker struct {
	bus     domain.EventBus
	repo    domain.Repository
	cache   domain.Cache
	engine  *alert.Engine
	windows domain.WindowConfig

	subscriptions []domain.Subscription
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
}

// Config holds worker configuration.
type Config struct {
	// FacilityIDs is the list of facilities to process
	FacilityIDs []string

	// WorkerCount is the number of concurrent workers per facility
	WorkerCount int
}

// NewWorker creates a new async worker.
func NewWorker(bus domain.EventBus, repo domain.Repository, cache domain.Cache, engine *alert.Engine, windows domain.WindowConfig) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:     bus,
		repo:    repo,
		cache:   cache,
		engine:  engine,
		windows: windows,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins processing messages for the given facilities.
func (w *Worker) Start(cfg Config) error {
	if len(cfg.FacilityIDs) == 0 {
		return w.startGlobalWorker()
	}

	for _, facilityID := range cfg.FacilityIDs {
		if err := w.startFacilityWorker(facilityID); err != nil {
			slog.Error("failed to start worker for facility",
				"facility_id", facilityID,
				"error", err,
			)
			continue
		}
	}

	slog.Info("workers started",
		"facility_count", len(cfg.FacilityIDs),
	)

	return nil
}

// startGlobalWorker starts a worker that processes all facilities (for testing/dev).
func (w *Worker) startGlobalWorker() error {
	// Subscribe using a special "global" facility ID
	// In production, you'd want to subscribe with wildcards or JetStream
	for _, topic := range []string{domain.TopicIncidentRecorded, domain.TopicRatingRecorded} {
		sub, err := w.bus.Subscribe(w.ctx, "_global", topic, w.handleMessage)
		if err != nil {
			return err
		}
		w.subscriptions = append(w.subscriptions, sub)
	}

	slog.Info("global worker started")
	return nil
}

// startFacilityWorker starts workers for a specific facility.
func (w *Worker) startFacilityWorker(facilityID string) error {
	for _, topic := range []string{domain.TopicIncidentRecorded, domain.TopicRatingRecorded} {
		sub, err := w.bus.Subscribe(w.ctx, facilityID, topic, func(ctx context.Context, msg *domain.Message) error {
			return w.processRecord(ctx, facilityID, msg)
		})
		if err != nil {
			return err
		}
		w.subscriptions = append(w.subscriptions, sub)
	}

	slog.Info("facility worker started",
		"facility_id", facilityID,
	)

	return nil
}

// handleMessage handles messages from global subscription.
func (w *Worker) handleMessage(ctx context.Context, msg *domain.Message) error {
	return w.processRecord(ctx, msg.FacilityID, msg)
}

// RecordMessage is the message payload for incident and rating events.
type RecordMessage struct {
	PrisonerID string `json:"prisonerId"`
	FacilityID string `json:"facilityId"`
	RecordID   string `json:"recordId"`
}

// processRecord recomputes summaries for the affected prisoner and
// evaluates alert rules against the fresh values.
func (w *Worker) processRecord(ctx context.Context, facilityID string, msg *domain.Message) error {
	start := time.Now()

	var record RecordMessage
	if err := json.Unmarshal(msg.Payload, &record); err != nil {
		slog.Error("failed to parse record message",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}

	// Use message facility if provided
	if record.FacilityID != "" {
		facilityID = record.FacilityID
	}

	slog.Debug("recomputing summaries",
		"prisoner_id", record.PrisonerID,
		"facility_id", facilityID,
		"topic", msg.Topic,
	)

	// 1. Recompute behavior score over the incident window
	incidents, err := w.repo.ListIncidents(ctx, facilityID, record.PrisonerID, w.windows.IncidentWindow)
	if err != nil {
		slog.Error("failed to load incidents",
			"prisoner_id", record.PrisonerID,
			"error", err,
		)
		return err
	}
	behaviorSummary := scoring.Summarize(record.PrisonerID, incidents)

	// 2. Recompute rating trend over the rating window
	ratings, err := w.repo.ListRatings(ctx, facilityID, record.PrisonerID, w.windows.RatingWindow)
	if err != nil {
		slog.Error("failed to load ratings",
			"prisoner_id", record.PrisonerID,
			"error", err,
		)
		return err
	}
	ratingSummary := rating.ComputeSummary(record.PrisonerID, ratings)

	// 3. Refresh the cached summary
	if w.cache != nil {
		ttl := time.Duration(w.windows.ReferenceTTL) * time.Second
		if err := w.cache.SetSummary(ctx, facilityID, record.PrisonerID, behaviorSummary, ttl); err != nil {
			slog.Warn("failed to cache summary",
				"prisoner_id", record.PrisonerID,
				"error", err,
			)
		}
	}

	// 4. Publish the updated summary
	summaryPayload, _ := json.Marshal(behaviorSummary)
	if err := w.bus.Publish(ctx, facilityID, domain.TopicSummaryUpdated, summaryPayload); err != nil {
		slog.Error("failed to publish summary update",
			"prisoner_id", record.PrisonerID,
			"error", err,
		)
	}

	// 5. Evaluate alert rules and publish any flags
	if w.engine != nil && w.engine.RulesCount() > 0 {
		results, err := w.engine.EvaluateAll(ctx, &alert.EvaluateInput{
			FacilityID:     facilityID,
			PrisonerID:     record.PrisonerID,
			Behavior:       behaviorSummary,
			Rating:         ratingSummary,
			ActivityWindow: 3600,
		})
		if err != nil {
			slog.Error("alert evaluation failed",
				"prisoner_id", record.PrisonerID,
				"error", err,
			)
		}

		for _, result := range results {
			if !result.Flagged {
				continue
			}
			alertEvent := domain.Alert{
				ID:         uuid.New().String(),
				FacilityID: facilityID,
				PrisonerID: record.PrisonerID,
				RuleID:     result.RuleID,
				RuleName:   result.RuleName,
				Severity:   result.Severity,
				Score:      behaviorSummary.Score,
				Trend:      ratingSummary.Trend,
				Reason:     result.Reason,
				CreatedAt:  time.Now().UTC(),
			}
			alertPayload, _ := json.Marshal(alertEvent)
			if err := w.bus.Publish(ctx, facilityID, domain.TopicAlert, alertPayload); err != nil {
				slog.Error("failed to publish alert",
					"prisoner_id", record.PrisonerID,
					"rule_id", result.RuleID,
					"error", err,
				)
			}
		}
	}

	slog.Info("summaries recomputed",
		"prisoner_id", record.PrisonerID,
		"facility_id", facilityID,
		"score", behaviorSummary.Score,
		"trend", ratingSummary.Trend,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}

// Stop gracefully stops all workers.
func (w *Worker) Stop() error {
	w.cancel()

	// Unsubscribe all
	for _, sub := range w.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("failed to unsubscribe",
				"topic", sub.Topic(),
				"error", err,
			)
		}
	}
	w.subscriptions = nil

	w.wg.Wait()

	slog.Info("workers stopped")
	return nil
}

// Stats returns worker statistics.
type Stats struct {
	SubscriptionCount int      `json:"subscriptionCount"`
	Topics            []string `json:"topics"`
}

// GetStats returns current worker statistics.
func (w *Worker) GetStats() Stats {
	topics := make([]string, len(w.subscriptions))
	for i, sub := range w.subscriptions {
		topics[i] = sub.Topic()
	}
	return Stats{
		SubscriptionCount: len(w.subscriptions),
		Topics:            topics,
	}
}
