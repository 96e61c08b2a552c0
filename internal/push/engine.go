package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/geo"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/observability"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/risk"
)

const defaultBatchSize = 200

// Engine fans one event out to many subscriptions. It holds no state
// between calls; construct one per process with injected collaborators.
type Engine struct {
	subs      SubscriptionStore
	transport Transport
	metrics   *observability.Metrics
	logger    *slog.Logger
	batchSize int
}

// NewEngine creates a fan-out engine. metrics may be nil; a batchSize of
// zero or less falls back to the default.
func NewEngine(subs SubscriptionStore, transport Transport, metrics *observability.Metrics, logger *slog.Logger, batchSize int) *Engine {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Engine{
		subs:      subs,
		transport: transport,
		metrics:   metrics,
		logger:    logger,
		batchSize: batchSize,
	}
}

// DispatchForIncident sends a proximity alert to every active located
// subscription whose geofence contains the incident, excluding the
// reporter's own subscriptions. Returns the number of successful
// deliveries. Per-subscription failures never abort the batch; only a
// store outage is a hard error.
func (e *Engine) DispatchForIncident(ctx context.Context, incident risk.Incident, excludeOwnerID string) (int, error) {
	payload := incidentPayload(incident)

	sent := 0
	var afterID int64
	for {
		page, err := e.subs.ListActiveWithLocation(ctx, afterID, e.batchSize)
		if err != nil {
			return sent, fmt.Errorf("list located subscriptions: %w", err)
		}
		if len(page) == 0 {
			break
		}
		e.metrics.Batch()

		for _, sub := range page {
			if !e.matches(sub, incident, excludeOwnerID) {
				continue
			}
			if e.deliver(ctx, "incident", sub, payload) {
				sent++
			}
		}

		afterID = page[len(page)-1].ID
		if len(page) < e.batchSize {
			break
		}
	}

	e.logger.Info("Incident fan-out complete",
		"incident_id", incident.ID, "sent", sent)
	return sent, nil
}

// Broadcast sends a platform-wide announcement to every active
// subscription, located or not, paging the subscriber table in fixed-size
// batches to bound memory.
func (e *Engine) Broadcast(ctx context.Context, payload Payload) (int, error) {
	sent := 0
	var afterID int64
	for {
		page, err := e.subs.ListActive(ctx, afterID, e.batchSize)
		if err != nil {
			return sent, fmt.Errorf("list subscriptions: %w", err)
		}
		if len(page) == 0 {
			break
		}
		e.metrics.Batch()

		for _, sub := range page {
			if e.deliver(ctx, "broadcast", sub, payload) {
				sent++
			}
		}

		afterID = page[len(page)-1].ID
		if len(page) < e.batchSize {
			break
		}
	}

	e.logger.Info("Broadcast fan-out complete", "sent", sent)
	return sent, nil
}

// matches evaluates geofence membership: a located subscription matches
// when the incident lies within its radius (boundary inclusive), it does
// not belong to the excluded owner, and its category filter, if any,
// matches the incident category.
func (e *Engine) matches(sub Subscription, incident risk.Incident, excludeOwnerID string) bool {
	if !sub.HasLocation() {
		return false
	}
	if excludeOwnerID != "" && sub.OwnerUserID == excludeOwnerID {
		return false
	}
	if sub.CategoryFilter != "" && sub.CategoryFilter != string(incident.Category) {
		return false
	}
	return geo.WithinRadius(*sub.Latitude, *sub.Longitude,
		incident.Latitude, incident.Longitude, sub.Radius())
}

// deliver attempts one send and applies the failure policy: prune on gone,
// log and drop on anything else. Returns true on success.
func (e *Engine) deliver(ctx context.Context, kind string, sub Subscription, payload Payload) bool {
	err := e.transport.Send(ctx, sub, payload)
	if err == nil {
		e.metrics.Dispatch(kind, observability.OutcomeSent)
		return true
	}

	if errors.Is(err, ErrEndpointGone) {
		// Self-healing: the endpoint no longer exists, drop the row.
		// Deleting an already-deleted endpoint is a no-op, so concurrent
		// dispatch calls stay safe.
		if delErr := e.subs.Delete(ctx, sub.Endpoint); delErr != nil {
			e.logger.Warn("Failed to prune gone subscription",
				"endpoint", sub.Endpoint, "error", delErr)
		} else {
			e.logger.Info("Pruned gone subscription", "endpoint", sub.Endpoint)
		}
		e.metrics.Dispatch(kind, observability.OutcomePruned)
		return false
	}

	e.logger.Warn("Push delivery failed", "endpoint", sub.Endpoint, "error", err)
	e.metrics.Dispatch(kind, observability.OutcomeTransient)
	return false
}

// incidentPayload builds the proximity-alert content for an incident.
func incidentPayload(incident risk.Incident) Payload {
	title := "Incident signalé près de chez vous"
	if incident.IsEmergency {
		title = "Alerte urgence près de chez vous"
	}

	body := categoryLabel(incident.Category)
	if incident.LocationLabel != "" {
		body = fmt.Sprintf("%s — %s", body, incident.LocationLabel)
	}

	return Payload{
		Title:      title,
		Body:       body,
		IncidentID: incident.ID,
		URL:        fmt.Sprintf("/reports/%d", incident.ID),
	}
}

var categoryLabels = map[risk.Category]string{
	risk.CategoryEmergency:      "Urgence",
	risk.CategorySecurity:       "Incident de sécurité",
	risk.CategoryHealth:         "Incident sanitaire",
	risk.CategoryAccident:       "Accident",
	risk.CategoryInfrastructure: "Problème d'infrastructure",
	risk.CategoryTransport:      "Perturbation transport",
	risk.CategoryEnvironment:    "Nuisance environnementale",
}

func categoryLabel(c risk.Category) string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return "Incident signalé"
}
