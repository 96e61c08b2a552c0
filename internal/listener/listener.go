// Package listener provides a Postgres LISTEN/NOTIFY consumer for real-time
// incident fan-out. It holds a dedicated pgx connection (not from the pool)
// listening on the `incident_created` channel.
//
// When the reporting flow inserts an incident, a Postgres trigger fires
// pg_notify and this consumer receives the event, loads the incident, and
// runs the geofenced push fan-out. Duplicate deliveries are possible if the
// same incident is notified twice; the reporting flow fires the trigger
// once per insert.
package listener

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/push"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/risk"
)

const (
	channel          = "incident_created"
	reconnectBackoff = 5 * time.Second
	maxReconnect     = 30 * time.Second
)

// IncidentEvent is the JSON payload from pg_notify('incident_created', ...).
type IncidentEvent struct {
	IncidentID int    `json:"incident_id"`
	AuthorID   string `json:"author_id"`
	Timestamp  int64  `json:"ts"`
}

// IncidentLoader resolves the full incident row for an event.
type IncidentLoader interface {
	ByID(ctx context.Context, id int) (risk.Incident, error)
}

// Start opens a dedicated connection and listens on the incident_created
// channel. It reconnects automatically on connection loss. Blocks until ctx
// is cancelled. Intended to be called with `go`.
func Start(ctx context.Context, dbURL string, incidents IncidentLoader, engine *push.Engine, logger *slog.Logger) {
	backoff := reconnectBackoff

	for {
		err := listenLoop(ctx, dbURL, incidents, engine, logger)
		if ctx.Err() != nil {
			logger.Info("Incident listener stopped (context cancelled)")
			return
		}

		logger.Error("Incident listener disconnected, reconnecting...",
			"error", err, "backoff", backoff)

		select {
		case <-time.After(backoff):
			backoff = min(backoff*2, maxReconnect)
		case <-ctx.Done():
			return
		}
	}
}

// listenLoop runs a single listen session. Returns when the connection drops
// or the context is cancelled.
func listenLoop(ctx context.Context, dbURL string, incidents IncidentLoader, engine *push.Engine, logger *slog.Logger) error {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	_, err = conn.Exec(ctx, "LISTEN "+channel)
	if err != nil {
		return fmt.Errorf("LISTEN %s: %w", channel, err)
	}
	logger.Info("Incident listener connected", "channel", channel)

	for {
		notification, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}

		var event IncidentEvent
		if err := json.Unmarshal([]byte(notification.Payload), &event); err != nil {
			logger.Warn("Failed to parse incident event",
				"payload", notification.Payload, "error", err)
			continue
		}

		logger.Info("Incident event received", "incident_id", event.IncidentID)

		// Process asynchronously to avoid blocking the listener
		go handleIncident(ctx, incidents, engine, event, logger)
	}
}

// handleIncident loads the incident and runs the geofenced fan-out,
// excluding the reporter's own subscriptions.
func handleIncident(ctx context.Context, incidents IncidentLoader, engine *push.Engine, event IncidentEvent, logger *slog.Logger) {
	incident, err := incidents.ByID(ctx, event.IncidentID)
	if err != nil {
		logger.Warn("Failed to load incident for fan-out",
			"incident_id", event.IncidentID, "error", err)
		return
	}

	excludeOwner := event.AuthorID
	if excludeOwner == "" {
		excludeOwner = incident.AuthorID
	}

	sent, err := engine.DispatchForIncident(ctx, incident, excludeOwner)
	if err != nil {
		logger.Warn("Incident fan-out failed",
			"incident_id", event.IncidentID, "error", err)
		return
	}
	if sent > 0 {
		logger.Info("Incident notifications dispatched",
			"incident_id", event.IncidentID, "sent", sent)
	}
}
