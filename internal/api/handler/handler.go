// Package handler provides HTTP handlers for all API endpoints.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/api/respond"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/cache"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/config"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/push"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/recommend"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/risk"
)

// Narrow views over the store and engine so handlers stay testable.

// Analyzer derives the current zone list.
type Analyzer interface {
	Zones(ctx context.Context, now time.Time) (risk.Result, error)
}

// IncidentSource resolves incidents and the moderation queue size.
type IncidentSource interface {
	ByID(ctx context.Context, id int) (risk.Incident, error)
	PendingReviewCount(ctx context.Context) (int, error)
}

// ProfileSource resolves user profiles; (nil, nil) means unknown user.
type ProfileSource interface {
	Get(ctx context.Context, userID string) (*recommend.Profile, error)
}

// Dispatcher is the push fan-out surface.
type Dispatcher interface {
	DispatchForIncident(ctx context.Context, incident risk.Incident, excludeOwnerID string) (int, error)
	Broadcast(ctx context.Context, payload push.Payload) (int, error)
}

// Pinger verifies datastore connectivity for the health endpoint.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	db        Pinger
	cache     *cache.Cache
	cfg       *config.Config
	analyzer  Analyzer
	engine    Dispatcher
	incidents IncidentSource
	profiles  ProfileSource
}

// New creates a Handler with shared dependencies.
func New(db Pinger, c *cache.Cache, cfg *config.Config, analyzer Analyzer,
	engine Dispatcher, incidents IncidentSource, profiles ProfileSource) *Handler {
	return &Handler{
		db:        db,
		cache:     c,
		cfg:       cfg,
		analyzer:  analyzer,
		engine:    engine,
		incidents: incidents,
		profiles:  profiles,
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, and status.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":    "Burkina Watch Risk API",
		"version": "1.0.0",
		"status":  "running",
		"docs":    "/docs",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies Postgres connectivity.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.db.HealthCheck(r.Context()); err != nil {
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns cache statistics.
// @Summary Cache health check
// @Description Returns in-memory cache statistics.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/cache [get]
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     h.cache.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
