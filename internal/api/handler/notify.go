package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/api/respond"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/push"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/store"
)

// NotifyIncident re-runs the geofenced fan-out for an incident.
// @Summary Dispatch proximity alerts for an incident
// @Description Sends a push notification to every active subscription whose geofence contains the incident. The reporter's own subscriptions are excluded.
// @Tags push
// @Produce json
// @Param incidentID path int true "Incident id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /notify/{incidentID} [post]
func (h *Handler) NotifyIncident(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.Atoi(chi.URLParam(r, "incidentID"))
	if err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_ID", "Incident id must be an integer")
		return
	}

	incident, err := h.incidents.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respond.WriteError(w, http.StatusNotFound, "INCIDENT_NOT_FOUND", "Incident not found")
			return
		}
		respond.WriteError(w, http.StatusServiceUnavailable, "STORE_UNAVAILABLE",
			"Incident lookup is temporarily unavailable")
		return
	}

	dispatched, err := h.engine.DispatchForIncident(ctx, incident, incident.AuthorID)
	if err != nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "DISPATCH_FAILED",
			"Subscription store is temporarily unavailable")
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"incident_id": id,
		"dispatched":  dispatched,
	})
}

// broadcastRequest is the POST /broadcast body.
type broadcastRequest struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	IncidentID int    `json:"incident_id,omitempty"`
}

// Broadcast sends a platform-wide announcement to every active subscription.
// @Summary Broadcast an announcement
// @Description Sends a push notification to all active subscriptions regardless of location.
// @Tags push
// @Accept json
// @Produce json
// @Param request body broadcastRequest true "Announcement"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /broadcast [post]
func (h *Handler) Broadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be JSON")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Body) == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_FIELDS", "title and body are required")
		return
	}

	payload := push.Payload{
		Title:      req.Title,
		Body:       req.Body,
		IncidentID: req.IncidentID,
	}
	if req.IncidentID > 0 {
		payload.URL = "/reports/" + strconv.Itoa(req.IncidentID)
	}

	dispatched, err := h.engine.Broadcast(r.Context(), payload)
	if err != nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "DISPATCH_FAILED",
			"Subscription store is temporarily unavailable")
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"dispatched": dispatched,
	})
}
