package handler

import (
	"net/http"
	"time"

	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/api/respond"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/cache"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/risk"
)

// GetRiskZones serves the current ranked zone list.
// @Summary Risk zones
// @Description Returns the top risk zones derived from the trailing 60-day incident window, ranked by score.
// @Tags risk
// @Produce json
// @Success 200 {array} risk.Zone
// @Failure 503 {object} respond.ErrorResponse
// @Router /risk-zones [get]
func (h *Handler) GetRiskZones(w http.ResponseWriter, r *http.Request) {
	if data, etag, ok := h.cache.Get(cache.KeyRiskZones); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, h.cfg.ZoneCacheTTL, true)
		return
	}

	result, err := h.analyzer.Zones(r.Context(), time.Now().UTC())
	if err != nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "ANALYSIS_UNAVAILABLE",
			"Risk analysis is temporarily unavailable")
		return
	}

	data, err := risk.MarshalZones(result.Zones)
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODING_FAILED",
			"Failed to encode risk zones")
		return
	}

	etag := h.cache.Set(cache.KeyRiskZones, data, h.cfg.ZoneCacheTTL)
	if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
		respond.WriteNotModified(w, etag)
		return
	}
	respond.WriteJSON(w, data, etag, h.cfg.ZoneCacheTTL, false)
}
