package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/api/respond"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/recommend"
	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/risk"
)

// GetRecommendations serves the prioritized advisory list for a user.
// @Summary Personalized recommendations
// @Description Composes alerts, advice, and info items from the current risk zones and the user's profile. Unknown users get the default list.
// @Tags recommendations
// @Produce json
// @Param userID path string true "User id"
// @Success 200 {array} recommend.Recommendation
// @Failure 503 {object} respond.ErrorResponse
// @Router /recommendations/{userID} [get]
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	profile, err := h.profiles.Get(ctx, userID)
	if err != nil {
		respond.WriteError(w, http.StatusServiceUnavailable, "PROFILE_UNAVAILABLE",
			"Profile lookup is temporarily unavailable")
		return
	}

	var zones []risk.Zone
	if profile != nil {
		result, err := h.analyzer.Zones(ctx, time.Now().UTC())
		if err != nil {
			respond.WriteError(w, http.StatusServiceUnavailable, "ANALYSIS_UNAVAILABLE",
				"Risk analysis is temporarily unavailable")
			return
		}
		zones = result.Zones
	}

	pendingReview := 0
	if profile != nil && profile.IsElevated() {
		if n, err := h.incidents.PendingReviewCount(ctx); err == nil {
			pendingReview = n
		}
	}

	respond.WriteJSONObject(w, http.StatusOK, recommend.Compose(zones, profile, pendingReview))
}
