package recommend

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/risk"
)

const (
	topZonesConsidered = 3
	lowestTier         = "bronze"
	nudgePointFloor    = 50
)

// Profession keyword sets. Occupations are free text entered by users, so
// matching is substring-based and bilingual.
var (
	healthKeywords    = []string{"santé", "sante", "médecin", "medecin", "infirmier", "pharmacien", "docteur", "health", "nurse", "doctor"}
	securityKeywords  = []string{"police", "gendarme", "militaire", "sécurité", "securite", "vigile", "security", "guard"}
	transportKeywords = []string{"chauffeur", "taxi", "conducteur", "transport", "moto", "driver"}
)

// Compose applies the advisory rules in order against the ranked zones and
// the profile. pendingReview is the live count of reports awaiting
// moderation; it only matters for elevated roles. A nil profile yields the
// fixed default list.
func Compose(zones []risk.Zone, profile *Profile, pendingReview int) []Recommendation {
	if profile == nil {
		return defaultList()
	}

	var recs []Recommendation

	// Rule 1: alerts for high/critical zones matching the user's city.
	recs = append(recs, zoneAlerts(zones, profile.City)...)

	// Rule 2: profession-specific advice.
	if r, ok := professionAdvice(profile.Occupation); ok {
		recs = append(recs, r)
	}

	// Rule 3: gamification nudge for new contributors.
	if profile.EngagementTier == lowestTier && profile.EngagementPoints < nudgePointFloor {
		recs = append(recs, Recommendation{
			ID:       "action-first-reports",
			Kind:     KindAction,
			Priority: PriorityLow,
			Title:    "Contribuez à votre quartier",
			Body:     "Signalez les incidents autour de vous pour gagner des points et aider votre communauté.",
			DeepLink: "/reports/new",
		})
	}

	// Rule 4: static info items, always present.
	recs = append(recs, staticInfo()...)

	// Rule 5: moderation queue for elevated roles.
	if profile.IsElevated() && pendingReview > 0 {
		recs = append(recs, Recommendation{
			ID:       "action-pending-review",
			Kind:     KindAction,
			Priority: PriorityHigh,
			Title:    "Signalements en attente",
			Body:     fmt.Sprintf("%d signalement(s) attendent votre validation.", pendingReview),
			DeepLink: "/moderation/pending",
		})
	}

	// Stable sort keeps insertion order within a priority tier.
	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank[recs[i].Priority] < priorityRank[recs[j].Priority]
	})
	return recs
}

// zoneAlerts emits an alert for each of the top-3 zones whose label overlaps
// the user's city and whose level is high or critical.
func zoneAlerts(zones []risk.Zone, city string) []Recommendation {
	city = strings.ToLower(strings.TrimSpace(city))
	if city == "" {
		return nil
	}

	var alerts []Recommendation
	for i, z := range zones {
		if i >= topZonesConsidered {
			break
		}
		if z.Level != risk.LevelHigh && z.Level != risk.LevelCritical {
			continue
		}
		label := strings.ToLower(z.Label)
		if !strings.Contains(label, city) && !strings.Contains(city, label) {
			continue
		}

		priority := PriorityMedium
		if z.Level == risk.LevelCritical {
			priority = PriorityHigh
		}
		related := ""
		if len(z.CategoryBreakdown) > 0 {
			related = string(z.CategoryBreakdown[0].Category)
		}
		alerts = append(alerts, Recommendation{
			ID:              "alert-" + z.ID,
			Kind:            KindAlert,
			Priority:        priority,
			Title:           "Zone à risque près de chez vous",
			Body:            fmt.Sprintf("%s : %s", z.Label, z.Description),
			DeepLink:        "/risk-zones/" + z.ID,
			RelatedCategory: related,
		})
	}
	return alerts
}

func professionAdvice(occupation string) (Recommendation, bool) {
	occ := strings.ToLower(occupation)
	switch {
	case matchesAny(occ, healthKeywords):
		return Recommendation{
			ID:              "advice-health-feed",
			Kind:            KindAdvice,
			Priority:        PriorityMedium,
			Title:           "Signalements santé",
			Body:            "Suivez les signalements sanitaires récents dans votre région.",
			DeepLink:        "/reports?category=health",
			RelatedCategory: string(risk.CategoryHealth),
		}, true
	case matchesAny(occ, securityKeywords):
		return Recommendation{
			ID:              "advice-security-feed",
			Kind:            KindAdvice,
			Priority:        PriorityMedium,
			Title:           "Signalements sécurité",
			Body:            "Consultez les incidents de sécurité signalés récemment.",
			DeepLink:        "/reports?category=security",
			RelatedCategory: string(risk.CategorySecurity),
		}, true
	case matchesAny(occ, transportKeywords):
		return Recommendation{
			ID:              "advice-transport-feed",
			Kind:            KindAdvice,
			Priority:        PriorityLow,
			Title:           "État des routes",
			Body:            "Accidents et perturbations signalés sur les axes routiers.",
			DeepLink:        "/reports?category=transport",
			RelatedCategory: string(risk.CategoryTransport),
		}, true
	}
	return Recommendation{}, false
}

func matchesAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func staticInfo() []Recommendation {
	return []Recommendation{
		{
			ID:       "info-emergency-numbers",
			Kind:     KindInfo,
			Priority: PriorityLow,
			Title:    "Numéros d'urgence",
			Body:     "Police : 17 — Pompiers : 18 — SAMU : 112.",
			DeepLink: "/numeros-urgence",
		},
		{
			ID:       "info-pharmacies",
			Kind:     KindInfo,
			Priority: PriorityLow,
			Title:    "Pharmacies de garde",
			Body:     "Consultez la liste des pharmacies de garde de la semaine.",
			DeepLink: "/pharmacies-garde",
		},
	}
}

// defaultList is returned when no profile can be resolved.
func defaultList() []Recommendation {
	return append([]Recommendation{{
		ID:       "advice-stay-informed",
		Kind:     KindAdvice,
		Priority: PriorityMedium,
		Title:    "Restez informé",
		Body:     "Consultez la carte des zones à risque autour de vous.",
		DeepLink: "/risk-zones",
	}}, staticInfo()...)
}
