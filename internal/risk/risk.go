// Package risk derives geographic risk zones from the rolling window of
// citizen incident reports.
//
// Pipeline: filter to the trailing window → bucket by location key →
// score recent incidents per bucket → classify level and trend → rank.
// Zones are recomputed from scratch on every call and never persisted.
package risk

import "time"

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

const (
	windowDays    = 60 // full analysis window
	recentDays    = 30 // trailing sub-window used for scoring
	minBucketSize = 2  // buckets below this are noise
	maxZones      = 20
	maxSlugLen    = 50

	emergencyBonus = 5 // added per incident carrying the SOS flag
	maxScore       = 100
)

// Level thresholds on the clamped 0–100 score.
const (
	criticalThreshold = 80
	highThreshold     = 50
	mediumThreshold   = 25
)

// --------------------------------------------------------------------------
// Enums
// --------------------------------------------------------------------------

// Category classifies an incident report.
type Category string

const (
	CategoryEmergency      Category = "emergency"
	CategorySecurity       Category = "security"
	CategoryHealth         Category = "health"
	CategoryAccident       Category = "accident"
	CategoryInfrastructure Category = "infrastructure"
	CategoryTransport      Category = "transport"
	CategoryEnvironment    Category = "environment"
	CategoryOther          Category = "other"
)

// Urgency is the reporter-assigned severity of an incident.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyCritical Urgency = "critical"
)

// Level is the derived risk classification of a zone.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// Trend compares recent incident volume against the prior sub-window.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendStable  Trend = "stable"
	TrendFalling Trend = "falling"
)

// --------------------------------------------------------------------------
// Weight tables — fixed so scoring stays auditable and deterministic.
// --------------------------------------------------------------------------

var categoryWeights = map[Category]int{
	CategoryEmergency:      10,
	CategorySecurity:       8,
	CategoryHealth:         7,
	CategoryAccident:       6,
	CategoryInfrastructure: 5,
	CategoryTransport:      4,
	CategoryEnvironment:    3,
	CategoryOther:          2,
}

var urgencyWeights = map[Urgency]int{
	UrgencyCritical: 3,
	UrgencyMedium:   2,
	UrgencyLow:      1,
}

// categoryWeight returns the fixed weight for a category, defaulting to the
// "other" weight for unknown values coming out of legacy rows.
func categoryWeight(c Category) int {
	if w, ok := categoryWeights[c]; ok {
		return w
	}
	return categoryWeights[CategoryOther]
}

// urgencyWeight defaults to the "low" weight for unknown values.
func urgencyWeight(u Urgency) int {
	if w, ok := urgencyWeights[u]; ok {
		return w
	}
	return urgencyWeights[UrgencyLow]
}

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Incident is a citizen report as stored by the platform. Read-only here.
type Incident struct {
	ID            int
	Category      Category
	Urgency       Urgency
	Latitude      float64
	Longitude     float64
	LocationLabel string
	CreatedAt     time.Time
	IsEmergency   bool // SOS flag set by the panic flow
	AuthorID      string
}

// CategoryCount is one entry of a zone's category breakdown.
type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}

// Zone is a derived cluster of recent incidents sharing a location key.
type Zone struct {
	ID                string          `json:"id"`
	Latitude          float64         `json:"latitude"`
	Longitude         float64         `json:"longitude"`
	Label             string          `json:"label"`
	Level             Level           `json:"risk_level"`
	Score             int             `json:"risk_score"`
	IncidentCount     int             `json:"incident_count"`
	CategoryBreakdown []CategoryCount `json:"category_breakdown"`
	LastIncidentAt    time.Time       `json:"last_incident_at"`
	Trend             Trend           `json:"trend"`
	Description       string          `json:"description"`
}

// Result is the outcome of one analysis pass. Skipped counts rows dropped
// for malformed coordinates so the data-quality loss stays observable.
type Result struct {
	Zones   []Zone `json:"zones"`
	Skipped int    `json:"skipped"`
}
