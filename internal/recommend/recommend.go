// Package recommend turns risk zones plus a user profile into a prioritized
// advisory list. Composition is pure; callers resolve the profile and the
// pending-review count from their stores.
package recommend

// Kind classifies a recommendation.
type Kind string

const (
	KindAlert  Kind = "alert"
	KindAdvice Kind = "advice"
	KindInfo   Kind = "info"
	KindAction Kind = "action"
)

// Priority orders recommendations in the response.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// priorityRank drives the final sort. Lower ranks first.
var priorityRank = map[Priority]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// Profile is the slice of a user account the composer needs.
type Profile struct {
	UserID           string
	City             string
	Occupation       string
	Role             string // "user", "moderator", "admin"
	EngagementTier   string // "bronze", "silver", "gold"
	EngagementPoints int
}

// IsElevated reports whether the profile may review pending reports.
func (p *Profile) IsElevated() bool {
	return p.Role == "moderator" || p.Role == "admin"
}

// Recommendation is one advisory item. Ids are namespaced by their
// generating rule so no two items collide within a response.
type Recommendation struct {
	ID              string   `json:"id"`
	Kind            Kind     `json:"kind"`
	Priority        Priority `json:"priority"`
	Title           string   `json:"title"`
	Body            string   `json:"body"`
	DeepLink        string   `json:"deep_link,omitempty"`
	RelatedCategory string   `json:"related_category,omitempty"`
}
