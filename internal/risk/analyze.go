package risk

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/geo"
)

// bucket accumulates incidents sharing one location key.
type bucket struct {
	label  string
	recent []Incident // trailing 30 days
	prior  []Incident // days 31–60
}

// Analyze groups incidents from the trailing 60-day window into risk zones,
// scores them over the recent 30-day sub-window, and returns the top 20 by
// score. Incidents with malformed coordinates are skipped and counted, never
// an error. The input slice is not mutated, and the output is deterministic
// for a fixed snapshot and now.
func Analyze(incidents []Incident, now time.Time) Result {
	windowStart := now.AddDate(0, 0, -windowDays)
	recentStart := now.AddDate(0, 0, -recentDays)

	buckets := make(map[string]*bucket)
	skipped := 0

	for _, inc := range incidents {
		if inc.CreatedAt.Before(windowStart) || inc.CreatedAt.After(now) {
			continue
		}
		if !geo.ValidCoordinates(inc.Latitude, inc.Longitude) {
			skipped++
			continue
		}

		key, label := locationKey(inc)
		b, ok := buckets[key]
		if !ok {
			b = &bucket{label: label}
			buckets[key] = b
		}
		if inc.CreatedAt.Before(recentStart) {
			b.prior = append(b.prior, inc)
		} else {
			b.recent = append(b.recent, inc)
		}
	}

	// Iterate keys in sorted order so score ties rank identically run to run.
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	zones := make([]Zone, 0, len(buckets))
	for _, k := range keys {
		b := buckets[k]
		if len(b.recent)+len(b.prior) < minBucketSize {
			continue
		}
		zones = append(zones, buildZone(b))
	}

	sort.SliceStable(zones, func(i, j int) bool {
		return zones[i].Score > zones[j].Score
	})
	if len(zones) > maxZones {
		zones = zones[:maxZones]
	}

	return Result{Zones: zones, Skipped: skipped}
}

// locationKey returns the clustering key and the display label for an
// incident: the location label when present, otherwise the coordinates
// rounded to 3 decimal places (~100 m grid cell). Exact key match only —
// no distance-based merge across keys.
func locationKey(inc Incident) (key, label string) {
	if l := strings.TrimSpace(inc.LocationLabel); l != "" {
		return strings.ToLower(l), l
	}
	cell := fmt.Sprintf("%.3f,%.3f", inc.Latitude, inc.Longitude)
	return cell, cell
}

func buildZone(b *bucket) Zone {
	all := make([]Incident, 0, len(b.recent)+len(b.prior))
	all = append(all, b.recent...)
	all = append(all, b.prior...)

	// Centroid and most recent timestamp over the full window.
	var latSum, lonSum float64
	var last time.Time
	for _, inc := range all {
		latSum += inc.Latitude
		lonSum += inc.Longitude
		if inc.CreatedAt.After(last) {
			last = inc.CreatedAt
		}
	}
	n := float64(len(all))

	score := scoreIncidents(b.recent)
	level := levelFor(score)
	breakdown := categoryBreakdown(b.recent)

	topCategory := CategoryOther
	if len(breakdown) > 0 {
		topCategory = breakdown[0].Category
	}

	return Zone{
		ID:                slugify(b.label),
		Latitude:          latSum / n,
		Longitude:         lonSum / n,
		Label:             b.label,
		Level:             level,
		Score:             score,
		IncidentCount:     len(all),
		CategoryBreakdown: breakdown,
		LastIncidentAt:    last,
		Trend:             classifyTrend(len(b.recent), len(b.prior)),
		Description:       describe(level, topCategory),
	}
}

// scoreIncidents sums category*urgency weights plus the SOS bonus over the
// recent sub-window, clamped to [0, 100].
func scoreIncidents(recent []Incident) int {
	score := 0
	for _, inc := range recent {
		score += categoryWeight(inc.Category) * urgencyWeight(inc.Urgency)
		if inc.IsEmergency {
			score += emergencyBonus
		}
	}
	if score > maxScore {
		score = maxScore
	}
	return score
}

func levelFor(score int) Level {
	switch {
	case score >= criticalThreshold:
		return LevelCritical
	case score >= highThreshold:
		return LevelHigh
	case score >= mediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}

// classifyTrend compares sub-window counts with integer cross-multiplication
// so the priorCount == 0 case needs no division: rising means
// recent > 1.5*prior, falling means recent < 0.5*prior.
func classifyTrend(recent, prior int) Trend {
	switch {
	case 2*recent > 3*prior:
		return TrendRising
	case 2*recent < prior:
		return TrendFalling
	default:
		return TrendStable
	}
}

// categoryBreakdown counts recent incidents per category, sorted by count
// descending with category name as the deterministic tie-break.
func categoryBreakdown(recent []Incident) []CategoryCount {
	counts := make(map[Category]int)
	for _, inc := range recent {
		counts[inc.Category]++
	}

	breakdown := make([]CategoryCount, 0, len(counts))
	for c, n := range counts {
		breakdown = append(breakdown, CategoryCount{Category: c, Count: n})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Count != breakdown[j].Count {
			return breakdown[i].Count > breakdown[j].Count
		}
		return breakdown[i].Category < breakdown[j].Category
	})
	return breakdown
}

// slugify derives a stable zone id from its label: lowercase, runs of
// non-alphanumerics collapsed to single dashes, truncated to 50 chars.
func slugify(label string) string {
	var sb strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			sb.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				sb.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.TrimRight(sb.String(), "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	if slug == "" {
		slug = "zone"
	}
	return slug
}
