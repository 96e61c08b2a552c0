package risk

// Presentation copy for zones, keyed by (level, top category) with a generic
// fallback per level.

var descriptions = map[Level]map[Category]string{
	LevelCritical: {
		CategoryEmergency: "Active emergency reports concentrated in this area. Avoid it if possible and follow official instructions.",
		CategorySecurity:  "Repeated security incidents reported here recently. Stay alert and avoid the area after dark.",
		CategoryHealth:    "Serious health incidents reported in this area. Exercise caution and check official health advisories.",
		CategoryAccident:  "A high number of serious accidents reported here. Take extra care when passing through.",
	},
	LevelHigh: {
		CategorySecurity:  "Several security incidents reported in this area over the last month.",
		CategoryAccident:  "Accidents are reported here more often than elsewhere. Drive carefully.",
		CategoryTransport: "Frequent transport disruptions reported around this location.",
		CategoryHealth:    "Multiple health-related reports in this area recently.",
	},
	LevelMedium: {
		CategoryInfrastructure: "Recurring infrastructure problems reported in this area.",
		CategoryEnvironment:    "Environmental nuisances reported here on a regular basis.",
		CategoryTransport:      "Occasional transport issues reported around this location.",
	},
}

var levelFallbacks = map[Level]string{
	LevelCritical: "A critical concentration of recent incident reports. Avoid the area when possible.",
	LevelHigh:     "An elevated number of incidents reported in this area recently.",
	LevelMedium:   "A moderate number of incidents reported in this area.",
	LevelLow:      "A few incidents reported in this area. Situation appears calm.",
}

func describe(level Level, top Category) string {
	if byCategory, ok := descriptions[level]; ok {
		if d, ok := byCategory[top]; ok {
			return d
		}
	}
	return levelFallbacks[level]
}
