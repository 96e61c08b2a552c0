package risk

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/observability"
)

// IncidentStore is the persistence surface the analyzer consumes.
type IncidentStore interface {
	QueryRecent(ctx context.Context, since time.Time) ([]Incident, error)
}

// Service runs the analysis against the incident store. Stateless between
// calls; construct one per process.
type Service struct {
	incidents IncidentStore
	metrics   *observability.Metrics
	logger    *slog.Logger
}

// NewService creates the analyzer service. metrics may be nil.
func NewService(incidents IncidentStore, metrics *observability.Metrics, logger *slog.Logger) *Service {
	return &Service{incidents: incidents, metrics: metrics, logger: logger}
}

// Zones loads the trailing incident window and derives the ranked zone
// list. A store outage surfaces as a hard failure; an empty window yields
// an empty list, not an error.
func (s *Service) Zones(ctx context.Context, now time.Time) (Result, error) {
	since := now.AddDate(0, 0, -windowDays)
	incidents, err := s.incidents.QueryRecent(ctx, since)
	if err != nil {
		return Result{}, fmt.Errorf("load incident window: %w", err)
	}

	start := time.Now()
	result := Analyze(incidents, now)
	s.metrics.Analysis(time.Since(start).Seconds(), result.Skipped, len(result.Zones))

	s.logger.Info("Risk analysis complete",
		"incidents", len(incidents),
		"zones", len(result.Zones),
		"skipped", result.Skipped)
	return result, nil
}

// MarshalZones encodes a zone list as a JSON array, never null, so cached
// and freshly computed responses are byte-identical for the same input.
func MarshalZones(zones []Zone) ([]byte, error) {
	if zones == nil {
		zones = []Zone{}
	}
	data, err := json.Marshal(zones)
	if err != nil {
		return nil, fmt.Errorf("marshal zones: %w", err)
	}
	return data, nil
}
