// Package store provides the pgx-backed adapters behind the narrow
// interfaces the analyzer, composer, and fan-out engine consume.
package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/risk"
)

// ErrNotFound is returned when a looked-up row does not exist.
var ErrNotFound = errors.New("not found")

// Incidents reads incident reports for the analyzer and the fan-out engine.
type Incidents struct {
	pool *pgxpool.Pool
}

// NewIncidents creates the incident store adapter.
func NewIncidents(pool *pgxpool.Pool) *Incidents {
	return &Incidents{pool: pool}
}

// QueryRecent returns all incidents created at or after since, newest
// first. Rows with NULL coordinates come back as NaN so the analyzer's
// coordinate validation drops them.
func (s *Incidents) QueryRecent(ctx context.Context, since time.Time) ([]risk.Incident, error) {
	rows, err := s.pool.Query(ctx, "recent_incidents", since)
	if err != nil {
		return nil, fmt.Errorf("query recent incidents: %w", err)
	}
	defer rows.Close()

	var incidents []risk.Incident
	for rows.Next() {
		inc, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		incidents = append(incidents, inc)
	}
	return incidents, rows.Err()
}

// ByID returns one incident, or ErrNotFound.
func (s *Incidents) ByID(ctx context.Context, id int) (risk.Incident, error) {
	rows, err := s.pool.Query(ctx, "incident_by_id", id)
	if err != nil {
		return risk.Incident{}, fmt.Errorf("query incident %d: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return risk.Incident{}, err
		}
		return risk.Incident{}, fmt.Errorf("incident %d: %w", id, ErrNotFound)
	}
	inc, err := scanIncident(rows)
	if err != nil {
		return risk.Incident{}, fmt.Errorf("scan incident %d: %w", id, err)
	}
	return inc, nil
}

// PendingReviewCount returns how many reports await moderation.
func (s *Incidents) PendingReviewCount(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "pending_review_count").Scan(&n); err != nil {
		return 0, fmt.Errorf("pending review count: %w", err)
	}
	return n, nil
}

func scanIncident(rows pgx.Rows) (risk.Incident, error) {
	var (
		inc      risk.Incident
		lat, lon *float64
		label    *string
		author   *string
	)
	if err := rows.Scan(&inc.ID, &inc.Category, &inc.Urgency, &lat, &lon,
		&label, &inc.CreatedAt, &inc.IsEmergency, &author); err != nil {
		return risk.Incident{}, err
	}

	inc.Latitude = math.NaN()
	inc.Longitude = math.NaN()
	if lat != nil {
		inc.Latitude = *lat
	}
	if lon != nil {
		inc.Longitude = *lon
	}
	if label != nil {
		inc.LocationLabel = *label
	}
	if author != nil {
		inc.AuthorID = *author
	}
	return inc, nil
}
