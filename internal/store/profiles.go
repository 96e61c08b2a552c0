package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/recommend"
)

// Profiles resolves the user profile slice the composer consumes.
type Profiles struct {
	pool *pgxpool.Pool
}

// NewProfiles creates the profile provider.
func NewProfiles(pool *pgxpool.Pool) *Profiles {
	return &Profiles{pool: pool}
}

// Get returns the profile for a user, or (nil, nil) when the user does not
// exist — the composer falls back to its default list in that case.
func (p *Profiles) Get(ctx context.Context, userID string) (*recommend.Profile, error) {
	var (
		profile    recommend.Profile
		city       *string
		occupation *string
		role       *string
		tier       *string
		points     *int
	)
	err := p.pool.QueryRow(ctx, "profile_by_user", userID).Scan(
		&profile.UserID, &city, &occupation, &role, &tier, &points)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}

	if city != nil {
		profile.City = *city
	}
	if occupation != nil {
		profile.Occupation = *occupation
	}
	if role != nil {
		profile.Role = *role
	}
	if tier != nil {
		profile.EngagementTier = *tier
	}
	if points != nil {
		profile.EngagementPoints = *points
	}
	return &profile, nil
}
