package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/push"
)

// Subscriptions is the pgx-backed push.SubscriptionStore.
type Subscriptions struct {
	pool *pgxpool.Pool
}

// NewSubscriptions creates the subscription store adapter.
func NewSubscriptions(pool *pgxpool.Pool) *Subscriptions {
	return &Subscriptions{pool: pool}
}

// ListActiveWithLocation returns one keyset page of active subscriptions
// that registered a geofence.
func (s *Subscriptions) ListActiveWithLocation(ctx context.Context, afterID int64, limit int) ([]push.Subscription, error) {
	return s.list(ctx, "subs_active_located", afterID, limit)
}

// ListActive returns one keyset page of all active subscriptions.
func (s *Subscriptions) ListActive(ctx context.Context, afterID int64, limit int) ([]push.Subscription, error) {
	return s.list(ctx, "subs_active", afterID, limit)
}

func (s *Subscriptions) list(ctx context.Context, stmt string, afterID int64, limit int) ([]push.Subscription, error) {
	rows, err := s.pool.Query(ctx, stmt, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []push.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// Delete removes a subscription by endpoint. Deleting a missing row is a
// no-op, which keeps concurrent prunes of the same endpoint safe.
func (s *Subscriptions) Delete(ctx context.Context, endpoint string) error {
	if _, err := s.pool.Exec(ctx, "sub_delete", endpoint); err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	return nil
}

// Deactivate flags a subscription inactive without removing the row. The
// subscription registration flow calls this when a user turns alerts off;
// Cleanup reaps rows that stay inactive. Dispatch-time pruning uses Delete
// instead, since a gone endpoint can never come back.
func (s *Subscriptions) Deactivate(ctx context.Context, endpoint string) error {
	if _, err := s.pool.Exec(ctx, "sub_deactivate", endpoint); err != nil {
		return fmt.Errorf("deactivate subscription: %w", err)
	}
	return nil
}

// Cleanup removes subscriptions deactivated more than 30 days ago and
// returns how many were dropped.
func (s *Subscriptions) Cleanup(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, "subs_cleanup")
	if err != nil {
		return 0, fmt.Errorf("cleanup subscriptions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanSubscription(rows pgx.Rows) (push.Subscription, error) {
	var (
		sub      push.Subscription
		owner    *string
		radius   *float64
		category *string
	)
	if err := rows.Scan(&sub.ID, &sub.Endpoint, &sub.AuthSecret, &sub.EncryptionKey,
		&owner, &sub.Latitude, &sub.Longitude, &radius, &category); err != nil {
		return push.Subscription{}, err
	}

	sub.Active = true // both list statements filter on active
	if owner != nil {
		sub.OwnerUserID = *owner
	}
	if radius != nil {
		sub.RadiusKm = *radius
	}
	if category != nil {
		sub.CategoryFilter = *category
	}
	return sub, nil
}
