// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers all statements the API and the
// fan-out engine use. Prepared statements eliminate parse overhead on every
// request.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Incidents
		"recent_incidents": `
			SELECT id, category, urgency_level, latitude, longitude,
			       location_label, created_at, is_emergency, author_id
			FROM incidents
			WHERE created_at >= $1
			ORDER BY created_at DESC`,
		"incident_by_id": `
			SELECT id, category, urgency_level, latitude, longitude,
			       location_label, created_at, is_emergency, author_id
			FROM incidents WHERE id = $1`,
		"pending_review_count": "SELECT count(*) FROM incidents WHERE status = 'pending_review'",

		// Push subscriptions (keyset pages ordered by id)
		"subs_active_located": `
			SELECT id, endpoint, auth_secret, encryption_key, owner_user_id,
			       latitude, longitude, radius_km, category_filter
			FROM push_subscriptions
			WHERE active AND latitude IS NOT NULL AND longitude IS NOT NULL AND id > $1
			ORDER BY id LIMIT $2`,
		"subs_active": `
			SELECT id, endpoint, auth_secret, encryption_key, owner_user_id,
			       latitude, longitude, radius_km, category_filter
			FROM push_subscriptions
			WHERE active AND id > $1
			ORDER BY id LIMIT $2`,
		"sub_delete":     "DELETE FROM push_subscriptions WHERE endpoint = $1",
		"sub_deactivate": "UPDATE push_subscriptions SET active = false, updated_at = now() WHERE endpoint = $1",
		"subs_cleanup":   "DELETE FROM push_subscriptions WHERE active = false AND updated_at < now() - interval '30 days'",

		// Profiles
		"profile_by_user": `
			SELECT id, city, occupation, role, engagement_tier, engagement_points
			FROM users WHERE id = $1`,
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
