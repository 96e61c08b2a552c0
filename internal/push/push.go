// Package push implements the geofenced notification fan-out engine.
//
// Pipeline: resolve the subscriber page → evaluate geofence membership →
// deliver via the transport → prune endpoints reported permanently gone.
// Delivery is at-most-once and best-effort: transient failures are logged
// and dropped, never retried.
package push

import (
	"context"
	"errors"
)

// DefaultRadiusKm applies when a subscription was registered without an
// explicit geofence radius.
const DefaultRadiusKm = 5.0

// ErrEndpointGone marks a delivery response saying the endpoint no longer
// exists (HTTP 404/410). The engine reacts by deleting the subscription.
var ErrEndpointGone = errors.New("push endpoint gone")

// Subscription is a registered push endpoint with an optional geofence.
// A subscription without coordinates only receives broadcasts.
type Subscription struct {
	ID             int64
	Endpoint       string // unique key
	AuthSecret     string
	EncryptionKey  string // p256dh
	OwnerUserID    string
	Latitude       *float64
	Longitude      *float64
	RadiusKm       float64
	CategoryFilter string // empty means all categories
	Active         bool
}

// Radius returns the subscription's geofence radius, falling back to the
// default when unset.
func (s *Subscription) Radius() float64 {
	if s.RadiusKm > 0 {
		return s.RadiusKm
	}
	return DefaultRadiusKm
}

// HasLocation reports whether the subscription can match geofenced
// dispatches at all.
func (s *Subscription) HasLocation() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// Payload is the notification content handed to the transport.
type Payload struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	IncidentID int    `json:"incident_id,omitempty"`
	URL        string `json:"url,omitempty"`
}

// SubscriptionStore is the persistence surface the engine consumes. Pages
// are keyset-ordered by id; the engine is the only writer, and only to
// delete endpoints reported gone.
type SubscriptionStore interface {
	ListActiveWithLocation(ctx context.Context, afterID int64, limit int) ([]Subscription, error)
	ListActive(ctx context.Context, afterID int64, limit int) ([]Subscription, error)
	Delete(ctx context.Context, endpoint string) error
}

// Transport is the underlying delivery channel. Send returns nil on
// success, ErrEndpointGone (possibly wrapped) when the destination is
// permanently gone, and any other error for transient failures.
type Transport interface {
	Send(ctx context.Context, sub Subscription, payload Payload) error
}
