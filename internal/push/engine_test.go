package push

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BurkinaWatch/Burkina-Watch-Pro-sub000/internal/risk"
)

// fakeStore pages subscriptions from memory and records deletes.
type fakeStore struct {
	subs      []Subscription
	deleted   []string
	listErr   error
	listCalls int
}

func (s *fakeStore) page(afterID int64, limit int, locatedOnly bool) []Subscription {
	var out []Subscription
	for _, sub := range s.subs {
		if sub.ID <= afterID || !sub.Active {
			continue
		}
		if locatedOnly && !sub.HasLocation() {
			continue
		}
		out = append(out, sub)
		if len(out) == limit {
			break
		}
	}
	return out
}

func (s *fakeStore) ListActiveWithLocation(_ context.Context, afterID int64, limit int) ([]Subscription, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.page(afterID, limit, true), nil
}

func (s *fakeStore) ListActive(_ context.Context, afterID int64, limit int) ([]Subscription, error) {
	s.listCalls++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.page(afterID, limit, false), nil
}

func (s *fakeStore) Delete(_ context.Context, endpoint string) error {
	s.deleted = append(s.deleted, endpoint)
	return nil
}

// fakeTransport records sends and fails specific endpoints.
type fakeTransport struct {
	sent      []string
	goneAt    map[string]bool
	failingAt map[string]bool
}

func (t *fakeTransport) Send(_ context.Context, sub Subscription, _ Payload) error {
	if t.goneAt[sub.Endpoint] {
		return fmt.Errorf("endpoint %s: %w", sub.Endpoint, ErrEndpointGone)
	}
	if t.failingAt[sub.Endpoint] {
		return errors.New("connection reset")
	}
	t.sent = append(t.sent, sub.Endpoint)
	return nil
}

func locatedSub(id int64, endpoint string, lat, lon, radiusKm float64) Subscription {
	return Subscription{
		ID: id, Endpoint: endpoint,
		Latitude: &lat, Longitude: &lon,
		RadiusKm: radiusKm, Active: true,
	}
}

func testIncident() risk.Incident {
	return risk.Incident{
		ID:        42,
		Category:  risk.CategorySecurity,
		Latitude:  12.3714,
		Longitude: -1.5197,
		AuthorID:  "author-1",
	}
}

func newTestEngine(store *fakeStore, transport *fakeTransport) *Engine {
	return NewEngine(store, transport, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), 0)
}

func TestDispatchForIncident(t *testing.T) {
	ctx := context.Background()

	t.Run("geofence boundary is inclusive", func(t *testing.T) {
		// The subscription sits ~1.112 km north of the incident.
		subLat, subLon := 12.3814, -1.5197
		store := &fakeStore{subs: []Subscription{
			locatedSub(1, "ep-just-inside", subLat, subLon, 1.12),
			locatedSub(2, "ep-just-outside", subLat, subLon, 1.10),
		}}
		transport := &fakeTransport{}

		sent, err := newTestEngine(store, transport).DispatchForIncident(ctx, testIncident(), "")

		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Equal(t, []string{"ep-just-inside"}, transport.sent)
	})

	t.Run("reporter's own subscription is excluded", func(t *testing.T) {
		own := locatedSub(1, "ep-own", 12.3714, -1.5197, 5)
		own.OwnerUserID = "author-1"
		other := locatedSub(2, "ep-other", 12.3714, -1.5197, 5)
		store := &fakeStore{subs: []Subscription{own, other}}
		transport := &fakeTransport{}

		sent, err := newTestEngine(store, transport).DispatchForIncident(ctx, testIncident(), "author-1")

		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Equal(t, []string{"ep-other"}, transport.sent)
	})

	t.Run("category filter excludes other categories", func(t *testing.T) {
		filtered := locatedSub(1, "ep-health-only", 12.3714, -1.5197, 5)
		filtered.CategoryFilter = "health"
		all := locatedSub(2, "ep-all", 12.3714, -1.5197, 5)
		store := &fakeStore{subs: []Subscription{filtered, all}}
		transport := &fakeTransport{}

		sent, err := newTestEngine(store, transport).DispatchForIncident(ctx, testIncident(), "")

		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Equal(t, []string{"ep-all"}, transport.sent)
	})

	t.Run("gone endpoint is pruned without affecting the batch", func(t *testing.T) {
		store := &fakeStore{subs: []Subscription{
			locatedSub(1, "ep-a", 12.3714, -1.5197, 5),
			locatedSub(2, "ep-gone", 12.3714, -1.5197, 5),
			locatedSub(3, "ep-b", 12.3714, -1.5197, 5),
		}}
		transport := &fakeTransport{goneAt: map[string]bool{"ep-gone": true}}

		sent, err := newTestEngine(store, transport).DispatchForIncident(ctx, testIncident(), "")

		require.NoError(t, err)
		assert.Equal(t, 2, sent)
		assert.Equal(t, []string{"ep-gone"}, store.deleted)
		assert.Equal(t, []string{"ep-a", "ep-b"}, transport.sent)
	})

	t.Run("transient failure is dropped without pruning", func(t *testing.T) {
		store := &fakeStore{subs: []Subscription{
			locatedSub(1, "ep-flaky", 12.3714, -1.5197, 5),
			locatedSub(2, "ep-ok", 12.3714, -1.5197, 5),
		}}
		transport := &fakeTransport{failingAt: map[string]bool{"ep-flaky": true}}

		sent, err := newTestEngine(store, transport).DispatchForIncident(ctx, testIncident(), "")

		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Empty(t, store.deleted)
	})

	t.Run("default radius applies when unset", func(t *testing.T) {
		// ~3.3 km away: inside the 5 km default.
		sub := locatedSub(1, "ep-default", 12.4014, -1.5197, 0)
		store := &fakeStore{subs: []Subscription{sub}}
		transport := &fakeTransport{}

		sent, err := newTestEngine(store, transport).DispatchForIncident(ctx, testIncident(), "")

		require.NoError(t, err)
		assert.Equal(t, 1, sent)
	})

	t.Run("store outage is a hard failure", func(t *testing.T) {
		store := &fakeStore{listErr: errors.New("connection refused")}

		_, err := newTestEngine(store, &fakeTransport{}).DispatchForIncident(ctx, testIncident(), "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "list located subscriptions")
	})
}

func TestBroadcast(t *testing.T) {
	ctx := context.Background()

	t.Run("reaches unlocated subscriptions", func(t *testing.T) {
		unlocated := Subscription{ID: 1, Endpoint: "ep-nowhere", Active: true}
		store := &fakeStore{subs: []Subscription{
			unlocated,
			locatedSub(2, "ep-located", 12.37, -1.52, 5),
		}}
		transport := &fakeTransport{}

		sent, err := newTestEngine(store, transport).Broadcast(ctx, Payload{Title: "Maintenance"})

		require.NoError(t, err)
		assert.Equal(t, 2, sent)
	})

	t.Run("pages through large subscriber sets", func(t *testing.T) {
		store := &fakeStore{}
		for i := 1; i <= 450; i++ {
			store.subs = append(store.subs, Subscription{
				ID: int64(i), Endpoint: fmt.Sprintf("ep-%d", i), Active: true,
			})
		}
		transport := &fakeTransport{}
		engine := newTestEngine(store, transport)

		sent, err := engine.Broadcast(ctx, Payload{Title: "Annonce"})

		require.NoError(t, err)
		assert.Equal(t, 450, sent)
		assert.Len(t, transport.sent, 450)
	})

	t.Run("configured batch size drives paging", func(t *testing.T) {
		store := &fakeStore{}
		for i := 1; i <= 450; i++ {
			store.subs = append(store.subs, Subscription{
				ID: int64(i), Endpoint: fmt.Sprintf("ep-%d", i), Active: true,
			})
		}
		transport := &fakeTransport{}
		engine := NewEngine(store, transport, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), 100)

		sent, err := engine.Broadcast(ctx, Payload{Title: "Annonce"})

		require.NoError(t, err)
		assert.Equal(t, 450, sent)
		// 4 full pages of 100, then a short page of 50.
		assert.Equal(t, 5, store.listCalls)
	})

	t.Run("gone endpoints pruned mid-broadcast", func(t *testing.T) {
		store := &fakeStore{subs: []Subscription{
			{ID: 1, Endpoint: "ep-1", Active: true},
			{ID: 2, Endpoint: "ep-2", Active: true},
		}}
		transport := &fakeTransport{goneAt: map[string]bool{"ep-1": true}}

		sent, err := newTestEngine(store, transport).Broadcast(ctx, Payload{Title: "Annonce"})

		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Equal(t, []string{"ep-1"}, store.deleted)
	})
}

func TestIncidentPayload(t *testing.T) {
	t.Run("emergency title for SOS incidents", func(t *testing.T) {
		inc := testIncident()
		inc.IsEmergency = true

		p := incidentPayload(inc)

		assert.Equal(t, "Alerte urgence près de chez vous", p.Title)
		assert.Equal(t, 42, p.IncidentID)
	})

	t.Run("body carries category and location", func(t *testing.T) {
		inc := testIncident()
		inc.LocationLabel = "Marché de Gounghin"

		p := incidentPayload(inc)

		assert.Equal(t, "Incident de sécurité — Marché de Gounghin", p.Body)
		assert.Equal(t, "/reports/42", p.URL)
	})
}
