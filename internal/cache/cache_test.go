package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache(t *testing.T) {
	t.Run("set then get round-trips data and etag", func(t *testing.T) {
		c := New(true, time.Minute)

		etag := c.Set(KeyRiskZones, []byte(`[{"id":"z1"}]`), time.Minute)

		data, got, ok := c.Get(KeyRiskZones)
		require.True(t, ok)
		assert.Equal(t, etag, got)
		assert.Equal(t, `[{"id":"z1"}]`, string(data))
	})

	t.Run("expired entries miss", func(t *testing.T) {
		c := New(true, time.Minute)
		c.Set(KeyRiskZones, []byte("[]"), -time.Second)

		_, _, ok := c.Get(KeyRiskZones)
		assert.False(t, ok)
	})

	t.Run("disabled cache never hits but still computes etags", func(t *testing.T) {
		c := New(false, 0)

		etag := c.Set(KeyRiskZones, []byte("[]"), time.Minute)

		assert.NotEmpty(t, etag)
		_, _, ok := c.Get(KeyRiskZones)
		assert.False(t, ok)
	})

	t.Run("evict removes only expired entries", func(t *testing.T) {
		c := New(true, time.Minute)
		c.Set("stale", []byte("a"), -time.Second)
		c.Set("fresh", []byte("b"), time.Minute)

		c.evict()

		stats := c.Stats()
		assert.Equal(t, 1, stats["total_keys"])
		_, _, ok := c.Get("fresh")
		assert.True(t, ok)
	})
}

func TestCheckETagMatch(t *testing.T) {
	etag := ComputeETag([]byte("[]"))

	tests := []struct {
		name        string
		ifNoneMatch string
		want        bool
	}{
		{"empty header", "", false},
		{"wildcard", "*", true},
		{"exact match", etag, true},
		{"mismatch", `W/"deadbeef"`, false},
		{"match within a list", `W/"deadbeef", ` + etag, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CheckETagMatch(tt.ifNoneMatch, etag))
		})
	}
}
