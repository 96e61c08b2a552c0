package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/burkinawatch_test")

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 200, cfg.FanoutBatchSize)
		assert.Equal(t, 10*time.Minute, cfg.ZoneCacheTTL)
		assert.Equal(t, 5*time.Minute, cfg.CacheEvictInterval)
		assert.False(t, cfg.PushEnabled())
		assert.False(t, cfg.IsProduction())
	})

	t.Run("fan-out batch size is tunable", func(t *testing.T) {
		t.Setenv("FANOUT_BATCH_SIZE", "50")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 50, cfg.FanoutBatchSize)
	})

	t.Run("push requires both VAPID keys", func(t *testing.T) {
		t.Setenv("VAPID_PUBLIC_KEY", "pub")

		cfg, err := Load()
		require.NoError(t, err)
		assert.False(t, cfg.PushEnabled())

		t.Setenv("VAPID_PRIVATE_KEY", "priv")
		cfg, err = Load()
		require.NoError(t, err)
		assert.True(t, cfg.PushEnabled())
	})

	t.Run("missing database url is an error", func(t *testing.T) {
		t.Setenv("DATABASE_URL", "")
		t.Setenv("POSTGRES_URL", "")

		_, err := Load()
		assert.Error(t, err)
	})
}
