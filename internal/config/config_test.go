package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("WOOCOMMERCE_CONSUMER_KEY", "")
	t.Setenv("WOOCOMMERCE_CONSUMER_SECRET", "")
	t.Setenv("SYNC_CONCURRENCY", "")
	t.Setenv("SYNC_DELAY_MS", "")
	t.Setenv("WOOCOMMERCE_TIMEOUT_SECONDS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.SyncConcurrency)
	assert.Equal(t, time.Second, cfg.SyncDelay)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "/wp-json/wc/v3", cfg.APIPath)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WOOCOMMERCE_URL", "https://shop.example.com/")
	t.Setenv("WOOCOMMERCE_CONSUMER_KEY", "ck_123")
	t.Setenv("WOOCOMMERCE_CONSUMER_SECRET", "cs_456")
	t.Setenv("SYNC_CONCURRENCY", "5")
	t.Setenv("SYNC_DELAY_MS", "250")
	t.Setenv("WOOCOMMERCE_TIMEOUT_SECONDS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 5, cfg.SyncConcurrency)
	assert.Equal(t, 250*time.Millisecond, cfg.SyncDelay)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "https://shop.example.com/wp-json/wc/v3", cfg.BaseURL())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			StoreURL:        "https://shop.example.com",
			ConsumerKey:     "ck",
			ConsumerSecret:  "cs",
			SyncConcurrency: 3,
			SyncDelay:       time.Second,
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing key", func(t *testing.T) {
		c := valid()
		c.ConsumerKey = " "
		assert.ErrorIs(t, c.Validate(), ErrMissingCredentials)
	})

	t.Run("missing secret", func(t *testing.T) {
		c := valid()
		c.ConsumerSecret = ""
		assert.ErrorIs(t, c.Validate(), ErrMissingCredentials)
	})

	t.Run("zero concurrency", func(t *testing.T) {
		c := valid()
		c.SyncConcurrency = 0
		assert.Error(t, c.Validate())
	})

	t.Run("negative delay", func(t *testing.T) {
		c := valid()
		c.SyncDelay = -time.Millisecond
		assert.Error(t, c.Validate())
	})
}

func TestBrokersAndBaseURL(t *testing.T) {
	c := &Config{
		StoreURL:     "https://shop.example.com/",
		APIPath:      "/wp-json/wc/v3/",
		KafkaBrokers: "k1:9092, k2:9092,,",
	}
	assert.Equal(t, "https://shop.example.com/wp-json/wc/v3", c.BaseURL())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, c.Brokers())

	c.KafkaBrokers = ""
	assert.Empty(t, c.Brokers())
}
