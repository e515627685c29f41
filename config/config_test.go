package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"STORAGE_BACKEND", "CART_KEY", "KAFKA_BROKERS", "CHECKOUT_DELAY_MS"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "cart", cfg.Cart.Key)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, 2*time.Second, cfg.Checkout.Delay)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "redis")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("KAFKA_BROKERS", "k1:9092, ,k2:9092")
	t.Setenv("CHECKOUT_DELAY_MS", "50")

	cfg := Load()

	assert.Equal(t, "redis", cfg.Storage.Backend)
	assert.Equal(t, 3, cfg.Storage.Redis.DB)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 50*time.Millisecond, cfg.Checkout.Delay)
}

func TestLoadRejectsNegativeDelay(t *testing.T) {
	t.Setenv("CHECKOUT_DELAY_MS", "-5")

	cfg := Load()

	assert.Equal(t, 2*time.Second, cfg.Checkout.Delay)
}
