package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("POS_API_BASE", "http://pos.local/api/")
	t.Setenv("KAFKA_BROKERS", "")

	cfg := Load()

	assert.Equal(t, "http://pos.local/api", cfg.API.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, "X-XSRF-TOKEN", cfg.Auth.CSRFHeader)
	assert.Equal(t, "jwt", cfg.Auth.SessionCookie)
	assert.Equal(t, 3, cfg.Auth.AuthFailureThreshold)
	assert.Equal(t, 150*time.Millisecond, cfg.Receipt.SettleDelay)
	assert.False(t, cfg.Kafka.Enabled)
}

func TestLoadKafkaBrokers(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("AUTH_FAILURE_THRESHOLD", "0")

	cfg := Load()

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled)
	assert.Equal(t, 3, cfg.Auth.AuthFailureThreshold)
}
