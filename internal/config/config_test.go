package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "cod_confirm.db", cfg.DBPath)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 48*time.Hour, cfg.OrderExpiry)
	assert.Equal(t, 60, cfg.TokenRateLimit)
	assert.Equal(t, time.Minute, cfg.TokenRateWindow)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("ORDER_EXPIRY_HOUR", "24")
	t.Setenv("TOKEN_RATE_LIMIT", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 24*time.Hour, cfg.OrderExpiry)
	assert.Equal(t, 10, cfg.TokenRateLimit)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("ORDER_EXPIRY_HOUR", "0")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("ORDER_EXPIRY_HOUR", "abc")
	_, err = Load()
	assert.Error(t, err)
}
