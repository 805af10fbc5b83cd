package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg := Load(viper.New())

	assert.Equal(t, "sweetshop", cfg.ServiceName)
	assert.Equal(t, 8080, cfg.ServerPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 15*time.Minute, cfg.AccessTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshTTL)
	assert.Equal(t, "sweet_events", cfg.KafkaTopic)
	assert.Equal(t, "sweets", cfg.ESIndex)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoad_Overrides(t *testing.T) {
	t.Parallel()

	v := viper.New()
	v.Set("SERVER_PORT", 9000)
	v.Set("ACCESS_TTL", "5m")
	v.Set("KAFKA_BROKERS", "k1:9092, k2:9092")
	v.Set("JWT_SECRET", "a")

	cfg := Load(v)

	assert.Equal(t, 9000, cfg.ServerPort)
	assert.Equal(t, 5*time.Minute, cfg.AccessTTL)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, []byte("a"), cfg.JWTAccessSecret)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cfg := Load(viper.New())
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_REFRESH_SECRET")

	cfg.DatabaseURL = "postgres://x"
	cfg.JWTAccessSecret = []byte("a")
	cfg.JWTRefreshSecret = []byte("b")
	assert.NoError(t, cfg.Validate())
}
