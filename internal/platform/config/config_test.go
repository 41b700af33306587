package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	v, err := Load("CFGTEST")
	require.NoError(t, err)

	assert.Equal(t, "development", GetAppEnv(v))
	assert.Equal(t, ":8080", GetServicePort(v, "SERVICE_PORT"))

	db := LoadDatabaseConfig(v, "DB_NAME")
	assert.Equal(t, "localhost", db.Host)
	assert.Equal(t, 30*time.Minute, db.ConnMaxLifetime)

	jwt := LoadJWTConfig(v)
	assert.Equal(t, 15*time.Minute, jwt.AccessTTL)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CFGTEST_SERVICE_PORT", "9090")
	t.Setenv("CFGTEST_KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("CFGTEST_DB_NAME", "reservations")

	v, err := Load("CFGTEST")
	require.NoError(t, err)

	assert.Equal(t, ":9090", GetServicePort(v, "SERVICE_PORT"))
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, LoadKafkaConfig(v).Brokers)
	assert.Equal(t, "reservations", LoadDatabaseConfig(v, "DB_NAME").DBName)
}
