package database

import (
	"testing"
	"time"

	"github.com/BradenHooton/tasktrack/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPoolConfig_AppliesSettings(t *testing.T) {
	cfg := &config.DatabaseConfig{
		Host: "db", Port: 5433, User: "app", Password: "pw", Name: "tasks", SSLMode: "disable",
		MaxConns:          12,
		MinConns:          2,
		MaxConnLifetime:   30 * time.Minute,
		MaxConnIdleTime:   5 * time.Minute,
		HealthCheckPeriod: 45 * time.Second,
		ConnectTimeout:    3 * time.Second,
	}

	poolConfig, err := buildPoolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(12), poolConfig.MaxConns)
	assert.Equal(t, int32(2), poolConfig.MinConns)
	assert.Equal(t, 30*time.Minute, poolConfig.MaxConnLifetime)
	assert.Equal(t, 5*time.Minute, poolConfig.MaxConnIdleTime)
	assert.Equal(t, 45*time.Second, poolConfig.HealthCheckPeriod)
	assert.Equal(t, 3*time.Second, poolConfig.ConnConfig.ConnectTimeout)
	assert.Equal(t, "db", poolConfig.ConnConfig.Host)
	assert.Equal(t, uint16(5433), poolConfig.ConnConfig.Port)
	assert.Equal(t, "tasks", poolConfig.ConnConfig.Database)
	assert.Equal(t, applicationName, poolConfig.ConnConfig.RuntimeParams["application_name"])
}

func TestBuildPoolConfig_KeepsApplicationNameFromURL(t *testing.T) {
	cfg := &config.DatabaseConfig{
		URL:            "postgres://app:pw@db:5432/tasks?application_name=worker",
		MaxConns:       4,
		ConnectTimeout: time.Second,
	}

	poolConfig, err := buildPoolConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "worker", poolConfig.ConnConfig.RuntimeParams["application_name"])
}

func TestBuildPoolConfig_InvalidDSN(t *testing.T) {
	_, err := buildPoolConfig(&config.DatabaseConfig{URL: "postgres://%zz"})
	assert.Error(t, err)
}
