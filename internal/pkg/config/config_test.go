package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("roadpulse-test")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Storage.Backend)
	assert.Equal(t, 50.0, cfg.Matching.BufferHalfWidthMeters)
	assert.Equal(t, 10000.0, cfg.Matching.RegionRadiusMeters)
	assert.Equal(t, "static", cfg.Scoring.Provider)
	assert.Equal(t, 96.0, cfg.Scoring.StaticCondition)
	assert.Equal(t, "roadpulse-test", cfg.Telemetry.ServiceName)
	assert.Equal(t, 2, cfg.Scoring.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.NATS.PublishTimeout)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("ROADPULSE_STORAGE_BACKEND", "memory")
	t.Setenv("ROADPULSE_MATCHING_BUFFER_HALF_WIDTH_METERS", "25")

	cfg, err := Load("roadpulse-test")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 25.0, cfg.Matching.BufferHalfWidthMeters)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := &Config{
		Server:   ServerConfig{Port: 0, ReadTimeout: 1, WriteTimeout: 1},
		Storage:  StorageConfig{Backend: "mongo"},
		Matching: MatchingConfig{BufferHalfWidthMeters: 50, RegionRadiusMeters: 10000},
		Scoring:  ScoringConfig{Provider: "http"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "storage.backend")
	assert.Contains(t, err.Error(), "scoring.url")
	assert.Contains(t, err.Error(), "scoring.max_attempts")
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 5432, DBName: "roads", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/roads?sslmode=disable", d.DSN())
}
