package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/fretlog/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:               ":8080",
		DBPath:             "test.db",
		LogLevel:           "INFO",
		RemoteBaseURL:      "https://backend.example.com",
		RemoteAPIKey:       "key",
		SyncInterval:       5 * time.Minute,
		SyncWorkerCount:    1,
		SyncQueueSize:      16,
		DecaySweepInterval: 12 * time.Hour,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
}

func TestValidate_EmptyDBPath(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = ""

	err := cfg.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PATH cannot be empty")
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		wantErr bool
	}{
		{name: "invalid level", level: "INVALID", wantErr: true},
		{name: "empty level", level: "", wantErr: true},
		{name: "lowercase valid level", level: "debug", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.LogLevel = tt.level

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "LOG_LEVEL")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidate_InvalidSyncSettings(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*config.Config)
		expectedError string
	}{
		{
			name:          "zero sync interval",
			mutate:        func(c *config.Config) { c.SyncInterval = 0 },
			expectedError: "SYNC_INTERVAL",
		},
		{
			name:          "zero sync workers",
			mutate:        func(c *config.Config) { c.SyncWorkerCount = 0 },
			expectedError: "SYNC_WORKER_COUNT",
		},
		{
			name:          "negative queue size",
			mutate:        func(c *config.Config) { c.SyncQueueSize = -1 },
			expectedError: "SYNC_QUEUE_SIZE",
		},
		{
			name:          "zero decay sweep interval",
			mutate:        func(c *config.Config) { c.DecaySweepInterval = 0 },
			expectedError: "DECAY_SWEEP_INTERVAL",
		},
		{
			name: "api key without base url",
			mutate: func(c *config.Config) {
				c.RemoteBaseURL = ""
				c.RemoteAPIKey = "key"
			},
			expectedError: "REMOTE_API_KEY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectedError)
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := config.Config{
		Addr:            "",
		DBPath:          "",
		LogLevel:        "INVALID",
		SyncInterval:    0,
		SyncWorkerCount: 0,
		SyncQueueSize:   0,
	}

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "ADDR cannot be empty")
	assert.Contains(t, errStr, "DB_PATH cannot be empty")
	assert.Contains(t, errStr, "LOG_LEVEL")
	assert.Contains(t, errStr, "SYNC_INTERVAL")
	assert.Contains(t, errStr, "SYNC_WORKER_COUNT")
	assert.Contains(t, errStr, "SYNC_QUEUE_SIZE")
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DB_PATH", "custom.db")
	t.Setenv("SYNC_INTERVAL", "30s")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "custom.db", cfg.DBPath)
	assert.Equal(t, 30*time.Second, cfg.SyncInterval)
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ADDR", "DB_PATH", "SYNC_INTERVAL", "SYNC_WORKER_COUNT", "SYNC_QUEUE_SIZE"} {
		if v := os.Getenv(key); v != "" {
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}

	cfg := config.Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 5*time.Minute, cfg.SyncInterval)
	assert.Equal(t, 1, cfg.SyncWorkerCount)
	assert.Equal(t, 16, cfg.SyncQueueSize)
	assert.Equal(t, 12*time.Hour, cfg.DecaySweepInterval)
}
