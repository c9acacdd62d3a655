package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "connwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, 5*time.Second, cfg.Monitor.Interval)
	require.Equal(t, 3, cfg.Monitor.OutageThreshold)
	require.Equal(t, 600, cfg.Monitor.HistoryCapacity)
	require.Len(t, cfg.Monitor.Endpoints, 3)
	require.Len(t, cfg.Diagnostics.Endpoints, 4)
	require.Equal(t, "beacon", cfg.Diagnostics.Endpoints[3].Mode)
	require.Empty(t, cfg.Redis.URL)
	require.Empty(t, cfg.DB.URL)
	require.Empty(t, cfg.RabbitMQ.BrokerLink)
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, `
port: 9090
monitor:
  interval: 2s
  outage_threshold: 5
  endpoints:
    - name: local
      url: http://127.0.0.1:8081/ping
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Port)
	require.Equal(t, 2*time.Second, cfg.Monitor.Interval)
	require.Equal(t, 5, cfg.Monitor.OutageThreshold)
	require.Equal(t, []EndpointConfig{{Name: "local", URL: "http://127.0.0.1:8081/ping"}}, cfg.Monitor.Endpoints)
	// untouched keys keep their defaults
	require.Equal(t, 30, cfg.Monitor.StatusWindow)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "monitor:\n  outage_threshold: 5\n")
	t.Setenv("MONITOR_OUTAGE_THRESHOLD", "7")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Monitor.OutageThreshold)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "port out of range", body: "port: 70000\n"},
		{name: "unknown probe mode", body: "monitor:\n  endpoints:\n    - name: x\n      url: https://x.example\n      mode: ping\n"},
		{name: "endpoint without url", body: "diagnostics:\n  endpoints:\n    - name: x\n"},
		{name: "short auth secret", body: "auth:\n  secret: short\n"},
		{name: "success rate above one", body: "monitor:\n  min_success_rate: 1.5\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tc.body))
			require.ErrorContains(t, err, "config validation failed")
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorContains(t, err, "read config")
}
