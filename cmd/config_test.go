package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"stickyproxy/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, name := range []string{envConfigPath, envRedisAddr, envHTTPPort, envAdminAddress, envTelemetryPath, envGRPCPort, envLogLevel} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	cfgPath := filepath.Join(t.TempDir(), "stickyproxy.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))
	return cfgPath
}

func TestLoadConfig_EnvAndDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv(envConfigPath, writeConfig(t, `
nodes:
  - localhost:3001
  - localhost:3002
`))
	t.Setenv(envRedisAddr, "redis://localhost:6379/0")
	t.Setenv(envHTTPPort, "8080")

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, ":9090", cfg.AdminAddress)
	assert.Equal(t, "/metrics", cfg.TelemetryPath)
	assert.Equal(t, 0, cfg.GRPCPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.Addr)
	assert.Equal(t, time.Second, cfg.Redis.Timeout)

	require.Len(t, cfg.Proxy.Nodes, 2)
	assert.Equal(t, "localhost:3001", cfg.Proxy.Nodes[0].Host)
	assert.Equal(t, 3002, cfg.Proxy.Nodes[1].Port)
	assert.Equal(t, domain.NodeDown, cfg.Proxy.Nodes[0].State)
	assert.Equal(t, "/socket.io/", cfg.Proxy.Path)
	assert.Equal(t, 2*time.Second, cfg.Proxy.CheckInterval)
	assert.Equal(t, time.Second, cfg.Proxy.CheckTimeout)
	assert.Equal(t, "socket.io#", cfg.Proxy.KeyPrefix)
	assert.Equal(t, 60*time.Second, cfg.Proxy.KeyExpiry)
	assert.Equal(t, time.Second, cfg.Proxy.StoreTimeout)
}

func TestLoadConfig_YAMLOverridesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv(envRedisAddr, "redis://localhost:6379")
	t.Setenv(envHTTPPort, "8080")
	t.Setenv(envConfigPath, writeConfig(t, `
nodes: ["node1:3000"]
path: /engine.io/
check_interval_ms: 500
check_timeout_ms: 250
key_prefix: "app:"
key_expiry_s: 120
store_timeout_ms: 300
`))

	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "/engine.io/", cfg.Proxy.Path)
	assert.Equal(t, 500*time.Millisecond, cfg.Proxy.CheckInterval)
	assert.Equal(t, 250*time.Millisecond, cfg.Proxy.CheckTimeout)
	assert.Equal(t, "app:", cfg.Proxy.KeyPrefix)
	assert.Equal(t, 2*time.Minute, cfg.Proxy.KeyExpiry)
	assert.Equal(t, 300*time.Millisecond, cfg.Proxy.StoreTimeout)
	assert.Equal(t, 300*time.Millisecond, cfg.Redis.Timeout)
}

func TestLoadConfig_FlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	cfgPath := writeConfig(t, `nodes: ["node1:3000"]`)
	t.Setenv(envHTTPPort, "8080")
	t.Setenv(envLogLevel, "warn")

	cfg, err := LoadConfig([]string{
		"--config.file", cfgPath,
		"--redis.addr", "redis://redis:6379",
		"--port", "3000",
		"--web.listen-address", ":9191",
		"--web.telemetry-path", "/internal/metrics",
		"--grpc-health.port", "50051",
		"--log.level", "debug",
	})
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.HTTPPort)
	assert.Equal(t, ":9191", cfg.AdminAddress)
	assert.Equal(t, "/internal/metrics", cfg.TelemetryPath)
	assert.Equal(t, 50051, cfg.GRPCPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "redis://redis:6379", cfg.Redis.Addr)
}

func TestLoadConfig_Errors(t *testing.T) {
	validYAML := `nodes: ["node1:3000"]`
	tests := []struct {
		name    string
		env     map[string]string
		yaml    string
		args    []string
		wantErr string
	}{
		{
			name:    "config_path_missing",
			env:     map[string]string{envRedisAddr: "redis://r:6379", envHTTPPort: "8080"},
			wantErr: "CONFIG_PATH is required",
		},
		{
			name:    "redis_addr_missing",
			env:     map[string]string{envHTTPPort: "8080"},
			yaml:    validYAML,
			wantErr: "REDIS_ADDR is required",
		},
		{
			name:    "port_missing",
			env:     map[string]string{envRedisAddr: "redis://r:6379"},
			yaml:    validYAML,
			wantErr: "SERVICE_PORT_HTTP must be 1-65535",
		},
		{
			name:    "port_out_of_range",
			env:     map[string]string{envRedisAddr: "redis://r:6379", envHTTPPort: "70000"},
			yaml:    validYAML,
			wantErr: "SERVICE_PORT_HTTP must be 1-65535",
		},
		{
			name:    "port_not_a_number",
			env:     map[string]string{envRedisAddr: "redis://r:6379", envHTTPPort: "http"},
			yaml:    validYAML,
			wantErr: "",
		},
		{
			name:    "telemetry_path_relative",
			env:     map[string]string{envRedisAddr: "redis://r:6379", envHTTPPort: "8080", envTelemetryPath: "metrics"},
			yaml:    validYAML,
			wantErr: "TELEMETRY_PATH must start with /",
		},
		{
			name:    "unknown_log_level",
			env:     map[string]string{envRedisAddr: "redis://r:6379", envHTTPPort: "8080", envLogLevel: "verbose"},
			yaml:    validYAML,
			wantErr: "verbose",
		},
		{
			name:    "unknown_flag",
			env:     map[string]string{envRedisAddr: "redis://r:6379", envHTTPPort: "8080"},
			yaml:    validYAML,
			args:    []string{"--no-such-flag"},
			wantErr: "no-such-flag",
		},
		{
			name:    "malformed_yaml",
			env:     map[string]string{envRedisAddr: "redis://r:6379", envHTTPPort: "8080"},
			yaml:    "nodes: [",
			wantErr: "load config",
		},
		{
			name:    "no_nodes",
			env:     map[string]string{envRedisAddr: "redis://r:6379", envHTTPPort: "8080"},
			yaml:    "path: /socket.io/",
			wantErr: "config nodes: at least one node is required",
		},
		{
			name:    "invalid_node",
			env:     map[string]string{envRedisAddr: "redis://r:6379", envHTTPPort: "8080"},
			yaml:    `nodes: ["node1"]`,
			wantErr: "config nodes[0]",
		},
		{
			name:    "explicit_zero_interval",
			env:     map[string]string{envRedisAddr: "redis://r:6379", envHTTPPort: "8080"},
			yaml:    "nodes: [\"node1:3000\"]\ncheck_interval_ms: 0",
			wantErr: "config check_interval_ms: must be positive",
		},
		{
			name:    "sub_second_expiry",
			env:     map[string]string{envRedisAddr: "redis://r:6379", envHTTPPort: "8080"},
			yaml:    "nodes: [\"node1:3000\"]\nkey_expiry_s: 0",
			wantErr: "config key_expiry_s",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if tt.yaml != "" {
				t.Setenv(envConfigPath, writeConfig(t, tt.yaml))
			}

			cfg, err := LoadConfig(tt.args)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_ValidationErrorIsConfigError(t *testing.T) {
	clearEnv(t)
	t.Setenv(envRedisAddr, "redis://r:6379")
	t.Setenv(envHTTPPort, "8080")
	t.Setenv(envConfigPath, writeConfig(t, "nodes: [\"a:1\", \"a:1\"]"))

	_, err := LoadConfig(nil)
	var cfgErr *domain.ConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, "nodes[1]", cfgErr.Field)
}
