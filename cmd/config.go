package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stickyproxy/adapters/myredis"
	"stickyproxy/domain"

	"gopkg.in/alecthomas/kingpin.v2"
	"gopkg.in/yaml.v3"
)

// Env variable names bound to the command line flags.
const (
	envConfigPath    = "CONFIG_PATH"
	envRedisAddr     = "REDIS_ADDR"
	envHTTPPort      = "SERVICE_PORT_HTTP"
	envAdminAddress  = "ADMIN_LISTEN_ADDRESS"
	envTelemetryPath = "TELEMETRY_PATH"
	envGRPCPort      = "SERVICE_PORT_GRPC"
	envLogLevel      = "LOG_LEVEL"
)

// Config holds the full stickyproxy configuration. Listeners, Redis and logging come from flags (or their env
// variables); the node list and routing settings come from the YAML file.
type Config struct {
	HTTPPort      int
	AdminAddress  string
	TelemetryPath string
	GRPCPort      int
	LogLevel      string
	Redis         myredis.RedisConfig
	Proxy         domain.ProxyConfig
}

// yamlConfig is the root of the YAML file. Optional numeric fields are pointers so that an explicit 0 is rejected
// by validation instead of silently replaced by the default.
type yamlConfig struct {
	Nodes           []string `yaml:"nodes"`
	Path            string   `yaml:"path"`
	CheckIntervalMs *int     `yaml:"check_interval_ms"`
	CheckTimeoutMs  *int     `yaml:"check_timeout_ms"`
	KeyPrefix       *string  `yaml:"key_prefix"`
	KeyExpiryS      *int     `yaml:"key_expiry_s"`
	StoreTimeoutMs  *int     `yaml:"store_timeout_ms"`
}

func loadYAMLConfig(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out yamlConfig
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoadConfig parses args (without the program name), falling back to env variables for every flag, then loads and
// validates the YAML file.
//
// Parameters: args - command line arguments, usually os.Args[1:].
//
// Returns: (*Config, nil) on success; (nil, error) on unknown flag, missing CONFIG_PATH/REDIS_ADDR, invalid port,
// unreadable or malformed YAML, or a *domain.ConfigError from domain.ValidateProxyConfig.
//
// Called only from main at startup.
func LoadConfig(args []string) (*Config, error) {
	app := kingpin.New("stickyproxy", "Sticky-session reverse proxy for socket.io backends.")
	app.HelpFlag.Short('h')
	configPath := app.Flag("config.file", "Path to the YAML configuration file.").Envar(envConfigPath).String()
	redisAddr := app.Flag("redis.addr", "Redis URL holding session bindings, e.g. redis://localhost:6379/0.").Envar(envRedisAddr).String()
	httpPort := app.Flag("port", "Public proxy port.").Envar(envHTTPPort).Int()
	adminAddress := app.Flag("web.listen-address", "Address to listen on for the admin API and telemetry.").Envar(envAdminAddress).Default(":9090").String()
	telemetryPath := app.Flag("web.telemetry-path", "Path under which to expose metrics.").Envar(envTelemetryPath).Default("/metrics").String()
	grpcPort := app.Flag("grpc-health.port", "gRPC health service port, 0 disables it.").Envar(envGRPCPort).Default("0").Int()
	logLevel := app.Flag("log.level", "Only log messages with the given severity or above.").Envar(envLogLevel).Default("info").Enum("debug", "info", "warn", "error")

	if _, err := app.Parse(args); err != nil {
		return nil, err
	}

	if strings.TrimSpace(*configPath) == "" {
		return nil, fmt.Errorf("%s is required", envConfigPath)
	}
	if strings.TrimSpace(*redisAddr) == "" {
		return nil, fmt.Errorf("%s is required", envRedisAddr)
	}
	if *httpPort <= 0 || *httpPort > 65535 {
		return nil, fmt.Errorf("%s must be 1-65535, got %d", envHTTPPort, *httpPort)
	}
	if *grpcPort < 0 || *grpcPort > 65535 {
		return nil, fmt.Errorf("%s must be 0-65535, got %d", envGRPCPort, *grpcPort)
	}
	if !strings.HasPrefix(*telemetryPath, "/") {
		return nil, fmt.Errorf("%s must start with /", envTelemetryPath)
	}

	path, err := filepath.Abs(strings.TrimSpace(*configPath))
	if err != nil {
		return nil, err
	}
	raw, err := loadYAMLConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	proxy, err := toProxyConfig(raw)
	if err != nil {
		return nil, err
	}

	return &Config{
		HTTPPort:      *httpPort,
		AdminAddress:  *adminAddress,
		TelemetryPath: *telemetryPath,
		GRPCPort:      *grpcPort,
		LogLevel:      *logLevel,
		Redis:         myredis.RedisConfig{Addr: strings.TrimSpace(*redisAddr), Timeout: proxy.StoreTimeout},
		Proxy:         proxy,
	}, nil
}

// toProxyConfig parses node addresses, applies defaults for omitted fields and validates the result.
func toProxyConfig(raw *yamlConfig) (domain.ProxyConfig, error) {
	cfg := domain.ProxyConfig{
		Path:          domain.DefaultPath,
		CheckInterval: domain.DefaultCheckInterval,
		CheckTimeout:  domain.DefaultCheckTimeout,
		KeyPrefix:     domain.DefaultKeyPrefix,
		KeyExpiry:     domain.DefaultKeyExpiry,
		StoreTimeout:  domain.DefaultStoreTimeout,
	}
	for i, addr := range raw.Nodes {
		node, err := domain.ParseNode(strings.TrimSpace(addr))
		if err != nil {
			return domain.ProxyConfig{}, &domain.ConfigError{Field: fmt.Sprintf("nodes[%d]", i), Reason: err.Error()}
		}
		cfg.Nodes = append(cfg.Nodes, node)
	}
	if p := strings.TrimSpace(raw.Path); p != "" {
		cfg.Path = p
	}
	if raw.CheckIntervalMs != nil {
		cfg.CheckInterval = time.Duration(*raw.CheckIntervalMs) * time.Millisecond
	}
	if raw.CheckTimeoutMs != nil {
		cfg.CheckTimeout = time.Duration(*raw.CheckTimeoutMs) * time.Millisecond
	}
	if raw.KeyPrefix != nil {
		cfg.KeyPrefix = *raw.KeyPrefix
	}
	if raw.KeyExpiryS != nil {
		cfg.KeyExpiry = time.Duration(*raw.KeyExpiryS) * time.Second
	}
	if raw.StoreTimeoutMs != nil {
		cfg.StoreTimeout = time.Duration(*raw.StoreTimeoutMs) * time.Millisecond
	}
	if err := domain.ValidateProxyConfig(cfg); err != nil {
		return domain.ProxyConfig{}, err
	}
	return cfg, nil
}
