// Package config loads and validates vtexwatch's runtime configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Proxy         ProxyConfig
	Vtex          VtexConfig
	Probe         ProbeConfig
	Retailers     []RetailerConfig
	Observability ObservabilityConfig
	Server        ServerConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Version     string
	LogLevel    string
}

// ServerConfig holds the ops HTTP server configuration.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	ConnectionString string
	MaxConnections   int32
	MaxIdleTime      time.Duration
	MaxLifetime      time.Duration
}

// RedisConfig holds optional Redis configuration backing pkg/cache and pkg/ratelimit.
// Absent (Host == "") means those packages fall back to in-memory backends.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	Database int
	PoolSize int
	TTL      time.Duration
}

// ProxyConfig holds the optional forward proxy used for all platform traffic.
type ProxyConfig struct {
	URL      string
	Username string
	Password string
}

// VtexConfig holds platform-wide tunables.
type VtexConfig struct {
	CategoryTreeDepth int
	PageSize          int
}

// ProbeConfig holds the Availability Orchestrator's concurrency tunables.
type ProbeConfig struct {
	DegreeOfParallelism int
	MinBatchSize        int
	MaxBatchSize        int
}

// RetailerConfig mirrors one row of the VtexRetailersConfig table.
type RetailerConfig struct {
	RetailerID    int
	RetailerHost  string
	SalesChannels []int
	Enabled       bool
}

// ObservabilityConfig holds tracing/metrics configuration.
type ObservabilityConfig struct {
	OTLPEndpoint      string
	JaegerEndpoint    string
	TraceExporter     string // "otlp", "jaeger", or "noop"
	TraceSampleRatio  float64
	MetricsNamespace  string
}

// Load loads configuration from an optional file, then environment variables
// (prefix VTEXWATCH, "." replaced with "_"), then hardcoded defaults.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("VTEXWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "vtexwatch")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.loglevel", "info")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.readtimeout", "15s")
	v.SetDefault("server.writetimeout", "15s")
	v.SetDefault("server.shutdowntimeout", "30s")

	v.SetDefault("database.maxconnections", 25)
	v.SetDefault("database.maxidletime", "10m")
	v.SetDefault("database.maxlifetime", "30m")

	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.database", 0)
	v.SetDefault("redis.poolsize", 10)
	v.SetDefault("redis.ttl", "5m")

	v.SetDefault("vtex.categorytreedepth", 50)
	v.SetDefault("vtex.pagesize", 50)

	v.SetDefault("probe.degreeofparallelism", 8)
	v.SetDefault("probe.minbatchsize", 20)
	v.SetDefault("probe.maxbatchsize", 50)

	v.SetDefault("observability.traceexporter", "noop")
	v.SetDefault("observability.tracesampleratio", 0.1)
	v.SetDefault("observability.metricsnamespace", "vtexwatch")
}

// Validate enforces every configuration rule, single-field and cross-field
// alike; Config carries no struct-tag validation. A configuration error is
// fatal at startup (spec error kind 7) and is never swallowed by callers.
func (c *Config) Validate() error {
	if c.Database.ConnectionString == "" {
		return fmt.Errorf("database.connectionstring is required")
	}

	validEnvs := map[string]bool{"development": true, "staging": true, "production": true}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid app.environment: %s", c.App.Environment)
	}

	if c.Proxy.URL == "" && (c.Proxy.Username != "" || c.Proxy.Password != "") {
		return fmt.Errorf("proxy username/password set without proxy.url")
	}

	if c.Vtex.CategoryTreeDepth <= 0 {
		return fmt.Errorf("vtex.categorytreedepth must be positive")
	}
	if c.Vtex.PageSize <= 0 {
		return fmt.Errorf("vtex.pagesize must be positive")
	}

	if c.Probe.DegreeOfParallelism <= 0 {
		return fmt.Errorf("probe.degreeofparallelism must be positive")
	}
	if c.Probe.MinBatchSize <= 0 || c.Probe.MaxBatchSize < c.Probe.MinBatchSize {
		return fmt.Errorf("probe.minbatchsize/maxbatchsize must satisfy 0 < min <= max")
	}

	for _, r := range c.Retailers {
		if r.RetailerHost == "" {
			return fmt.Errorf("retailer %d has an empty host", r.RetailerID)
		}
	}

	return nil
}

func (c *Config) IsDevelopment() bool { return c.App.Environment == "development" }
func (c *Config) IsProduction() bool  { return c.App.Environment == "production" }

// RedisAddr returns the Redis address, or "" when Redis is not configured.
func (c *Config) RedisAddr() string {
	if c.Redis.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// ServerAddr returns the ops HTTP server bind address.
func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// EnabledRetailers returns the subset of configured retailers with Enabled
// set, optionally restricted to a single host (spec.md §4.8 hostFilter).
func (c *Config) EnabledRetailers(hostFilter string) []RetailerConfig {
	out := make([]RetailerConfig, 0, len(c.Retailers))
	for _, r := range c.Retailers {
		if !r.Enabled {
			continue
		}
		if hostFilter != "" && r.RetailerHost != hostFilter {
			continue
		}
		out = append(out, r)
	}
	return out
}
