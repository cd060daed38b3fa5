package domain

import "time"

// Config holds the complete Warden configuration.
type Config struct {
	// Server settings
	Server ServerConfig `koanf:"server"`

	// Tier determines feature availability
	Tier Tier `koanf:"tier"`

	// Component configurations
	Repository RepositoryConfig `koanf:"repository"`
	Cache      CacheConfig      `koanf:"cache"`
	EventBus   EventBusConfig   `koanf:"eventBus"`

	// Auth settings
	Auth AuthConfig `koanf:"auth"`

	// Engine window sizes applied at the handler boundary
	Windows WindowConfig `koanf:"windows"`

	// Observability
	Logging LoggingConfig `koanf:"logging"`
	Tracing TracingConfig `koanf:"tracing"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `koanf:"host"`
	Port         int    `koanf:"port"`
	ReadTimeout  int    `koanf:"readTimeout"`  // seconds
	WriteTimeout int    `koanf:"writeTimeout"` // seconds
}

// AuthConfig holds JWT and password settings.
type AuthConfig struct {
	SigningKey string `koanf:"signingKey"`
	Issuer     string `koanf:"issuer"`
	Audience   string `koanf:"audience"`
	TokenTTL   int    `koanf:"tokenTtl"` // minutes
}

// WindowConfig bounds the record windows fed into the scoring engines.
// The engines themselves are window-agnostic; handlers apply these limits
// when querying storage.
type WindowConfig struct {
	// IncidentWindow is the number of most recent incidents used for
	// behavior scoring.
	IncidentWindow int `koanf:"incidentWindow"`

	// RatingWindow is the number of most recent ratings used for the
	// rating summary.
	RatingWindow int `koanf:"ratingWindow"`

	// ReferenceTTL is the retention for cached registry records, in seconds.
	ReferenceTTL int `koanf:"referenceTtl"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json, text
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled      bool   `koanf:"enabled"`
	ServiceName  string `koanf:"serviceName"`
	ExporterType string `koanf:"exporterType"` // stdout, otlp, jaeger
	Endpoint     string `koanf:"endpoint"`
}

// Tier represents the product tier.
type Tier string

const (
	// TierCommunity is the free tier with SQLite + channels
	TierCommunity Tier = "community"

	// TierPro is the paid tier with PostgreSQL + NATS + Redis
	TierPro Tier = "pro"
)

// DefaultConfig returns a default configuration for Community tier.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Tier: TierCommunity,
		Repository: RepositoryConfig{
			Driver:     "sqlite",
			SQLitePath: "./warden.db",
		},
		Cache: CacheConfig{
			Type:         "memory",
			LocalMaxSize: 10000,
			LocalTTL:     5 * time.Minute,
		},
		EventBus: EventBusConfig{
			Type:              "channel",
			ChannelBufferSize: 1000,
		},
		Auth: AuthConfig{
			Issuer:   "warden",
			Audience: "warden-api",
			TokenTTL: 60,
		},
		Windows: WindowConfig{
			IncidentWindow: 50,
			RatingWindow:   10,
			ReferenceTTL:   300,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "warden",
		},
	}
}

// ProConfig returns a configuration for Pro tier.
func ProConfig() *Config {
	cfg := DefaultConfig()
	cfg.Tier = TierPro
	cfg.Repository = RepositoryConfig{
		Driver:       "postgres",
		PostgresHost: "localhost",
		PostgresPort: 5432,
		PostgresDB:   "warden",
	}
	cfg.Cache = CacheConfig{
		Type:           "redis",
		RedisAddr:      "localhost:6379",
		EnableTwoPhase: true,
		LocalMaxSize:   1000,
	}
	cfg.EventBus = EventBusConfig{
		Type:              "nats",
		NATSUrl:           "nats://localhost:4222",
		NATSMaxReconnects: 10,
		NATSReconnectWait: 5,
	}
	cfg.Tracing.Enabled = true
	return cfg
}
