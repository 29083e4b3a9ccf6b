package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration loaded from YAML.
type Config struct {
	Environment string           `yaml:"environment" default:"dev"`
	Server      ServerConfig     `yaml:"server"`
	Logging     LoggingConfig    `yaml:"logging"`
	Scoring     ScoringConfig    `yaml:"scoring"`
	Cache       CacheConfig      `yaml:"cache"`
	Kafka       KafkaConfig      `yaml:"kafka"`
	ClickHouse  ClickHouseConfig `yaml:"clickhouse"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	Output string `yaml:"output" default:"stdout"`
}

// ScoringConfig holds orchestrator and batch settings.
type ScoringConfig struct {
	AgentTimeout time.Duration `yaml:"agent_timeout" default:"5s"`
	BatchWorkers int           `yaml:"batch_workers" default:"4" validate:"gt=0,lte=64"`
	// Agents overrides run configuration per agent name. Agents not listed
	// run enabled at weight 1.
	Agents map[string]AgentConfig `yaml:"agents"`
	// Profiles are named weight presets keyed by profile name, then agent
	// name. Supplied by operators; there are no built-in presets.
	Profiles map[string]map[string]float64 `yaml:"profiles"`
}

// AgentConfig is the YAML shape of one agent's run configuration.
type AgentConfig struct {
	Weight  float64 `yaml:"weight" default:"1" validate:"gte=0"`
	Enabled *bool   `yaml:"enabled"`
}

// IsEnabled treats an absent flag as enabled.
func (a AgentConfig) IsEnabled() bool { return a.Enabled == nil || *a.Enabled }

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl" default:"5m"`
	Redis   RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis connection settings. When disabled the cache
// falls back to in-memory storage.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// KafkaConfig holds analysis publisher settings.
type KafkaConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic" default:"stocksage.analyses"`
	RequiredAcks int           `yaml:"required_acks" default:"-1"`
	Compression  string        `yaml:"compression" default:"gzip"`
	MaxAttempts  int           `yaml:"max_attempts" default:"3"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	BatchTimeout time.Duration `yaml:"batch_timeout" default:"1s"`
	Async        bool          `yaml:"async"`
}

// ClickHouseConfig holds analysis history store settings.
type ClickHouseConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Host         string        `yaml:"host" default:"localhost"`
	Port         int           `yaml:"port" default:"9000"`
	Database     string        `yaml:"database" default:"stocksage"`
	User         string        `yaml:"user" default:"default"`
	Password     string        `yaml:"password"`
	DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
}

var validate = validator.New()

// Load reads, defaults and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
		c.Cache.Redis.Enabled = true
		c.Cache.Enabled = true
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
		c.ClickHouse.Enabled = true
	}
	return c, nil
}

// Validate checks structural tags plus the cross-field rules tags can't express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}

	// With an empty agents section every agent runs enabled at weight 1,
	// so only an explicit all-disabled configuration is rejected.
	if len(c.Scoring.Agents) > 0 {
		enabled := false
		for name, a := range c.Scoring.Agents {
			if a.Weight < 0 {
				return fmt.Errorf("scoring.agents.%s.weight must be >= 0", name)
			}
			if a.IsEnabled() {
				enabled = true
			}
		}
		if !enabled {
			return fmt.Errorf("scoring.agents: at least one agent must be enabled")
		}
	}
	for profile, weights := range c.Scoring.Profiles {
		for agent, w := range weights {
			if w < 0 {
				return fmt.Errorf("scoring.profiles.%s.%s: weight must be >= 0", profile, agent)
			}
		}
	}
	return nil
}
