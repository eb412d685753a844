package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "agenthub.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// YAML file is optional; missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// Defaults returns the built-in configuration values.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:       "8080",
			CORSOrigin: "*",
		},
		Postgres: Postgres{
			MaxConns:        10,
			MinConns:        2,
			MaxConnLifetime: time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
			HealthCheck:     time.Minute,
		},
		NATS: NATS{
			URL: "nats://localhost:4222",
		},
		LiteLLM: LiteLLM{
			URL:            "http://localhost:4000",
			Model:          "openai/gpt-4o-mini",
			EmbeddingModel: "openai/text-embedding-3-small",
		},
		Logging: Logging{
			Level:   "info",
			Service: "agenthub",
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
		Cache: Cache{
			MaxSizeMB:  64,
			ProfileTTL: 5 * time.Minute,
		},
		Orchestrator: Orchestrator{
			Temperature:   0.2,
			MaxTokens:     1024,
			HistoryTurns:  10,
			RetrievalTopK: 5,
			ChunkSize:     512,
			ToolTimeout:   30 * time.Second,
		},
		Availability: Availability{
			Enabled:      true,
			PollInterval: 60 * time.Second,
		},
	}
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by caller
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "AGENTHUB_PORT")
	setString(&cfg.Server.CORSOrigin, "AGENTHUB_CORS_ORIGIN")
	setString(&cfg.Postgres.DSN, "DATABASE_URL")
	setInt32(&cfg.Postgres.MaxConns, "AGENTHUB_PG_MAX_CONNS")
	setInt32(&cfg.Postgres.MinConns, "AGENTHUB_PG_MIN_CONNS")
	setDuration(&cfg.Postgres.MaxConnLifetime, "AGENTHUB_PG_MAX_CONN_LIFETIME")
	setDuration(&cfg.Postgres.MaxConnIdleTime, "AGENTHUB_PG_MAX_CONN_IDLE_TIME")
	setDuration(&cfg.Postgres.HealthCheck, "AGENTHUB_PG_HEALTH_CHECK")
	setString(&cfg.NATS.URL, "NATS_URL")
	setString(&cfg.LiteLLM.URL, "LITELLM_URL")
	setString(&cfg.LiteLLM.MasterKey, "LITELLM_MASTER_KEY")
	setString(&cfg.LiteLLM.Model, "AGENTHUB_LLM_MODEL")
	setString(&cfg.LiteLLM.EmbeddingModel, "AGENTHUB_EMBEDDING_MODEL")
	setString(&cfg.Logging.Level, "AGENTHUB_LOG_LEVEL")
	setString(&cfg.Logging.Service, "AGENTHUB_LOG_SERVICE")
	setInt(&cfg.Breaker.MaxFailures, "AGENTHUB_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "AGENTHUB_BREAKER_TIMEOUT")
	setInt64(&cfg.Cache.MaxSizeMB, "AGENTHUB_CACHE_SIZE_MB")
	setDuration(&cfg.Cache.ProfileTTL, "AGENTHUB_CACHE_PROFILE_TTL")
	setFloat64(&cfg.Orchestrator.Temperature, "AGENTHUB_ORCH_TEMPERATURE")
	setInt(&cfg.Orchestrator.MaxTokens, "AGENTHUB_ORCH_MAX_TOKENS")
	setInt(&cfg.Orchestrator.HistoryTurns, "AGENTHUB_ORCH_HISTORY_TURNS")
	setInt(&cfg.Orchestrator.RetrievalTopK, "AGENTHUB_ORCH_RETRIEVAL_TOP_K")
	setInt(&cfg.Orchestrator.ChunkSize, "AGENTHUB_ORCH_CHUNK_SIZE")
	setDuration(&cfg.Orchestrator.ToolTimeout, "AGENTHUB_ORCH_TOOL_TIMEOUT")
	setBool(&cfg.Availability.Enabled, "AGENTHUB_AVAILABLE")
	setDuration(&cfg.Availability.PollInterval, "AGENTHUB_AVAILABILITY_POLL_INTERVAL")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Postgres.DSN == "" {
		return errors.New("postgres.dsn is required")
	}
	if cfg.NATS.URL == "" {
		return errors.New("nats.url is required")
	}
	if cfg.Postgres.MaxConns < 1 {
		return errors.New("postgres.max_conns must be >= 1")
	}
	if cfg.Breaker.MaxFailures < 1 {
		return errors.New("breaker.max_failures must be >= 1")
	}
	if cfg.Orchestrator.RetrievalTopK < 1 {
		return errors.New("orchestrator.retrieval_top_k must be >= 1")
	}
	if cfg.Orchestrator.ChunkSize < 1 {
		return errors.New("orchestrator.chunk_size must be >= 1")
	}
	if cfg.Availability.PollInterval <= 0 {
		return errors.New("availability.poll_interval must be positive")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt32(dst *int32, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 32); err == nil {
			*dst = int32(n)
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
