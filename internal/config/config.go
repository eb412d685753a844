// Package config provides hierarchical configuration loading for AgentHub.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the AgentHub service.
type Config struct {
	Server       Server       `yaml:"server"`
	Postgres     Postgres     `yaml:"postgres"`
	NATS         NATS         `yaml:"nats"`
	LiteLLM      LiteLLM      `yaml:"litellm"`
	Logging      Logging      `yaml:"logging"`
	Breaker      Breaker      `yaml:"breaker"`
	Cache        Cache        `yaml:"cache"`
	Orchestrator Orchestrator `yaml:"orchestrator"`
	Availability Availability `yaml:"availability"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

// Postgres holds PostgreSQL connection configuration.
type Postgres struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	HealthCheck     time.Duration `yaml:"health_check"`
}

// NATS holds NATS JetStream configuration.
type NATS struct {
	URL string `yaml:"url"`
}

// LiteLLM holds LiteLLM proxy configuration.
type LiteLLM struct {
	URL            string `yaml:"url"`
	MasterKey      string `yaml:"master_key"`
	Model          string `yaml:"model"`           // default chat model
	EmbeddingModel string `yaml:"embedding_model"` // default embedding model
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// Breaker holds circuit breaker configuration for outbound LLM calls.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Cache holds in-process cache configuration.
type Cache struct {
	MaxSizeMB  int64         `yaml:"max_size_mb"`
	ProfileTTL time.Duration `yaml:"profile_ttl"`
}

// Orchestrator holds chat orchestration configuration.
type Orchestrator struct {
	Temperature   float64       `yaml:"temperature"`     // sampling temperature for skills (default: 0.2)
	MaxTokens     int           `yaml:"max_tokens"`      // max tokens per skill response (default: 1024)
	HistoryTurns  int           `yaml:"history_turns"`   // recent turns included in prompts (default: 10)
	RetrievalTopK int           `yaml:"retrieval_top_k"` // chunks retrieved for grounding (default: 5)
	ChunkSize     int           `yaml:"chunk_size"`      // max ingestion chunk size in bytes (default: 512)
	ToolTimeout   time.Duration `yaml:"tool_timeout"`    // bound on a single tool invocation (default: 30s)
}

// Availability holds the background availability watcher configuration.
type Availability struct {
	Enabled      bool          `yaml:"enabled"`       // desired availability flag, re-read each tick
	PollInterval time.Duration `yaml:"poll_interval"` // watcher tick interval (default: 60s)
}
