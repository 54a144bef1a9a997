// Package config provides hierarchical configuration loading for reviewd.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the reviewd daemon.
type Config struct {
	Server   Server   `yaml:"server"`
	Agent    Agent    `yaml:"agent"`
	Services Services `yaml:"services"`
	AI       AI       `yaml:"ai"`
	OCR      OCR      `yaml:"ocr"`
	NATS     NATS     `yaml:"nats"`
	Cache    Cache    `yaml:"cache"`
	Logging  Logging  `yaml:"logging"`
	Breaker  Breaker  `yaml:"breaker"`
}

// Server holds HTTP server configuration for the operator API.
type Server struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

// Agent holds the initial orchestrator state. These values seed the runtime
// state at startup; after that the operator API mutates them live.
type Agent struct {
	Enabled   bool      `yaml:"enabled"`
	Mode      string    `yaml:"mode"` // "OFF" | "DRY_RUN" | "AUTO"
	Workflows Workflows `yaml:"workflows"`
	Polling   Polling   `yaml:"polling"`
}

// Workflows holds per-workflow enable flags.
type Workflows struct {
	KYC         bool `yaml:"kyc"`
	Loans       bool `yaml:"loans"`
	Cards       bool `yaml:"cards"`
	Salary      bool `yaml:"salary"`
	SelfService bool `yaml:"self_service"`
}

// Polling holds scheduler configuration.
type Polling struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// Services holds base URLs of the owning backend services.
type Services struct {
	UserURL        string `yaml:"user_url"`
	AccountURL     string `yaml:"account_url"`
	LoanURL        string `yaml:"loan_url"`
	CardURL        string `yaml:"card_url"`
	SelfServiceURL string `yaml:"self_service_url"`
}

// AI holds reasoner configuration.
type AI struct {
	Provider string  `yaml:"provider"` // "noop" | "litellm"
	LiteLLM  LiteLLM `yaml:"litellm"`
}

// LiteLLM holds LiteLLM proxy configuration for the LLM-backed reasoner.
type LiteLLM struct {
	URL         string  `yaml:"url"`
	MasterKey   string  `yaml:"master_key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

// OCR holds evidence extractor configuration.
type OCR struct {
	Provider string `yaml:"provider"` // "noop" | "content"
}

// NATS holds NATS JetStream configuration for decision events.
// An empty URL disables event publishing.
type NATS struct {
	URL string `yaml:"url"`
}

// Cache holds document-text cache configuration.
type Cache struct {
	DocTextMaxSizeMB int64         `yaml:"doc_text_max_size_mb"`
	DocTextTTL       time.Duration `yaml:"doc_text_ttl"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// Breaker holds circuit breaker configuration for outbound calls.
type Breaker struct {
	MaxFailures int           `yaml:"max_failures"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:       "8090",
			CORSOrigin: "http://localhost:3000",
		},
		Agent: Agent{
			Enabled: false,
			Mode:    "OFF",
			Workflows: Workflows{
				KYC:         true,
				Loans:       true,
				Cards:       true,
				Salary:      true,
				SelfService: true,
			},
			Polling: Polling{
				Enabled:  true,
				Interval: 30 * time.Second,
			},
		},
		Services: Services{
			UserURL:        "http://localhost:8081",
			AccountURL:     "http://localhost:8082",
			LoanURL:        "http://localhost:8083",
			CardURL:        "http://localhost:8084",
			SelfServiceURL: "http://localhost:8085",
		},
		AI: AI{
			Provider: "noop",
			LiteLLM: LiteLLM{
				URL:         "http://localhost:4000",
				Model:       "openai/gpt-4o-mini",
				Temperature: 0.1,
			},
		},
		OCR: OCR{
			Provider: "noop",
		},
		Cache: Cache{
			DocTextMaxSizeMB: 64,
			DocTextTTL:       10 * time.Minute,
		},
		Logging: Logging{
			Level:   "info",
			Service: "reviewd",
		},
		Breaker: Breaker{
			MaxFailures: 5,
			Timeout:     30 * time.Second,
		},
	}
}
