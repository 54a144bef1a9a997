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
const DefaultConfigFile = "reviewd.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML file is optional; a missing file is not an error.
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
	setString(&cfg.Server.Port, "REVIEWD_PORT")
	setString(&cfg.Server.CORSOrigin, "REVIEWD_CORS_ORIGIN")

	setBool(&cfg.Agent.Enabled, "REVIEWD_AGENT_ENABLED")
	setString(&cfg.Agent.Mode, "REVIEWD_AGENT_MODE")
	setBool(&cfg.Agent.Workflows.KYC, "REVIEWD_WF_KYC")
	setBool(&cfg.Agent.Workflows.Loans, "REVIEWD_WF_LOANS")
	setBool(&cfg.Agent.Workflows.Cards, "REVIEWD_WF_CARDS")
	setBool(&cfg.Agent.Workflows.Salary, "REVIEWD_WF_SALARY")
	setBool(&cfg.Agent.Workflows.SelfService, "REVIEWD_WF_SELF_SERVICE")
	setBool(&cfg.Agent.Polling.Enabled, "REVIEWD_POLL_ENABLED")
	setDuration(&cfg.Agent.Polling.Interval, "REVIEWD_POLL_INTERVAL")

	setString(&cfg.Services.UserURL, "REVIEWD_USER_SERVICE_URL")
	setString(&cfg.Services.AccountURL, "REVIEWD_ACCOUNT_SERVICE_URL")
	setString(&cfg.Services.LoanURL, "REVIEWD_LOAN_SERVICE_URL")
	setString(&cfg.Services.CardURL, "REVIEWD_CARD_SERVICE_URL")
	setString(&cfg.Services.SelfServiceURL, "REVIEWD_SELF_SERVICE_URL")

	setString(&cfg.AI.Provider, "REVIEWD_AI_PROVIDER")
	setString(&cfg.AI.LiteLLM.URL, "LITELLM_URL")
	setString(&cfg.AI.LiteLLM.MasterKey, "LITELLM_MASTER_KEY")
	setString(&cfg.AI.LiteLLM.Model, "REVIEWD_AI_MODEL")
	setFloat64(&cfg.AI.LiteLLM.Temperature, "REVIEWD_AI_TEMPERATURE")

	setString(&cfg.OCR.Provider, "REVIEWD_OCR_PROVIDER")

	setString(&cfg.NATS.URL, "NATS_URL")

	setInt64(&cfg.Cache.DocTextMaxSizeMB, "REVIEWD_CACHE_DOC_SIZE_MB")
	setDuration(&cfg.Cache.DocTextTTL, "REVIEWD_CACHE_DOC_TTL")

	setString(&cfg.Logging.Level, "REVIEWD_LOG_LEVEL")
	setString(&cfg.Logging.Service, "REVIEWD_LOG_SERVICE")

	setInt(&cfg.Breaker.MaxFailures, "REVIEWD_BREAKER_MAX_FAILURES")
	setDuration(&cfg.Breaker.Timeout, "REVIEWD_BREAKER_TIMEOUT")
}

// validate rejects configurations that cannot run at all. Unknown agent modes
// are not an error here; the runtime state clamps them to OFF.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port must not be empty")
	}
	if cfg.Agent.Polling.Interval <= 0 {
		return fmt.Errorf("agent.polling.interval must be positive, got %s", cfg.Agent.Polling.Interval)
	}
	if cfg.Breaker.MaxFailures <= 0 {
		return fmt.Errorf("breaker.max_failures must be positive, got %d", cfg.Breaker.MaxFailures)
	}
	switch cfg.AI.Provider {
	case "noop", "litellm":
	default:
		return fmt.Errorf("ai.provider must be noop or litellm, got %q", cfg.AI.Provider)
	}
	switch cfg.OCR.Provider {
	case "noop", "content":
	default:
		return fmt.Errorf("ocr.provider must be noop or content, got %q", cfg.OCR.Provider)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
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

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
