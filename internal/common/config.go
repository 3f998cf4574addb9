package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"github.com/robfig/cron/v3"
)

// Config represents the application configuration
type Config struct {
	// Environment selects collaborator wiring: "development" uses the
	// fixture mailbox, "production" uses IMAP.
	Environment string        `toml:"environment" validate:"oneof=development production"`
	Server      ServerConfig  `toml:"server"`
	Storage     StorageConfig `toml:"storage"`
	Logging     LoggingConfig `toml:"logging"`
	Imap        ImapConfig    `toml:"imap"`
	Mailbox     MailboxConfig `toml:"mailbox"`
	Workers     WorkersConfig `toml:"workers"`
	Claude      ClaudeConfig  `toml:"claude"`
	Gemini      GeminiConfig  `toml:"gemini"`
	LLM         LLMConfig     `toml:"llm"`
	Analysis    AnalysisConfig `toml:"analysis"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`
	ResetOnStartup bool   `toml:"reset_on_startup"`
}

type LoggingConfig struct {
	Level  string   `toml:"level"`
	Output []string `toml:"output"`
}

type ImapConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	UseTLS   bool   `toml:"use_tls"`
}

// MailboxConfig configures the development fixture mailbox
type MailboxConfig struct {
	FixtureDir string `toml:"fixture_dir"`
}

// WorkersConfig configures the phase workers and the creation schedule
type WorkersConfig struct {
	CreationSchedule string `toml:"creation_schedule"` // cron expression
	BatchSize        int    `toml:"batch_size"`
	Interval         string `toml:"interval"`       // delay after a pass with work
	RetryInterval    string `toml:"retry_interval"` // delay after an empty pass
	FetchRatePerSec  int    `toml:"fetch_rate_per_sec"`
	RenderFallback   bool   `toml:"render_fallback"` // headless render when static fetch is empty
}

type ClaudeConfig struct {
	APIKey    string `toml:"api_key"`
	Model     string `toml:"model"`
	Timeout   string `toml:"timeout"`
	MaxTokens int    `toml:"max_tokens"`
}

type GeminiConfig struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	Timeout string `toml:"timeout"`
}

// LLMConfig selects the analysis provider
type LLMConfig struct {
	Provider string `toml:"provider" validate:"omitempty,oneof=claude gemini"`
}

// AnalysisConfig points at the scoring criteria file
type AnalysisConfig struct {
	CriteriaPath string `toml:"criteria_path"`
}

// DefaultConfig returns the baseline configuration
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8085,
			Host: "localhost",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/jobsieve",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Imap: ImapConfig{
			Port:   993,
			UseTLS: true,
		},
		Mailbox: MailboxConfig{
			FixtureDir: "./fixtures/mail",
		},
		Workers: WorkersConfig{
			CreationSchedule: "*/15 * * * *",
			BatchSize:        20,
			Interval:         "5m",
			RetryInterval:    "30s",
			FetchRatePerSec:  2,
			RenderFallback:   false,
		},
		Claude: ClaudeConfig{
			Model:     "claude-sonnet-4-20250514",
			Timeout:   "60s",
			MaxTokens: 2048,
		},
		Gemini: GeminiConfig{
			Model:   "gemini-2.0-flash",
			Timeout: "60s",
		},
		LLM: LLMConfig{
			Provider: "claude",
		},
		Analysis: AnalysisConfig{
			CriteriaPath: "./config/criteria.yaml",
		},
	}
}

// LoadConfig loads configuration: defaults -> file -> environment overrides
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies JOBSIEVE_* environment variables on top of the
// loaded configuration
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("JOBSIEVE_ENVIRONMENT"); v != "" {
		config.Environment = v
	}
	if v := os.Getenv("JOBSIEVE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("JOBSIEVE_BADGER_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("JOBSIEVE_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("JOBSIEVE_IMAP_HOST"); v != "" {
		config.Imap.Host = v
	}
	if v := os.Getenv("JOBSIEVE_IMAP_USERNAME"); v != "" {
		config.Imap.Username = v
	}
	if v := os.Getenv("JOBSIEVE_IMAP_PASSWORD"); v != "" {
		config.Imap.Password = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		config.Claude.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		config.Gemini.APIKey = v
	}
	if v := os.Getenv("JOBSIEVE_LLM_PROVIDER"); v != "" {
		config.LLM.Provider = strings.ToLower(v)
	}
}

// Validate checks configuration consistency
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Workers.CreationSchedule != "" {
		if _, err := cron.ParseStandard(c.Workers.CreationSchedule); err != nil {
			return fmt.Errorf("invalid creation schedule %q: %w", c.Workers.CreationSchedule, err)
		}
	}

	for _, d := range []string{c.Workers.Interval, c.Workers.RetryInterval} {
		if _, err := time.ParseDuration(d); err != nil {
			return fmt.Errorf("invalid worker interval %q: %w", d, err)
		}
	}

	return nil
}

// WorkerInterval returns the parsed normal pass interval
func (c *Config) WorkerInterval() time.Duration {
	d, err := time.ParseDuration(c.Workers.Interval)
	if err != nil {
		return 5 * time.Minute
	}
	return d
}

// WorkerRetryInterval returns the parsed empty-pass retry interval
func (c *Config) WorkerRetryInterval() time.Duration {
	d, err := time.ParseDuration(c.Workers.RetryInterval)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
