package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
// Values come from config.yaml when present; AGRICHAT_* environment
// variables always override the file.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	ChatLog  ChatLogConfig  `yaml:"chat_log"`
	Auth     AuthConfig     `yaml:"auth"`
	Redis    RedisConfig    `yaml:"redis"`
	Logging  LoggingConfig  `yaml:"logging"`
	Import   ImportConfig   `yaml:"import"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig controls the HTTP server
type ServerConfig struct {
	BindAddress  string        `yaml:"bind_address" env:"AGRICHAT_BIND_ADDRESS" env-default:"0.0.0.0"`
	Port         int           `yaml:"port" env:"AGRICHAT_PORT" env-default:"8000"`
	StaticDir    string        `yaml:"static_dir" env:"AGRICHAT_STATIC_DIR" env-default:"web/static"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"AGRICHAT_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"AGRICHAT_WRITE_TIMEOUT" env-default:"15s"`
	CORSOrigins  []string      `yaml:"cors_origins" env:"AGRICHAT_CORS_ORIGINS" env-separator:"," env-default:"*"`
}

// DatabaseConfig locates the SQLite database file
type DatabaseConfig struct {
	Path string `yaml:"path" env:"AGRICHAT_DB_PATH" env-default:"database/agrichat.db"`
}

// ChatLogConfig locates the JSONL chat log
type ChatLogConfig struct {
	Path string `yaml:"path" env:"AGRICHAT_CHAT_LOG" env-default:"chat_logs.txt"`
}

// AuthConfig controls login sessions and the bootstrap admin account
type AuthConfig struct {
	TokenTTL             time.Duration `yaml:"token_ttl" env:"AGRICHAT_TOKEN_TTL" env-default:"3h"`
	SessionStore         string        `yaml:"session_store" env:"AGRICHAT_SESSION_STORE" env-default:"memory"` // "memory" or "redis"
	DefaultAdminPassword string        `yaml:"-" env:"AGRICHAT_ADMIN_PASSWORD" env-default:"admin123"`
	DefaultAdminEmail    string        `yaml:"default_admin_email" env:"AGRICHAT_ADMIN_EMAIL" env-default:"admin@example.com"`
}

// RedisConfig is used when sessions are stored in Redis
type RedisConfig struct {
	Addr      string `yaml:"addr" env:"AGRICHAT_REDIS_ADDR" env-default:"localhost:6379"`
	Password  string `yaml:"-" env:"AGRICHAT_REDIS_PASSWORD"`
	DB        int    `yaml:"db" env:"AGRICHAT_REDIS_DB" env-default:"0"`
	KeyPrefix string `yaml:"key_prefix" env:"AGRICHAT_REDIS_KEY_PREFIX" env-default:"agrichat:session:"`
}

// LoggingConfig controls logging behavior
type LoggingConfig struct {
	Level       string `yaml:"level" env:"AGRICHAT_LOG_LEVEL" env-default:"info"` // "debug", "info", "warn", "error"
	FileEnabled bool   `yaml:"file_enabled" env:"AGRICHAT_LOG_FILE_ENABLED" env-default:"false"`
	File        string `yaml:"file" env:"AGRICHAT_LOG_FILE" env-default:"agrichat.log"`
	MaxSizeMB   int    `yaml:"max_size_mb" env:"AGRICHAT_LOG_MAX_SIZE_MB" env-default:"10"`
	MaxBackups  int    `yaml:"max_backups" env:"AGRICHAT_LOG_MAX_BACKUPS"`
}

// ImportConfig controls the CSV import folder watcher
type ImportConfig struct {
	Enabled bool   `yaml:"enabled" env:"AGRICHAT_IMPORT_ENABLED" env-default:"false"`
	Folder  string `yaml:"folder" env:"AGRICHAT_IMPORT_FOLDER" env-default:"imports"`
}

// MetricsConfig toggles the /metrics endpoint
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"AGRICHAT_METRICS_ENABLED"`
}

// Load reads configuration from path and the environment.
// A missing file is not an error: defaults and environment are used.
func Load(path string) (*Config, error) {
	cfg := defaults()

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	case errors.Is(statErr, os.ErrNotExist):
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to stat %s: %w", path, statErr)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaults holds the values whose zero value is meaningful in a config
// file. cleanenv fills env-default into any field still zero after the
// file is read, so these are set before reading instead.
func defaults() *Config {
	return &Config{
		Logging: LoggingConfig{MaxBackups: 3},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Save writes configuration to path as YAML. Secrets are not written.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if c.ChatLog.Path == "" {
		return fmt.Errorf("chat log path is required")
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	if c.Auth.DefaultAdminPassword == "" {
		return fmt.Errorf("default admin password must not be empty")
	}

	switch c.Auth.SessionStore {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis addr is required when session_store is redis")
		}
	default:
		return fmt.Errorf("invalid session_store: %s (must be memory or redis)", c.Auth.SessionStore)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}
	if c.Logging.FileEnabled && c.Logging.MaxSizeMB < 1 {
		return fmt.Errorf("max_size_mb must be at least 1")
	}

	if c.Import.Enabled && c.Import.Folder == "" {
		return fmt.Errorf("import folder is required when import is enabled")
	}

	return nil
}

// Masked returns a copy safe for printing, with secrets replaced.
func (c *Config) Masked() Config {
	out := *c
	if out.Auth.DefaultAdminPassword != "" {
		out.Auth.DefaultAdminPassword = "********"
	}
	if out.Redis.Password != "" {
		out.Redis.Password = "********"
	}
	return out
}
