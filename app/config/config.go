package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// PathEnv names the environment variable that selects the config file.
const PathEnv = "YATUBE_CONFIG"

// DefaultPath is used when PathEnv is unset.
const DefaultPath = "config.yaml"

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Addr            string `yaml:"addr" env:"YATUBE_ADDR"`
		Mode            string `yaml:"mode" env:"YATUBE_MODE"`
		ShutdownTimeout string `yaml:"shutdown_timeout" env:"YATUBE_SHUTDOWN_TIMEOUT"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path" env:"YATUBE_DB_PATH"`
	} `yaml:"database"`

	Media struct {
		Dir string `yaml:"dir" env:"YATUBE_MEDIA_DIR"`
	} `yaml:"media"`

	Auth struct {
		Secret     string `yaml:"secret" env:"YATUBE_SECRET"`
		CookieName string `yaml:"cookie_name" env:"YATUBE_COOKIE_NAME"`
		SessionTTL string `yaml:"session_ttl" env:"YATUBE_SESSION_TTL"`
		ResetTTL   string `yaml:"reset_ttl" env:"YATUBE_RESET_TTL"`
	} `yaml:"auth"`

	Cache struct {
		IndexTTL string `yaml:"index_ttl" env:"YATUBE_INDEX_TTL"`
	} `yaml:"cache"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Pretty bool   `yaml:"pretty" env:"LOG_PRETTY"`
	} `yaml:"logging"`

	Mail struct {
		Host     string `yaml:"host" env:"SMTP_HOST"`
		Port     int    `yaml:"port" env:"SMTP_PORT"`
		Username string `yaml:"username" env:"SMTP_USERNAME"`
		Password string `yaml:"password" env:"SMTP_PASSWORD"`
		From     string `yaml:"from" env:"MAIL_FROM"`
		BaseURL  string `yaml:"base_url" env:"YATUBE_BASE_URL"`
	} `yaml:"mail"`
}

// Path returns the config file location from the environment.
func Path() string {
	if p, ok := os.LookupEnv(PathEnv); ok && p != "" {
		return p
	}
	return DefaultPath
}

// LoadConfig loads configuration from a file and environment variables.
// A missing file is not an error; defaults and the environment still apply.
func LoadConfig(configPath string) (*Config, error) {
	config := Default()

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Default returns a configuration holding only the built-in defaults.
func Default() *Config {
	config := &Config{}
	setDefaults(config)
	return config
}

func setDefaults(config *Config) {
	config.Server.Addr = ":8000"
	config.Server.Mode = "development"
	config.Server.ShutdownTimeout = "10s"

	config.Database.Path = "data/badger"
	config.Media.Dir = "media"

	config.Auth.Secret = "yatube-development-secret"
	config.Auth.CookieName = "yatube_session"
	config.Auth.SessionTTL = "336h"
	config.Auth.ResetTTL = "72h"

	config.Cache.IndexTTL = "20s"

	config.Logging.Level = "info"
	config.Logging.Pretty = true

	config.Mail.Port = 587
	config.Mail.From = "noreply@yatube.local"
	config.Mail.BaseURL = "http://localhost:8000"
}

func validateConfig(config *Config) error {
	if config.Server.Addr == "" {
		return fmt.Errorf("server address is required")
	}
	if config.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}
	if config.Auth.Secret == "" {
		return fmt.Errorf("auth secret is required")
	}
	if config.Server.Mode == "production" && config.Auth.Secret == Default().Auth.Secret {
		return fmt.Errorf("auth secret must be changed in production mode")
	}
	if config.Auth.CookieName == "" {
		return fmt.Errorf("session cookie name is required")
	}

	durations := map[string]string{
		"server shutdown timeout": config.Server.ShutdownTimeout,
		"session ttl":             config.Auth.SessionTTL,
		"reset ttl":               config.Auth.ResetTTL,
		"index cache ttl":         config.Cache.IndexTTL,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	if config.Mail.Host != "" && (config.Mail.Port <= 0 || config.Mail.Port > 65535) {
		return fmt.Errorf("invalid SMTP port %d", config.Mail.Port)
	}
	return nil
}

func mustDuration(value string) time.Duration {
	d, _ := time.ParseDuration(value)
	return d
}

// ShutdownTimeout bounds graceful shutdown of the HTTP server.
func (c *Config) ShutdownTimeout() time.Duration {
	return mustDuration(c.Server.ShutdownTimeout)
}

// SessionTTL is the lifetime of a login session cookie.
func (c *Config) SessionTTL() time.Duration {
	return mustDuration(c.Auth.SessionTTL)
}

// ResetTTL is how long a password reset link stays valid.
func (c *Config) ResetTTL() time.Duration {
	return mustDuration(c.Auth.ResetTTL)
}

// IndexTTL is how long the index listing is cached.
func (c *Config) IndexTTL() time.Duration {
	return mustDuration(c.Cache.IndexTTL)
}

// Production reports whether the server runs in production mode.
func (c *Config) Production() bool {
	return c.Server.Mode == "production"
}
