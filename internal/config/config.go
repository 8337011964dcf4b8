package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Auth     AuthConfig     `koanf:"auth"`
	Identity IdentityConfig `koanf:"identity"`
	OpenAI   OpenAIConfig   `koanf:"openai"`
	Database DatabaseConfig `koanf:"database"`
}

type ServerConfig struct {
	Port int `koanf:"port"`
}

// AuthConfig holds the shared secret for local bearer-token verification.
// An empty secret disables the local strategy entirely.
type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
}

// IdentityConfig points at the external identity provider used as the
// remote token-verification fallback.
type IdentityConfig struct {
	BaseURL string `koanf:"base_url"`
	APIKey  string `koanf:"api_key"`
}

type OpenAIConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`
}

type DatabaseConfig struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
}

// Load reads configuration from an optional config.yaml and BRIGHT_-prefixed
// environment variables, env vars taking precedence.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Try to load from config.yaml file first
	if err := k.Load(file.Provider("config.yaml"), yaml.Parser()); err != nil {
		// File not found is OK, we'll use env vars
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	// Load environment variables (can override file config)
	if err := k.Load(env.Provider("BRIGHT_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "BRIGHT_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// Default values
	if !k.Exists("server.port") {
		k.Set("server.port", 8080)
	}
	if !k.Exists("openai.model") {
		k.Set("openai.model", "gpt-4o-mini")
	}
	if !k.Exists("database.driver") {
		k.Set("database.driver", "sqlite")
	}
	if !k.Exists("database.dsn") {
		k.Set("database.dsn", "./data/gateway.db")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
