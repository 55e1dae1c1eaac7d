package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "./configs/billing.yaml"

type Config struct {
	Service   ServiceConfig   `yaml:"service"`
	Database  DatabaseConfig  `yaml:"database"`
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	JWT       JWTConfig       `yaml:"jwt"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Dodo      DodoConfig      `yaml:"dodo"`
	Products  ProductsConfig  `yaml:"products"`
	Generator GeneratorConfig `yaml:"generator"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
}

// LoadConfig reads the YAML file at CONFIG_PATH. ${VAR} references are
// expanded from the environment before parsing.
func LoadConfig() (*Config, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = defaultConfigPath
	}

	absPath, err := filepath.Abs(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes raw YAML and fills defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = "billing"
	}
	if c.Service.Environment == "" {
		c.Service.Environment = "development"
	}
	if c.Server.HTTP.Port == 0 {
		c.Server.HTTP.Port = 8080
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.RateLimit.Backend == "" {
		c.RateLimit.Backend = RateLimitBackendMemory
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = time.Hour
	}
	if c.Dodo.BaseURL == "" {
		c.Dodo.BaseURL = "https://test.dodopayments.com"
	}
	if c.Generator.Model == "" {
		c.Generator.Model = "gemini-1.5-flash"
	}
}

// IsProduction reports whether the service runs with production safeguards.
func (c *Config) IsProduction() bool {
	return c.Service.Environment == "production"
}
