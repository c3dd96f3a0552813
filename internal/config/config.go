package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LLM struct {
		Provider    string `yaml:"provider"`
		Model       string `yaml:"model"`
		MaxAttempts int    `yaml:"maxAttempts"`
	} `yaml:"llm"`

	Store struct {
		Path string `yaml:"path"`
	} `yaml:"store"`

	Report struct {
		ChromePath string `yaml:"chromePath"`
	} `yaml:"report"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	var cfg Config
	cfg.LLM.Provider = "anthropic"
	cfg.LLM.MaxAttempts = 2
	cfg.Store.Path = "viability.db"
	return &cfg
}

// Load reads a YAML config file, filling unset fields from Default.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "anthropic"
	}
	if cfg.LLM.MaxAttempts <= 0 {
		cfg.LLM.MaxAttempts = 2
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "viability.db"
	}
	return cfg, nil
}
