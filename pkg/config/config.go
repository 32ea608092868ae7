// Package config holds the synthesizer's runtime configuration, loaded
// from a YAML file with sensible defaults for every field.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RankingConfig configures seed retrieval.
type RankingConfig struct {
	// Provider selects the ranker: "gemini", "lexical" or "rule".
	Provider string `yaml:"provider"`
	// Model is the generative model used by the gemini provider.
	Model string `yaml:"model"`
	// Endpoint overrides the API base URL; empty uses the public API.
	Endpoint string `yaml:"endpoint"`
	// Timeout bounds one ranking request.
	Timeout time.Duration `yaml:"timeout"`
	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `yaml:"api_key_env"`
}

// Config is the synthesizer's runtime configuration.
type Config struct {
	// MaxIterations caps frontier pops per seed search.
	MaxIterations int `yaml:"max_iterations"`
	// MaxDOF rejects candidates whose mobility exceeds it.
	MaxDOF int `yaml:"max_dof"`
	// SimilarityThreshold is the minimum ranking score for a block to
	// become a seed.
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	// OutputDir receives synthesis artifacts (traces, renders, reports).
	OutputDir string `yaml:"output_dir"`
	// LogLevel is DEBUG, INFO, WARN or ERROR.
	LogLevel string `yaml:"log_level"`

	Ranking RankingConfig `yaml:"ranking"`
}

// Providers accepted by RankingConfig.Provider.
const (
	ProviderGemini  = "gemini"
	ProviderLexical = "lexical"
	ProviderRule    = "rule"
)

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		MaxIterations:       100,
		MaxDOF:              3,
		SimilarityThreshold: 0.1,
		OutputDir:           "output",
		LogLevel:            "INFO",
		Ranking: RankingConfig{
			Provider:  ProviderGemini,
			Model:     "gemini-2.5-flash-lite",
			Timeout:   30 * time.Second,
			APIKeyEnv: "GEMINI_API_KEY",
		},
	}
}

// Load reads a YAML config file over the defaults: absent fields keep
// their default values.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks all fields, reporting every violation at once.
func (c Config) Validate() error {
	return NewConfigValidator("Config").
		Positive("max_iterations", c.MaxIterations).
		RangeInt("max_dof", c.MaxDOF, 1, 6).
		RangeFloat("similarity_threshold", c.SimilarityThreshold, 0, 1).
		Required("output_dir", c.OutputDir).
		OneOf("log_level", c.LogLevel, "DEBUG", "INFO", "WARN", "ERROR").
		OneOf("ranking.provider", c.Ranking.Provider, ProviderGemini, ProviderLexical, ProviderRule).
		MinDuration("ranking.timeout", c.Ranking.Timeout, time.Second).
		Validate()
}

// APIKey resolves the ranking API key from the configured environment
// variable. Empty when unset; the ranker falls back accordingly.
func (c Config) APIKey() string {
	if c.Ranking.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Ranking.APIKeyEnv)
}
