// Package config loads the application configuration from the
// environment. Missing or invalid values are configuration errors and
// abort the run before any network call is made.
package config

import (
	"fmt"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	GitHubToken    string   `env:"GITHUB_TOKEN" env-required:"true"`
	Repository     string   `env:"GITHUB_REPO" env-required:"true"`
	OutputDir      string   `env:"OUTPUT_DIR" env-default:"data"`
	TagEquivalents []string `env:"TAG_EQUIVALENTS" env-separator:"," env-default:"data_contract,data contract,data-contract"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	owner, name, ok := strings.Cut(c.Repository, "/")
	if !ok || owner == "" || name == "" {
		return fmt.Errorf("GITHUB_REPO must be in owner/name form, got %q", c.Repository)
	}
	return nil
}

// SplitRepository returns the owner and name halves of the configured
// repository identifier. Load guarantees both are non-empty.
func (c *Config) SplitRepository() (owner, name string) {
	owner, name, _ = strings.Cut(c.Repository, "/")
	return owner, name
}
