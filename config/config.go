// Package config loads the application configuration from
// ~/.config/testhound/config.yaml, with environment fallback for the
// GitHub token.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration. Zero values mean
// "use the default"; flag values override both.
type Config struct {
	Token string `yaml:"token,omitempty" json:"token,omitempty"`

	MinStars  int `yaml:"min_stars,omitempty" json:"min_stars,omitempty"`
	DaysBack  int `yaml:"days_back,omitempty" json:"days_back,omitempty"`
	MaxRepos  int `yaml:"max_repos,omitempty" json:"max_repos,omitempty"`
	TargetPRs int `yaml:"target_prs,omitempty" json:"target_prs,omitempty"`
	MaxSizeMB int `yaml:"max_size_mb,omitempty" json:"max_size_mb,omitempty"`

	Format       string `yaml:"format,omitempty" json:"format,omitempty"`
	OutputPrefix string `yaml:"output_prefix,omitempty" json:"output_prefix,omitempty"`
	CacheFile    string `yaml:"cache_file,omitempty" json:"cache_file,omitempty"`
}

// Defaults mirror the CLI flag defaults.
const (
	DefaultMinStars     = 50
	DefaultDaysBack     = 60
	DefaultMaxRepos     = 500
	DefaultTargetPRs    = 2000
	DefaultMaxSizeMB    = 100
	DefaultFormat       = "all"
	DefaultOutputPrefix = "testhound_findings"
)

// Load reads the config file. A missing file yields an empty config;
// only a malformed file is an error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return &Config{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Path returns the config file location.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "testhound", "config.yaml"), nil
}

// GetGitHubToken resolves the API token: config file first, then the
// GITHUB_TOKEN environment variable.
func (c *Config) GetGitHubToken() string {
	if c.Token != "" {
		return c.Token
	}
	return os.Getenv("GITHUB_TOKEN")
}

// DefaultCachePath returns the cache file location under the user cache
// directory, falling back to the working directory when that cannot be
// resolved.
func DefaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "repo_cache.json"
	}
	return filepath.Join(dir, "testhound", "repo_cache.json")
}

// Save writes the config file, creating the directory as needed.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
