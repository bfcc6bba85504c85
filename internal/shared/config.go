package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Pipeline    PipelineConfig    `toml:"pipeline"`
	Server      ServerConfig      `toml:"server"`
}

// CredentialsConfig contains catalog-specific credentials.
type CredentialsConfig struct {
	Spotify    SpotifyConfig    `toml:"spotify"`
	AppleMusic AppleMusicConfig `toml:"apple_music"`
}

// SpotifyConfig contains Spotify Web API credentials.
//
// AccessToken may be left empty in the file and provided via the
// SPOTIFY_ACCESS_TOKEN environment variable instead.
type SpotifyConfig struct {
	AccessToken string `toml:"access_token"`
	BaseURL     string `toml:"base_url"`
}

// AppleMusicConfig contains Apple Music catalog API settings.
type AppleMusicConfig struct {
	DeveloperToken string `toml:"developer_token"`
	Storefront     string `toml:"storefront"`
	BaseURL        string `toml:"base_url"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// PipelineConfig contains resolution pipeline settings.
type PipelineConfig struct {
	BatchSize    int     `toml:"batch_size"`
	RateLimitMS  int     `toml:"rate_limit_ms"`
	Workers      int     `toml:"workers"`
	QueueBacklog int     `toml:"queue_backlog"`
	RateLimit    float64 `toml:"rate_limit"` // requests per second, overrides rate_limit_ms when set
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	config.applyEnv()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.applyEnv()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// applyEnv overlays credential values from the environment so tokens never
// have to live in the config file.
func (c *Config) applyEnv() {
	if v := os.Getenv("SPOTIFY_ACCESS_TOKEN"); v != "" {
		c.Credentials.Spotify.AccessToken = v
	}
	if v := os.Getenv("APPLE_MUSIC_DEVELOPER_TOKEN"); v != "" {
		c.Credentials.AppleMusic.DeveloperToken = v
	}
	if v := os.Getenv("APPLE_MUSIC_STOREFRONT"); v != "" {
		c.Credentials.AppleMusic.Storefront = v
	}
}
