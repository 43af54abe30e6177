// Package config loads engine configuration from file, environment, and
// defaults via viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig configures the HTTP API surface.
type ServerConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	EnableCORS bool   `mapstructure:"enable_cors"`
}

// ContentConfig configures content store access and caching.
type ContentConfig struct {
	// Dir is a local directory holding the content store JSON files.
	// Ignored when BaseURL is set.
	Dir string `mapstructure:"dir"`
	// BaseURL is a static file host serving the content stores.
	BaseURL string `mapstructure:"base_url"`
	// Source is the content source mode: static, api, or llm.
	Source string `mapstructure:"source"`
	// DocsURL is the documentation site fallback documents link to.
	DocsURL string `mapstructure:"docs_url"`
	// CacheTTL is the cache expiration window.
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	// CacheSize bounds the number of cached documents.
	CacheSize int `mapstructure:"cache_size"`
	// PreloadKeys are context keys warmed at startup.
	PreloadKeys []string `mapstructure:"preload_keys"`
}

// StateConfig configures durable client-side state.
type StateConfig struct {
	// Dir holds the role and session files. Empty means in-memory only.
	Dir string `mapstructure:"dir"`
}

// Config is the full engine configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Content ContentConfig `mapstructure:"content"`
	State   StateConfig   `mapstructure:"state"`
	// Location seeds initial page detection, e.g. a dashboard URL path.
	Location string `mapstructure:"location"`
	LogLevel string `mapstructure:"log_level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.enable_cors", true)
	v.SetDefault("content.dir", "assets/data")
	v.SetDefault("content.source", "static")
	v.SetDefault("content.docs_url", "/agentic-docs-poc/")
	v.SetDefault("content.cache_ttl", 5*time.Minute)
	v.SetDefault("content.cache_size", 50)
	v.SetDefault("state.dir", "")
	v.SetDefault("location", "")
	v.SetDefault("log_level", "info")
}

// Load reads configuration. When path is empty the usual locations are
// searched (./visionhelp.yaml, $HOME/.visionhelp/visionhelp.yaml); a missing
// file is not an error, defaults and VISIONHELP_* environment variables
// apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("VISIONHELP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("visionhelp")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.visionhelp")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}
