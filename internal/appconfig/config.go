// Package appconfig loads the engine's runtime configuration: where the
// local cache lives, how to reach the backend service, the save debounce
// delay, and logging options. This is process configuration, distinct from
// the user settings document the engine manages.
package appconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "TACHIKOMA"

// BackendConfig configures the authoritative backend client.
type BackendConfig struct {
	URL       string `toml:"url"`
	TimeoutMs int    `toml:"timeoutMs"`
	VerifyTLS bool   `toml:"verifyTLS"`
}

// CacheConfig configures the local cache.
type CacheConfig struct {
	Dir string `toml:"dir"`
}

// SaveConfig configures automatic persistence.
type SaveConfig struct {
	DebounceMs int `toml:"debounceMs"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Config is the full runtime configuration.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	Cache   CacheConfig   `toml:"cache"`
	Save    SaveConfig    `toml:"save"`
	Logging LoggingConfig `toml:"logging"`
}

// Default returns the default runtime configuration.
func Default() Config {
	return Config{
		Backend: BackendConfig{
			URL:       "",
			TimeoutMs: 10000,
			VerifyTLS: true,
		},
		Cache: CacheConfig{
			Dir: "",
		},
		Save: SaveConfig{
			DebounceMs: 800,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tachikoma", "tachikoma.toml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "tachikoma", "tachikoma.toml")
}

// Load reads the configuration file at path, layering file values over the
// defaults and environment overrides over both. A missing file is not an
// error; defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv layers TACHIKOMA_* environment variables over the configuration.
func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "_BACKEND_URL"); v != "" {
		cfg.Backend.URL = v
	}
	if v := os.Getenv(EnvPrefix + "_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv(EnvPrefix + "_SAVE_DEBOUNCE_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Save.DebounceMs = n
		}
	}
	if v := os.Getenv(EnvPrefix + "_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
