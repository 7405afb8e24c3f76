// Package config provides configuration management for autofocus.
package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	json "github.com/goccy/go-json"
)

const (
	// DefaultPort is the HTTP port the worker listens on.
	DefaultPort = 8000

	// DefaultModel is the reasoning-service model used for page
	// classification. A fast, cheap model keeps real-time checks usable.
	DefaultModel = "gpt-4o-mini"

	// DefaultOpenAIBaseURL is the reasoning-service endpoint.
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	// DefaultTimeoutSeconds bounds a single classification round trip.
	// Timeouts are absorbed by the classifier's fail-open path.
	DefaultTimeoutSeconds = 8
)

// Config holds runtime configuration, loaded from settings.json with
// environment overrides.
type Config struct {
	Port           int    `json:"port"`
	DBPath         string `json:"db_path"`
	Model          string `json:"model"`
	OpenAIBaseURL  string `json:"openai_base_url"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	MaxConns       int    `json:"max_conns"`
}

var (
	mu      sync.RWMutex
	current *Config

	dataDirOverride string
)

// SetDataDir overrides the data directory for the process. Every path
// helper (settings, credentials, modes, database) resolves under it, so
// it must be set before the directory is ensured or loaded.
func SetDataDir(dir string) {
	mu.Lock()
	dataDirOverride = dir
	mu.Unlock()
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Port:           DefaultPort,
		DBPath:         DBPath(),
		Model:          DefaultModel,
		OpenAIBaseURL:  DefaultOpenAIBaseURL,
		TimeoutSeconds: DefaultTimeoutSeconds,
		MaxConns:       4,
	}
}

// DataDir returns the autofocus data directory (~/.autofocus unless
// overridden via SetDataDir).
func DataDir() string {
	mu.RLock()
	dir := dataDirOverride
	mu.RUnlock()
	if dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".autofocus")
}

// DBPath returns the default SQLite database path.
func DBPath() string {
	return filepath.Join(DataDir(), "autofocus.db")
}

// SettingsPath returns the settings file path.
func SettingsPath() string {
	return filepath.Join(DataDir(), "settings.json")
}

// CredentialsPath returns the fallback credential file path. The file
// holds KEY=value lines and is only consulted when OPENAI_API_KEY is
// not set in the environment.
func CredentialsPath() string {
	return filepath.Join(DataDir(), "credentials")
}

// ModesPath returns the mode policy file path.
func ModesPath() string {
	return filepath.Join(DataDir(), "modes.yaml")
}

// EnsureDataDir creates the data directory if missing.
func EnsureDataDir() error {
	return os.MkdirAll(DataDir(), 0o755)
}

// EnsureSettings writes a default settings.json if none exists.
func EnsureSettings() error {
	path := SettingsPath()
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	data, err := json.MarshalIndent(Default(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// EnsureAll creates the data directory and default settings.
func EnsureAll() error {
	if err := EnsureDataDir(); err != nil {
		return err
	}
	return EnsureSettings()
}

// Load reads settings.json over the defaults, then applies environment
// overrides, and installs the result as the package-level config.
func Load() (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(SettingsPath())
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse settings: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	applyEnv(cfg)

	mu.Lock()
	current = cfg
	mu.Unlock()
	return cfg, nil
}

// Get returns the installed configuration, loading defaults if Load has
// not run yet.
func Get() *Config {
	mu.RLock()
	cfg := current
	mu.RUnlock()
	if cfg != nil {
		return cfg
	}

	cfg = Default()
	applyEnv(cfg)
	mu.Lock()
	current = cfg
	mu.Unlock()
	return cfg
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("AUTOFOCUS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Port = port
		}
	}
	if v := os.Getenv("AUTOFOCUS_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("AUTOFOCUS_OPENAI_BASE_URL"); v != "" {
		cfg.OpenAIBaseURL = v
	}
}

// ResolveAPIKey returns the reasoning-service credential. Order:
// OPENAI_API_KEY environment variable, then the credentials file in the
// data directory. An empty result is not an error here; calls made
// without a credential fail at call time and route through the
// classifier's fail-open path.
func ResolveAPIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	f, err := os.Open(CredentialsPath())
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if rest, ok := strings.CutPrefix(line, "OPENAI_API_KEY="); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}
