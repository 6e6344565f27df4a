// Package config loads daemon configuration from a JSON config file with
// PRESALESD_* environment overrides.
package config

import "fmt"

type Config struct {
	Server  ServerConfig
	LLM     LLMConfig
	Storage StorageConfig
	Session SessionConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port      int
	AuthToken string
}

type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

type StorageConfig struct {
	DataDir string
}

// SessionConfig controls idle session eviction. Durations are Go duration
// strings, parsed at server startup.
type SessionConfig struct {
	SweepInterval string
	TTL           string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8000,
		},
		LLM: LLMConfig{
			BaseURL:     "https://api.openai.com",
			Model:       "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   1024,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Session: SessionConfig{
			SweepInterval: "5m",
			TTL:           "30m",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the JSON file at
// $XDG_CONFIG_HOME/presalesd/config.json, then applies PRESALESD_*
// environment overrides. Secrets (API key, auth token) come from the
// environment only.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.LLM.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: LLM API key. Set it via environment variable PRESALESD_LLM_API_KEY")
	}

	return cfg, nil
}
