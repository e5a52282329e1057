// Package config loads the relay's runtime settings from the environment.
// A local .env file is read first when present, which keeps development
// setups out of the shell profile.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP
	Addr  string
	Route string

	// Shared HMAC secret; must match the clients' APP_SECRET.
	AppSecret string

	// GitHub dispatch target.
	GitHubToken   string
	GitHubRepo    string
	GitHubAPIBase string
}

// Load reads the relay configuration. The shared secret and the GitHub
// target are required: a relay without a secret would accept unsigned
// payloads, so it must refuse to start instead.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:          getenv("RELAY_ADDR", ":8787"),
		Route:         getenv("RELAY_ROUTE", "/api/github"),
		AppSecret:     os.Getenv("APP_SECRET"),
		GitHubToken:   os.Getenv("GITHUB_TOKEN"),
		GitHubRepo:    os.Getenv("GITHUB_REPO"),
		GitHubAPIBase: getenv("GITHUB_API_BASE", "https://api.github.com"),
	}

	if cfg.AppSecret == "" {
		return nil, fmt.Errorf("APP_SECRET is not set")
	}
	if cfg.GitHubRepo == "" {
		return nil, fmt.Errorf("GITHUB_REPO is not set")
	}
	if cfg.GitHubToken == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN is not set")
	}

	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
