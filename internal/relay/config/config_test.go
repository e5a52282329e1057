package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_SECRET", "shh")
	t.Setenv("GITHUB_TOKEN", "tok")
	t.Setenv("GITHUB_REPO", "acme/queue")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	t.Setenv("RELAY_ADDR", "")
	t.Setenv("RELAY_ROUTE", "")
	t.Setenv("GITHUB_API_BASE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8787", cfg.Addr)
	assert.Equal(t, "/api/github", cfg.Route)
	assert.Equal(t, "https://api.github.com", cfg.GitHubAPIBase)
	assert.Equal(t, "shh", cfg.AppSecret)
	assert.Equal(t, "acme/queue", cfg.GitHubRepo)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("RELAY_ADDR", ":9999")
	t.Setenv("GITHUB_API_BASE", "http://localhost:1234")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "http://localhost:1234", cfg.GitHubAPIBase)
}

func TestLoad_MissingSecretRefused(t *testing.T) {
	setRequired(t)
	t.Setenv("APP_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_SECRET")
}

func TestLoad_MissingGitHubTargetRefused(t *testing.T) {
	setRequired(t)
	t.Setenv("GITHUB_REPO", "")

	_, err := Load()
	require.Error(t, err)
}
