package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every GERRITPANEL_ env var that Load() reads.
var allConfigKeys = []string{
	"GERRITPANEL_BACKEND",
	"GERRITPANEL_GERRIT_URL",
	"GERRITPANEL_GERRIT_USERNAME",
	"GERRITPANEL_GERRIT_PASSWORD",
	"GERRITPANEL_GITHUB_TOKEN",
	"GERRITPANEL_LISTEN_ADDR",
	"GERRITPANEL_REQUEST_TIMEOUT",
}

// isolateConfigEnv saves and unsets all GERRITPANEL_ env vars so tests don't
// inherit values from the host environment.
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_GerritSuccess(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GERRITPANEL_GERRIT_URL", "https://review.example.com/")
	t.Setenv("GERRITPANEL_GERRIT_USERNAME", "jdoe")
	t.Setenv("GERRITPANEL_GERRIT_PASSWORD", "http-password")
	t.Setenv("GERRITPANEL_REQUEST_TIMEOUT", "5s")
	t.Setenv("GERRITPANEL_LISTEN_ADDR", "0.0.0.0:9090")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, BackendGerrit, cfg.Backend)
	assert.Equal(t, "https://review.example.com", cfg.GerritURL)
	assert.Equal(t, "jdoe", cfg.GerritUsername)
	assert.True(t, cfg.HasGerritCredentials())
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GERRITPANEL_GERRIT_URL", "https://review.example.com")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, BackendGerrit, cfg.Backend)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.False(t, cfg.HasGerritCredentials())
}

func TestLoad_GerritMissingURL(t *testing.T) {
	isolateConfigEnv(t)

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "GERRITPANEL_GERRIT_URL")
}

func TestLoad_GerritRelativeURL(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GERRITPANEL_GERRIT_URL", "review.example.com")

	_, err := Load()

	assert.Error(t, err)
}

func TestLoad_GitHub(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GERRITPANEL_BACKEND", "GitHub")
	t.Setenv("GERRITPANEL_GITHUB_TOKEN", "ghp_test123")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, BackendGitHub, cfg.Backend)
	assert.True(t, cfg.HasGitHubCredentials())
}

func TestLoad_GitHubMissingToken(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GERRITPANEL_BACKEND", "github")

	_, err := Load()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "GERRITPANEL_GITHUB_TOKEN")
}

func TestLoad_UnknownBackend(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GERRITPANEL_BACKEND", "gitlab")

	_, err := Load()

	assert.Error(t, err)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("GERRITPANEL_GERRIT_URL", "https://review.example.com")

	for _, v := range []string{"soon", "0s", "-1s"} {
		t.Setenv("GERRITPANEL_REQUEST_TIMEOUT", v)
		_, err := Load()
		assert.Error(t, err, v)
	}
}
