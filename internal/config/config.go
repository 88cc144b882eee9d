// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"
)

// Supported review server backends.
const (
	BackendGerrit = "gerrit"
	BackendGitHub = "github"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Backend        string
	GerritURL      string
	GerritUsername string
	GerritPassword string
	GitHubToken    string
	ListenAddr     string
	RequestTimeout time.Duration
}

// HasGerritCredentials returns true when both GerritUsername and
// GerritPassword are non-empty. Without them the Gerrit client uses the
// anonymous endpoints, which cannot list drafts or save them.
func (c *Config) HasGerritCredentials() bool {
	return c.GerritUsername != "" && c.GerritPassword != ""
}

// HasGitHubCredentials returns true when GitHubToken is non-empty.
func (c *Config) HasGitHubCredentials() bool {
	return c.GitHubToken != ""
}

// Load reads configuration from environment variables and returns a validated Config.
// GERRITPANEL_BACKEND selects "gerrit" (default) or "github". The gerrit backend
// requires GERRITPANEL_GERRIT_URL; GERRITPANEL_GERRIT_USERNAME and
// GERRITPANEL_GERRIT_PASSWORD are optional. The github backend requires
// GERRITPANEL_GITHUB_TOKEN. Optional variables with defaults:
// GERRITPANEL_LISTEN_ADDR (127.0.0.1:8080), GERRITPANEL_REQUEST_TIMEOUT (30s).
func Load() (*Config, error) {
	backend := BackendGerrit
	if v, ok := os.LookupEnv("GERRITPANEL_BACKEND"); ok && v != "" {
		backend = strings.ToLower(strings.TrimSpace(v))
	}

	requestTimeout := 30 * time.Second
	if v, ok := os.LookupEnv("GERRITPANEL_REQUEST_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("GERRITPANEL_REQUEST_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("GERRITPANEL_REQUEST_TIMEOUT must be positive, got %s", parsed)
		}
		requestTimeout = parsed
	}

	listenAddr := "127.0.0.1:8080"
	if v, ok := os.LookupEnv("GERRITPANEL_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	cfg := &Config{
		Backend:        backend,
		GerritURL:      strings.TrimSuffix(os.Getenv("GERRITPANEL_GERRIT_URL"), "/"),
		GerritUsername: os.Getenv("GERRITPANEL_GERRIT_USERNAME"),
		GerritPassword: os.Getenv("GERRITPANEL_GERRIT_PASSWORD"),
		GitHubToken:    os.Getenv("GERRITPANEL_GITHUB_TOKEN"),
		ListenAddr:     listenAddr,
		RequestTimeout: requestTimeout,
	}

	switch backend {
	case BackendGerrit:
		if cfg.GerritURL == "" {
			return nil, fmt.Errorf("GERRITPANEL_GERRIT_URL is required for the gerrit backend")
		}
		u, err := url.Parse(cfg.GerritURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("GERRITPANEL_GERRIT_URL %q is not an absolute URL", cfg.GerritURL)
		}
	case BackendGitHub:
		if !cfg.HasGitHubCredentials() {
			return nil, fmt.Errorf("GERRITPANEL_GITHUB_TOKEN is required for the github backend")
		}
	default:
		return nil, fmt.Errorf("GERRITPANEL_BACKEND has unknown value %q: expected gerrit or github", backend)
	}

	return cfg, nil
}
