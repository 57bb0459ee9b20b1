package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config aggregates every setting the server reads from the
// environment.
type Config struct {
	Server   ServerConfig
	Remote   RemoteConfig
	Auth     AuthConfig
	Sessions SessionConfig
	Workflow WorkflowConfig
}

// Load resolves the full configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	auth, err := loadAuthConfig()
	if err != nil {
		return nil, err
	}

	sessions, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	workflow, err := loadWorkflowConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:   server,
		Remote:   loadRemoteConfig(),
		Auth:     auth,
		Sessions: sessions,
		Workflow: workflow,
	}, nil
}

// TransportStdio and TransportHTTP are the supported protocol
// transports.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// ServerConfig describes the protocol transport surface.
type ServerConfig struct {
	Transport string
	Addr      string
	Path      string
}

func loadServerConfig() (ServerConfig, error) {
	transport := getEnvOrDefault("MCP_TRANSPORT", TransportStdio)
	if transport != TransportStdio && transport != TransportHTTP {
		return ServerConfig{}, fmt.Errorf("invalid MCP_TRANSPORT value %q: want %q or %q", transport, TransportStdio, TransportHTTP)
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}
	addr := port
	if !strings.Contains(port, ":") {
		if strings.Contains(port, " ") {
			return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
		}
		addr = ":" + port
	}

	path := getEnvOrDefault("MCP_HTTP_PATH", "/mcp")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	return ServerConfig{Transport: transport, Addr: addr, Path: path}, nil
}

// RemoteConfig describes how to reach the Persona Roundtable API.
type RemoteConfig struct {
	BaseURL      string
	ClientID     string
	ClientSecret string
	Identity     string
}

func loadRemoteConfig() RemoteConfig {
	return RemoteConfig{
		BaseURL:      strings.TrimRight(getEnvOrDefault("ROUNDTABLE_API_URL", "https://roundtable.browsium.com/api"), "/"),
		ClientID:     strings.TrimSpace(os.Getenv("ROUNDTABLE_CLIENT_ID")),
		ClientSecret: strings.TrimSpace(os.Getenv("ROUNDTABLE_CLIENT_SECRET")),
		Identity:     strings.TrimSpace(os.Getenv("ROUNDTABLE_USER_EMAIL")),
	}
}

// AuthConfig describes how inbound HTTP requests authenticate.
// TokenMap takes precedence over SharedToken; with neither set every
// request is accepted.
type AuthConfig struct {
	SharedToken string
	TokenMap    map[string]string
}

// IdentityHeader names the trusted caller-identity header honored in
// shared-token and open modes. It is not impersonation-safe and is
// documented as such.
const IdentityHeader = "X-User-Email"

func loadAuthConfig() (AuthConfig, error) {
	cfg := AuthConfig{
		SharedToken: strings.TrimSpace(os.Getenv("MCP_AUTH_TOKEN")),
	}

	raw := strings.TrimSpace(os.Getenv("MCP_AUTH_TOKENS"))
	if raw == "" {
		return cfg, nil
	}

	cfg.TokenMap = make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		token, identity, ok := strings.Cut(pair, "=")
		token = strings.TrimSpace(token)
		identity = strings.TrimSpace(identity)
		if !ok || token == "" || identity == "" {
			return AuthConfig{}, fmt.Errorf("invalid MCP_AUTH_TOKENS entry %q: want token=identity", pair)
		}
		cfg.TokenMap[token] = identity
	}
	return cfg, nil
}

// SessionConfig governs idle eviction on the HTTP transport.
type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

func loadSessionConfig() (SessionConfig, error) {
	ttl, err := parseSecondsEnv("MCP_SESSION_TTL_SECONDS", 14400, 60)
	if err != nil {
		return SessionConfig{}, err
	}
	sweep, err := parseSecondsEnv("MCP_SESSION_SWEEP_SECONDS", 60, 10)
	if err != nil {
		return SessionConfig{}, err
	}
	return SessionConfig{TTL: ttl, SweepInterval: sweep}, nil
}

// WorkflowConfig sets the focus-group polling defaults.
type WorkflowConfig struct {
	Timeout      time.Duration
	PollInterval time.Duration
}

// Floors shared with per-request overrides on the focus_group tool.
const (
	MinAnalysisTimeoutSeconds = 30
	MinAnalysisPollSeconds    = 1
)

func loadWorkflowConfig() (WorkflowConfig, error) {
	timeout, err := parseSecondsEnv("ANALYSIS_TIMEOUT_SECONDS", 900, MinAnalysisTimeoutSeconds)
	if err != nil {
		return WorkflowConfig{}, err
	}
	interval, err := parseSecondsEnv("ANALYSIS_POLL_SECONDS", 5, MinAnalysisPollSeconds)
	if err != nil {
		return WorkflowConfig{}, err
	}
	return WorkflowConfig{Timeout: timeout, PollInterval: interval}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// parseSecondsEnv reads a duration expressed in whole seconds,
// clamping to the documented floor.
func parseSecondsEnv(key string, defaultSeconds, floorSeconds int) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	seconds := defaultSeconds
	if raw != "" {
		val, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
		}
		seconds = val
	}
	if seconds < floorSeconds {
		seconds = floorSeconds
	}
	return time.Duration(seconds) * time.Second, nil
}
