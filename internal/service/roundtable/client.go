// Package roundtable is the typed client for the Persona Roundtable
// analysis API. It wraps the remote HTTP surface and nothing else: all
// analysis state lives on the remote side.
package roundtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/browsium/roundtable-mcp/internal/config"
	"github.com/browsium/roundtable-mcp/internal/model/persona"
	"github.com/browsium/roundtable-mcp/internal/model/session"
)

// Service-credential headers for deployments fronted by Cloudflare
// Access. Sent only when configured.
const (
	headerClientID     = "CF-Access-Client-Id"
	headerClientSecret = "CF-Access-Client-Secret"
)

// Client issues authenticated requests against the remote service.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	clientID     string
	clientSecret string
	identity     string
	logger       *zap.Logger
}

// NewClient builds a Client from remote configuration.
func NewClient(cfg config.RemoteConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		identity:     cfg.Identity,
		logger:       logger,
	}
}

type identityKey struct{}

// ContextWithIdentity pins the caller identity forwarded to the remote
// service for requests made with the returned context. The HTTP
// transport uses this to carry each protocol session's owner.
func ContextWithIdentity(ctx context.Context, email string) context.Context {
	if email == "" {
		return ctx
	}
	return context.WithValue(ctx, identityKey{}, email)
}

// IdentityFromContext returns the identity pinned by
// ContextWithIdentity, or empty.
func IdentityFromContext(ctx context.Context) string {
	email, _ := ctx.Value(identityKey{}).(string)
	return email
}

func (c *Client) identityFor(ctx context.Context) string {
	if email := IdentityFromContext(ctx); email != "" {
		return email
	}
	return c.identity
}

// APIError is a non-success response from the remote service.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("roundtable api: %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

const maxErrorBody = 512

// ListPersonas fetches the current persona catalog.
func (c *Client) ListPersonas(ctx context.Context) ([]persona.Persona, error) {
	var personas []persona.Persona
	if err := c.do(ctx, http.MethodGet, "/personas", nil, &personas); err != nil {
		return nil, err
	}
	return personas, nil
}

// CreatePersona registers a new custom persona profile.
func (c *Client) CreatePersona(ctx context.Context, profile map[string]any) (persona.Persona, error) {
	body := map[string]any{"profile_json": profile}
	var created persona.Persona
	if err := c.do(ctx, http.MethodPost, "/personas", body, &created); err != nil {
		return persona.Persona{}, err
	}
	return created, nil
}

// UpdatePersona replaces an existing persona's profile.
func (c *Client) UpdatePersona(ctx context.Context, id string, profile map[string]any) (persona.Persona, error) {
	body := map[string]any{"profile_json": profile}
	var updated persona.Persona
	if err := c.do(ctx, http.MethodPut, "/personas/"+url.PathEscape(id), body, &updated); err != nil {
		return persona.Persona{}, err
	}
	return updated, nil
}

// DeployPersona promotes a persona so it participates in new sessions.
func (c *Client) DeployPersona(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/personas/"+url.PathEscape(id)+"/deploy", nil, nil)
}

// CreateSession creates a remote analysis session from file metadata
// and the resolved persona set.
func (c *Client) CreateSession(ctx context.Context, req session.CreateRequest) (session.Session, error) {
	var created session.Session
	if err := c.do(ctx, http.MethodPost, "/sessions", req, &created); err != nil {
		return session.Session{}, err
	}
	return created, nil
}

// UploadContent pushes the raw document bytes to the session's storage
// location.
func (c *Client) UploadContent(ctx context.Context, sessionID, filename string, data []byte, contentType string) error {
	path := "/r2/upload/" + url.PathEscape(sessionID) + "/" + url.PathEscape(filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	c.setAuthHeaders(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(http.MethodPut, path, resp)
	}
	return nil
}

// StartAnalysis triggers remote analysis for a session.
func (c *Client) StartAnalysis(ctx context.Context, sessionID string) error {
	return c.do(ctx, http.MethodPost, "/sessions/"+url.PathEscape(sessionID)+"/analyze", nil, nil)
}

// GetSession fetches the current state of an analysis session.
func (c *Client) GetSession(ctx context.Context, sessionID string) (session.Session, error) {
	var current session.Session
	if err := c.do(ctx, http.MethodGet, "/sessions/"+url.PathEscape(sessionID), nil, &current); err != nil {
		return session.Session{}, err
	}
	return current, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.setAuthHeaders(ctx, req)

	c.logger.Debug("roundtable request", zap.String("method", method), zap.String("path", path))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.apiError(method, path, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) setAuthHeaders(ctx context.Context, req *http.Request) {
	if c.clientID != "" && c.clientSecret != "" {
		req.Header.Set(headerClientID, c.clientID)
		req.Header.Set(headerClientSecret, c.clientSecret)
	}
	if email := c.identityFor(ctx); email != "" {
		req.Header.Set(config.IdentityHeader, email)
	}
}

func (c *Client) apiError(method, path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody+1))
	body := string(raw)
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody] + "..."
	}
	return &APIError{Method: method, Path: path, StatusCode: resp.StatusCode, Body: body}
}
