package handler

import (
	"net/http"
	"strings"

	"github.com/browsium/roundtable-mcp/internal/config"
)

// AuthError carries the HTTP status for a failed authentication.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// Authenticator resolves a request to a caller identity. Precedence:
// a per-token identity map, then a single shared token paired with a
// trusted identity header, then open access.
type Authenticator struct {
	sharedToken string
	tokenMap    map[string]string
}

func NewAuthenticator(cfg config.AuthConfig) *Authenticator {
	return &Authenticator{
		sharedToken: cfg.SharedToken,
		tokenMap:    cfg.TokenMap,
	}
}

// Resolve returns the identity for a request, or an AuthError with the
// status to send.
func (a *Authenticator) Resolve(r *http.Request) (string, *AuthError) {
	if len(a.tokenMap) > 0 {
		token, ok := bearerToken(r)
		if !ok {
			return "", &AuthError{Status: http.StatusUnauthorized, Message: "missing bearer token"}
		}
		identity, ok := a.tokenMap[token]
		if !ok {
			return "", &AuthError{Status: http.StatusForbidden, Message: "invalid token"}
		}
		return identity, nil
	}

	if a.sharedToken != "" {
		token, ok := bearerToken(r)
		if !ok {
			return "", &AuthError{Status: http.StatusUnauthorized, Message: "missing bearer token"}
		}
		if token != a.sharedToken {
			return "", &AuthError{Status: http.StatusForbidden, Message: "invalid token"}
		}
		return strings.TrimSpace(r.Header.Get(config.IdentityHeader)), nil
	}

	// Open mode. The identity header is honored when present.
	return strings.TrimSpace(r.Header.Get(config.IdentityHeader)), nil
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	token = strings.TrimSpace(token)
	if !found || token == "" {
		return "", false
	}
	return token, true
}
