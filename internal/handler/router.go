package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/browsium/roundtable-mcp/internal/config"
	"github.com/browsium/roundtable-mcp/internal/service/roundtable"
	"github.com/browsium/roundtable-mcp/pkg/utils"
)

const sessionHeader = "Mcp-Session-Id"

// NewSessionFunc opens one protocol session: it returns the HTTP
// transport requests are forwarded to and a closer for the server
// side. The context outlives the initialize request.
type NewSessionFunc func(ctx context.Context, sessionID string) (http.Handler, io.Closer, error)

// RouterConfig wires the MCP endpoint into a chi router.
type RouterConfig struct {
	Path       string
	Auth       config.AuthConfig
	NewSession NewSessionFunc
	Registry   *Registry
	Logger     *zap.Logger
}

type mcpHandler struct {
	path       string
	auth       *Authenticator
	newSession NewSessionFunc
	registry   *Registry
	logger     *zap.Logger
}

// NewRouter wires the health and MCP endpoints.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &mcpHandler{
		path:       cfg.Path,
		auth:       NewAuthenticator(cfg.Auth),
		newSession: cfg.NewSession,
		registry:   cfg.Registry,
		logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.HandleFunc(cfg.Path, h.serve)
	r.HandleFunc(cfg.Path+"/*", h.serve)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondError(w, http.StatusNotFound, fmt.Sprintf("not found; the MCP endpoint is %s", cfg.Path))
	})
	return r
}

func (h *mcpHandler) serve(w http.ResponseWriter, r *http.Request) {
	identity, authErr := h.auth.Resolve(r)
	if authErr != nil {
		utils.RespondError(w, authErr.Status, authErr.Message)
		return
	}

	ctx := r.Context()
	if identity != "" {
		ctx = roundtable.ContextWithIdentity(ctx, identity)
	}
	r = r.WithContext(ctx)

	sessionID := r.Header.Get(sessionHeader)
	if sessionID == "" {
		h.initialize(w, r, identity)
		return
	}

	transport, err := h.registry.Bind(sessionID, identity)
	switch err {
	case nil:
	case ErrUnknownSession:
		utils.RespondError(w, http.StatusNotFound, "unknown session")
		return
	case ErrForeignSession:
		utils.RespondError(w, http.StatusForbidden, "session belongs to another identity")
		return
	default:
		utils.RespondError(w, http.StatusInternalServerError, "session lookup failed")
		return
	}

	transport.ServeHTTP(w, r)
	if r.Method == http.MethodDelete {
		h.registry.Remove(sessionID)
	}
}

// initialize opens a new session for a request without a session
// header. The server side is registered only when the handshake
// succeeds.
func (h *mcpHandler) initialize(w http.ResponseWriter, r *http.Request, identity string) {
	if r.Method != http.MethodPost {
		utils.RespondError(w, http.StatusBadRequest, "missing "+sessionHeader+" header")
		return
	}

	sessionID := uuid.NewString()
	transport, session, err := h.newSession(context.WithoutCancel(r.Context()), sessionID)
	if err != nil {
		h.logger.Error("session connect failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "failed to open session")
		return
	}

	// Register before serving the handshake: a client may pipeline
	// its next request as soon as the session id header arrives.
	h.registry.Add(sessionID, identity, transport, session)

	w.Header().Set(sessionHeader, sessionID)
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	transport.ServeHTTP(sw, r)
	if sw.status >= http.StatusBadRequest {
		h.registry.Remove(sessionID)
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.status),
				zap.Duration("duration", time.Since(start)))
		})
	}
}
