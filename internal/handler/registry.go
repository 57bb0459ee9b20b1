package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/browsium/roundtable-mcp/internal/config"
)

var (
	ErrUnknownSession = errors.New("unknown session")
	ErrForeignSession = errors.New("session belongs to another identity")
)

type entry struct {
	owner      string
	transport  http.Handler
	session    io.Closer
	created    time.Time
	lastAccess time.Time
}

// Registry tracks live protocol sessions for the HTTP transport. Each
// session is bound to the identity that opened it and is evicted after
// sitting idle past the TTL.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry

	ttl           time.Duration
	sweepInterval time.Duration
	logger        *zap.Logger

	now func() time.Time
}

func NewRegistry(cfg config.SessionConfig, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		entries:       make(map[string]*entry),
		ttl:           cfg.TTL,
		sweepInterval: cfg.SweepInterval,
		logger:        logger,
		now:           time.Now,
	}
}

// Add registers a freshly initialized session under its owner.
func (r *Registry) Add(id, owner string, transport http.Handler, session io.Closer) {
	now := r.now()
	r.mu.Lock()
	r.entries[id] = &entry{
		owner:      owner,
		transport:  transport,
		session:    session,
		created:    now,
		lastAccess: now,
	}
	r.mu.Unlock()
	r.logger.Info("protocol session opened", zap.String("session_id", id), zap.String("owner", owner))
}

// Bind looks up a session for a follow-up request, enforcing ownership
// and refreshing the idle clock in the same critical section.
func (r *Registry) Bind(id, owner string) (http.Handler, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, ErrUnknownSession
	}
	if e.owner != owner {
		return nil, ErrForeignSession
	}
	e.lastAccess = r.now()
	return e.transport, nil
}

// Remove evicts one session and closes its server side.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	e, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()
	if !ok {
		return
	}
	if err := e.session.Close(); err != nil {
		r.logger.Warn("session close failed", zap.String("session_id", id), zap.Error(err))
	}
	r.logger.Info("protocol session closed", zap.String("session_id", id))
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep evicts every session idle past the TTL and returns how many
// were removed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*entry
	var ids []string
	for id, e := range r.entries {
		if e.lastAccess.Before(cutoff) {
			expired = append(expired, e)
			ids = append(ids, id)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for i, e := range expired {
		if err := e.session.Close(); err != nil {
			r.logger.Warn("session close failed", zap.String("session_id", ids[i]), zap.Error(err))
		}
		r.logger.Info("protocol session expired", zap.String("session_id", ids[i]))
	}
	return len(expired)
}

// Run sweeps on the configured interval until the context ends, then
// closes every remaining session.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close evicts every session.
func (r *Registry) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	for id, e := range entries {
		if err := e.session.Close(); err != nil {
			r.logger.Warn("session close failed", zap.String("session_id", id), zap.Error(err))
		}
	}
}
