package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/browsium/roundtable-mcp/internal/config"
)

type fakeSession struct {
	closed int
}

func (f *fakeSession) Close() error {
	f.closed++
	return nil
}

func noopTransport() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
}

func newTestRegistry(ttl time.Duration) *Registry {
	return NewRegistry(config.SessionConfig{TTL: ttl, SweepInterval: time.Minute}, nil)
}

func TestRegistryBind(t *testing.T) {
	r := newTestRegistry(time.Hour)
	r.Add("sess-1", "alice@example.com", noopTransport(), &fakeSession{})

	if _, err := r.Bind("sess-1", "alice@example.com"); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if _, err := r.Bind("missing", "alice@example.com"); !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("expected ErrUnknownSession, got %v", err)
	}
	if _, err := r.Bind("sess-1", "bob@example.com"); !errors.Is(err, ErrForeignSession) {
		t.Fatalf("expected ErrForeignSession, got %v", err)
	}
	// A foreign attempt must not take the session away from its owner.
	if _, err := r.Bind("sess-1", "alice@example.com"); err != nil {
		t.Fatalf("owner locked out after foreign attempt: %v", err)
	}
}

func TestRegistryRemoveClosesSession(t *testing.T) {
	r := newTestRegistry(time.Hour)
	fs := &fakeSession{}
	r.Add("sess-1", "", noopTransport(), fs)

	r.Remove("sess-1")
	if fs.closed != 1 {
		t.Fatalf("expected one close, got %d", fs.closed)
	}
	if _, err := r.Bind("sess-1", ""); !errors.Is(err, ErrUnknownSession) {
		t.Fatalf("expected eviction, got %v", err)
	}
	// Removing twice is harmless.
	r.Remove("sess-1")
	if fs.closed != 1 {
		t.Fatalf("expected no double close, got %d", fs.closed)
	}
}

func TestRegistrySweepEvictsIdleSessions(t *testing.T) {
	r := newTestRegistry(time.Minute)
	current := time.Unix(1000, 0)
	r.now = func() time.Time { return current }

	idle := &fakeSession{}
	fresh := &fakeSession{}
	r.Add("idle", "", noopTransport(), idle)

	current = current.Add(2 * time.Minute)
	r.Add("fresh", "", noopTransport(), fresh)

	if n := r.Sweep(); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if idle.closed != 1 || fresh.closed != 0 {
		t.Fatalf("wrong sessions closed: idle=%d fresh=%d", idle.closed, fresh.closed)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 live session, got %d", r.Len())
	}
}

func TestRegistryBindRefreshesIdleClock(t *testing.T) {
	r := newTestRegistry(time.Minute)
	current := time.Unix(1000, 0)
	r.now = func() time.Time { return current }

	fs := &fakeSession{}
	r.Add("sess-1", "", noopTransport(), fs)

	// Touch the session just before it would expire.
	current = current.Add(50 * time.Second)
	if _, err := r.Bind("sess-1", ""); err != nil {
		t.Fatalf("bind: %v", err)
	}

	current = current.Add(50 * time.Second)
	if n := r.Sweep(); n != 0 {
		t.Fatalf("refreshed session must survive the sweep, evicted %d", n)
	}
}

func TestRegistryClose(t *testing.T) {
	r := newTestRegistry(time.Hour)
	a := &fakeSession{}
	b := &fakeSession{}
	r.Add("a", "", noopTransport(), a)
	r.Add("b", "", noopTransport(), b)

	r.Close()
	if a.closed != 1 || b.closed != 1 {
		t.Fatalf("expected all sessions closed, got %d/%d", a.closed, b.closed)
	}
	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Len())
	}
}
