package mcp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/browsium/roundtable-mcp/internal/model/persona"
	"github.com/browsium/roundtable-mcp/internal/model/session"
	"github.com/browsium/roundtable-mcp/internal/service/focusgroup"
)

type stubRemote struct {
	personas    []persona.Persona
	personasErr error

	created  map[string]any
	updated  string
	deployed string

	sessions    map[string]session.Session
	sessionHits int
}

func (s *stubRemote) ListPersonas(ctx context.Context) ([]persona.Persona, error) {
	return s.personas, s.personasErr
}

func (s *stubRemote) CreatePersona(ctx context.Context, profile map[string]any) (persona.Persona, error) {
	s.created = profile
	return persona.Persona{ID: "custom_1", IsCustom: true, Profile: profile}, nil
}

func (s *stubRemote) UpdatePersona(ctx context.Context, id string, profile map[string]any) (persona.Persona, error) {
	s.updated = id
	return persona.Persona{ID: id, Profile: profile}, nil
}

func (s *stubRemote) DeployPersona(ctx context.Context, id string) error {
	s.deployed = id
	return nil
}

func (s *stubRemote) GetSession(ctx context.Context, sessionID string) (session.Session, error) {
	s.sessionHits++
	sess, ok := s.sessions[sessionID]
	if !ok {
		return session.Session{}, errors.New("session not found")
	}
	return sess, nil
}

type stubWorkflow struct {
	lastReq focusgroup.Request
	result  focusgroup.Result
	err     error
}

func (s *stubWorkflow) Run(ctx context.Context, req focusgroup.Request) (focusgroup.Result, error) {
	s.lastReq = req
	return s.result, s.err
}

func newTestServer(remote *stubRemote, wf *stubWorkflow) *Server {
	if wf == nil {
		wf = &stubWorkflow{}
	}
	return NewServer(remote, wf, "test", nil)
}

func TestHandleListPersonas(t *testing.T) {
	remote := &stubRemote{personas: []persona.Persona{{ID: "cto_skeptic", Name: "CTO Skeptic"}}}
	s := newTestServer(remote, nil)

	_, out, err := s.handleListPersonas(context.Background(), nil, ListPersonasArgs{})
	if err != nil {
		t.Fatalf("list personas: %v", err)
	}
	res := out.(ListPersonasResult)
	if len(res.Personas) != 1 || res.Personas[0].ID != "cto_skeptic" {
		t.Fatalf("unexpected personas: %+v", res.Personas)
	}
	if _, ok := res.Panels["technical"]; !ok {
		t.Fatalf("expected panel presets in response, got %v", res.Panels)
	}
}

func TestHandleCreatePersonaRequiresProfile(t *testing.T) {
	s := newTestServer(&stubRemote{}, nil)

	if _, _, err := s.handleCreatePersona(context.Background(), nil, CreatePersonaArgs{}); err == nil {
		t.Fatalf("expected error for missing profile")
	}
}

func TestHandleCreatePersona(t *testing.T) {
	remote := &stubRemote{}
	s := newTestServer(remote, nil)

	profile := map[string]any{"name": "Plant Manager"}
	_, out, err := s.handleCreatePersona(context.Background(), nil, CreatePersonaArgs{Profile: profile})
	if err != nil {
		t.Fatalf("create persona: %v", err)
	}
	if remote.created["name"] != "Plant Manager" {
		t.Fatalf("profile not forwarded: %v", remote.created)
	}
	if p := out.(persona.Persona); p.ID != "custom_1" || !p.IsCustom {
		t.Fatalf("unexpected persona: %+v", p)
	}
}

func TestHandleUpdatePersonaValidation(t *testing.T) {
	s := newTestServer(&stubRemote{}, nil)
	ctx := context.Background()

	if _, _, err := s.handleUpdatePersona(ctx, nil, UpdatePersonaArgs{Profile: map[string]any{"a": 1}}); err == nil {
		t.Fatalf("expected error for missing id")
	}
	if _, _, err := s.handleUpdatePersona(ctx, nil, UpdatePersonaArgs{ID: "x"}); err == nil {
		t.Fatalf("expected error for missing profile")
	}
}

func TestHandleDeployPersona(t *testing.T) {
	remote := &stubRemote{}
	s := newTestServer(remote, nil)

	_, out, err := s.handleDeployPersona(context.Background(), nil, DeployPersonaArgs{ID: "custom_1"})
	if err != nil {
		t.Fatalf("deploy persona: %v", err)
	}
	if remote.deployed != "custom_1" {
		t.Fatalf("deploy not forwarded, got %q", remote.deployed)
	}
	if res := out.(DeployPersonaResult); !res.Deployed {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestHandleFocusGroupDefaultsToWaiting(t *testing.T) {
	wf := &stubWorkflow{result: focusgroup.Result{SessionID: "sess-1", Status: session.StatusCompleted}}
	s := newTestServer(&stubRemote{}, wf)

	_, out, err := s.handleFocusGroup(context.Background(), nil, FocusGroupArgs{Content: "x", Filename: "x.txt"})
	if err != nil {
		t.Fatalf("focus group: %v", err)
	}
	if !wf.lastReq.Wait {
		t.Fatalf("expected wait to default to true")
	}
	if res := out.(focusgroup.Result); res.SessionID != "sess-1" {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestHandleFocusGroupWaitFalse(t *testing.T) {
	wf := &stubWorkflow{result: focusgroup.Result{SessionID: "sess-1", Status: "started"}}
	s := newTestServer(&stubRemote{}, wf)

	noWait := false
	if _, _, err := s.handleFocusGroup(context.Background(), nil, FocusGroupArgs{Content: "x", Filename: "x.txt", Wait: &noWait}); err != nil {
		t.Fatalf("focus group: %v", err)
	}
	if wf.lastReq.Wait {
		t.Fatalf("expected wait=false to be forwarded")
	}
}

func TestHandleGetSession(t *testing.T) {
	remote := &stubRemote{sessions: map[string]session.Session{
		"sess-1": {ID: "sess-1", Status: session.StatusProcessing},
	}}
	s := newTestServer(remote, nil)

	if _, _, err := s.handleGetSession(context.Background(), nil, GetSessionArgs{}); err == nil {
		t.Fatalf("expected error for missing session_id")
	}

	_, out, err := s.handleGetSession(context.Background(), nil, GetSessionArgs{SessionID: "sess-1"})
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if sess := out.(session.Session); sess.Status != session.StatusProcessing {
		t.Fatalf("unexpected session: %+v", sess)
	}
}

func TestHandleExportSession(t *testing.T) {
	remote := &stubRemote{
		personas: []persona.Persona{{ID: "cto_skeptic", Name: "CTO Skeptic", Role: "CTO"}},
		sessions: map[string]session.Session{
			"sess-1": {ID: "sess-1", FileName: "brief_v2.md", Status: session.StatusCompleted},
		},
	}
	s := newTestServer(remote, nil)
	dir := t.TempDir()

	_, out, err := s.handleExportSession(context.Background(), nil, ExportSessionArgs{
		SessionID: "sess-1",
		Format:    "md",
		OutputDir: dir,
	})
	if err != nil {
		t.Fatalf("export session: %v", err)
	}
	res := out.(ExportSessionResult)
	if filepath.Dir(res.Path) != dir {
		t.Fatalf("expected export under %q, got %q", dir, res.Path)
	}
	info, err := os.Stat(res.Path)
	if err != nil {
		t.Fatalf("stat export: %v", err)
	}
	if int(info.Size()) != res.BytesWritten {
		t.Fatalf("reported %d bytes, file has %d", res.BytesWritten, info.Size())
	}
}

func TestHandleExportSessionBadFormatFailsFirst(t *testing.T) {
	remote := &stubRemote{sessions: map[string]session.Session{"sess-1": {ID: "sess-1"}}}
	s := newTestServer(remote, nil)

	_, _, err := s.handleExportSession(context.Background(), nil, ExportSessionArgs{SessionID: "sess-1", Format: "xlsx"})
	if err == nil {
		t.Fatalf("expected format error")
	}
	if remote.sessionHits != 0 {
		t.Fatalf("format validation must happen before any remote call, got %d fetches", remote.sessionHits)
	}
}

func TestHandleExportSessionToleratesCatalogFailure(t *testing.T) {
	remote := &stubRemote{
		personasErr: errors.New("catalog down"),
		sessions: map[string]session.Session{
			"sess-1": {ID: "sess-1", FileName: "brief.md", Status: session.StatusCompleted},
		},
	}
	s := newTestServer(remote, nil)

	_, out, err := s.handleExportSession(context.Background(), nil, ExportSessionArgs{
		SessionID: "sess-1",
		Format:    "csv",
		OutputDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("export should survive catalog failure: %v", err)
	}
	if out.(ExportSessionResult).BytesWritten == 0 {
		t.Fatalf("expected bytes written")
	}
}
