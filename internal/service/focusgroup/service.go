package focusgroup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/browsium/roundtable-mcp/internal/config"
	"github.com/browsium/roundtable-mcp/internal/model/backend"
	"github.com/browsium/roundtable-mcp/internal/model/persona"
	"github.com/browsium/roundtable-mcp/internal/model/session"
)

// API is the slice of the remote client the workflow needs.
type API interface {
	ListPersonas(ctx context.Context) ([]persona.Persona, error)
	CreateSession(ctx context.Context, req session.CreateRequest) (session.Session, error)
	UploadContent(ctx context.Context, sessionID, filename string, data []byte, contentType string) error
	StartAnalysis(ctx context.Context, sessionID string) error
	GetSession(ctx context.Context, sessionID string) (session.Session, error)
}

var (
	ErrNoInput   = errors.New("either file_path or content must be provided")
	ErrBothInput = errors.New("file_path and content are mutually exclusive")
	ErrNoName    = errors.New("filename is required when passing inline content")
)

// TimeoutError reports that an analysis did not reach a terminal state
// before the deadline. The last observed status lets the caller decide
// whether to keep polling with get_session.
type TimeoutError struct {
	SessionID  string
	LastStatus session.Status
	Waited     time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("analysis session %s still %q after %s", e.SessionID, e.LastStatus, e.Waited)
}

// Request describes one focus-group run.
type Request struct {
	FilePath string
	Content  string
	Filename string

	PersonaIDs []string
	Panel      string

	Provider string
	Model    string

	Wait                bool
	TimeoutSeconds      int
	PollIntervalSeconds int
}

// Result is what a focus_group call reports back.
type Result struct {
	SessionID string          `json:"session_id"`
	Status    session.Status  `json:"status"`
	Message   string          `json:"message"`
	Session   session.Session `json:"session"`
}

// Service drives the remote analysis workflow: create a session,
// upload the document, trigger the run, and optionally poll until a
// terminal state.
type Service struct {
	api    API
	cfg    config.WorkflowConfig
	logger *zap.Logger

	// Injected for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func NewService(api API, cfg config.WorkflowConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		api:    api,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		sleep:  sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"md":   "text/markdown",
	"txt":  "text/plain",
}

func contentTypeFor(ext string) string {
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

// Run executes the full workflow for one document.
func (s *Service) Run(ctx context.Context, req Request) (Result, error) {
	data, filename, err := resolveInput(req)
	if err != nil {
		return Result{}, err
	}

	ref, err := backend.Normalize(req.Provider, req.Model)
	if err != nil {
		return Result{}, err
	}

	personas, err := s.api.ListPersonas(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("list personas: %w", err)
	}
	ids, err := persona.ResolveSelection(req.PersonaIDs, req.Panel, personas)
	if err != nil {
		return Result{}, err
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		ext = "txt"
	}

	sess, err := s.api.CreateSession(ctx, session.CreateRequest{
		FileName:           filename,
		FileSizeBytes:      int64(len(data)),
		FileExtension:      ext,
		SelectedPersonaIDs: ids,
		AnalysisProvider:   ref.Provider,
		AnalysisModel:      ref.Model,
	})
	if err != nil {
		return Result{}, fmt.Errorf("create session: %w", err)
	}
	s.logger.Info("analysis session created",
		zap.String("session_id", sess.ID),
		zap.String("file_name", filename),
		zap.Int("personas", len(ids)))

	if err := s.api.UploadContent(ctx, sess.ID, filename, data, contentTypeFor(ext)); err != nil {
		return Result{}, fmt.Errorf("upload content: %w", err)
	}
	if err := s.api.StartAnalysis(ctx, sess.ID); err != nil {
		return Result{}, fmt.Errorf("start analysis: %w", err)
	}

	if !req.Wait {
		return Result{
			SessionID: sess.ID,
			Status:    "started",
			Message:   fmt.Sprintf("Analysis started for %q with %d personas. Use get_session with session_id %s to check progress.", filename, len(ids), sess.ID),
			Session:   sess,
		}, nil
	}
	return s.poll(ctx, sess.ID, req)
}

func (s *Service) poll(ctx context.Context, sessionID string, req Request) (Result, error) {
	timeout := s.cfg.Timeout
	if req.TimeoutSeconds > 0 {
		timeout = time.Duration(max(req.TimeoutSeconds, config.MinAnalysisTimeoutSeconds)) * time.Second
	}
	interval := s.cfg.PollInterval
	if req.PollIntervalSeconds > 0 {
		interval = time.Duration(max(req.PollIntervalSeconds, config.MinAnalysisPollSeconds)) * time.Second
	}

	deadline := s.now().Add(timeout)
	var last session.Status
	for {
		sess, err := s.api.GetSession(ctx, sessionID)
		if err != nil {
			return Result{}, fmt.Errorf("fetch session: %w", err)
		}
		last = sess.Status
		if sess.Status.IsTerminal() {
			return Result{
				SessionID: sess.ID,
				Status:    sess.Status,
				Message:   terminalMessage(sess),
				Session:   sess,
			}, nil
		}
		if !s.now().Before(deadline) {
			return Result{}, &TimeoutError{SessionID: sessionID, LastStatus: last, Waited: timeout}
		}
		if err := s.sleep(ctx, interval); err != nil {
			return Result{}, err
		}
	}
}

func terminalMessage(sess session.Session) string {
	switch sess.Status {
	case session.StatusCompleted:
		return fmt.Sprintf("Analysis completed with %d persona reviews.", len(sess.Analyses))
	case session.StatusPartial:
		return fmt.Sprintf("Analysis finished partially; %d persona entries returned, some failed.", len(sess.Analyses))
	default:
		return "Analysis failed."
	}
}

func resolveInput(req Request) (data []byte, filename string, err error) {
	switch {
	case req.FilePath != "" && req.Content != "":
		return nil, "", ErrBothInput
	case req.FilePath != "":
		data, err = os.ReadFile(req.FilePath)
		if err != nil {
			return nil, "", fmt.Errorf("read input file: %w", err)
		}
		return data, filepath.Base(req.FilePath), nil
	case req.Content != "":
		if strings.TrimSpace(req.Filename) == "" {
			return nil, "", ErrNoName
		}
		return []byte(req.Content), filepath.Base(req.Filename), nil
	default:
		return nil, "", ErrNoInput
	}
}
