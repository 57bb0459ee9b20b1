package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/browsium/roundtable-mcp/internal/model/persona"
	"github.com/browsium/roundtable-mcp/internal/service/export"
	"github.com/browsium/roundtable-mcp/internal/service/focusgroup"
)

type ListPersonasArgs struct{}

type ListPersonasResult struct {
	Personas []persona.Persona   `json:"personas"`
	Panels   map[string][]string `json:"panels"`
}

func (s *Server) handleListPersonas(ctx context.Context, req *mcp.CallToolRequest, args ListPersonasArgs) (*mcp.CallToolResult, any, error) {
	personas, err := s.api.ListPersonas(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("list personas: %w", err)
	}
	return nil, ListPersonasResult{Personas: personas, Panels: persona.Panels()}, nil
}

type CreatePersonaArgs struct {
	Profile map[string]any `json:"profile" jsonschema:"Persona profile object, e.g. {\"name\": \"Plant Manager\", \"role\": \"Operations\", \"background\": \"...\", \"evaluation_focus\": \"...\"}"`
}

func (s *Server) handleCreatePersona(ctx context.Context, req *mcp.CallToolRequest, args CreatePersonaArgs) (*mcp.CallToolResult, any, error) {
	if len(args.Profile) == 0 {
		return nil, nil, fmt.Errorf("profile is required")
	}
	p, err := s.api.CreatePersona(ctx, args.Profile)
	if err != nil {
		return nil, nil, fmt.Errorf("create persona: %w", err)
	}
	s.logger.Info("persona created", zap.String("persona_id", p.ID))
	return nil, p, nil
}

type UpdatePersonaArgs struct {
	ID      string         `json:"id" jsonschema:"The persona id to update"`
	Profile map[string]any `json:"profile" jsonschema:"Replacement profile object"`
}

func (s *Server) handleUpdatePersona(ctx context.Context, req *mcp.CallToolRequest, args UpdatePersonaArgs) (*mcp.CallToolResult, any, error) {
	if args.ID == "" {
		return nil, nil, fmt.Errorf("id is required")
	}
	if len(args.Profile) == 0 {
		return nil, nil, fmt.Errorf("profile is required")
	}
	p, err := s.api.UpdatePersona(ctx, args.ID, args.Profile)
	if err != nil {
		return nil, nil, fmt.Errorf("update persona: %w", err)
	}
	return nil, p, nil
}

type DeployPersonaArgs struct {
	ID string `json:"id" jsonschema:"The persona id to deploy"`
}

type DeployPersonaResult struct {
	ID       string `json:"id"`
	Deployed bool   `json:"deployed"`
}

func (s *Server) handleDeployPersona(ctx context.Context, req *mcp.CallToolRequest, args DeployPersonaArgs) (*mcp.CallToolResult, any, error) {
	if args.ID == "" {
		return nil, nil, fmt.Errorf("id is required")
	}
	if err := s.api.DeployPersona(ctx, args.ID); err != nil {
		return nil, nil, fmt.Errorf("deploy persona: %w", err)
	}
	return nil, DeployPersonaResult{ID: args.ID, Deployed: true}, nil
}

type FocusGroupArgs struct {
	FilePath   string   `json:"file_path,omitempty" jsonschema:"Path to the document on the server host. Mutually exclusive with content."`
	Content    string   `json:"content,omitempty" jsonschema:"Inline document text. Requires filename."`
	Filename   string   `json:"filename,omitempty" jsonschema:"Filename for inline content, used to derive the document type (pdf, docx, pptx, txt, md)"`
	PersonaIDs []string `json:"persona_ids,omitempty" jsonschema:"Explicit persona ids to include. Takes precedence over panel."`
	Panel      string   `json:"panel,omitempty" jsonschema:"Named panel preset: fast, technical, or business. Defaults to every available persona."`
	Provider   string   `json:"provider,omitempty" jsonschema:"Analysis backend provider override. Must be set together with model."`
	Model      string   `json:"model,omitempty" jsonschema:"Analysis backend model override. Must be set together with provider."`

	Wait                *bool `json:"wait,omitempty" jsonschema:"Wait for the analysis to finish (default true). When false the call returns once the run is started."`
	TimeoutSeconds      int   `json:"timeout_seconds,omitempty" jsonschema:"How long to wait before giving up, minimum 30 (default 900)"`
	PollIntervalSeconds int   `json:"poll_interval_seconds,omitempty" jsonschema:"Seconds between status checks, minimum 1 (default 5)"`
}

func (s *Server) handleFocusGroup(ctx context.Context, req *mcp.CallToolRequest, args FocusGroupArgs) (*mcp.CallToolResult, any, error) {
	wait := true
	if args.Wait != nil {
		wait = *args.Wait
	}
	res, err := s.workflow.Run(ctx, focusgroup.Request{
		FilePath:            args.FilePath,
		Content:             args.Content,
		Filename:            args.Filename,
		PersonaIDs:          args.PersonaIDs,
		Panel:               args.Panel,
		Provider:            args.Provider,
		Model:               args.Model,
		Wait:                wait,
		TimeoutSeconds:      args.TimeoutSeconds,
		PollIntervalSeconds: args.PollIntervalSeconds,
	})
	if err != nil {
		return nil, nil, err
	}
	return nil, res, nil
}

type GetSessionArgs struct {
	SessionID string `json:"session_id" jsonschema:"The analysis session id returned by focus_group"`
}

func (s *Server) handleGetSession(ctx context.Context, req *mcp.CallToolRequest, args GetSessionArgs) (*mcp.CallToolResult, any, error) {
	if args.SessionID == "" {
		return nil, nil, fmt.Errorf("session_id is required")
	}
	sess, err := s.api.GetSession(ctx, args.SessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("get session: %w", err)
	}
	return nil, sess, nil
}

type ExportSessionArgs struct {
	SessionID  string `json:"session_id" jsonschema:"The analysis session id to export"`
	Format     string `json:"format" jsonschema:"Report format: md, csv, pdf, or docx"`
	OutputPath string `json:"output_path,omitempty" jsonschema:"Exact file path to write. Takes precedence over output_dir."`
	OutputDir  string `json:"output_dir,omitempty" jsonschema:"Directory for the report; the filename is derived from the analyzed document"`
}

type ExportSessionResult struct {
	Path         string `json:"path"`
	BytesWritten int    `json:"bytes_written"`
	Format       string `json:"format"`
	Status       string `json:"session_status"`
}

func (s *Server) handleExportSession(ctx context.Context, req *mcp.CallToolRequest, args ExportSessionArgs) (*mcp.CallToolResult, any, error) {
	if args.SessionID == "" {
		return nil, nil, fmt.Errorf("session_id is required")
	}
	format, err := export.ParseFormat(args.Format)
	if err != nil {
		return nil, nil, err
	}

	sess, err := s.api.GetSession(ctx, args.SessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("get session: %w", err)
	}

	// The export tolerates missing personas, so a catalog fetch
	// failure downgrades names and roles instead of failing the run.
	var catalog persona.Catalog
	if personas, err := s.api.ListPersonas(ctx); err != nil {
		s.logger.Warn("persona catalog unavailable for export", zap.Error(err))
	} else {
		catalog = persona.Index(personas)
	}

	model := export.BuildModel(sess, catalog)
	path, n, err := export.Write(model, format, args.OutputPath, args.OutputDir)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Info("session exported",
		zap.String("session_id", sess.ID),
		zap.String("format", string(format)),
		zap.String("path", path))
	return nil, ExportSessionResult{
		Path:         path,
		BytesWritten: n,
		Format:       string(format),
		Status:       string(sess.Status),
	}, nil
}
