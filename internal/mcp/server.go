package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/browsium/roundtable-mcp/internal/model/persona"
	"github.com/browsium/roundtable-mcp/internal/model/session"
	"github.com/browsium/roundtable-mcp/internal/service/focusgroup"
)

// RemoteAPI is the slice of the roundtable client the tools call
// directly, without going through the workflow.
type RemoteAPI interface {
	ListPersonas(ctx context.Context) ([]persona.Persona, error)
	CreatePersona(ctx context.Context, profile map[string]any) (persona.Persona, error)
	UpdatePersona(ctx context.Context, id string, profile map[string]any) (persona.Persona, error)
	DeployPersona(ctx context.Context, id string) error
	GetSession(ctx context.Context, sessionID string) (session.Session, error)
}

// Workflow runs a full focus-group analysis.
type Workflow interface {
	Run(ctx context.Context, req focusgroup.Request) (focusgroup.Result, error)
}

// Server wraps the MCP server with the roundtable backend.
type Server struct {
	api      RemoteAPI
	workflow Workflow
	server   *mcp.Server
	logger   *zap.Logger
}

// NewServer creates the tool server. One Server may carry many
// concurrent protocol sessions.
func NewServer(api RemoteAPI, workflow Workflow, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{api: api, workflow: workflow, logger: logger}

	impl := &mcp.Implementation{
		Name:    "persona-roundtable",
		Version: version,
	}
	s.server = mcp.NewServer(impl, nil)
	s.registerTools()
	return s
}

// Run serves a single session on stdio until the context ends.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Connect attaches one more transport, used by the HTTP handler to
// open a session per client.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.server.Connect(ctx, t, nil)
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_personas",
		Description: "List the reviewer personas available for focus-group analysis, including their roles and profiles. Call this first to pick persona_ids for focus_group, or rely on the built-in panels (fast, technical, business).",
	}, s.handleListPersonas)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "create_persona",
		Description: "Create a custom reviewer persona from a profile object (name, role, background, evaluation focus). The new persona becomes available to focus_group runs immediately.",
	}, s.handleCreatePersona)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "update_persona",
		Description: "Replace the profile of an existing custom persona by id. System personas cannot be updated.",
	}, s.handleUpdatePersona)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "deploy_persona",
		Description: "Deploy a draft persona so it participates in future focus-group runs.",
	}, s.handleDeployPersona)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "focus_group",
		Description: "Run a document through a simulated focus group of reviewer personas. Provide either file_path or inline content with a filename. By default this waits for the analysis to finish and returns every persona's scores, issues, and suggestions; set wait=false to return immediately and poll with get_session.",
	}, s.handleFocusGroup)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_session",
		Description: "Fetch the current state of an analysis session by id, including per-persona results once they are ready. Use this to poll a run started with wait=false.",
	}, s.handleGetSession)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "export_session",
		Description: "Export a finished analysis session as a report file. Formats: md, csv, pdf, docx. Writes next to the working directory unless output_path or output_dir is given, and returns the absolute path written.",
	}, s.handleExportSession)
}
