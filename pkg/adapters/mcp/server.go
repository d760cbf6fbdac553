package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/topicflow"
	"github.com/aretw0/topicflow/internal/logging"
	"github.com/aretw0/topicflow/internal/presentation/diagram"
	"github.com/aretw0/topicflow/pkg/domain"
	"github.com/aretw0/topicflow/pkg/editor"
	"github.com/aretw0/topicflow/pkg/validation"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mitchellh/mapstructure"
	"golang.org/x/sync/errgroup"
)

const fieldsURI = "topicflow://fields"

// Report is the structured result of the validation tools.
type Report struct {
	Issues   []domain.Issue `json:"issues" jsonschema_description:"Validation findings ordered by severity"`
	Blocking bool           `json:"blocking" jsonschema_description:"True when at least one error would block saving"`
	Errors   int            `json:"errors"`
	Warnings int            `json:"warnings"`
}

// ProjectSummary is one entry of list_projects.
type ProjectSummary struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Revision string `json:"revision"`
	Topics   int    `json:"topics"`
}

// ProjectList wraps list_projects so the structured output is an object.
type ProjectList struct {
	Projects []ProjectSummary `json:"projects"`
}

type projectRef struct {
	ProjectID string `mapstructure:"project_id"`
}

type topicRef struct {
	ProjectID string `mapstructure:"project_id"`
	TopicID   string `mapstructure:"topic_id"`
}

// Server exposes the editor services as an MCP server.
type Server struct {
	projects  *editor.Projects
	fields    *editor.Fields
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(projects *editor.Projects, fields *editor.Fields, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		projects:  projects,
		fields:    fields,
		logger:    logger,
		mcpServer: server.NewMCPServer("topicflow-mcp", topicflow.Version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{Addr: addr, Handler: mux}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("validate_project",
		mcp.WithDescription("Validate a project snapshot without storing it. Accepts the project as a JSON object or a JSON-encoded string."),
		mcp.WithString("project", mcp.Required(), mcp.Description("The project document")),
		mcp.WithOutputSchema[Report](),
	), mcp.NewStructuredToolHandler(s.handleValidateProject))

	s.mcpServer.AddTool(mcp.NewTool("project_issues",
		mcp.WithDescription("Validate a stored project."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID")),
		mcp.WithOutputSchema[Report](),
	), mcp.NewStructuredToolHandler(s.handleProjectIssues))

	s.mcpServer.AddTool(mcp.NewTool("list_projects",
		mcp.WithDescription("List stored projects ordered by ID."),
		mcp.WithOutputSchema[ProjectList](),
	), mcp.NewStructuredToolHandler(s.handleListProjects))

	s.mcpServer.AddTool(mcp.NewTool("topic_diagram",
		mcp.WithDescription("Mermaid source of one topic, annotated with its validation issues."),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project ID")),
		mcp.WithString("topic_id", mcp.Required(), mcp.Description("Topic ID")),
	), s.handleTopicDiagram)
}

func newReport(issues []domain.Issue) Report {
	errs, warns := validation.Count(issues)
	return Report{
		Issues:   validation.SortBySeverity(issues),
		Blocking: validation.HasBlockingErrors(issues),
		Errors:   errs,
		Warnings: warns,
	}
}

// decodeProjectArg accepts either a JSON string or an already decoded object.
func decodeProjectArg(raw any) (domain.Project, error) {
	var data []byte
	switch v := raw.(type) {
	case string:
		data = []byte(v)
	case map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return domain.Project{}, err
		}
		data = b
	case nil:
		return domain.Project{}, errors.New("project is required")
	default:
		return domain.Project{}, fmt.Errorf("project must be an object or a JSON string, got %T", raw)
	}

	var project domain.Project
	if err := json.Unmarshal(data, &project); err != nil {
		return domain.Project{}, fmt.Errorf("invalid project: %w", err)
	}
	return project, nil
}

func (s *Server) handleValidateProject(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (Report, error) {
	project, err := decodeProjectArg(args["project"])
	if err != nil {
		s.logger.Warn("MCP validate_project: input rejected", "err", err)
		return Report{}, err
	}
	return newReport(s.projects.Check(project)), nil
}

func (s *Server) handleProjectIssues(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (Report, error) {
	var ref projectRef
	if err := mapstructure.Decode(args, &ref); err != nil {
		return Report{}, fmt.Errorf("invalid arguments: %w", err)
	}
	issues, err := s.projects.Validate(ctx, ref.ProjectID)
	if err != nil {
		return Report{}, err
	}
	return newReport(issues), nil
}

func (s *Server) handleListProjects(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (ProjectList, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return ProjectList{}, err
	}
	out := ProjectList{Projects: make([]ProjectSummary, 0, len(projects))}
	for _, p := range projects {
		out.Projects = append(out.Projects, ProjectSummary{
			ID:       p.ID,
			Type:     p.Instrument.Type,
			Revision: p.Instrument.Revision,
			Topics:   len(p.Topics),
		})
	}
	return out, nil
}

func (s *Server) handleTopicDiagram(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var ref topicRef
	if err := mapstructure.Decode(request.GetArguments(), &ref); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
	}

	project, err := s.projects.Get(ctx, ref.ProjectID)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	topic, ok := project.Topic(ref.TopicID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("topic %q not found", ref.TopicID)), nil
	}
	cfg, err := s.fields.Get(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	source := diagram.GenerateMermaid(topic, &diagram.Overlay{
		Issues:         s.projects.Check(project),
		FlowTypeColors: cfg.FlowTypeColors,
	})
	return mcp.NewToolResultText(source), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(fieldsURI, "Field configuration",
		mcp.WithResourceDescription("Controlled vocabularies and flow type colours"),
		mcp.WithMIMEType("application/json"),
	), s.readFields)
}

func (s *Server) readFields(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	cfg, err := s.fields.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load field config: %w", err)
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      fieldsURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
