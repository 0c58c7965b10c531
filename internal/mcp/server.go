package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/sabrish/power-platform-solution-blueprint-sub000/internal/dataverse"
	"github.com/sabrish/power-platform-solution-blueprint-sub000/pkg/blueprint"
)

// BlueprintService runs generation pipelines on behalf of tool calls.
type BlueprintService interface {
	Generate(ctx context.Context, scope blueprint.Scope) (*blueprint.Blueprint, error)
}

// SolutionLister lists the target environment's installed solutions.
type SolutionLister interface {
	ListSolutions(ctx context.Context) ([]dataverse.Solution, error)
}

type Server struct {
	mcpServer *server.MCPServer
	service   BlueprintService
	solutions SolutionLister
}

func NewServer(service BlueprintService, solutions SolutionLister) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"Solution Blueprint",
			"1.0.0",
			server.WithToolCapabilities(true),
		),
		service:   service,
		solutions: solutions,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"generate_blueprint",
			mcp.WithDescription("Generate a cross-referenced automation blueprint for a publisher prefix or a set of solution ids"),
			mcp.WithString("publisher", mcp.Description("Publisher customization prefix selecting every solution of that publisher")),
			mcp.WithString("solution_ids", mcp.Description("Comma-separated solution ids; takes precedence over publisher")),
			mcp.WithBoolean("include_system_entities", mcp.Description("Also document system entities referenced by the scope")),
			mcp.WithBoolean("exclude_system_fields", mcp.Description("Drop framework bookkeeping fields from attribute lists (default true)")),
		),
		s.handleGenerateBlueprint,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_solutions",
			mcp.WithDescription("List the installed solutions of the connected environment"),
		),
		s.handleListSolutions,
	)
}

func (s *Server) handleGenerateBlueprint(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	scope := blueprint.Scope{ExcludeSystemFields: true}
	if v, ok := args["include_system_entities"].(bool); ok {
		scope.IncludeSystemEntities = v
	}
	if v, ok := args["exclude_system_fields"].(bool); ok {
		scope.ExcludeSystemFields = v
	}

	if raw, ok := args["solution_ids"].(string); ok && strings.TrimSpace(raw) != "" {
		scope.Kind = blueprint.ScopeKindSolutions
		scope.SolutionIDs = splitIDs(raw)
	} else if publisher, ok := args["publisher"].(string); ok && publisher != "" {
		scope.Kind = blueprint.ScopeKindPublisher
		scope.PublisherPrefix = publisher
	} else {
		return mcp.NewToolResultError("Missing required parameter: publisher or solution_ids"), nil
	}

	if err := scope.Validate(); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	bp, err := s.service.Generate(ctx, scope)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to generate blueprint: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(bp)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleListSolutions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	solutions, err := s.solutions.ListSolutions(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list solutions: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(solutions)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func splitIDs(raw string) []string {
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// Use SSE server for /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// SSE endpoints
	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
