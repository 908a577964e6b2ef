package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `scaffolder walks a project-generation session through a fixed chain of
phases: stack-selection, theme-selection, description, requirements, design,
tasks, image-generation, execution, complete.

Start with start_project, then drive the session forward one phase at a time.
The requirements, design, and tasks phases each follow a generate, optionally
update-with-feedback, then approve cycle; approval advances the phase. Bind a
session to this connection with the Mcp-Session-Id header to omit session_id
arguments. Read resource scaffolder://guide/workflow for the full tool map.`

// Config contains server configuration.
type Config struct {
	Workflow WorkflowService
	Sessions SessionService
	Logger   *slog.Logger
}

// NewServer creates and configures an MCP server with all tools, resources,
// and middleware.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "scaffolder",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerGuideResource(server)

	server.AddReceivingMiddleware(sessionMiddleware())
	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	handler := NewHandler(cfg.Workflow, cfg.Sessions)
	registerTools(server, handler)

	return server
}

// registerTools wires every catalog tool to the dispatch handler.
func registerTools(server *sdkmcp.Server, handler *Handler) {
	for _, def := range buildToolCatalog() {
		def := def

		server.AddTool(&sdkmcp.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: mustSchema(def.InputSchema),
		}, func(ctx context.Context, req *sdkmcp.CallToolRequest) (*sdkmcp.CallToolResult, error) {
			var args json.RawMessage
			if req != nil && req.Params != nil {
				args = req.Params.Arguments
			}

			result, err := handler.Handle(ctx, getSessionID(ctx), def.Name, args)
			if err != nil {
				return errorResult(err), nil
			}

			payload, err := json.Marshal(result)
			if err != nil {
				return nil, fmt.Errorf("encoding %s result: %w", def.Name, err)
			}
			return &sdkmcp.CallToolResult{
				Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: string(payload)}},
			}, nil
		})
	}
}

// errorResult renders a domain error as a tool error payload, using the
// coded form where the error maps to one.
func errorResult(err error) *sdkmcp.CallToolResult {
	text := err.Error()
	if apiErr := MapError(err); apiErr != nil {
		if data, marshalErr := json.Marshal(apiErr); marshalErr == nil {
			text = string(data)
		}
	}
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{&sdkmcp.TextContent{Text: text}},
		IsError: true,
	}
}

// mustSchema converts a catalog schema map into the SDK schema type. The
// catalog is static, so a conversion failure is a programming error.
func mustSchema(m map[string]any) *jsonschema.Schema {
	data, err := json.Marshal(m)
	if err != nil {
		panic(fmt.Sprintf("marshaling tool schema: %v", err))
	}
	var schema jsonschema.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		panic(fmt.Sprintf("parsing tool schema: %v", err))
	}
	return &schema
}
