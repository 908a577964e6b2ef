package functional_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/mlehane/scaffolder-mcp/internal/domain/session"
	"github.com/mlehane/scaffolder-mcp/internal/domain/workflow"
	"github.com/mlehane/scaffolder-mcp/internal/mcp"
	"github.com/mlehane/scaffolder-mcp/internal/planner"
	"github.com/mlehane/scaffolder-mcp/internal/store"
)

// mcpSession connects an in-memory MCP client to a fully wired server.
type mcpSession struct {
	session *sdkmcp.ClientSession
}

func newMCPSession(t *testing.T) *mcpSession {
	t.Helper()

	st, err := store.NewFS(t.TempDir())
	require.NoError(t, err)
	sessions := session.NewManager(st, nil)
	flow := workflow.NewService(sessions, planner.NewTemplate(), nil, 10*time.Second)

	server := mcp.NewServer(mcp.Config{
		Workflow: flow,
		Sessions: sessions,
	})

	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = server.Run(ctx, serverTransport)
	}()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		t.Fatalf("connect: %v", err)
	}

	t.Cleanup(func() {
		clientSession.Close()
		cancel()
	})

	return &mcpSession{session: clientSession}
}

func (s *mcpSession) callTool(t *testing.T, name string, args map[string]any) json.RawMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := s.session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err, "CallTool %s failed", name)
	require.False(t, result.IsError, "Tool %s returned error", name)
	require.NotEmpty(t, result.Content, "Tool %s returned no content", name)

	for _, content := range result.Content {
		if textContent, ok := content.(*sdkmcp.TextContent); ok {
			return json.RawMessage(textContent.Text)
		}
	}
	t.Fatalf("Tool %s returned no text content", name)
	return nil
}

// callToolErr invokes a tool expected to fail and returns the error payload.
func (s *mcpSession) callToolErr(t *testing.T, name string, args map[string]any) mcp.APIError {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := s.session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err, "CallTool %s failed at the protocol level", name)
	require.True(t, result.IsError, "Tool %s unexpectedly succeeded", name)

	var apiErr mcp.APIError
	for _, content := range result.Content {
		if textContent, ok := content.(*sdkmcp.TextContent); ok {
			require.NoError(t, json.Unmarshal([]byte(textContent.Text), &apiErr))
			return apiErr
		}
	}
	t.Fatalf("Tool %s returned no text content", name)
	return apiErr
}

func TestFunctional_ToolCatalog(t *testing.T) {
	s := newMCPSession(t)

	ctx := context.Background()
	tools, err := s.session.ListTools(ctx, nil)
	require.NoError(t, err)
	require.Len(t, tools.Tools, 23)

	names := map[string]bool{}
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"start_project", "select_stack", "submit_description", "approve_tasks", "complete_project"} {
		require.True(t, names[want], "missing tool %s", want)
	}
}

func TestFunctional_WorkflowGuideResource(t *testing.T) {
	s := newMCPSession(t)

	ctx := context.Background()
	result, err := s.session.ReadResource(ctx, &sdkmcp.ReadResourceParams{
		URI: "scaffolder://guide/workflow",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.Contents)
	require.Contains(t, result.Contents[0].Text, "stack-selection")
}

func TestFunctional_FullWizard(t *testing.T) {
	s := newMCPSession(t)

	var started struct {
		Session struct {
			ID    string `json:"id"`
			Phase string `json:"phase"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(s.callTool(t, "start_project", nil), &started))
	require.Equal(t, "stack-selection", started.Session.Phase)
	id := started.Session.ID

	s.callTool(t, "select_stack", map[string]any{
		"session_id": id,
		"stack":      map[string]any{"id": "react-node", "name": "React + Node"},
	})
	s.callTool(t, "select_theme", map[string]any{
		"session_id": id,
		"theme":      map[string]any{"id": "midnight", "name": "Midnight"},
	})
	s.callTool(t, "submit_description", map[string]any{
		"session_id":  id,
		"description": "A reading log. It tracks finished books.",
	})

	s.callTool(t, "generate_requirements", map[string]any{"session_id": id})
	s.callTool(t, "approve_requirements", map[string]any{"session_id": id})
	s.callTool(t, "generate_design", map[string]any{"session_id": id})
	s.callTool(t, "approve_design", map[string]any{"session_id": id})
	s.callTool(t, "generate_tasks", map[string]any{"session_id": id})
	s.callTool(t, "approve_tasks", map[string]any{"session_id": id})
	s.callTool(t, "skip_image_generation", map[string]any{"session_id": id})

	var completed struct {
		Session struct {
			Phase string `json:"phase"`
		} `json:"session"`
		Progress int `json:"progress"`
	}
	require.NoError(t, json.Unmarshal(
		s.callTool(t, "complete_project", map[string]any{"session_id": id}), &completed))
	require.Equal(t, "complete", completed.Session.Phase)
	require.Equal(t, 100, completed.Progress)
}

func TestFunctional_ErrorCodes(t *testing.T) {
	s := newMCPSession(t)

	apiErr := s.callToolErr(t, "get_session", map[string]any{"session_id": "missing"})
	require.Equal(t, "SESSION_NOT_FOUND", apiErr.Code)

	var started struct {
		Session struct {
			ID string `json:"id"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(s.callTool(t, "start_project", nil), &started))

	apiErr = s.callToolErr(t, "submit_description", map[string]any{
		"session_id":  started.Session.ID,
		"description": "too soon",
	})
	require.Equal(t, "WRONG_PHASE", apiErr.Code)
}
