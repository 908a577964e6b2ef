// Package testserver provides a fully wired in-process server for tests.
package testserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mlehane/scaffolder-mcp/internal/domain/session"
	"github.com/mlehane/scaffolder-mcp/internal/domain/workflow"
	"github.com/mlehane/scaffolder-mcp/internal/mcp"
	"github.com/mlehane/scaffolder-mcp/internal/planner"
	"github.com/mlehane/scaffolder-mcp/internal/store"
	"github.com/mlehane/scaffolder-mcp/internal/transport"
)

type TestServer struct {
	Server   *httptest.Server
	Store    store.Store
	Sessions *session.Manager
	Workflow *workflow.Service
}

// New builds a server backed by a filesystem store in a temp directory and
// the deterministic template planner.
func New(t *testing.T) *TestServer {
	t.Helper()

	st, err := store.NewFS(t.TempDir())
	require.NoError(t, err)

	return newWithStore(t, st)
}

// NewSQLite builds a server backed by an in-memory SQLite store.
func NewSQLite(t *testing.T) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	st, err := store.NewSQLite(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	return newWithStore(t, st)
}

func newWithStore(t *testing.T, st store.Store) *TestServer {
	t.Helper()

	sessions := session.NewManager(st, nil)
	flow := workflow.NewService(sessions, planner.NewTemplate(), nil, 10*time.Second)

	handler := mcp.NewHandler(flow, sessions)
	server := httptest.NewServer(transport.NewServer(handler))

	t.Cleanup(server.Close)

	return &TestServer{
		Server:   server,
		Store:    st,
		Sessions: sessions,
		Workflow: flow,
	}
}

// Call posts a JSON-RPC request for the named tool and returns the raw
// response.
func (ts *TestServer) Call(t *testing.T, method string, params any) transport.Response {
	t.Helper()

	body, err := json.Marshal(transport.Request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  mustRaw(t, params),
		ID:      1,
	})
	require.NoError(t, err)

	resp, err := http.Post(ts.Server.URL+"/rpc", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var rpcResp struct {
		JSONRPC string           `json:"jsonrpc"`
		Result  json.RawMessage  `json:"result"`
		Error   *transport.Error `json:"error"`
		ID      any              `json:"id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rpcResp))

	return transport.Response{
		JSONRPC: rpcResp.JSONRPC,
		Result:  rpcResp.Result,
		Error:   rpcResp.Error,
		ID:      rpcResp.ID,
	}
}

// CallOK posts a tool request, requires success, and decodes the result into
// out when out is non-nil.
func (ts *TestServer) CallOK(t *testing.T, method string, params any, out any) {
	t.Helper()

	resp := ts.Call(t, method, params)
	require.Nil(t, resp.Error, "unexpected error for %s: %+v", method, resp.Error)

	if out != nil {
		raw, ok := resp.Result.(json.RawMessage)
		require.True(t, ok)
		require.NoError(t, json.Unmarshal(raw, out))
	}
}

func mustRaw(t *testing.T, params any) json.RawMessage {
	t.Helper()

	if params == nil {
		return nil
	}
	data, err := json.Marshal(params)
	require.NoError(t, err)
	return data
}
