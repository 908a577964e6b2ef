package transport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mlehane/scaffolder-mcp/internal/domain/workflow"
	"github.com/mlehane/scaffolder-mcp/internal/transport"
)

type handlerStub struct {
	result any
	err    error

	lastMethod    string
	lastSessionID string
}

func (h *handlerStub) Handle(_ context.Context, defaultSessionID, method string, _ json.RawMessage) (any, error) {
	h.lastMethod = method
	h.lastSessionID = defaultSessionID
	return h.result, h.err
}

func post(t *testing.T, url, body string, header map[string]string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader([]byte(body)))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) transport.Response {
	t.Helper()
	defer resp.Body.Close()
	var out transport.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestServer_Dispatch(t *testing.T) {
	stub := &handlerStub{result: map[string]string{"hello": "world"}}
	srv := httptest.NewServer(transport.NewServer(stub))
	defer srv.Close()

	resp := decode(t, post(t, srv.URL+"/rpc", `{"jsonrpc":"2.0","method":"get_session","id":1}`, nil))
	require.Nil(t, resp.Error)
	require.Equal(t, "get_session", stub.lastMethod)
}

func TestServer_SessionHeaderFlows(t *testing.T) {
	stub := &handlerStub{result: "ok"}
	srv := httptest.NewServer(transport.NewServer(stub))
	defer srv.Close()

	resp := decode(t, post(t, srv.URL+"/rpc", `{"jsonrpc":"2.0","method":"get_session","id":1}`,
		map[string]string{"Mcp-Session-Id": "sess-42"}))
	require.Nil(t, resp.Error)
	require.Equal(t, "sess-42", stub.lastSessionID)
}

func TestServer_InvalidRequest(t *testing.T) {
	srv := httptest.NewServer(transport.NewServer(&handlerStub{}))
	defer srv.Close()

	resp := decode(t, post(t, srv.URL+"/rpc", `{"jsonrpc":"2.0"}`, nil))
	require.NotNil(t, resp.Error)
	require.Equal(t, transport.ErrInvalidReq, resp.Error.Code)
}

func TestServer_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(transport.NewServer(&handlerStub{}))
	defer srv.Close()

	resp := decode(t, post(t, srv.URL+"/rpc", `{"jsonrpc":`, nil))
	require.NotNil(t, resp.Error)
	require.Equal(t, transport.ErrParseCode, resp.Error.Code)
}

func TestServer_DomainErrorCarriesCode(t *testing.T) {
	stub := &handlerStub{err: fmt.Errorf("generate_design: %w", workflow.ErrWrongPhase)}
	srv := httptest.NewServer(transport.NewServer(stub))
	defer srv.Close()

	resp := decode(t, post(t, srv.URL+"/rpc", `{"jsonrpc":"2.0","method":"generate_design","id":1}`, nil))
	require.NotNil(t, resp.Error)
	require.Equal(t, transport.ErrInvalidParams, resp.Error.Code)

	data, err := json.Marshal(resp.Error.Data)
	require.NoError(t, err)
	require.Contains(t, string(data), "WRONG_PHASE")
}

func TestServer_UnknownMethod(t *testing.T) {
	stub := &handlerStub{err: fmt.Errorf("unknown method: nope")}
	srv := httptest.NewServer(transport.NewServer(stub))
	defer srv.Close()

	resp := decode(t, post(t, srv.URL+"/rpc", `{"jsonrpc":"2.0","method":"nope","id":1}`, nil))
	require.NotNil(t, resp.Error)
	require.Equal(t, transport.ErrMethodNotFound, resp.Error.Code)
}

func TestServer_Health(t *testing.T) {
	srv := httptest.NewServer(transport.NewServer(&handlerStub{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
