// Package transport provides a plain JSON-RPC-over-HTTP surface for the
// tool handler, for embedders and tests that do not speak the full MCP
// handshake.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mlehane/scaffolder-mcp/internal/mcp"
)

// ToolHandler handles tool method dispatch.
type ToolHandler interface {
	Handle(ctx context.Context, defaultSessionID, method string, params json.RawMessage) (any, error)
}

// Server wires HTTP handlers.
type Server struct {
	handler ToolHandler
}

// NewServer creates an HTTP router exposing the tool handler at /rpc plus a
// health endpoint.
func NewServer(handler ToolHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(SessionMiddleware)

	srv := &Server{handler: handler}

	r.Post("/rpc", srv.handleRPC)
	r.Get("/health", srv.handleHealth)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		code := ErrParseCode
		if errors.Is(err, ErrInvalidRequest) {
			code = ErrInvalidReq
		}
		WriteError(w, nil, code, err.Error(), nil)
		return
	}

	sessionID, _ := SessionIDFromContext(r.Context())

	result, err := s.handler.Handle(r.Context(), sessionID, req.Method, req.Params)
	if err != nil {
		s.writeDomainError(w, req, err)
		return
	}

	WriteResult(w, req.ID, result)
}

// writeDomainError renders coded domain errors with their code and recovery
// hint in the error data; anything else is an internal error.
func (s *Server) writeDomainError(w http.ResponseWriter, req Request, err error) {
	if apiErr := mcp.MapError(err); apiErr != nil {
		WriteError(w, req.ID, ErrInvalidParams, apiErr.Message, apiErr)
		return
	}
	if strings.HasPrefix(err.Error(), "unknown method") {
		WriteError(w, req.ID, ErrMethodNotFound, err.Error(), nil)
		return
	}
	WriteError(w, req.ID, ErrInternal, err.Error(), nil)
}
