package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mlehane/scaffolder-mcp/internal/domain/session"
)

// WorkflowService defines the workflow operations needed by MCP.
type WorkflowService interface {
	StartProject(ctx context.Context) (*session.Session, error)
	SelectStack(ctx context.Context, sessionID string, stack session.StackChoice) (*session.Session, error)
	SelectTheme(ctx context.Context, sessionID string, theme session.ThemeChoice) (*session.Session, error)
	SubmitDescription(ctx context.Context, sessionID, description string) (*session.Session, error)
	GenerateRequirements(ctx context.Context, sessionID string) (*session.Session, error)
	UpdateRequirements(ctx context.Context, sessionID, feedback string) (*session.Session, error)
	ApproveRequirements(ctx context.Context, sessionID string) (*session.Session, error)
	GenerateDesign(ctx context.Context, sessionID string) (*session.Session, error)
	UpdateDesign(ctx context.Context, sessionID, feedback string) (*session.Session, error)
	ApproveDesign(ctx context.Context, sessionID string) (*session.Session, error)
	GenerateTasks(ctx context.Context, sessionID string) (*session.Session, error)
	UpdateTasks(ctx context.Context, sessionID, feedback string) (*session.Session, error)
	ApproveTasks(ctx context.Context, sessionID string) (*session.Session, error)
	OfferImageGeneration(ctx context.Context, sessionID string) (*session.Session, error)
	SkipImageGeneration(ctx context.Context, sessionID string) (*session.Session, error)
	AcceptImageGeneration(ctx context.Context, sessionID string) (*session.Session, error)
	RecordImages(ctx context.Context, sessionID string, images []session.GeneratedImage) (*session.Session, error)
	StartExecution(ctx context.Context, sessionID string) (*session.Session, error)
	CompleteProject(ctx context.Context, sessionID string) (*session.Session, error)
}

// SessionService defines the session views and lifecycle operations needed
// by MCP beyond the workflow itself.
type SessionService interface {
	Load(ctx context.Context, id string) (*session.Session, error)
	List(ctx context.Context) ([]session.Summary, error)
	Delete(ctx context.Context, id string) error
	Context(ctx context.Context, id string, maxMessages int) (string, error)
}

// Handler dispatches MCP tool calls to domain services.
type Handler struct {
	flow     WorkflowService
	sessions SessionService
}

// NewHandler creates a new MCP handler.
func NewHandler(flow WorkflowService, sessions SessionService) *Handler {
	return &Handler{flow: flow, sessions: sessions}
}

// Handle dispatches a tool call. defaultSessionID (from the transport
// session header) is used when params omit session_id.
func (h *Handler) Handle(ctx context.Context, defaultSessionID, method string, params json.RawMessage) (any, error) {
	switch method {
	case "start_project":
		sess, err := h.flow.StartProject(ctx)
		if err != nil {
			return nil, err
		}
		return sessionResponse(sess), nil

	case "list_sessions":
		return h.sessions.List(ctx)

	case "get_session":
		var req SessionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		sess, err := h.sessions.Load(ctx, orDefault(req.SessionID, defaultSessionID))
		if err != nil {
			return nil, err
		}
		return sessionResponse(sess), nil

	case "get_conversation":
		var req GetConversationParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		id := orDefault(req.SessionID, defaultSessionID)
		sess, err := h.sessions.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		msgs := sess.Conversation
		if req.MaxMessages > 0 && len(msgs) > req.MaxMessages {
			msgs = msgs[len(msgs)-req.MaxMessages:]
		}
		return ConversationResponse{SessionID: id, Messages: msgs}, nil

	case "delete_session":
		var req SessionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		id := orDefault(req.SessionID, defaultSessionID)
		if err := h.sessions.Delete(ctx, id); err != nil {
			return nil, err
		}
		return DeleteResponse{SessionID: id, Deleted: true}, nil

	case "select_stack":
		var req SelectStackParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.session(h.flow.SelectStack(ctx, orDefault(req.SessionID, defaultSessionID), req.Stack))

	case "select_theme":
		var req SelectThemeParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.session(h.flow.SelectTheme(ctx, orDefault(req.SessionID, defaultSessionID), req.Theme))

	case "submit_description":
		var req SubmitDescriptionParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.session(h.flow.SubmitDescription(ctx, orDefault(req.SessionID, defaultSessionID), req.Description))

	case "generate_requirements":
		return h.sessionOp(ctx, defaultSessionID, params, h.flow.GenerateRequirements)

	case "update_requirements":
		return h.feedbackOp(ctx, defaultSessionID, params, h.flow.UpdateRequirements)

	case "approve_requirements":
		return h.sessionOp(ctx, defaultSessionID, params, h.flow.ApproveRequirements)

	case "generate_design":
		return h.sessionOp(ctx, defaultSessionID, params, h.flow.GenerateDesign)

	case "update_design":
		return h.feedbackOp(ctx, defaultSessionID, params, h.flow.UpdateDesign)

	case "approve_design":
		return h.sessionOp(ctx, defaultSessionID, params, h.flow.ApproveDesign)

	case "generate_tasks":
		return h.sessionOp(ctx, defaultSessionID, params, h.flow.GenerateTasks)

	case "update_tasks":
		return h.feedbackOp(ctx, defaultSessionID, params, h.flow.UpdateTasks)

	case "approve_tasks":
		return h.sessionOp(ctx, defaultSessionID, params, h.flow.ApproveTasks)

	case "offer_image_generation":
		return h.sessionOp(ctx, defaultSessionID, params, h.flow.OfferImageGeneration)

	case "skip_image_generation":
		return h.sessionOp(ctx, defaultSessionID, params, h.flow.SkipImageGeneration)

	case "accept_image_generation":
		return h.sessionOp(ctx, defaultSessionID, params, h.flow.AcceptImageGeneration)

	case "record_images":
		var req RecordImagesParams
		if err := decodeParams(params, &req); err != nil {
			return nil, err
		}
		return h.session(h.flow.RecordImages(ctx, orDefault(req.SessionID, defaultSessionID), req.Images))

	case "start_execution":
		return h.sessionOp(ctx, defaultSessionID, params, h.flow.StartExecution)

	case "complete_project":
		return h.sessionOp(ctx, defaultSessionID, params, h.flow.CompleteProject)

	default:
		return nil, fmt.Errorf("unknown method: %s", method)
	}
}

func (h *Handler) sessionOp(ctx context.Context, defaultSessionID string, params json.RawMessage,
	op func(context.Context, string) (*session.Session, error)) (any, error) {
	var req SessionParams
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.session(op(ctx, orDefault(req.SessionID, defaultSessionID)))
}

func (h *Handler) feedbackOp(ctx context.Context, defaultSessionID string, params json.RawMessage,
	op func(context.Context, string, string) (*session.Session, error)) (any, error) {
	var req FeedbackParams
	if err := decodeParams(params, &req); err != nil {
		return nil, err
	}
	return h.session(op(ctx, orDefault(req.SessionID, defaultSessionID), req.Feedback))
}

func (h *Handler) session(sess *session.Session, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return sessionResponse(sess), nil
}

func decodeParams(params json.RawMessage, dst any) error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, dst); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
