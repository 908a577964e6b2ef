package mcp

import "github.com/mlehane/scaffolder-mcp/internal/domain/session"

type SessionParams struct {
	SessionID string `json:"session_id,omitempty"`
}

type SelectStackParams struct {
	SessionID string              `json:"session_id,omitempty"`
	Stack     session.StackChoice `json:"stack"`
}

type SelectThemeParams struct {
	SessionID string              `json:"session_id,omitempty"`
	Theme     session.ThemeChoice `json:"theme"`
}

type SubmitDescriptionParams struct {
	SessionID   string `json:"session_id,omitempty"`
	Description string `json:"description"`
}

type FeedbackParams struct {
	SessionID string `json:"session_id,omitempty"`
	Feedback  string `json:"feedback"`
}

type RecordImagesParams struct {
	SessionID string                   `json:"session_id,omitempty"`
	Images    []session.GeneratedImage `json:"images"`
}

type GetConversationParams struct {
	SessionID   string `json:"session_id,omitempty"`
	MaxMessages int    `json:"max_messages,omitempty"`
}

// SessionResponse is the standard session view returned by workflow tools.
type SessionResponse struct {
	Session  *session.Session `json:"session"`
	Progress int              `json:"progress"`
}

// ConversationResponse carries a session's message history.
type ConversationResponse struct {
	SessionID string                `json:"session_id"`
	Messages  []session.ChatMessage `json:"messages"`
}

// DeleteResponse acknowledges a deletion.
type DeleteResponse struct {
	SessionID string `json:"session_id"`
	Deleted   bool   `json:"deleted"`
}

func sessionResponse(sess *session.Session) SessionResponse {
	return SessionResponse{
		Session:  sess,
		Progress: session.Progress(sess.Phase),
	}
}
