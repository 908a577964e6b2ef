// Package session defines the project-generation session aggregate and the
// Manager that persists it.
package session

import (
	"time"

	"github.com/mlehane/scaffolder-mcp/internal/domain/plan"
)

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// MessageKind tags the typed payload carried in message metadata.
type MessageKind string

const (
	KindStackSelection  MessageKind = "stack-selection"
	KindThemeSelection  MessageKind = "theme-selection"
	KindApproval        MessageKind = "approval"
	KindPlanDocument    MessageKind = "plan-document"
	KindImageGeneration MessageKind = "image-generation"
)

// MessageMeta carries a tagged, typed payload for a conversation message.
// Only the fields matching Kind are populated.
type MessageMeta struct {
	Kind     MessageKind  `json:"kind"`
	Stack    *StackChoice `json:"stack,omitempty"`
	Theme    *ThemeChoice `json:"theme,omitempty"`
	Document string       `json:"document,omitempty"`
	Phase    Phase        `json:"phase,omitempty"`
}

// ChatMessage is one entry in a session's conversation history.
type ChatMessage struct {
	Role      Role         `json:"role"`
	Content   string       `json:"content"`
	Timestamp time.Time    `json:"timestamp"`
	Meta      *MessageMeta `json:"meta,omitempty"`
}

// StackChoice is the technology stack selected for the project.
type StackChoice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Frontend string `json:"frontend,omitempty"`
	Backend  string `json:"backend,omitempty"`
	Database string `json:"database,omitempty"`
}

// ThemeChoice is the visual theme selected for the project.
type ThemeChoice struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	PrimaryColor string `json:"primary_color,omitempty"`
	Mode         string `json:"mode,omitempty"`
}

// GeneratedImage records one image produced during execution.
type GeneratedImage struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// Plan accumulates the generated planning documents as phases complete.
type Plan struct {
	Requirements *plan.Requirements `json:"requirements,omitempty"`
	Design       *plan.Design       `json:"design,omitempty"`
	Tasks        *plan.Tasks        `json:"tasks,omitempty"`
}

// Session is the durable aggregate tracking one project-generation run.
// Conversation is persisted separately from the session document and is
// therefore excluded from its JSON form.
type Session struct {
	ID              string           `json:"id"`
	Name            string           `json:"name,omitempty"`
	Phase           Phase            `json:"phase"`
	SelectedStack   *StackChoice     `json:"selected_stack,omitempty"`
	SelectedTheme   *ThemeChoice     `json:"selected_theme,omitempty"`
	Description     string           `json:"description,omitempty"`
	Plan            Plan             `json:"plan"`
	GeneratedImages []GeneratedImage `json:"generated_images,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`

	Conversation []ChatMessage `json:"-"`
}
