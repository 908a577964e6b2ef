package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mlehane/scaffolder-mcp/internal/domain/plan"
	"github.com/mlehane/scaffolder-mcp/internal/store"
)

const sessionsRoot = "sessions"

// Manager owns the session lifecycle: creation, persistence, retrieval,
// enumeration, and deletion. It is the only writer to the store namespace.
//
// Every compound load-mutate-persist operation holds a per-session mutex, so
// concurrent calls against the same session id serialize while operations on
// different ids never contend.
type Manager struct {
	store  store.Store
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewManager creates a session manager over the given store.
func NewManager(st store.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		store:  st,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// CreateRequest carries the optional initial state for a new session.
type CreateRequest struct {
	Description string
	Stack       *StackChoice
	Theme       *ThemeChoice
}

// Create allocates a fresh session in the initial phase and persists it.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (*Session, error) {
	now := time.Now()
	sess := &Session{
		ID:            uuid.NewString(),
		Phase:         PhaseStackSelection,
		SelectedStack: req.Stack,
		SelectedTheme: req.Theme,
		Description:   req.Description,
		CreatedAt:     now,
		UpdatedAt:     now,
		Conversation:  []ChatMessage{},
	}
	if err := m.persist(ctx, sess); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return sess, nil
}

// Load reads a full session, including its conversation history.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	if err := validID(id); err != nil {
		return nil, err
	}

	data, err := m.store.Read(ctx, sessionFile(id))
	if err != nil {
		if errors.Is(err, store.ErrNotExist) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parsing session %s: %w", id, err)
	}

	conv, err := m.loadConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	sess.Conversation = conv

	return &sess, nil
}

// Save persists the full session: document, conversation, and formatted plan
// artifacts. UpdatedAt is bumped before writing.
func (m *Manager) Save(ctx context.Context, sess *Session) error {
	if err := validID(sess.ID); err != nil {
		return err
	}
	unlock := m.lock(sess.ID)
	defer unlock()
	return m.persist(ctx, sess)
}

// AddMessage appends a message to the session's conversation history.
// The history is append-only: no message is ever removed or reordered.
func (m *Manager) AddMessage(ctx context.Context, id string, msg ChatMessage) error {
	unlock := m.lock(id)
	defer unlock()

	sess, err := m.Load(ctx, id)
	if err != nil {
		return err
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	sess.Conversation = append(sess.Conversation, msg)
	return m.persist(ctx, sess)
}

// Context returns the last maxMessages messages formatted as "role: content"
// lines joined with newlines, for use as generation context. Read-only.
func (m *Manager) Context(ctx context.Context, id string, maxMessages int) (string, error) {
	sess, err := m.Load(ctx, id)
	if err != nil {
		return "", err
	}

	msgs := sess.Conversation
	if maxMessages > 0 && len(msgs) > maxMessages {
		msgs = msgs[len(msgs)-maxMessages:]
	}

	lines := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Role, msg.Content))
	}
	return strings.Join(lines, "\n"), nil
}

// List enumerates all sessions as summaries, newest activity first. A session
// that fails to load or parse is logged and skipped rather than failing the
// whole enumeration.
func (m *Manager) List(ctx context.Context) ([]Summary, error) {
	entries, err := m.store.List(ctx, sessionsRoot)
	if err != nil {
		if errors.Is(err, store.ErrNotExist) {
			return []Summary{}, nil
		}
		return nil, fmt.Errorf("listing sessions: %w", err)
	}

	summaries := make([]Summary, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir {
			continue
		}
		sess, err := m.Load(ctx, entry.Name)
		if err != nil {
			m.logger.Warn("skipping unreadable session", "id", entry.Name, "error", err)
			continue
		}
		summaries = append(summaries, Summarize(sess))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// Delete removes every artifact belonging to the session.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if err := validID(id); err != nil {
		return err
	}
	unlock := m.lock(id)
	defer unlock()

	exists, err := m.store.Exists(ctx, sessionFile(id))
	if err != nil {
		return fmt.Errorf("checking session: %w", err)
	}
	if !exists {
		return ErrSessionNotFound
	}
	if err := m.store.Delete(ctx, sessionDir(id)); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// UpdatePhase advances the session along the workflow graph, rejecting any
// transition that is not a listed edge.
func (m *Manager) UpdatePhase(ctx context.Context, id string, to Phase) (*Session, error) {
	return m.Update(ctx, id, func(sess *Session) error {
		return transition(sess, to)
	})
}

// Update applies a targeted mutation under the session lock and persists the
// result. The mutation must not retain the session past its return.
func (m *Manager) Update(ctx context.Context, id string, mutate func(*Session) error) (*Session, error) {
	unlock := m.lock(id)
	defer unlock()

	sess, err := m.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := mutate(sess); err != nil {
		return nil, err
	}
	if err := m.persist(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// StoreImages appends generated image records to the session.
func (m *Manager) StoreImages(ctx context.Context, id string, images []GeneratedImage) (*Session, error) {
	return m.Update(ctx, id, func(sess *Session) error {
		sess.GeneratedImages = append(sess.GeneratedImages, images...)
		return nil
	})
}

func (m *Manager) lock(id string) func() {
	m.mu.Lock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	m.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func (m *Manager) persist(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now()

	doc, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing session: %w", err)
	}
	if err := m.store.Write(ctx, sessionFile(sess.ID), doc); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}

	conv := sess.Conversation
	if conv == nil {
		conv = []ChatMessage{}
	}
	convData, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing conversation: %w", err)
	}
	if err := m.store.Write(ctx, conversationFile(sess.ID), convData); err != nil {
		return fmt.Errorf("writing conversation: %w", err)
	}

	return m.writePlanArtifacts(ctx, sess)
}

// writePlanArtifacts materializes formatted plan documents alongside the
// session document. These are display artifacts only; reload uses
// session.json.
func (m *Manager) writePlanArtifacts(ctx context.Context, sess *Session) error {
	dir := sessionDir(sess.ID)
	if sess.Plan.Requirements != nil {
		text := plan.FormatRequirements(sess.Plan.Requirements)
		if err := m.store.Write(ctx, path.Join(dir, "requirements.md"), []byte(text)); err != nil {
			return fmt.Errorf("writing requirements: %w", err)
		}
	}
	if sess.Plan.Design != nil {
		text := plan.FormatDesign(sess.Plan.Design)
		if err := m.store.Write(ctx, path.Join(dir, "design.md"), []byte(text)); err != nil {
			return fmt.Errorf("writing design: %w", err)
		}
	}
	if sess.Plan.Tasks != nil {
		text := plan.FormatTasks(sess.Plan.Tasks)
		if err := m.store.Write(ctx, path.Join(dir, "tasks.md"), []byte(text)); err != nil {
			return fmt.Errorf("writing tasks: %w", err)
		}
	}
	return nil
}

func (m *Manager) loadConversation(ctx context.Context, id string) ([]ChatMessage, error) {
	data, err := m.store.Read(ctx, conversationFile(id))
	if err != nil {
		// A session written before its conversation (or with the log lost)
		// still loads, with an empty history.
		if errors.Is(err, store.ErrNotExist) {
			return []ChatMessage{}, nil
		}
		return nil, fmt.Errorf("loading conversation: %w", err)
	}
	var conv []ChatMessage
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("parsing conversation %s: %w", id, err)
	}
	return conv, nil
}

// validID rejects ids that could address a path outside the session
// namespace. Session ids are generated as UUIDs, so anything with path
// syntax in it is hostile or corrupt input.
func validID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return ErrInvalidInput
	}
	return nil
}

func transition(sess *Session, to Phase) error {
	if err := ValidateTransition(sess.Phase, to); err != nil {
		return err
	}
	sess.Phase = to
	return nil
}

func sessionDir(id string) string {
	return path.Join(sessionsRoot, id)
}

func sessionFile(id string) string {
	return path.Join(sessionsRoot, id, "session.json")
}

func conversationFile(id string) string {
	return path.Join(sessionsRoot, id, "conversation.json")
}
