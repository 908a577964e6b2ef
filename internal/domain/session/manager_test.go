package session_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mlehane/scaffolder-mcp/internal/domain/plan"
	"github.com/mlehane/scaffolder-mcp/internal/domain/session"
	"github.com/mlehane/scaffolder-mcp/internal/store"
)

func newManager(t *testing.T) (*session.Manager, store.Store) {
	t.Helper()
	st, err := store.NewFS(t.TempDir())
	require.NoError(t, err)
	return session.NewManager(st, nil), st
}

func TestManager_CreateLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newManager(t)

	sess, err := mgr.Create(ctx, session.CreateRequest{Description: "A recipe box"})
	require.NoError(t, err)
	require.NotEmpty(t, sess.ID)
	require.Equal(t, session.PhaseStackSelection, sess.Phase)

	loaded, err := mgr.Load(ctx, sess.ID)
	require.NoError(t, err)
	require.Equal(t, sess.ID, loaded.ID)
	require.Equal(t, session.PhaseStackSelection, loaded.Phase)
	require.Equal(t, "A recipe box", loaded.Description)
	require.Empty(t, loaded.Conversation)
	require.WithinDuration(t, sess.CreatedAt, loaded.CreatedAt, time.Second)
	require.False(t, loaded.UpdatedAt.Before(loaded.CreatedAt))
}

func TestManager_LoadMissing(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newManager(t)

	_, err := mgr.Load(ctx, "no-such-session")
	require.ErrorIs(t, err, session.ErrSessionNotFound)

	_, err = mgr.Load(ctx, "")
	require.ErrorIs(t, err, session.ErrInvalidInput)
}

func TestManager_AddMessageAppendOnly(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newManager(t)

	sess, err := mgr.Create(ctx, session.CreateRequest{})
	require.NoError(t, err)

	for i, content := range []string{"first", "second", "third"} {
		role := session.RoleUser
		if i%2 == 1 {
			role = session.RoleAssistant
		}
		require.NoError(t, mgr.AddMessage(ctx, sess.ID, session.ChatMessage{
			Role:    role,
			Content: content,
		}))
	}

	loaded, err := mgr.Load(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Conversation, 3)
	require.Equal(t, "first", loaded.Conversation[0].Content)
	require.Equal(t, "second", loaded.Conversation[1].Content)
	require.Equal(t, "third", loaded.Conversation[2].Content)
	for _, msg := range loaded.Conversation {
		require.False(t, msg.Timestamp.IsZero())
	}
}

func TestManager_Context(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newManager(t)

	sess, err := mgr.Create(ctx, session.CreateRequest{})
	require.NoError(t, err)

	require.NoError(t, mgr.AddMessage(ctx, sess.ID, session.ChatMessage{Role: session.RoleUser, Content: "hello"}))
	require.NoError(t, mgr.AddMessage(ctx, sess.ID, session.ChatMessage{Role: session.RoleAssistant, Content: "hi there"}))
	require.NoError(t, mgr.AddMessage(ctx, sess.ID, session.ChatMessage{Role: session.RoleUser, Content: "build it"}))

	full, err := mgr.Context(ctx, sess.ID, 0)
	require.NoError(t, err)
	require.Equal(t, "user: hello\nassistant: hi there\nuser: build it", full)

	tail, err := mgr.Context(ctx, sess.ID, 2)
	require.NoError(t, err)
	require.Equal(t, "assistant: hi there\nuser: build it", tail)
}

func TestManager_SaveWritesPlanArtifacts(t *testing.T) {
	ctx := context.Background()
	mgr, st := newManager(t)

	sess, err := mgr.Create(ctx, session.CreateRequest{})
	require.NoError(t, err)

	doc := &plan.Requirements{
		Introduction: "Requirements for a recipe box.",
		Requirements: []plan.Requirement{{
			ID:                 "1",
			UserStory:          "As a user, I want to save recipes, so that I can find them later.",
			AcceptanceCriteria: []string{"WHEN a recipe is saved THEN the system SHALL persist it"},
		}},
	}
	sess.Plan.Requirements = doc
	require.NoError(t, mgr.Save(ctx, sess))

	data, err := st.Read(ctx, "sessions/"+sess.ID+"/requirements.md")
	require.NoError(t, err)
	require.Equal(t, plan.FormatRequirements(doc), string(data))

	// No design yet, so no design artifact.
	exists, err := st.Exists(ctx, "sessions/"+sess.ID+"/design.md")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestManager_ListSortsAndSkipsCorrupt(t *testing.T) {
	ctx := context.Background()
	mgr, st := newManager(t)

	first, err := mgr.Create(ctx, session.CreateRequest{})
	require.NoError(t, err)
	second, err := mgr.Create(ctx, session.CreateRequest{})
	require.NoError(t, err)

	// Bump the first session so it has the newest activity.
	require.NoError(t, mgr.AddMessage(ctx, first.ID, session.ChatMessage{Role: session.RoleUser, Content: "ping"}))

	// A corrupt session directory is skipped, not fatal.
	require.NoError(t, st.Write(ctx, "sessions/corrupt/session.json", []byte("not json")))

	summaries, err := mgr.List(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	require.Equal(t, first.ID, summaries[0].ID)
	require.Equal(t, second.ID, summaries[1].ID)
	require.Equal(t, 1, summaries[0].MessageCount)
}

func TestManager_ListEmpty(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newManager(t)

	summaries, err := mgr.List(ctx)
	require.NoError(t, err)
	require.Empty(t, summaries)
}

func TestManager_Delete(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newManager(t)

	require.ErrorIs(t, mgr.Delete(ctx, "missing"), session.ErrSessionNotFound)

	sess, err := mgr.Create(ctx, session.CreateRequest{})
	require.NoError(t, err)
	require.NoError(t, mgr.Delete(ctx, sess.ID))

	_, err = mgr.Load(ctx, sess.ID)
	require.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestManager_RejectsPathSyntaxInID(t *testing.T) {
	ctx := context.Background()

	// Plant a directory next to the store root; an id with traversal syntax
	// must never reach it.
	base := t.TempDir()
	victim := filepath.Join(base, "victim")
	require.NoError(t, os.MkdirAll(victim, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(victim, "precious.txt"), []byte("keep"), 0o644))

	st, err := store.NewFS(filepath.Join(base, "store"))
	require.NoError(t, err)
	mgr := session.NewManager(st, nil)

	for _, id := range []string{"../../victim", "..", "a/b", `a\b`, "sessions/../../victim"} {
		_, err := mgr.Load(ctx, id)
		require.ErrorIs(t, err, session.ErrInvalidInput, "Load(%q)", id)

		err = mgr.Delete(ctx, id)
		require.ErrorIs(t, err, session.ErrInvalidInput, "Delete(%q)", id)

		err = mgr.Save(ctx, &session.Session{ID: id})
		require.ErrorIs(t, err, session.ErrInvalidInput, "Save(%q)", id)
	}

	_, err = os.Stat(filepath.Join(victim, "precious.txt"))
	require.NoError(t, err)
}

func TestManager_UpdatePhase(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newManager(t)

	sess, err := mgr.Create(ctx, session.CreateRequest{})
	require.NoError(t, err)

	updated, err := mgr.UpdatePhase(ctx, sess.ID, session.PhaseThemeSelection)
	require.NoError(t, err)
	require.Equal(t, session.PhaseThemeSelection, updated.Phase)

	_, err = mgr.UpdatePhase(ctx, sess.ID, session.PhaseTasks)
	require.ErrorIs(t, err, session.ErrInvalidTransition)

	// Failed transition leaves the stored phase untouched.
	loaded, err := mgr.Load(ctx, sess.ID)
	require.NoError(t, err)
	require.Equal(t, session.PhaseThemeSelection, loaded.Phase)
}

func TestManager_StoreImages(t *testing.T) {
	ctx := context.Background()
	mgr, _ := newManager(t)

	sess, err := mgr.Create(ctx, session.CreateRequest{})
	require.NoError(t, err)

	updated, err := mgr.StoreImages(ctx, sess.ID, []session.GeneratedImage{
		{ID: "img-1", Prompt: "hero banner", Path: "images/hero.png", CreatedAt: time.Now()},
	})
	require.NoError(t, err)
	require.Len(t, updated.GeneratedImages, 1)

	loaded, err := mgr.Load(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, loaded.GeneratedImages, 1)
	require.Equal(t, "img-1", loaded.GeneratedImages[0].ID)
}
