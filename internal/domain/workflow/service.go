// Package workflow implements the project-generation state machine: the
// phased pipeline that walks a session from stack selection through plan
// generation to execution.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/mlehane/scaffolder-mcp/internal/domain/plan"
	"github.com/mlehane/scaffolder-mcp/internal/domain/session"
	"github.com/mlehane/scaffolder-mcp/internal/planner"
)

// maxContextMessages bounds the conversation context handed to the planner.
const maxContextMessages = 20

// SessionManager provides session persistence for the workflow.
type SessionManager interface {
	Create(ctx context.Context, req session.CreateRequest) (*session.Session, error)
	Load(ctx context.Context, id string) (*session.Session, error)
	Save(ctx context.Context, sess *session.Session) error
	StoreImages(ctx context.Context, id string, images []session.GeneratedImage) (*session.Session, error)
}

// Service orchestrates the project-generation workflow. Each operation is a
// sequential load, validate, (optionally generate), mutate, persist, log
// pipeline. Operations against the same session id serialize; there is at
// most one in-flight operation per session.
type Service struct {
	sessions   SessionManager
	planner    planner.Planner
	logger     *slog.Logger
	genTimeout time.Duration

	locks sync.Map // session id -> *sync.Mutex
}

// NewService creates a workflow service. genTimeout bounds each planner
// call; zero disables the bound.
func NewService(sessions SessionManager, p planner.Planner, logger *slog.Logger, genTimeout time.Duration) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sessions:   sessions,
		planner:    p,
		logger:     logger,
		genTimeout: genTimeout,
	}
}

// StartProject creates a fresh session in the stack-selection phase.
func (s *Service) StartProject(ctx context.Context) (*session.Session, error) {
	sess, err := s.sessions.Create(ctx, session.CreateRequest{})
	if err != nil {
		return nil, err
	}
	appendMessage(sess, session.RoleSystem,
		"Project session created. Select a technology stack to begin.", nil)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info("project started", "session", sess.ID)
	return sess, nil
}

// SelectStack stores the chosen stack and advances to theme selection.
func (s *Service) SelectStack(ctx context.Context, sessionID string, stack session.StackChoice) (*session.Session, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.loadAt(ctx, sessionID, "select_stack", session.PhaseStackSelection)
	if err != nil {
		return nil, err
	}

	sess.SelectedStack = &stack
	appendMessage(sess, session.RoleSystem,
		fmt.Sprintf("Stack selected: %s", stack.Name),
		&session.MessageMeta{Kind: session.KindStackSelection, Stack: &stack})
	return s.advanceAndSave(ctx, sess, session.PhaseThemeSelection)
}

// SelectTheme stores the chosen theme and advances to description.
func (s *Service) SelectTheme(ctx context.Context, sessionID string, theme session.ThemeChoice) (*session.Session, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.loadAt(ctx, sessionID, "select_theme", session.PhaseThemeSelection)
	if err != nil {
		return nil, err
	}

	sess.SelectedTheme = &theme
	appendMessage(sess, session.RoleSystem,
		fmt.Sprintf("Theme selected: %s", theme.Name),
		&session.MessageMeta{Kind: session.KindThemeSelection, Theme: &theme})
	return s.advanceAndSave(ctx, sess, session.PhaseDescription)
}

// SubmitDescription stores the project description, derives the project
// name, and advances to requirements.
func (s *Service) SubmitDescription(ctx context.Context, sessionID, description string) (*session.Session, error) {
	if strings.TrimSpace(description) == "" {
		return nil, session.ErrInvalidInput
	}

	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.loadAt(ctx, sessionID, "submit_description", session.PhaseDescription)
	if err != nil {
		return nil, err
	}

	sess.Description = description
	sess.Name = deriveProjectName(description)
	appendMessage(sess, session.RoleUser, description, nil)
	return s.advanceAndSave(ctx, sess, session.PhaseRequirements)
}

// GenerateRequirements produces the requirements document for the session.
// The session stays in the requirements phase until explicitly approved.
func (s *Service) GenerateRequirements(ctx context.Context, sessionID string) (*session.Session, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.loadAt(ctx, sessionID, "generate_requirements", session.PhaseRequirements)
	if err != nil {
		return nil, err
	}
	return s.regenerateRequirements(ctx, sess, sess.Description)
}

// UpdateRequirements regenerates the requirements document with the user's
// feedback appended to the description.
func (s *Service) UpdateRequirements(ctx context.Context, sessionID, feedback string) (*session.Session, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.loadAt(ctx, sessionID, "update_requirements", session.PhaseRequirements)
	if err != nil {
		return nil, err
	}
	if err := requireDocument(sess.Plan.Requirements != nil, "update_requirements", "requirements"); err != nil {
		return nil, err
	}

	appendMessage(sess, session.RoleUser, feedback, nil)
	description := sess.Description + "\n\nUser feedback: " + feedback
	return s.regenerateRequirements(ctx, sess, description)
}

// ApproveRequirements records approval and advances to design.
func (s *Service) ApproveRequirements(ctx context.Context, sessionID string) (*session.Session, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.loadAt(ctx, sessionID, "approve_requirements", session.PhaseRequirements)
	if err != nil {
		return nil, err
	}
	if err := requireDocument(sess.Plan.Requirements != nil, "approve_requirements", "requirements"); err != nil {
		return nil, err
	}

	appendMessage(sess, session.RoleUser, "Requirements approved.",
		&session.MessageMeta{Kind: session.KindApproval, Document: "requirements"})
	return s.advanceAndSave(ctx, sess, session.PhaseDesign)
}

// GenerateDesign produces the design document from approved requirements.
func (s *Service) GenerateDesign(ctx context.Context, sessionID string) (*session.Session, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.loadAt(ctx, sessionID, "generate_design", session.PhaseDesign)
	if err != nil {
		return nil, err
	}
	if err := requireDocument(sess.Plan.Requirements != nil, "generate_design", "requirements"); err != nil {
		return nil, err
	}
	return s.regenerateDesign(ctx, sess)
}

// UpdateDesign regenerates the design document with user feedback.
func (s *Service) UpdateDesign(ctx context.Context, sessionID, feedback string) (*session.Session, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.loadAt(ctx, sessionID, "update_design", session.PhaseDesign)
	if err != nil {
		return nil, err
	}
	if err := requireDocument(sess.Plan.Design != nil, "update_design", "design"); err != nil {
		return nil, err
	}
	if err := requireDocument(sess.Plan.Requirements != nil, "update_design", "requirements"); err != nil {
		return nil, err
	}

	appendMessage(sess, session.RoleUser, feedback, nil)
	return s.regenerateDesign(ctx, sess)
}

// ApproveDesign records approval and advances to tasks.
func (s *Service) ApproveDesign(ctx context.Context, sessionID string) (*session.Session, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.loadAt(ctx, sessionID, "approve_design", session.PhaseDesign)
	if err != nil {
		return nil, err
	}
	if err := requireDocument(sess.Plan.Design != nil, "approve_design", "design"); err != nil {
		return nil, err
	}

	appendMessage(sess, session.RoleUser, "Design approved.",
		&session.MessageMeta{Kind: session.KindApproval, Document: "design"})
	return s.advanceAndSave(ctx, sess, session.PhaseTasks)
}

// GenerateTasks produces the implementation plan from the approved design.
func (s *Service) GenerateTasks(ctx context.Context, sessionID string) (*session.Session, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.loadAt(ctx, sessionID, "generate_tasks", session.PhaseTasks)
	if err != nil {
		return nil, err
	}
	if err := requireDocument(sess.Plan.Design != nil, "generate_tasks", "design"); err != nil {
		return nil, err
	}
	return s.regenerateTasks(ctx, sess)
}

// UpdateTasks regenerates the task list with user feedback.
func (s *Service) UpdateTasks(ctx context.Context, sessionID, feedback string) (*session.Session, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.loadAt(ctx, sessionID, "update_tasks", session.PhaseTasks)
	if err != nil {
		return nil, err
	}
	if err := requireDocument(sess.Plan.Tasks != nil, "update_tasks", "tasks"); err != nil {
		return nil, err
	}
	if err := requireDocument(sess.Plan.Design != nil, "update_tasks", "design"); err != nil {
		return nil, err
	}

	appendMessage(sess, session.RoleUser, feedback, nil)
	return s.regenerateTasks(ctx, sess)
}

// ApproveTasks records approval and advances to image generation.
func (s *Service) ApproveTasks(ctx context.Context, sessionID string) (*session.Session, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.loadAt(ctx, sessionID, "approve_tasks", session.PhaseTasks)
	if err != nil {
		return nil, err
	}
	if err := requireDocument(sess.Plan.Tasks != nil, "approve_tasks", "tasks"); err != nil {
		return nil, err
	}

	appendMessage(sess, session.RoleUser, "Tasks approved.",
		&session.MessageMeta{Kind: session.KindApproval, Document: "tasks"})
	return s.advanceAndSave(ctx, sess, session.PhaseImageGeneration)
}

// OfferImageGeneration logs the assistant prompt offering concept image
// generation. The session stays in the image-generation phase.
func (s *Service) OfferImageGeneration(ctx context.Context, sessionID string) (*session.Session, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.loadAt(ctx, sessionID, "offer_image_generation", session.PhaseImageGeneration)
	if err != nil {
		return nil, err
	}

	appendMessage(sess, session.RoleAssistant,
		"Would you like to generate concept images for this project?",
		&session.MessageMeta{Kind: session.KindImageGeneration})
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// SkipImageGeneration declines image generation and advances to execution.
func (s *Service) SkipImageGeneration(ctx context.Context, sessionID string) (*session.Session, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.loadAt(ctx, sessionID, "skip_image_generation", session.PhaseImageGeneration)
	if err != nil {
		return nil, err
	}

	appendMessage(sess, session.RoleSystem, "Image generation skipped.",
		&session.MessageMeta{Kind: session.KindImageGeneration})
	return s.advanceAndSave(ctx, sess, session.PhaseExecution)
}

// AcceptImageGeneration accepts image generation and advances to execution.
// The actual generation is delegated to the executing client, which reports
// results through RecordImages.
func (s *Service) AcceptImageGeneration(ctx context.Context, sessionID string) (*session.Session, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.loadAt(ctx, sessionID, "accept_image_generation", session.PhaseImageGeneration)
	if err != nil {
		return nil, err
	}

	appendMessage(sess, session.RoleSystem,
		"Image generation accepted; images will be produced during execution.",
		&session.MessageMeta{Kind: session.KindImageGeneration})
	return s.advanceAndSave(ctx, sess, session.PhaseExecution)
}

// RecordImages appends generated image records during execution.
func (s *Service) RecordImages(ctx context.Context, sessionID string, images []session.GeneratedImage) (*session.Session, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.loadAt(ctx, sessionID, "record_images", session.PhaseExecution)
	if err != nil {
		return nil, err
	}

	sess.GeneratedImages = append(sess.GeneratedImages, images...)
	appendMessage(sess, session.RoleSystem,
		fmt.Sprintf("%d generated images recorded.", len(images)),
		&session.MessageMeta{Kind: session.KindImageGeneration})
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// StartExecution marks the beginning of execution. The session stays in the
// execution phase until CompleteProject.
func (s *Service) StartExecution(ctx context.Context, sessionID string) (*session.Session, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.loadAt(ctx, sessionID, "start_execution", session.PhaseExecution)
	if err != nil {
		return nil, err
	}

	appendMessage(sess, session.RoleSystem, "Execution started.", nil)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// CompleteProject moves the session to its terminal phase.
func (s *Service) CompleteProject(ctx context.Context, sessionID string) (*session.Session, error) {
	unlock := s.lock(sessionID)
	defer unlock()

	sess, err := s.loadAt(ctx, sessionID, "complete_project", session.PhaseExecution)
	if err != nil {
		return nil, err
	}

	appendMessage(sess, session.RoleSystem, "Project generation complete.", nil)
	return s.advanceAndSave(ctx, sess, session.PhaseComplete)
}

func (s *Service) regenerateRequirements(ctx context.Context, sess *session.Session, description string) (*session.Session, error) {
	in := planner.Input{
		Description: description,
		Stack:       sess.SelectedStack,
		Theme:       sess.SelectedTheme,
		Context:     contextLines(sess, maxContextMessages),
	}

	gctx, cancel := s.planContext(ctx)
	defer cancel()
	doc, err := s.planner.CreateRequirements(gctx, in)
	if err != nil {
		return nil, s.planError(ctx, "generating requirements", err)
	}

	sess.Plan.Requirements = doc
	appendMessage(sess, session.RoleAssistant, plan.FormatRequirements(doc),
		&session.MessageMeta{Kind: session.KindPlanDocument, Document: "requirements"})
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info("requirements generated", "session", sess.ID, "requirements", len(doc.Requirements))
	return sess, nil
}

func (s *Service) regenerateDesign(ctx context.Context, sess *session.Session) (*session.Session, error) {
	in := planner.Input{
		Description: sess.Description,
		Stack:       sess.SelectedStack,
		Theme:       sess.SelectedTheme,
		Context:     contextLines(sess, maxContextMessages),
	}

	gctx, cancel := s.planContext(ctx)
	defer cancel()
	doc, err := s.planner.CreateDesign(gctx, sess.Plan.Requirements, in)
	if err != nil {
		return nil, s.planError(ctx, "generating design", err)
	}

	sess.Plan.Design = doc
	appendMessage(sess, session.RoleAssistant, plan.FormatDesign(doc),
		&session.MessageMeta{Kind: session.KindPlanDocument, Document: "design"})
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info("design generated", "session", sess.ID, "components", len(doc.Components))
	return sess, nil
}

func (s *Service) regenerateTasks(ctx context.Context, sess *session.Session) (*session.Session, error) {
	in := planner.Input{
		Description: sess.Description,
		Stack:       sess.SelectedStack,
		Theme:       sess.SelectedTheme,
		Context:     contextLines(sess, maxContextMessages),
	}

	gctx, cancel := s.planContext(ctx)
	defer cancel()
	doc, err := s.planner.CreateTasks(gctx, sess.Plan.Design, in)
	if err != nil {
		return nil, s.planError(ctx, "generating tasks", err)
	}

	sess.Plan.Tasks = doc
	appendMessage(sess, session.RoleAssistant, plan.FormatTasks(doc),
		&session.MessageMeta{Kind: session.KindPlanDocument, Document: "tasks"})
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info("tasks generated", "session", sess.ID, "tasks", len(doc.Tasks))
	return sess, nil
}

// loadAt loads the session and verifies it is in the phase the operation
// requires. Nothing is mutated on failure.
func (s *Service) loadAt(ctx context.Context, sessionID, op string, want session.Phase) (*session.Session, error) {
	sess, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Phase != want {
		return nil, fmt.Errorf("%s requires phase %q, session %s is in %q: %w",
			op, want, sess.ID, sess.Phase, ErrWrongPhase)
	}
	return sess, nil
}

func (s *Service) advanceAndSave(ctx context.Context, sess *session.Session, to session.Phase) (*session.Session, error) {
	if err := session.ValidateTransition(sess.Phase, to); err != nil {
		return nil, err
	}
	sess.Phase = to
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.logger.Info("phase advanced", "session", sess.ID, "phase", to)
	return sess, nil
}

func (s *Service) planContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.genTimeout > 0 {
		return context.WithTimeout(ctx, s.genTimeout)
	}
	return context.WithCancel(ctx)
}

// planError distinguishes a tripped generation timeout from caller
// cancellation and other planner failures, which propagate unchanged.
func (s *Service) planError(parent context.Context, op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil {
		return fmt.Errorf("%s after %s: %w", op, s.genTimeout, ErrGenerationTimeout)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Service) lock(sessionID string) func() {
	l, _ := s.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := l.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func requireDocument(present bool, op, doc string) error {
	if !present {
		return fmt.Errorf("%s requires the %s document: %w", op, doc, ErrMissingDocument)
	}
	return nil
}

func appendMessage(sess *session.Session, role session.Role, content string, meta *session.MessageMeta) {
	sess.Conversation = append(sess.Conversation, session.ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
		Meta:      meta,
	})
}

// contextLines formats the most recent conversation entries as "role:
// content" lines for the planner.
func contextLines(sess *session.Session, max int) []string {
	msgs := sess.Conversation
	if max > 0 && len(msgs) > max {
		msgs = msgs[len(msgs)-max:]
	}
	lines := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		lines = append(lines, fmt.Sprintf("%s: %s", msg.Role, msg.Content))
	}
	return lines
}

// deriveProjectName extracts a short display name from the description.
func deriveProjectName(description string) string {
	text := strings.TrimSpace(description)
	if idx := strings.IndexAny(text, ".!?\n"); idx > 0 {
		text = text[:idx]
	}
	words := strings.Fields(text)
	if len(words) > 5 {
		words = words[:5]
	}
	for i, word := range words {
		if word != strings.ToLower(word) {
			continue
		}
		r, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}
	return strings.Join(words, " ")
}
