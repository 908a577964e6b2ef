package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/mlehane/scaffolder-mcp/internal/domain/plan"
)

// Template is a deterministic Planner that derives documents from the
// project description, stack, and theme. It stands in for an external AI
// generator and is a drop-in replacement target for one.
type Template struct{}

// NewTemplate creates a template planner.
func NewTemplate() *Template {
	return &Template{}
}

// CreateRequirements derives a requirements document from the description.
func (p *Template) CreateRequirements(ctx context.Context, in Input) (*plan.Requirements, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	subject := firstSentence(in.Description)
	doc := &plan.Requirements{
		Introduction: fmt.Sprintf("Requirements for %s, built on %s.", subject, stackName(in)),
		Requirements: []plan.Requirement{
			{
				ID:        "1",
				UserStory: fmt.Sprintf("As a user, I want %s, so that the core purpose of the project is served.", subject),
				AcceptanceCriteria: []string{
					"WHEN the application starts THEN the system SHALL present the primary workflow",
					"WHEN the user completes the primary workflow THEN the system SHALL persist the result",
				},
			},
			{
				ID:        "2",
				UserStory: fmt.Sprintf("As a user, I want the interface styled with the %s theme, so that the experience is consistent.", themeName(in)),
				AcceptanceCriteria: []string{
					"WHEN any screen renders THEN the system SHALL apply the selected theme",
				},
			},
		},
	}
	return doc, nil
}

// CreateDesign derives a design document from approved requirements.
func (p *Template) CreateDesign(ctx context.Context, requirements *plan.Requirements, in Input) (*plan.Design, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc := &plan.Design{
		Overview:     requirements.Introduction,
		Architecture: fmt.Sprintf("Layered architecture on %s: UI, application services, and a persistence layer.", stackName(in)),
		Components: []plan.Component{
			{Name: "UI", Responsibility: "renders the primary workflow and captures user input"},
			{Name: "Application", Responsibility: "validates input and coordinates persistence"},
			{Name: "Storage", Responsibility: "durably persists workflow results"},
		},
		DataModels: []plan.DataModel{
			{Name: "Item", Fields: []string{"id", "title", "created_at", "updated_at"}},
		},
		ErrorHandling: "Operations return explicit errors; the UI surfaces failures without silent retries.",
		TestStrategy:  "Unit tests per component plus one end-to-end scenario over the primary workflow.",
	}
	return doc, nil
}

// CreateTasks derives an implementation plan from an approved design.
func (p *Template) CreateTasks(ctx context.Context, design *plan.Design, in Input) (*plan.Tasks, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tasks := make([]plan.Task, 0, len(design.Components)+1)
	for i, comp := range design.Components {
		tasks = append(tasks, plan.Task{
			ID:           fmt.Sprintf("%d", i+1),
			Title:        fmt.Sprintf("Implement the %s component", comp.Name),
			Details:      []string{comp.Responsibility},
			Requirements: []string{"1"},
		})
	}
	tasks = append(tasks, plan.Task{
		ID:           fmt.Sprintf("%d", len(tasks)+1),
		Title:        "Wire components together and add the end-to-end test",
		Requirements: []string{"1", "2"},
	})
	return &plan.Tasks{Tasks: tasks}, nil
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "the described project"
	}
	if idx := strings.IndexAny(text, ".!?\n"); idx > 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func stackName(in Input) string {
	if in.Stack != nil && in.Stack.Name != "" {
		return in.Stack.Name
	}
	return "the selected stack"
}

func themeName(in Input) string {
	if in.Theme != nil && in.Theme.Name != "" {
		return in.Theme.Name
	}
	return "selected"
}
