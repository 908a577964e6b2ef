// Package planner defines the plan-creation collaborator: the generator the
// workflow calls to produce requirements, design, and task documents.
package planner

import (
	"context"

	"github.com/mlehane/scaffolder-mcp/internal/domain/plan"
	"github.com/mlehane/scaffolder-mcp/internal/domain/session"
)

// Input carries everything a generation call may draw on.
type Input struct {
	Description string
	Stack       *session.StackChoice
	Theme       *session.ThemeChoice
	// Context holds recent conversation lines ("role: content") supplied as
	// dialogue context for regeneration.
	Context []string
}

// Planner produces planning documents from structured input. Calls may take
// arbitrarily long; callers are expected to bound them with the context.
type Planner interface {
	CreateRequirements(ctx context.Context, in Input) (*plan.Requirements, error)
	CreateDesign(ctx context.Context, requirements *plan.Requirements, in Input) (*plan.Design, error)
	CreateTasks(ctx context.Context, design *plan.Design, in Input) (*plan.Tasks, error)
}
