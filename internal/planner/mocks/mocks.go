// Package mocks provides testify mocks for the planner collaborator.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/mlehane/scaffolder-mcp/internal/domain/plan"
	"github.com/mlehane/scaffolder-mcp/internal/planner"
)

// Planner is a mock for planner.Planner.
type Planner struct {
	mock.Mock
}

func (m *Planner) CreateRequirements(ctx context.Context, in planner.Input) (*plan.Requirements, error) {
	args := m.Called(ctx, in)
	if doc, ok := args.Get(0).(*plan.Requirements); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Planner) CreateDesign(ctx context.Context, requirements *plan.Requirements, in planner.Input) (*plan.Design, error) {
	args := m.Called(ctx, requirements, in)
	if doc, ok := args.Get(0).(*plan.Design); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Planner) CreateTasks(ctx context.Context, design *plan.Design, in planner.Input) (*plan.Tasks, error) {
	args := m.Called(ctx, design, in)
	if doc, ok := args.Get(0).(*plan.Tasks); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}
