package plan_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mlehane/scaffolder-mcp/internal/domain/plan"
)

func TestFormatRequirements(t *testing.T) {
	doc := &plan.Requirements{
		Introduction: "Requirements for a recipe box.",
		Requirements: []plan.Requirement{
			{
				ID:        "1",
				UserStory: "As a user, I want to save recipes, so that I can find them later.",
				AcceptanceCriteria: []string{
					"WHEN a recipe is saved THEN the system SHALL persist it",
					"WHEN the list renders THEN the system SHALL show saved recipes",
				},
			},
			{
				ID:        "2",
				UserStory: "As a user, I want to search recipes, so that I can cook faster.",
			},
		},
	}

	want := `# Requirements

Requirements for a recipe box.

## Requirement 1

As a user, I want to save recipes, so that I can find them later.

Acceptance criteria:

1. WHEN a recipe is saved THEN the system SHALL persist it
2. WHEN the list renders THEN the system SHALL show saved recipes

## Requirement 2

As a user, I want to search recipes, so that I can cook faster.
`
	require.Equal(t, want, plan.FormatRequirements(doc))
}

func TestFormatDesign(t *testing.T) {
	doc := &plan.Design{
		Overview:     "A small recipe manager.",
		Architecture: "Client-server with a REST API.",
		Components: []plan.Component{
			{Name: "API", Responsibility: "serves recipe CRUD"},
			{Name: "Web", Responsibility: "renders the recipe list"},
		},
		DataModels: []plan.DataModel{
			{Name: "Recipe", Fields: []string{"id", "title", "steps"}},
		},
		ErrorHandling: "Errors surface as HTTP status codes.",
		TestStrategy:  "Unit tests plus one end-to-end run.",
	}

	want := `# Design

## Overview

A small recipe manager.

## Architecture

Client-server with a REST API.

## Components

- **API**: serves recipe CRUD
- **Web**: renders the recipe list

## Data Models

- **Recipe**: id, title, steps

## Error Handling

Errors surface as HTTP status codes.

## Test Strategy

Unit tests plus one end-to-end run.
`
	require.Equal(t, want, plan.FormatDesign(doc))
}

func TestFormatTasks(t *testing.T) {
	doc := &plan.Tasks{
		Tasks: []plan.Task{
			{
				ID:           "1",
				Title:        "Implement the API component",
				Details:      []string{"serves recipe CRUD"},
				Requirements: []string{"1"},
			},
			{
				ID:    "2",
				Title: "Wire components together",
			},
		},
	}

	want := `# Implementation Tasks

- [ ] 1 Implement the API component
  - serves recipe CRUD
  - Requirements: 1
- [ ] 2 Wire components together
`
	require.Equal(t, want, plan.FormatTasks(doc))
}

func TestFormat_Deterministic(t *testing.T) {
	doc := &plan.Design{Overview: "Stable output."}
	first := plan.FormatDesign(doc)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, plan.FormatDesign(doc))
	}
	require.True(t, strings.HasSuffix(first, "\n"))
	require.False(t, strings.HasSuffix(first, "\n\n"))
}

func TestFormat_EmptyDocuments(t *testing.T) {
	require.Equal(t, "# Requirements\n", plan.FormatRequirements(&plan.Requirements{}))
	require.Equal(t, "# Design\n", plan.FormatDesign(&plan.Design{}))
	require.Equal(t, "# Implementation Tasks\n", plan.FormatTasks(&plan.Tasks{}))
}
