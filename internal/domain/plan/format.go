package plan

import (
	"fmt"
	"strings"
)

// FormatRequirements renders a requirements document as markdown. The output
// is deterministic: identical documents render to identical bytes.
func FormatRequirements(doc *Requirements) string {
	var b strings.Builder
	b.WriteString("# Requirements\n\n")
	if doc.Introduction != "" {
		b.WriteString(doc.Introduction)
		b.WriteString("\n\n")
	}
	for _, req := range doc.Requirements {
		fmt.Fprintf(&b, "## Requirement %s\n\n", req.ID)
		fmt.Fprintf(&b, "%s\n\n", req.UserStory)
		if len(req.AcceptanceCriteria) > 0 {
			b.WriteString("Acceptance criteria:\n\n")
			for i, crit := range req.AcceptanceCriteria {
				fmt.Fprintf(&b, "%d. %s\n", i+1, crit)
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// FormatDesign renders a design document as markdown.
func FormatDesign(doc *Design) string {
	var b strings.Builder
	b.WriteString("# Design\n\n")
	if doc.Overview != "" {
		fmt.Fprintf(&b, "## Overview\n\n%s\n\n", doc.Overview)
	}
	if doc.Architecture != "" {
		fmt.Fprintf(&b, "## Architecture\n\n%s\n\n", doc.Architecture)
	}
	if len(doc.Components) > 0 {
		b.WriteString("## Components\n\n")
		for _, comp := range doc.Components {
			fmt.Fprintf(&b, "- **%s**: %s\n", comp.Name, comp.Responsibility)
		}
		b.WriteString("\n")
	}
	if len(doc.DataModels) > 0 {
		b.WriteString("## Data Models\n\n")
		for _, model := range doc.DataModels {
			fmt.Fprintf(&b, "- **%s**: %s\n", model.Name, strings.Join(model.Fields, ", "))
		}
		b.WriteString("\n")
	}
	if doc.ErrorHandling != "" {
		fmt.Fprintf(&b, "## Error Handling\n\n%s\n\n", doc.ErrorHandling)
	}
	if doc.TestStrategy != "" {
		fmt.Fprintf(&b, "## Test Strategy\n\n%s\n\n", doc.TestStrategy)
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

// FormatTasks renders a task list as a markdown checklist.
func FormatTasks(doc *Tasks) string {
	var b strings.Builder
	b.WriteString("# Implementation Tasks\n\n")
	for _, task := range doc.Tasks {
		fmt.Fprintf(&b, "- [ ] %s %s\n", task.ID, task.Title)
		for _, detail := range task.Details {
			fmt.Fprintf(&b, "  - %s\n", detail)
		}
		if len(task.Requirements) > 0 {
			fmt.Fprintf(&b, "  - Requirements: %s\n", strings.Join(task.Requirements, ", "))
		}
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
