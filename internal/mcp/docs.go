package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const workflowGuideURI = "scaffolder://guide/workflow"

const workflowGuide = `# Project-generation workflow

A session moves through a fixed chain of phases. Each phase permits a small
set of tools; anything else fails with WRONG_PHASE and leaves the session
untouched.

| Phase | Tools | Advances to |
|---|---|---|
| stack-selection | select_stack | theme-selection |
| theme-selection | select_theme | description |
| description | submit_description | requirements |
| requirements | generate_requirements, update_requirements, approve_requirements | design (on approve) |
| design | generate_design, update_design, approve_design | tasks (on approve) |
| tasks | generate_tasks, update_tasks, approve_tasks | image-generation (on approve) |
| image-generation | offer_image_generation, skip_image_generation, accept_image_generation | execution (on skip/accept) |
| execution | start_execution, record_images, complete_project | complete (on complete_project) |

Approval tools require their document to exist: call generate_requirements
before approve_requirements, and likewise for design and tasks. The update
tools regenerate the document from scratch with your feedback folded into the
description; they do not patch it.

get_session, get_conversation, list_sessions, and delete_session work in any
phase.`

func registerGuideResource(server *sdkmcp.Server) {
	server.AddResource(&sdkmcp.Resource{
		URI:         workflowGuideURI,
		Name:        "workflow-guide",
		Title:       "Project-generation workflow guide",
		Description: "Phase chain and the tools each phase permits",
		MIMEType:    "text/markdown",
		Size:        int64(len(workflowGuide)),
	}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
		uri := workflowGuideURI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		return &sdkmcp.ReadResourceResult{
			Contents: []*sdkmcp.ResourceContents{{
				URI:      uri,
				MIMEType: "text/markdown",
				Text:     workflowGuide,
			}},
		}, nil
	})
}
