package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mkraev/presalesd/internal/storage"
)

// MCPStore is the slice of the storage layer the MCP tools need.
type MCPStore interface {
	ListEstimates() ([]storage.ProjectEstimate, error)
	SaveLead(l storage.Lead) (int64, error)
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Store     MCPStore
	Estimator Estimator
}

// NewMCPServer creates an MCP server exposing the estimate and lead tools to
// external agent frontends.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"presalesd",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("presalesd — budget and timeline estimates and lead capture for presales conversations."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("budget_timeline",
			mcp.WithDescription("Look up the typical budget range and timeline for a project type."),
			mcp.WithString("project_type", mcp.Description("Project type or free-text description"), mcp.Required()),
		),
		mcpBudgetTimeline(deps),
	)

	s.AddTool(
		mcp.NewTool("store_lead",
			mcp.WithDescription("Persist a qualified lead. Name and contact are required."),
			mcp.WithString("name", mcp.Description("Client name"), mcp.Required()),
			mcp.WithString("contact", mcp.Description("Email or phone number"), mcp.Required()),
			mcp.WithString("project_type", mcp.Description("Canonical project type, or unknown")),
			mcp.WithString("project_details", mcp.Description("Free-text project description")),
			mcp.WithBoolean("follow_up_consent", mcp.Description("Whether the client agreed to a follow-up")),
		),
		mcpStoreLead(deps),
	)

	s.AddResource(
		mcp.NewResource(
			"estimates://all",
			"Project Estimates",
			mcp.WithResourceDescription("All budget/timeline reference rows as JSON"),
			mcp.WithMIMEType("application/json"),
		),
		mcpResourceEstimates(deps),
	)

	return s
}

func mcpBudgetTimeline(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		projectType, err := req.RequireString("project_type")
		if err != nil {
			return mcpError("project_type is required"), nil
		}

		est := deps.Estimator.Estimate(ctx, projectType)
		b, err := json.Marshal(est)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal estimate: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpStoreLead(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return mcpError("name is required"), nil
		}
		contact, err := req.RequireString("contact")
		if err != nil {
			return mcpError("contact is required"), nil
		}

		lead := storage.Lead{
			Name:            name,
			Contact:         contact,
			ProjectType:     req.GetString("project_type", "unknown"),
			ProjectDetails:  req.GetString("project_details", ""),
			FollowUpConsent: req.GetBool("follow_up_consent", false),
		}

		id, err := deps.Store.SaveLead(lead)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to store lead: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Stored lead %d", id)), nil
	}
}

func mcpResourceEstimates(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		ests, err := deps.Store.ListEstimates()
		if err != nil {
			return nil, fmt.Errorf("failed to list estimates: %w", err)
		}

		b, err := json.Marshal(ests)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal estimates: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
