package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"erpdash/internal/dashboard"
	"erpdash/internal/projects"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates an MCP server with tools for dashboard operations
func NewServer(svc *dashboard.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"ERP Dashboard",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	// Tool: get_dashboard - Full dashboard snapshot
	s.AddTool(
		mcp.NewTool("get_dashboard",
			mcp.WithDescription("Get the dashboard snapshot: quote/work-order/stock/shipment counters, recent orders, low-stock items, and the most recent projects. Widgets whose backend call failed are omitted."),
		),
		handleGetDashboard(svc),
	)

	// Tool: list_projects - Bounded recent project list
	s.AddTool(
		mcp.NewTool("list_projects",
			mcp.WithDescription("List the most recent projects, newest first (degrading to unordered when the store cannot order)."),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of projects to return (default: 5)"),
			),
		),
		handleListProjects(svc),
	)

	// Tool: get_project - Get a specific project by ID
	s.AddTool(
		mcp.NewTool("get_project",
			mcp.WithDescription("Get a specific project by its ID, including its notes."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The project ID (24-character hex string)"),
			),
		),
		handleGetProject(svc),
	)

	// Tool: create_project - Create a project
	s.AddTool(
		mcp.NewTool("create_project",
			mcp.WithDescription("Create a new project. Returns the re-fetched recent project list."),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Project name (must be non-empty)"),
			),
		),
		handleCreateProject(svc),
	)

	// Tool: update_project - Rename a project
	s.AddTool(
		mcp.NewTool("update_project",
			mcp.WithDescription("Rename an existing project. Returns the re-fetched recent project list."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The project ID"),
			),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("New project name (must be non-empty)"),
			),
		),
		handleUpdateProject(svc),
	)

	// Tool: delete_project - Delete a project
	s.AddTool(
		mcp.NewTool("delete_project",
			mcp.WithDescription("Delete a project. Deleting an id that does not exist succeeds. Returns the re-fetched recent project list."),
			mcp.WithString("id",
				mcp.Required(),
				mcp.Description("The project ID"),
			),
		),
		handleDeleteProject(svc),
	)

	return s
}

// ProjectResult represents a project in tool responses
type ProjectResult struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"createdAt"`
}

func handleGetDashboard(svc *dashboard.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		snap, err := svc.Load(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to load dashboard: %v", err)), nil
		}

		data, _ := json.MarshalIndent(snap, "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleListProjects(svc *dashboard.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", projects.DefaultRecentLimit)

		list, err := svc.Projects().ListRecent(ctx, limit)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list projects: %v", err)), nil
		}

		data, _ := json.MarshalIndent(projectsToResults(list), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleGetProject(svc *dashboard.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		p, err := svc.Projects().GetByID(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to get project: %v", err)), nil
		}

		data, _ := json.MarshalIndent(projectToResult(*p), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleCreateProject(svc *dashboard.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name, err := req.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError("name is required"), nil
		}

		res, err := svc.CreateProject(ctx, name)
		if errors.Is(err, projects.ErrEmptyName) {
			return mcp.NewToolResultError("name must be non-empty"), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to create project: %v", err)), nil
		}

		data, _ := json.MarshalIndent(projectsToResults(res.Projects), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleUpdateProject(svc *dashboard.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}
		name, err := req.RequireString("name")
		if err != nil {
			return mcp.NewToolResultError("name is required"), nil
		}

		res, err := svc.RenameProject(ctx, id, name)
		if errors.Is(err, projects.ErrEmptyName) {
			return mcp.NewToolResultError("name must be non-empty"), nil
		}
		if errors.Is(err, projects.ErrProjectNotFound) {
			return mcp.NewToolResultError("project not found"), nil
		}
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to update project: %v", err)), nil
		}

		data, _ := json.MarshalIndent(projectsToResults(res.Projects), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

func handleDeleteProject(svc *dashboard.Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError("id is required"), nil
		}

		res, err := svc.DeleteProject(ctx, id)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to delete project: %v", err)), nil
		}

		data, _ := json.MarshalIndent(projectsToResults(res.Projects), "", "  ")
		return mcp.NewToolResultText(string(data)), nil
	}
}

// Helper functions

func projectToResult(p projects.Project) ProjectResult {
	return ProjectResult{
		ID:        p.ID,
		Name:      p.Name,
		Notes:     p.Notes,
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func projectsToResults(list []projects.Project) []ProjectResult {
	results := make([]ProjectResult, len(list))
	for i, p := range list {
		results[i] = projectToResult(p)
	}
	return results
}
