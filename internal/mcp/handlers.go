package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ConceptCodes/deep-sql-research/internal/app"
)

// Service is the app layer the tools call into.
type Service interface {
	Generate(ctx context.Context, req app.GenerateRequest) (*app.GenerateResult, error)
	DescribeSchema(ctx context.Context, locator string) (string, error)
}

// NewServer returns an MCP server with both tools registered.
func NewServer(svc Service, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"deep-sql-research",
		version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s.AddTool(mcp.NewTool(ToolGenerateTemplate,
		mcp.WithDescription("Research a SQL database for a goal and return a video template JSON document"),
		mcp.WithString("goal",
			mcp.Required(),
			mcp.Description("What the video should explain, e.g. \"How is revenue distributed by region?\""),
		),
		mcp.WithString("database",
			mcp.Required(),
			mcp.Description("SQLite file path or postgres:// URL"),
		),
	), generateHandler(svc))

	s.AddTool(mcp.NewTool(ToolDescribeSchema,
		mcp.WithDescription("Describe the tables, columns and foreign keys of a SQL database"),
		mcp.WithString("database",
			mcp.Required(),
			mcp.Description("SQLite file path or postgres:// URL"),
		),
	), schemaHandler(svc))

	return s
}

func generateHandler(svc Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var params GenerateToolParams
		var err error
		if params.Goal, err = req.RequireString("goal"); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid goal: %v", err)), nil
		}
		if params.Database, err = req.RequireString("database"); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid database: %v", err)), nil
		}

		res, err := HandleGenerateTool(ctx, svc, params)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		text, err := FormatGenerateResult(res)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(text), nil
	}
}

func schemaHandler(svc Service) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		locator, err := req.RequireString("database")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid database: %v", err)), nil
		}
		desc, err := svc.DescribeSchema(ctx, locator)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("describe schema: %v", err)), nil
		}
		return mcp.NewToolResultText(FormatSchema(desc)), nil
	}
}

// HandleGenerateTool runs a generation for the tool arguments.
func HandleGenerateTool(ctx context.Context, svc Service, params GenerateToolParams) (*app.GenerateResult, error) {
	res, err := svc.Generate(ctx, app.GenerateRequest{Goal: params.Goal, Database: params.Database})
	if err != nil {
		return nil, fmt.Errorf("generate template: %w", err)
	}
	return res, nil
}
