// Package mcp exposes template generation as MCP tools.
package mcp

// Tool names.
const (
	ToolGenerateTemplate = "generate_template"
	ToolDescribeSchema   = "describe_schema"
)

// GenerateToolParams are the arguments of generate_template.
type GenerateToolParams struct {
	Goal     string `json:"goal"`
	Database string `json:"database"`
}

// SchemaToolParams are the arguments of describe_schema.
type SchemaToolParams struct {
	Database string `json:"database"`
}
