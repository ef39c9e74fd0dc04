package cmd

import (
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/ConceptCodes/deep-sql-research/internal/app"
	"github.com/ConceptCodes/deep-sql-research/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP server over stdio",
	Long: `Run a Model Context Protocol server over stdio exposing the
generate_template and describe_schema tools. Logs go to stderr.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		actx, err := newAppContext(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		actx.Logger.Debug("serving MCP over stdio", "version", version)
		return server.ServeStdio(mcp.NewServer(app.NewGenerateApp(actx), version))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
