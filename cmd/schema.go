package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ConceptCodes/deep-sql-research/internal/app"
	"github.com/ConceptCodes/deep-sql-research/internal/config"
	"github.com/ConceptCodes/deep-sql-research/internal/logger"
)

var schemaCmd = &cobra.Command{
	Use:   "schema <database>",
	Short: "Print the schema description the research planner sees",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		run, err := config.LoadRunConfig()
		if err != nil {
			return err
		}
		// No model is needed to inspect a schema.
		actx := app.NewContextWithModel(nil, run, logger.New(cmd.ErrOrStderr(), viper.GetBool("verbose")), nil)
		desc, err := app.NewGenerateApp(actx).DescribeSchema(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), desc)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
