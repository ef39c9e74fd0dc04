package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ConceptCodes/deep-sql-research/internal/app"
	"github.com/ConceptCodes/deep-sql-research/internal/export"
	"github.com/ConceptCodes/deep-sql-research/internal/logger"
	"github.com/ConceptCodes/deep-sql-research/internal/ui"
)

var generateCmd = &cobra.Command{
	Use:   "generate <goal> <database>",
	Short: "Research a database and emit a video template",
	Long: `Research a database for the given goal and emit a video template.

The database is a SQLite file path or a postgres:// connection URL. The
template is written to stdout as JSON unless --out is given; a summary of the
run is printed to stderr.`,
	Example: `  deep-sql-research generate "Which regions drive revenue?" ./sales.db
  deep-sql-research generate "Churn drivers" postgres://localhost/crm --out churn.yaml`,
	Args: cobra.ExactArgs(2),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringP("out", "o", "", "write the template to this file instead of stdout")
	generateCmd.Flags().StringP("format", "f", "", "output format: json or yaml (default: from --out extension, else json)")
	generateCmd.Flags().Int("max-tasks", 0, "research task ceiling (overrides research.max_tasks)")
	generateCmd.Flags().Duration("timeout", 0, "abort the run after this long (overrides run.timeout)")

	_ = viper.BindPFlag("research.max_tasks", generateCmd.Flags().Lookup("max-tasks"))
	_ = viper.BindPFlag("run.timeout", generateCmd.Flags().Lookup("timeout"))
}

func runGenerate(cmd *cobra.Command, args []string) error {
	goal, locator := args[0], args[1]
	logger.SetGoal(goal)

	out, _ := cmd.Flags().GetString("out")
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := outputFormat(formatFlag, out)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	actx, err := newAppContext(ctx, cmd)
	if err != nil {
		return err
	}

	res, err := app.NewGenerateApp(actx).Generate(ctx, app.GenerateRequest{Goal: goal, Database: locator})
	if err != nil {
		return err
	}

	if out != "" {
		if err := export.Write(appFs, out, res.Template, format); err != nil {
			return err
		}
	} else {
		data, err := export.Encode(res.Template, format)
		if err != nil {
			return err
		}
		if _, err := cmd.OutOrStdout().Write(data); err != nil {
			return fmt.Errorf("write template: %w", err)
		}
	}

	fmt.Fprintln(cmd.ErrOrStderr(), ui.RenderRunSummary(res))
	if out != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), ui.StyleSubtle.Render("template written to "+out))
	}
	return nil
}

// outputFormat picks the explicit format when given, else infers it from the
// output path.
func outputFormat(flag, out string) (export.Format, error) {
	if flag != "" {
		return export.ParseFormat(flag)
	}
	return export.FormatForPath(out), nil
}
