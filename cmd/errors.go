package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/viper"

	"github.com/ConceptCodes/deep-sql-research/internal/app"
	"github.com/ConceptCodes/deep-sql-research/internal/database"
	"github.com/ConceptCodes/deep-sql-research/internal/model"
	"github.com/ConceptCodes/deep-sql-research/internal/oracle"
	"github.com/ConceptCodes/deep-sql-research/internal/ui"
	"github.com/ConceptCodes/deep-sql-research/internal/workflow"
)

// userMessage maps known failures to a short hint. Unknown errors are shown
// as they are.
func userMessage(err error) string {
	var genErr *oracle.GenerationError
	switch {
	case errors.Is(err, workflow.ErrEmptyGoal):
		return "A research goal is required."
	case errors.Is(err, app.ErrMissingDatabase):
		return "A database path or connection URL is required."
	case errors.Is(err, database.ErrConnection):
		return fmt.Sprintf("Could not open the database: %v", err)
	case errors.Is(err, model.ErrInvalidTemplate):
		return "The generated template failed validation. Re-run with --verbose for details."
	case errors.As(err, &genErr):
		return "The language model returned output that could not be used. Re-run with --verbose for details."
	default:
		return err.Error()
	}
}

// PrintError writes err to w. With --verbose the full error chain is shown
// instead of the short hint.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	msg := userMessage(err)
	if viper.GetBool("verbose") {
		msg = err.Error()
	}
	fmt.Fprintln(w, ui.Icon("✗", ui.StyleError)+" "+msg)
}
