package cmd

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/ConceptCodes/deep-sql-research/internal/app"
	"github.com/ConceptCodes/deep-sql-research/internal/config"
	"github.com/ConceptCodes/deep-sql-research/internal/logger"
	"github.com/ConceptCodes/deep-sql-research/internal/oracle"
	"github.com/ConceptCodes/deep-sql-research/internal/oracle/oracletest"
)

// execute runs the root command with args and returns stdout and stderr.
// Flag values are reset first since the command tree is shared.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// useMemFs swaps the command filesystem for an in-memory one.
func useMemFs(t *testing.T) afero.Fs {
	t.Helper()
	prev := appFs
	appFs = afero.NewMemMapFs()
	t.Cleanup(func() { appFs = prev })
	return appFs
}

// useFakeModel makes commands run against a scripted chat model.
func useFakeModel(t *testing.T, fake *oracletest.ChatModel) {
	t.Helper()
	prev := newAppContext
	newAppContext = func(_ context.Context, _ *cobra.Command) (*app.Context, error) {
		return app.NewContextWithModel(fake, config.DefaultRunConfig(), logger.Discard(), nil, oracle.WithRetryDelay(0)), nil
	}
	t.Cleanup(func() { newAppContext = prev })
}

func salesOracle() *oracletest.ChatModel {
	return oracletest.New().
		On("research planner", `{"tasks":[{"description":"Revenue by region","successCase":"one row per region"}]}`).
		On("plan reviewer", `{"grade":"pass"}`).
		On("SQL query writer", `{"query":"SELECT c.region, SUM(o.amount) AS revenue FROM orders o JOIN customers c ON c.id = o.customer_id GROUP BY c.region"}`).
		On("results analyst", `{"isRelevant":true,"dataQuality":"high","keyPatterns":["north leads"]}`).
		On("insight synthesizer", `{"insights":[{"id":"revenue_by_region","type":"ranking","title":"Revenue by region","summary":"North leads revenue","data":[{"region":"north","revenue":300}],"confidence":0.9}]}`).
		On("sufficiency judge", `{"hasEnoughInfo":true,"reasoning":"answered","missingInfo":[]}`)
}

func requireNoError(t *testing.T, err error, stderr string) {
	t.Helper()
	require.NoError(t, err, "stderr: %s", stderr)
}
