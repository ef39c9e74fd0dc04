package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ConceptCodes/deep-sql-research/internal/app"
	"github.com/ConceptCodes/deep-sql-research/internal/config"
	"github.com/ConceptCodes/deep-sql-research/internal/logger"
)

// appFs is the filesystem commands read and write templates and config on.
var appFs afero.Fs = afero.NewOsFs()

// newAppContext builds the shared dependencies from the loaded configuration.
// Tests replace it to inject a fake chat model.
var newAppContext = func(ctx context.Context, cmd *cobra.Command) (*app.Context, error) {
	run, err := config.LoadRunConfig()
	if err != nil {
		return nil, err
	}
	llmCfg, err := config.LoadLLMConfig()
	if err != nil {
		return nil, fmt.Errorf("load llm config: %w", err)
	}
	log := logger.New(cmd.ErrOrStderr(), viper.GetBool("verbose"))
	log.Debug("configuration loaded",
		"provider", llmCfg.Provider,
		"model", llmCfg.Model,
		"max_tasks", run.Research.MaxTasks,
		"max_parallel", run.Research.MaxParallel)
	return app.NewContext(ctx, llmCfg, run, log)
}
