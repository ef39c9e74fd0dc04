package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ConceptCodes/deep-sql-research/internal/config"
	"github.com/ConceptCodes/deep-sql-research/internal/llm"
	"github.com/ConceptCodes/deep-sql-research/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit configuration",
}

var configSetLLMCmd = &cobra.Command{
	Use:   "set-llm",
	Short: "Save the language model provider to the config file",
	Example: `  deep-sql-research config set-llm --provider ollama --model llama3.2
  deep-sql-research config set-llm --provider anthropic --api-key sk-ant-...`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		provider, _ := cmd.Flags().GetString("provider")
		model, _ := cmd.Flags().GetString("model")
		baseURL, _ := cmd.Flags().GetString("base-url")
		apiKey, _ := cmd.Flags().GetString("api-key")

		p, err := llm.ValidateProvider(provider)
		if err != nil {
			return err
		}
		path, err := configFilePath()
		if err != nil {
			return err
		}
		if err := config.SaveLLMConfig(appFs, path, llm.Config{
			Provider: p,
			Model:    model,
			BaseURL:  baseURL,
			APIKey:   apiKey,
		}); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Saved %s settings to %s\n", ui.Icon("✓", ui.StyleSuccess), p, path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		run, err := config.LoadRunConfig()
		if err != nil {
			return err
		}
		llmCfg, err := config.LoadLLMConfig()
		if err != nil {
			return err
		}
		key := "(not set)"
		if llmCfg.APIKey != "" {
			key = "(set)"
		}

		t := &ui.Table{Headers: []string{"Key", "Value"}}
		t.Rows = [][]string{
			{"llm.provider", string(llmCfg.Provider)},
			{"llm.model", llmCfg.Model},
			{"llm.baseURL", llmCfg.BaseURL},
			{"llm.apiKey", key},
			{"oracle.timeout", run.Oracle.Timeout.String()},
			{"oracle.max_attempts", fmt.Sprint(run.Oracle.MaxAttempts)},
			{"database.query_timeout", run.Database.QueryTimeout.String()},
			{"database.max_open_conns", fmt.Sprint(run.Database.MaxOpenConns)},
			{"database.max_rows", fmt.Sprint(run.Database.MaxRows)},
			{"research.max_tasks", fmt.Sprint(run.Research.MaxTasks)},
			{"research.max_review_attempts", fmt.Sprint(run.Research.MaxReviewAttempts)},
			{"research.max_query_attempts", fmt.Sprint(run.Research.MaxQueryAttempts)},
			{"research.max_parallel", fmt.Sprint(run.Research.MaxParallel)},
			{"research.analyze_results", fmt.Sprint(run.Research.AnalyzeResults)},
			{"research.requery_irrelevant", fmt.Sprint(run.Research.RequeryIrrelevant)},
			{"run.timeout", run.Timeout.String()},
			{"render.fps", fmt.Sprint(run.FPS)},
			{"server.addr", run.Addr},
		}
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Fprintln(cmd.OutOrStdout(), ui.StyleSubtle.Render("config file: "+used))
		}
		fmt.Fprint(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

// configFilePath is the file set-llm writes: --config when given, else the
// file in the home directory.
func configFilePath() (string, error) {
	if file := viper.GetString("config"); file != "" {
		return file, nil
	}
	return config.DefaultConfigPath()
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetLLMCmd, configShowCmd)

	configSetLLMCmd.Flags().String("provider", string(llm.DefaultProvider), "provider: openai, ollama, anthropic, gemini or lmstudio")
	configSetLLMCmd.Flags().String("model", "", "model name (default: provider default)")
	configSetLLMCmd.Flags().String("base-url", "", "API base URL for ollama, lmstudio or OpenAI-compatible endpoints")
	configSetLLMCmd.Flags().String("api-key", "", "API key stored under llm.apiKeys.<provider>")
}
