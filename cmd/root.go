package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ConceptCodes/deep-sql-research/internal/config"
	"github.com/ConceptCodes/deep-sql-research/internal/logger"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables debug logging on stderr.
	verbose bool
	// version is set at build time with -ldflags.
	version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:   "deep-sql-research",
	Short: "Deep SQL research - turn a database into a data video template",
	Long: `deep-sql-research plans and runs SQL research against a database for a
stated goal, synthesizes the findings into insights and lays them out as a
scene-based video template for a frame renderer.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Version:       version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetCommand(cmd.CommandPath())
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	logger.SetVersion(version)
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

// GetVersion returns the CLI version.
func GetVersion() string {
	return version
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/"+config.ConfigFileName+" or ./"+config.ConfigFileName+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}
