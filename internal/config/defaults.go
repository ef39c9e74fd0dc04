// Package config loads run and provider settings from Viper. Values come from
// (highest first) flags bound by the CLI, DSR_* environment variables, the
// config file and the defaults registered here.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix, e.g. DSR_RESEARCH_MAX_TASKS.
const EnvPrefix = "DSR"

// Defaults for run settings.
const (
	DefaultOracleTimeout     = 90 * time.Second
	DefaultOracleMaxAttempts = 3
	DefaultQueryTimeout      = 30 * time.Second
	DefaultMaxOpenConns      = 4
	DefaultMaxRows           = 1000
	DefaultMaxTasks          = 8
	DefaultMaxReviewAttempts = 3
	DefaultMaxQueryAttempts  = 4
	DefaultMaxParallel       = 4
	DefaultFPS               = 30
	DefaultServerAddr        = ":8080"
)

// SetDefaults registers every default with Viper.
func SetDefaults() {
	viper.SetDefault("oracle.timeout", DefaultOracleTimeout)
	viper.SetDefault("oracle.max_attempts", DefaultOracleMaxAttempts)
	viper.SetDefault("database.query_timeout", DefaultQueryTimeout)
	viper.SetDefault("database.max_open_conns", DefaultMaxOpenConns)
	viper.SetDefault("database.max_rows", DefaultMaxRows)
	viper.SetDefault("research.max_tasks", DefaultMaxTasks)
	viper.SetDefault("research.max_review_attempts", DefaultMaxReviewAttempts)
	viper.SetDefault("research.max_query_attempts", DefaultMaxQueryAttempts)
	viper.SetDefault("research.max_parallel", DefaultMaxParallel)
	viper.SetDefault("research.analyze_results", true)
	viper.SetDefault("research.requery_irrelevant", false)
	viper.SetDefault("run.timeout", time.Duration(0))
	viper.SetDefault("render.fps", DefaultFPS)
	viper.SetDefault("server.addr", DefaultServerAddr)
}
