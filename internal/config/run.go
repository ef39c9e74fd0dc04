package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

var validate = validator.New()

// OracleConfig bounds model calls.
type OracleConfig struct {
	Timeout     time.Duration `validate:"gte=0"`
	MaxAttempts int           `validate:"gte=1"`
}

// DatabaseConfig bounds queries against the database under study.
type DatabaseConfig struct {
	QueryTimeout time.Duration `validate:"gt=0"`
	MaxOpenConns int           `validate:"gte=1"`
	MaxRows      int           `validate:"gte=1"`
}

// ResearchConfig bounds the research loops.
type ResearchConfig struct {
	MaxTasks          int `validate:"gte=1"`
	MaxReviewAttempts int `validate:"gte=1"`
	MaxQueryAttempts  int `validate:"gte=1"`
	MaxParallel       int `validate:"gte=1"`
	AnalyzeResults    bool
	RequeryIrrelevant bool
}

// RunConfig is everything one generation run needs besides the model.
type RunConfig struct {
	Oracle   OracleConfig
	Database DatabaseConfig
	Research ResearchConfig
	Timeout  time.Duration `validate:"gte=0"` // whole run; zero means unbounded
	FPS      int           `validate:"gte=1"`
	Addr     string
}

// LoadRunConfig reads run settings from Viper and validates them.
func LoadRunConfig() (RunConfig, error) {
	cfg := RunConfig{
		Oracle: OracleConfig{
			Timeout:     viper.GetDuration("oracle.timeout"),
			MaxAttempts: viper.GetInt("oracle.max_attempts"),
		},
		Database: DatabaseConfig{
			QueryTimeout: viper.GetDuration("database.query_timeout"),
			MaxOpenConns: viper.GetInt("database.max_open_conns"),
			MaxRows:      viper.GetInt("database.max_rows"),
		},
		Research: ResearchConfig{
			MaxTasks:          viper.GetInt("research.max_tasks"),
			MaxReviewAttempts: viper.GetInt("research.max_review_attempts"),
			MaxQueryAttempts:  viper.GetInt("research.max_query_attempts"),
			MaxParallel:       viper.GetInt("research.max_parallel"),
			AnalyzeResults:    viper.GetBool("research.analyze_results"),
			RequeryIrrelevant: viper.GetBool("research.requery_irrelevant"),
		},
		Timeout: viper.GetDuration("run.timeout"),
		FPS:     viper.GetInt("render.fps"),
		Addr:    viper.GetString("server.addr"),
	}

	if err := validate.Struct(cfg); err != nil {
		return RunConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultRunConfig returns the built-in defaults without consulting Viper.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Oracle:   OracleConfig{Timeout: DefaultOracleTimeout, MaxAttempts: DefaultOracleMaxAttempts},
		Database: DatabaseConfig{QueryTimeout: DefaultQueryTimeout, MaxOpenConns: DefaultMaxOpenConns, MaxRows: DefaultMaxRows},
		Research: ResearchConfig{
			MaxTasks:          DefaultMaxTasks,
			MaxReviewAttempts: DefaultMaxReviewAttempts,
			MaxQueryAttempts:  DefaultMaxQueryAttempts,
			MaxParallel:       DefaultMaxParallel,
			AnalyzeResults:    true,
		},
		FPS:  DefaultFPS,
		Addr: DefaultServerAddr,
	}
}
