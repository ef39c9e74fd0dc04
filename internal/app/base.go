// Package app provides the application layer shared by the CLI, the MCP
// server and the HTTP server. Those surfaces stay thin adapters over the
// operations defined here.
package app

import (
	"context"
	"fmt"
	"log/slog"

	einomodel "github.com/cloudwego/eino/components/model"

	"github.com/ConceptCodes/deep-sql-research/internal/config"
	"github.com/ConceptCodes/deep-sql-research/internal/database"
	"github.com/ConceptCodes/deep-sql-research/internal/llm"
	"github.com/ConceptCodes/deep-sql-research/internal/logger"
	"github.com/ConceptCodes/deep-sql-research/internal/oracle"
	"github.com/ConceptCodes/deep-sql-research/internal/telemetry"
	"github.com/ConceptCodes/deep-sql-research/internal/workflow"
)

// Context holds shared dependencies for all app operations.
type Context struct {
	Run      config.RunConfig
	Model    einomodel.BaseChatModel
	Logger   *slog.Logger
	Recorder *telemetry.Recorder

	// oracleOpts are appended after the ones derived from Run.
	oracleOpts []oracle.Option
}

// NewContext builds the chat model for llmCfg and returns a context using it.
func NewContext(ctx context.Context, llmCfg llm.Config, run config.RunConfig, log *slog.Logger) (*Context, error) {
	chat, err := llm.NewChatModel(ctx, llmCfg)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}
	return NewContextWithModel(chat, run, log, nil), nil
}

// NewContextWithModel returns a context around an existing chat model. A nil
// recorder gets a fresh one.
func NewContextWithModel(chat einomodel.BaseChatModel, run config.RunConfig, log *slog.Logger, rec *telemetry.Recorder, opts ...oracle.Option) *Context {
	if log == nil {
		log = logger.Discard()
	}
	if rec == nil {
		rec = telemetry.NewRecorder()
	}
	return &Context{Run: run, Model: chat, Logger: log, Recorder: rec, oracleOpts: opts}
}

// Oracle wraps the chat model with the configured bounds and telemetry.
func (c *Context) Oracle() *oracle.Oracle {
	opts := []oracle.Option{
		oracle.WithTimeout(c.Run.Oracle.Timeout),
		oracle.WithMaxAttempts(c.Run.Oracle.MaxAttempts),
		oracle.WithLogger(c.Logger),
		oracle.WithObserver(c.Recorder),
	}
	return oracle.New(c.Model, append(opts, c.oracleOpts...)...)
}

// OpenDatabase opens the database at locator read-only.
func (c *Context) OpenDatabase(ctx context.Context, locator string) (*database.DB, error) {
	return database.Open(ctx, database.Config{
		Locator:      locator,
		QueryTimeout: c.Run.Database.QueryTimeout,
		MaxOpenConns: c.Run.Database.MaxOpenConns,
		MaxRows:      c.Run.Database.MaxRows,
		Observer:     c.Recorder,
	})
}

// WorkflowConfig maps run settings to engine bounds.
func WorkflowConfig(run config.RunConfig) workflow.Config {
	return workflow.Config{
		MaxTasks:          run.Research.MaxTasks,
		MaxReviewAttempts: run.Research.MaxReviewAttempts,
		MaxQueryAttempts:  run.Research.MaxQueryAttempts,
		MaxParallel:       run.Research.MaxParallel,
		AnalyzeResults:    run.Research.AnalyzeResults,
		RequeryIrrelevant: run.Research.RequeryIrrelevant,
		Timeout:           run.Timeout,
	}
}
