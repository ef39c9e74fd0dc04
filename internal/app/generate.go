package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ConceptCodes/deep-sql-research/internal/model"
	"github.com/ConceptCodes/deep-sql-research/internal/workflow"
)

// ErrMissingDatabase is returned when a request names no database.
var ErrMissingDatabase = errors.New("database locator is required")

// GenerateRequest asks for one template.
type GenerateRequest struct {
	Goal     string `json:"goal"`
	Database string `json:"database"`
}

// GenerateResult is a finished run.
type GenerateResult struct {
	RunID     string              `json:"runId"`
	Template  *model.TemplateJSON `json:"template"`
	Insights  int                 `json:"insights"`
	Scenes    int                 `json:"scenes"`
	Cards     int                 `json:"cards"`
	TaskCount int                 `json:"taskCount"`
	Rounds    int                 `json:"rounds"`
}

// GenerateApp runs research and production against a database.
type GenerateApp struct {
	ctx *Context
}

// NewGenerateApp creates the generate operation.
func NewGenerateApp(ctx *Context) *GenerateApp {
	return &GenerateApp{ctx: ctx}
}

// Generate opens the database, runs the workflow and closes the database.
func (a *GenerateApp) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if strings.TrimSpace(req.Goal) == "" {
		return nil, workflow.ErrEmptyGoal
	}
	if strings.TrimSpace(req.Database) == "" {
		return nil, ErrMissingDatabase
	}

	db, err := a.ctx.OpenDatabase(ctx, req.Database)
	if err != nil {
		return nil, err
	}
	defer func() { _ = db.Close() }()

	engine, err := workflow.New(ctx, workflow.Deps{
		Oracle:   a.ctx.Oracle(),
		DB:       db,
		Logger:   a.ctx.Logger,
		Recorder: a.ctx.Recorder,
	}, WorkflowConfig(a.ctx.Run))
	if err != nil {
		return nil, err
	}

	rc, err := engine.Run(ctx, req.Goal)
	if err != nil {
		return nil, err
	}
	if rc.Template == nil {
		return nil, fmt.Errorf("run %s finished without a template", rc.RunID)
	}

	return &GenerateResult{
		RunID:     rc.RunID,
		Template:  rc.Template,
		Insights:  len(rc.Template.DataBindings.Insights),
		Scenes:    len(rc.Template.Scenes),
		Cards:     len(rc.Template.Cards),
		TaskCount: rc.TaskCount,
		Rounds:    rc.Rounds,
	}, nil
}

// DescribeSchema returns the schema description the planner sees.
func (a *GenerateApp) DescribeSchema(ctx context.Context, locator string) (string, error) {
	if strings.TrimSpace(locator) == "" {
		return "", ErrMissingDatabase
	}
	db, err := a.ctx.OpenDatabase(ctx, locator)
	if err != nil {
		return "", err
	}
	defer func() { _ = db.Close() }()
	return db.DescribeSchema(ctx)
}
