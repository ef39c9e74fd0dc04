package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ConceptCodes/deep-sql-research/internal/model"
	"github.com/ConceptCodes/deep-sql-research/internal/oracle"
	"github.com/ConceptCodes/deep-sql-research/internal/production"
	"github.com/ConceptCodes/deep-sql-research/internal/research"
	"github.com/ConceptCodes/deep-sql-research/internal/telemetry"
	"github.com/ConceptCodes/deep-sql-research/internal/util"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("workflow")

// ErrEmptyGoal is returned when Run is called without a goal.
var ErrEmptyGoal = errors.New("research goal is empty")

// DefaultMaxReviewAttempts bounds plan reviews per planning round.
const DefaultMaxReviewAttempts = 3

const defaultReviewFeedback = "The plan was rejected by review. Produce clearer, non-overlapping tasks."

// Database is the engine's view of the research database.
type Database interface {
	research.Querier
	DescribeSchema(ctx context.Context) (string, error)
}

// Config bounds a run.
type Config struct {
	MaxTasks          int
	MaxReviewAttempts int
	MaxQueryAttempts  int
	MaxParallel       int
	AnalyzeResults    bool
	RequeryIrrelevant bool
	Timeout           time.Duration
}

// DefaultConfig returns the default run bounds.
func DefaultConfig() Config {
	return Config{
		MaxTasks:          research.DefaultMaxTasks,
		MaxReviewAttempts: DefaultMaxReviewAttempts,
		MaxQueryAttempts:  research.DefaultMaxQueryAttempts,
		MaxParallel:       DefaultMaxParallel,
		AnalyzeResults:    true,
	}
}

// Deps are the collaborators an Engine is built from.
type Deps struct {
	Oracle   *oracle.Oracle
	DB       Database
	Logger   *slog.Logger
	Recorder *telemetry.Recorder
	// Assembler overrides the production assembler, mainly for tests.
	Assembler *production.Assembler
}

// Engine runs generation workflows. One Engine may serve concurrent runs.
type Engine struct {
	cfg      Config
	db       Database
	logger   *slog.Logger
	recorder *telemetry.Recorder

	planner     *research.Planner
	reviewer    *research.Reviewer
	searcher    *research.Searcher
	synthesizer *research.Synthesizer
	gate        *research.Gate
	production  *production.Pipeline
}

// New compiles every stage.
func New(ctx context.Context, deps Deps, cfg Config) (*Engine, error) {
	if deps.Oracle == nil {
		return nil, errors.New("workflow: oracle is required")
	}
	if deps.DB == nil {
		return nil, errors.New("workflow: database is required")
	}
	def := DefaultConfig()
	if cfg.MaxTasks <= 0 {
		cfg.MaxTasks = def.MaxTasks
	}
	if cfg.MaxReviewAttempts <= 0 {
		cfg.MaxReviewAttempts = def.MaxReviewAttempts
	}
	if cfg.MaxQueryAttempts <= 0 {
		cfg.MaxQueryAttempts = def.MaxQueryAttempts
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = def.MaxParallel
	}
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	rec := deps.Recorder
	if rec == nil {
		rec = telemetry.NewRecorder()
	}

	e := &Engine{cfg: cfg, db: deps.DB, logger: log, recorder: rec}
	var err error
	if e.planner, err = research.NewPlanner(ctx, deps.Oracle); err != nil {
		return nil, err
	}
	if e.reviewer, err = research.NewReviewer(ctx, deps.Oracle); err != nil {
		return nil, err
	}
	if e.searcher, err = research.NewSearcher(ctx, deps.Oracle, deps.DB, research.SearchOptions{
		MaxAttempts:       cfg.MaxQueryAttempts,
		AnalyzeResults:    cfg.AnalyzeResults,
		RequeryIrrelevant: cfg.RequeryIrrelevant,
		Logger:            log,
	}); err != nil {
		return nil, err
	}
	if e.synthesizer, err = research.NewSynthesizer(ctx, deps.Oracle); err != nil {
		return nil, err
	}
	if e.gate, err = research.NewGate(ctx, deps.Oracle, cfg.MaxTasks, log); err != nil {
		return nil, err
	}
	if e.production, err = production.NewPipeline(ctx, deps.Oracle,
		production.WithLogger(log),
		production.WithStageObserver(rec),
		production.WithAssembler(deps.Assembler),
	); err != nil {
		return nil, err
	}
	return e, nil
}

type step int

const (
	stepPlan step = iota
	stepReview
	stepDispatch
	stepGate
	stepProduce
	stepDone
)

func (s step) String() string {
	switch s {
	case stepPlan:
		return "plan"
	case stepReview:
		return "review"
	case stepDispatch:
		return "dispatch"
	case stepGate:
		return "gate"
	case stepProduce:
		return "produce"
	default:
		return "done"
	}
}

// Run executes a full generation for goal and returns the final context,
// whose Template is set on success.
func (e *Engine) Run(ctx context.Context, goal string) (RunContext, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return RunContext{}, ErrEmptyGoal
	}
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	rc := RunContext{RunID: util.NewID("run"), Goal: goal}
	log := e.logger.With("run", rc.RunID)

	ctx, span := tracer.Start(ctx, "workflow.run")
	span.SetAttributes(attribute.String("run.id", rc.RunID))
	defer span.End()

	start := time.Now()
	rc, err := e.run(ctx, rc, log)
	outcome := telemetry.OutcomeOK
	if err != nil {
		outcome = telemetry.OutcomeError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	e.recorder.ObserveRun(outcome, time.Since(start))
	span.SetAttributes(
		attribute.Int("run.tasks", rc.TaskCount),
		attribute.Int("run.insights", len(rc.Insights)),
	)
	return rc, err
}

func (e *Engine) run(ctx context.Context, rc RunContext, log *slog.Logger) (RunContext, error) {
	schema, err := e.db.DescribeSchema(ctx)
	if err != nil {
		return rc, fmt.Errorf("describe schema: %w", err)
	}
	rc = Reduce(rc, Delta{Schema: &schema})

	for s := stepPlan; s != stepDone; {
		if err := ctx.Err(); err != nil {
			return rc, err
		}
		stageStart := time.Now()
		var next step
		switch s {
		case stepPlan:
			rc, next, err = e.plan(ctx, rc, log)
		case stepReview:
			rc, next = e.review(ctx, rc, log)
		case stepDispatch:
			rc, next = e.dispatch(ctx, rc, log)
		case stepGate:
			rc, next = e.decide(ctx, rc, log)
		case stepProduce:
			rc, next, err = e.produce(ctx, rc, log)
		}
		if err != nil {
			return rc, err
		}
		if s != stepProduce {
			e.recorder.ObserveStage(s.String(), time.Since(stageStart))
		}
		s = next
	}
	return rc, nil
}

func (e *Engine) plan(ctx context.Context, rc RunContext, log *slog.Logger) (RunContext, step, error) {
	ctx, span := tracer.Start(ctx, "workflow.plan")
	defer span.End()

	tasks, err := e.planner.Plan(ctx, research.PlanInput{
		Goal:               rc.Goal,
		Schema:             rc.Schema,
		PriorInsightTitles: rc.InsightTitles(),
		Feedback:           rc.Feedback,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return rc, stepDone, err
	}
	span.SetAttributes(attribute.Int("tasks", len(tasks)))
	log.Info("plan generated", "tasks", len(tasks), "round", rc.Rounds+1)
	return Reduce(rc, Delta{Tasks: &tasks, AddRound: true}), stepReview, nil
}

func (e *Engine) review(ctx context.Context, rc RunContext, log *slog.Logger) (RunContext, step) {
	if len(rc.Tasks) == 0 {
		return rc, stepDispatch
	}
	ctx, span := tracer.Start(ctx, "workflow.review")
	defer span.End()

	attempts := rc.ReviewAttempts + 1
	review, err := e.reviewer.Review(ctx, research.Descriptions(rc.Tasks))
	switch {
	case err != nil:
		log.Warn("plan review failed, accepting plan", "error", err)
	case review.Passed():
		log.Debug("plan passed review", "attempt", attempts)
	case attempts >= e.cfg.MaxReviewAttempts:
		log.Warn("plan review limit reached, accepting plan", "attempts", attempts)
	default:
		feedback := strings.TrimSpace(review.Feedback)
		if feedback == "" {
			feedback = defaultReviewFeedback
		}
		log.Info("plan rejected by review", "attempt", attempts, "feedback", feedback)
		span.SetAttributes(attribute.String("review.grade", model.GradeFail))
		return Reduce(rc, Delta{ReviewAttempts: &attempts, Feedback: &feedback}), stepPlan
	}
	return Reduce(rc, Delta{ReviewAttempts: ptr(0), Feedback: ptr("")}), stepDispatch
}

type branch struct {
	search   research.SearchResult
	insights []model.Insight
}

func (e *Engine) dispatch(ctx context.Context, rc RunContext, log *slog.Logger) (RunContext, step) {
	remaining := e.cfg.MaxTasks - rc.TaskCount
	tasks := rc.Tasks
	if len(tasks) > remaining {
		tasks = tasks[:max(remaining, 0)]
	}
	if len(tasks) == 0 {
		log.Info("no tasks to dispatch, moving to production", "tasks_total", rc.TaskCount)
		return rc, stepProduce
	}

	ctx, span := tracer.Start(ctx, "workflow.dispatch")
	defer span.End()
	span.SetAttributes(attribute.Int("tasks", len(tasks)))
	e.recorder.AddTasks(len(tasks))

	searches, errs := Dispatch(ctx, tasks, e.cfg.MaxParallel, func(ctx context.Context, i int, t model.Task) (research.SearchResult, error) {
		ctx, span := tracer.Start(ctx, "research.search")
		defer span.End()
		span.SetAttributes(attribute.Int("branch", i))

		res, err := e.searcher.Search(ctx, t, rc.Schema)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return res, err
	})

	existing := rc.InsightTitles()
	branches, branchErrs := Dispatch(ctx, searches, e.cfg.MaxParallel, func(ctx context.Context, i int, res research.SearchResult) (branch, error) {
		b := branch{search: res}
		if errs[i] != nil {
			log.Warn("search branch failed", "branch", i, "error", errs[i])
			e.recorder.ObserveBranch(telemetry.OutcomeError)
			b.search = research.SearchResult{Task: tasks[i], Attempt: model.QueryAttempt{Error: errs[i].Error()}}
			return b, nil
		}
		if !res.Succeeded() {
			log.Warn("search branch exhausted its queries", "branch", i, "attempts", res.Attempts, "error", res.Attempt.Error)
			e.recorder.ObserveBranch(telemetry.OutcomeFailed)
			return b, nil
		}
		e.recorder.ObserveBranch(telemetry.OutcomeOK)

		insights, err := e.synthesizer.Synthesize(ctx, research.SynthesisInput{
			Goal:           rc.Goal,
			Task:           res.Task,
			Attempt:        res.Attempt,
			ExistingTitles: existing,
		})
		if err != nil {
			log.Warn("insight synthesis failed", "branch", i, "error", err)
			return b, nil
		}
		b.insights = insights
		return b, nil
	})

	outcomes := make([]research.SearchResult, len(branches))
	var added []model.Insight
	for i, b := range branches {
		if branchErrs[i] != nil {
			log.Error("branch aborted", "branch", i, "error", branchErrs[i])
			b = branch{search: research.SearchResult{Task: tasks[i], Attempt: model.QueryAttempt{Error: branchErrs[i].Error()}}}
		}
		outcomes[i] = b.search
		added = append(added, b.insights...)
	}
	e.recorder.AddInsights(len(added))
	log.Info("dispatch complete", "tasks", len(tasks), "new_insights", len(added))

	return Reduce(rc, Delta{
		TaskCountAdd: len(tasks),
		Outcomes:     &outcomes,
		Insights:     added,
	}), stepGate
}

func (e *Engine) decide(ctx context.Context, rc RunContext, log *slog.Logger) (RunContext, step) {
	ctx, span := tracer.Start(ctx, "workflow.gate")
	defer span.End()

	d := e.gate.Decide(ctx, research.GateInput{
		Goal:      rc.Goal,
		Insights:  rc.Insights,
		TaskCount: rc.TaskCount,
		Schema:    rc.Schema,
	})
	span.SetAttributes(attribute.Bool("enough", d.HasEnoughInfo))
	rc = Reduce(rc, Delta{HasEnoughInfo: &d.HasEnoughInfo, Feedback: &d.Feedback})
	if d.HasEnoughInfo {
		log.Info("research complete", "tasks", rc.TaskCount, "insights", len(rc.Insights))
		return rc, stepProduce
	}
	log.Info("more research needed", "tasks", rc.TaskCount, "insights", len(rc.Insights))
	return rc, stepPlan
}

func (e *Engine) produce(ctx context.Context, rc RunContext, log *slog.Logger) (RunContext, step, error) {
	tmpl, err := e.production.Run(ctx, production.Input{Goal: rc.Goal, Insights: rc.Insights})
	if err != nil {
		return rc, stepDone, err
	}
	log.Info("template assembled",
		"scenes", len(tmpl.Scenes),
		"cards", len(tmpl.Cards),
		"duration", tmpl.Timeline.TotalDuration)
	return Reduce(rc, Delta{Template: tmpl}), stepDone, nil
}
