package production

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ConceptCodes/deep-sql-research/internal/model"
	"github.com/ConceptCodes/deep-sql-research/internal/oracle"
	"github.com/cloudwego/eino/compose"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("github.com/ConceptCodes/deep-sql-research/internal/production")

// Stage names reported to a StageObserver.
const (
	StageNarrative = "narrative"
	StageScenes    = "scenes"
	StageCards     = "cards"
	StageTimeline  = "timeline"
	StageAssemble  = "assemble"
)

// StageObserver receives the duration of each production stage.
type StageObserver interface {
	ObserveStage(stage string, elapsed time.Duration)
}

type nopStageObserver struct{}

func (nopStageObserver) ObserveStage(string, time.Duration) {}

// Input is what production needs from research.
type Input struct {
	Goal     string
	Insights []model.Insight
}

// draft accumulates stage outputs as it moves through the graph.
type draft struct {
	in        Input
	narrative model.NarrativeOutline
	scenes    []model.SceneSpec
	cards     []model.Card
	timeline  model.Timeline
}

// Pipeline runs narrative -> scenes -> cards -> timeline -> assemble as one
// compiled graph.
type Pipeline struct {
	runnable compose.Runnable[Input, *model.TemplateJSON]
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*pipelineConfig)

type pipelineConfig struct {
	logger    *slog.Logger
	observer  StageObserver
	assembler *Assembler
}

// WithLogger sets the pipeline logger.
func WithLogger(l *slog.Logger) PipelineOption {
	return func(c *pipelineConfig) { c.logger = orDefault(l) }
}

// WithStageObserver attaches a stage duration observer.
func WithStageObserver(obs StageObserver) PipelineOption {
	return func(c *pipelineConfig) {
		if obs != nil {
			c.observer = obs
		}
	}
}

// WithAssembler replaces the default assembler.
func WithAssembler(a *Assembler) PipelineOption {
	return func(c *pipelineConfig) {
		if a != nil {
			c.assembler = a
		}
	}
}

// NewPipeline compiles the production graph.
func NewPipeline(ctx context.Context, o *oracle.Oracle, opts ...PipelineOption) (*Pipeline, error) {
	cfg := pipelineConfig{logger: slog.Default(), observer: nopStageObserver{}, assembler: NewAssembler()}
	for _, opt := range opts {
		opt(&cfg)
	}

	narrative, err := NewNarrativeBuilder(ctx, o, cfg.logger)
	if err != nil {
		return nil, err
	}
	scenes, err := NewScenePlanner(ctx, o, cfg.logger)
	if err != nil {
		return nil, err
	}
	cards, err := NewCardDesigner(ctx, o, cfg.logger)
	if err != nil {
		return nil, err
	}

	timed := func(ctx context.Context, stage string, fn func(context.Context)) {
		ctx, span := tracer.Start(ctx, "production."+stage)
		defer span.End()
		start := time.Now()
		fn(ctx)
		cfg.observer.ObserveStage(stage, time.Since(start))
	}

	g := compose.NewGraph[Input, *model.TemplateJSON]()
	_ = g.AddLambdaNode(StageNarrative, compose.InvokableLambda(func(ctx context.Context, in Input) (*draft, error) {
		d := &draft{in: in}
		timed(ctx, StageNarrative, func(ctx context.Context) {
			d.narrative = narrative.Build(ctx, in.Goal, in.Insights)
		})
		return d, nil
	}))
	_ = g.AddLambdaNode(StageScenes, compose.InvokableLambda(func(ctx context.Context, d *draft) (*draft, error) {
		timed(ctx, StageScenes, func(ctx context.Context) {
			d.scenes = scenes.Plan(ctx, d.narrative, d.in.Insights)
		})
		return d, nil
	}))
	_ = g.AddLambdaNode(StageCards, compose.InvokableLambda(func(ctx context.Context, d *draft) (*draft, error) {
		timed(ctx, StageCards, func(ctx context.Context) {
			d.cards = cards.Design(ctx, d.scenes, d.in.Insights)
		})
		return d, nil
	}))
	_ = g.AddLambdaNode(StageTimeline, compose.InvokableLambda(func(ctx context.Context, d *draft) (*draft, error) {
		timed(ctx, StageTimeline, func(context.Context) {
			d.timeline = BuildTimeline(d.scenes)
		})
		return d, nil
	}))
	_ = g.AddLambdaNode(StageAssemble, compose.InvokableLambda(func(ctx context.Context, d *draft) (*model.TemplateJSON, error) {
		var (
			tmpl *model.TemplateJSON
			err  error
		)
		timed(ctx, StageAssemble, func(ctx context.Context) {
			_, span := tracer.Start(ctx, "production.validate")
			defer span.End()
			tmpl, err = cfg.assembler.Assemble(AssemblyInput{
				Goal:      d.in.Goal,
				Insights:  d.in.Insights,
				Narrative: &d.narrative,
				Scenes:    d.scenes,
				Cards:     d.cards,
				Timeline:  &d.timeline,
			})
			span.SetAttributes(
				attribute.Int("scenes", len(d.scenes)),
				attribute.Int("cards", len(d.cards)),
				attribute.Bool("valid", err == nil),
			)
		})
		return tmpl, err
	}))
	_ = g.AddEdge(compose.START, StageNarrative)
	_ = g.AddEdge(StageNarrative, StageScenes)
	_ = g.AddEdge(StageScenes, StageCards)
	_ = g.AddEdge(StageCards, StageTimeline)
	_ = g.AddEdge(StageTimeline, StageAssemble)
	_ = g.AddEdge(StageAssemble, compose.END)

	runnable, err := g.Compile(ctx, compose.WithGraphName("production"))
	if err != nil {
		return nil, fmt.Errorf("compile production graph: %w", err)
	}
	return &Pipeline{runnable: runnable}, nil
}

// Run produces a validated template from research output.
func (p *Pipeline) Run(ctx context.Context, in Input) (*model.TemplateJSON, error) {
	tmpl, err := p.runnable.Invoke(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("produce template: %w", err)
	}
	return tmpl, nil
}
