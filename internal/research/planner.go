// Package research implements the stages of the research loop: planning,
// plan review, per-task SQL search, insight synthesis and the sufficiency
// gate. Each stage is a thin typed wrapper around an oracle chain; control
// flow between stages lives in the workflow package.
package research

import (
	"context"
	"fmt"

	"github.com/ConceptCodes/deep-sql-research/internal/model"
	"github.com/ConceptCodes/deep-sql-research/internal/oracle"
)

// maxPriorTitles caps how many existing insight titles the planner sees.
const maxPriorTitles = 20

// PlanInput is everything the planner needs for one round.
type PlanInput struct {
	Goal               string
	Schema             string
	PriorInsightTitles []string
	Feedback           string
}

type planOutput struct {
	Tasks []model.Task `json:"tasks" validate:"dive"`
}

// Planner turns a goal into research tasks.
type Planner struct {
	chain *oracle.Chain[planOutput]
}

// NewPlanner compiles the planning chain.
func NewPlanner(ctx context.Context, o *oracle.Oracle) (*Planner, error) {
	chain, err := oracle.NewChain[planOutput](ctx, o, oracle.Prompt{
		Stage:       "plan",
		System:      plannerSystem,
		Template:    planPromptTemplate,
		Temperature: planTemperature,
	})
	if err != nil {
		return nil, err
	}
	return &Planner{chain: chain}, nil
}

// Plan returns the next batch of tasks. An empty batch is valid and means the
// planner found nothing more worth asking. Oracle failures are returned.
func (p *Planner) Plan(ctx context.Context, in PlanInput) ([]model.Task, error) {
	titles := in.PriorInsightTitles
	if len(titles) > maxPriorTitles {
		titles = titles[:maxPriorTitles]
	}

	out, err := p.chain.Generate(ctx, map[string]any{
		"Goal":        in.Goal,
		"Schema":      in.Schema,
		"PriorTitles": titles,
		"Feedback":    in.Feedback,
	})
	if err != nil {
		return nil, fmt.Errorf("plan research: %w", err)
	}
	if out.Tasks == nil {
		return []model.Task{}, nil
	}
	return out.Tasks, nil
}
