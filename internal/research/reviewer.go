package research

import (
	"context"
	"fmt"

	"github.com/ConceptCodes/deep-sql-research/internal/model"
	"github.com/ConceptCodes/deep-sql-research/internal/oracle"
)

// Reviewer grades a plan before it is dispatched.
type Reviewer struct {
	chain *oracle.Chain[model.Review]
}

// NewReviewer compiles the review chain.
func NewReviewer(ctx context.Context, o *oracle.Oracle) (*Reviewer, error) {
	chain, err := oracle.NewChain[model.Review](ctx, o, oracle.Prompt{
		Stage:       "review",
		System:      plannerSystem,
		Template:    reviewPromptTemplate,
		Temperature: reviewTemperature,
	})
	if err != nil {
		return nil, err
	}
	return &Reviewer{chain: chain}, nil
}

// Review grades the task descriptions of a plan.
func (r *Reviewer) Review(ctx context.Context, taskDescriptions []string) (model.Review, error) {
	review, err := r.chain.Generate(ctx, map[string]any{"Tasks": taskDescriptions})
	if err != nil {
		return model.Review{}, fmt.Errorf("review plan: %w", err)
	}
	return review, nil
}

// Descriptions lists the task descriptions in plan order.
func Descriptions(tasks []model.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Description
	}
	return out
}
