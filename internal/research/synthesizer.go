package research

import (
	"context"
	"fmt"
	"strings"

	"github.com/ConceptCodes/deep-sql-research/internal/model"
	"github.com/ConceptCodes/deep-sql-research/internal/oracle"
	"github.com/ConceptCodes/deep-sql-research/internal/util"
)

// maxInsightsPerTask caps what one task may contribute.
const maxInsightsPerTask = 3

// insightDraft is an insight as the oracle reports it; the ID is optional.
type insightDraft struct {
	ID         string         `json:"id"`
	Type       string         `json:"type" validate:"required,oneof=statistic trend comparison ranking distribution"`
	Title      string         `json:"title" validate:"required,nonempty"`
	Summary    string         `json:"summary" validate:"required,nonempty"`
	Data       any            `json:"data"`
	Confidence float64        `json:"confidence" validate:"gte=0,lte=1"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type synthesisOutput struct {
	Insights []insightDraft `json:"insights" validate:"dive"`
}

// SynthesisInput is one finished search branch plus run context.
type SynthesisInput struct {
	Goal           string
	Task           model.Task
	Attempt        model.QueryAttempt
	ExistingTitles []string
}

// Synthesizer extracts typed insights from query results.
type Synthesizer struct {
	chain *oracle.Chain[synthesisOutput]
	newID func(prefix string) string
}

// NewSynthesizer compiles the synthesis chain.
func NewSynthesizer(ctx context.Context, o *oracle.Oracle) (*Synthesizer, error) {
	chain, err := oracle.NewChain[synthesisOutput](ctx, o, oracle.Prompt{
		Stage:       "synthesis",
		Template:    synthesisPromptTemplate,
		Temperature: synthesisTemperature,
	})
	if err != nil {
		return nil, err
	}
	return &Synthesizer{chain: chain, newID: util.NewID}, nil
}

// Synthesize returns up to three new insights for one branch. Failed or empty
// results yield none without consulting the oracle. Callers treat an error as
// "no new insights".
func (s *Synthesizer) Synthesize(ctx context.Context, in SynthesisInput) ([]model.Insight, error) {
	if in.Attempt.Error != "" || len(in.Attempt.Results) == 0 {
		return nil, nil
	}

	out, err := s.chain.Generate(ctx, map[string]any{
		"Goal":           in.Goal,
		"Task":           in.Task.Description,
		"Query":          in.Attempt.Query,
		"Summary":        SummarizeRows(in.Attempt.Results, synthesisSampleRows),
		"Analysis":       in.Attempt.Analysis,
		"ExistingTitles": in.ExistingTitles,
	})
	if err != nil {
		return nil, fmt.Errorf("synthesize insights: %w", err)
	}

	drafts := out.Insights
	if len(drafts) > maxInsightsPerTask {
		drafts = drafts[:maxInsightsPerTask]
	}
	insights := make([]model.Insight, 0, len(drafts))
	for _, d := range drafts {
		id := strings.TrimSpace(d.ID)
		if id == "" {
			id = s.newID("insight")
		}
		insights = append(insights, model.Insight{
			ID:         id,
			Type:       d.Type,
			Title:      d.Title,
			Summary:    d.Summary,
			Data:       d.Data,
			Confidence: d.Confidence,
			Metadata:   d.Metadata,
		})
	}
	return insights, nil
}
