// Package production turns research insights into a renderable video
// template: narrative outline, scenes, cards, timeline and final assembly.
//
// The oracle-backed stages never fail. When the oracle errors or returns
// output that references unknown IDs, a deterministic fallback derived from
// the stage input is used instead.
package production

import (
	"context"
	"log/slog"
	"strings"
	"text/template"

	"github.com/ConceptCodes/deep-sql-research/internal/model"
	"github.com/ConceptCodes/deep-sql-research/internal/oracle"
)

var promptFuncs = template.FuncMap{
	"join": func(ids []string) string {
		if len(ids) == 0 {
			return "none"
		}
		return strings.Join(ids, ", ")
	},
}

// NarrativeBuilder orders insights into a story outline.
type NarrativeBuilder struct {
	chain  *oracle.Chain[model.NarrativeOutline]
	logger *slog.Logger
}

// NewNarrativeBuilder compiles the narrative chain.
func NewNarrativeBuilder(ctx context.Context, o *oracle.Oracle, logger *slog.Logger) (*NarrativeBuilder, error) {
	chain, err := oracle.NewChain[model.NarrativeOutline](ctx, o, oracle.Prompt{
		Stage:       "narrative",
		System:      productionSystem,
		Template:    narrativePromptTemplate,
		Funcs:       promptFuncs,
		Temperature: narrativeTemperature,
	})
	if err != nil {
		return nil, err
	}
	return &NarrativeBuilder{chain: chain, logger: orDefault(logger)}, nil
}

// Build returns the oracle's outline, sanitized against insights, or the
// fallback outline.
func (b *NarrativeBuilder) Build(ctx context.Context, goal string, insights []model.Insight) model.NarrativeOutline {
	outline, err := b.chain.Generate(ctx, map[string]any{"Goal": goal, "Insights": insights})
	if err != nil {
		b.logger.Warn("narrative generation failed, using fallback", "error", err)
		return FallbackNarrative(goal, insights)
	}

	clean, ok := sanitizeNarrative(outline, model.InsightIndex(insights))
	if !ok {
		b.logger.Warn("narrative had no usable sections, using fallback")
		return FallbackNarrative(goal, insights)
	}
	b.logger.Debug("narrative built", "title", clean.Title, "sections", len(clean.Sections))
	return clean
}

// FallbackNarrative is the outline used when the oracle cannot provide one:
// an intro, the first three insights as key findings and the first two
// again in the outro.
func FallbackNarrative(goal string, insights []model.Insight) model.NarrativeOutline {
	return model.NarrativeOutline{
		Title: "Data Insights: " + goal,
		Sections: []model.NarrativeSection{
			{
				ID:          model.SectionIntro,
				Type:        model.SectionIntro,
				Title:       "Introduction",
				Description: "Overview of the data analysis",
				InsightIDs:  []string{},
				Priority:    1,
			},
			{
				ID:          model.SectionKeyInsights,
				Type:        model.SectionKeyInsights,
				Title:       "Key Findings",
				Description: "Main insights from the data",
				InsightIDs:  firstIDs(insights, 3),
				Priority:    2,
			},
			{
				ID:          model.SectionOutro,
				Type:        model.SectionOutro,
				Title:       "Conclusion",
				Description: "Summary of key takeaways",
				InsightIDs:  firstIDs(insights, 2),
				Priority:    3,
			},
		},
	}
}

func sanitizeNarrative(outline model.NarrativeOutline, known map[string]model.Insight) (model.NarrativeOutline, bool) {
	sections := make([]model.NarrativeSection, 0, len(outline.Sections))
	for _, s := range outline.Sections {
		s.InsightIDs = knownIDs(s.InsightIDs, known)
		sections = append(sections, s)
	}
	if len(sections) == 0 {
		return model.NarrativeOutline{}, false
	}
	outline.Sections = sections
	return outline, true
}

func firstIDs(insights []model.Insight, n int) []string {
	n = min(n, len(insights))
	ids := make([]string, 0, n)
	for _, in := range insights[:n] {
		ids = append(ids, in.ID)
	}
	return ids
}

// knownIDs keeps the IDs present in known, in order and without duplicates.
func knownIDs(ids []string, known map[string]model.Insight) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := known[id]; !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func orDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
